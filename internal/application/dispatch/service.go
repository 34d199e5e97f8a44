// Package dispatch records in-app notifications and fans them out as Web Push
// messages, either to one user's devices or to every device near a point.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/lostfound-notify/internal/domain"
	"github.com/lostfound-notify/internal/pkg/id"
	"github.com/lostfound-notify/internal/pkg/validate"
)

const (
	defaultMaxConcurrency = 10
	defaultSendTimeout    = 10 * time.Second
	defaultPushBudget     = 20 * time.Second
)

type Service interface {
	// Dispatch writes the notification record, then pushes it best-effort.
	// Only validation and record-write failures are returned.
	Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error)
}

type notificationWriter interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type subscriptionStore interface {
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	ListLocated(ctx context.Context, excludeUserID string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, subscriptionID string) error
}

type pushSender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

type dispatchPublisher interface {
	PublishDispatch(ctx context.Context, result *domain.DispatchResult) error
}

// Recorder receives dispatch metrics. *metrics.DispatchMetrics implements it.
type Recorder interface {
	DispatchStarted(mode string)
	RecordFailed()
	PushSkipped()
	Selected(mode string, n int)
	SelectionFailed(mode string)
	FanOutStarted()
	FanOutFinished()
	PushAttempted(outcome domain.PushOutcome, took time.Duration)
}

// ServiceDeps wires the dispatch service. Sender nil means push is disabled;
// Metrics and Publisher are optional.
type ServiceDeps struct {
	Notifications   notificationWriter
	Subscriptions   subscriptionStore
	Sender          pushSender
	Metrics         Recorder
	Publisher       dispatchPublisher
	DefaultRadiusKm float64
	MaxConcurrency  int
	SendTimeout     time.Duration
	// PushBudget bounds selection plus fan-out so the caller gets its answer
	// in time. Attempts still pending when it expires count as failed.
	PushBudget      time.Duration
}

type service struct {
	notifications   notificationWriter
	subs            subscriptionStore
	sender          pushSender
	metrics         Recorder
	publisher       dispatchPublisher
	defaultRadiusKm float64
	maxConcurrency  int
	sendTimeout     time.Duration
	pushBudget      time.Duration
	now             func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		notifications:   deps.Notifications,
		subs:            deps.Subscriptions,
		sender:          deps.Sender,
		metrics:         deps.Metrics,
		publisher:       deps.Publisher,
		defaultRadiusKm: deps.DefaultRadiusKm,
		maxConcurrency:  deps.MaxConcurrency,
		sendTimeout:     deps.SendTimeout,
		pushBudget:      deps.PushBudget,
		now:             time.Now,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.defaultRadiusKm <= 0 {
		s.defaultRadiusKm = domain.DefaultRadiusKm
	}
	if s.maxConcurrency <= 0 {
		s.maxConcurrency = defaultMaxConcurrency
	}
	if s.sendTimeout <= 0 {
		s.sendTimeout = defaultSendTimeout
	}
	if s.pushBudget <= 0 {
		s.pushBudget = defaultPushBudget
	}
	return s
}

func (s *service) Dispatch(ctx context.Context, req domain.DispatchRequest) (*domain.DispatchResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if !domain.CoordinatesPaired(req.Latitude, req.Longitude) {
		return nil, fmt.Errorf("latitude and longitude must be supplied together: %w", domain.ErrBadRequest)
	}

	n, err := s.record(ctx, req)
	if err != nil {
		s.metrics.RecordFailed()
		return nil, err
	}

	mode := req.Mode()
	s.metrics.DispatchStarted(mode)
	result := &domain.DispatchResult{
		Notification: n,
		Mode:         mode,
		PushEnabled:  s.sender != nil,
	}
	defer s.publish(ctx, result)

	if s.sender == nil {
		s.metrics.PushSkipped()
		return result, nil
	}

	pushCtx, cancel := context.WithTimeout(ctx, s.pushBudget)
	defer cancel()

	subs, err := s.selectSubscriptions(pushCtx, req)
	if err != nil {
		slog.Error("push subscription selection failed", "mode", mode, "notification_id", n.NotificationID, "err", err)
		s.metrics.SelectionFailed(mode)
		return result, nil
	}
	result.Selected = len(subs)
	s.metrics.Selected(mode, len(subs))
	if len(subs) == 0 {
		return result, nil
	}

	payload, err := json.Marshal(buildPayload(req))
	if err != nil {
		slog.Error("marshal push payload", "notification_id", n.NotificationID, "err", err)
		return result, nil
	}

	t := s.fanOut(pushCtx, subs, payload)
	result.Delivered = t.delivered
	result.Failed = t.failed
	result.Removed = t.removed
	return result, nil
}

// record writes the in-app notification. It runs before any push work and
// its failure aborts the dispatch.
func (s *service) record(ctx context.Context, req domain.DispatchRequest) (*domain.Notification, error) {
	now := s.now().UTC()
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         req.UserID,
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		RelatedItemID:  req.RelatedItemID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("record notification: %w", err)
	}
	return n, nil
}

func (s *service) publish(ctx context.Context, result *domain.DispatchResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishDispatch(ctx, result); err != nil {
		slog.Warn("failed to publish dispatch event", "notification_id", result.Notification.NotificationID, "err", err)
	}
}

// buildPayload deep-links to the related item when there is one.
func buildPayload(req domain.DispatchRequest) domain.PushPayload {
	target := "/"
	if req.RelatedItemID != nil && *req.RelatedItemID != "" {
		target = "/items/" + url.PathEscape(*req.RelatedItemID)
	}
	return domain.PushPayload{Title: req.Title, Message: req.Message, URL: target}
}

type nopRecorder struct{}

func (nopRecorder) DispatchStarted(string)                          {}
func (nopRecorder) RecordFailed()                                   {}
func (nopRecorder) PushSkipped()                                    {}
func (nopRecorder) Selected(string, int)                            {}
func (nopRecorder) SelectionFailed(string)                          {}
func (nopRecorder) FanOutStarted()                                  {}
func (nopRecorder) FanOutFinished()                                 {}
func (nopRecorder) PushAttempted(domain.PushOutcome, time.Duration) {}
