package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lostfound-notify/internal/domain"
	"github.com/lostfound-notify/internal/pkg/id"
	"github.com/lostfound-notify/internal/pkg/validate"
)

type Service interface {
	// Subscribe registers the caller's browser endpoint. Re-subscribing the
	// same endpoint updates the existing record.
	Subscribe(ctx context.Context, userID string, req domain.SubscribeRequest) (*domain.PushSubscription, error)
	UpdateLocation(ctx context.Context, subscriptionID, userID string, req domain.UpdateLocationRequest) (*domain.PushSubscription, error)
	Unsubscribe(ctx context.Context, subscriptionID, userID string) error
	List(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	// PurgeUser removes every subscription owned by userID and returns how many were removed.
	PurgeUser(ctx context.Context, userID string) (int, error)
}

type subscriptionStore interface {
	Put(ctx context.Context, s *domain.PushSubscription) error
	Get(ctx context.Context, subscriptionID string) (*domain.PushSubscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, subscriptionID string) error
}

type service struct {
	repo subscriptionStore
	now  func() time.Time
}

func NewService(repo subscriptionStore) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Subscribe(ctx context.Context, userID string, req domain.SubscribeRequest) (*domain.PushSubscription, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if !domain.CoordinatesPaired(req.Latitude, req.Longitude) {
		return nil, fmt.Errorf("latitude and longitude must be supplied together: %w", domain.ErrBadRequest)
	}

	now := s.now().UTC()
	subID := id.Derive(req.Endpoint)
	sub, err := s.repo.Get(ctx, subID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sub = &domain.PushSubscription{SubscriptionID: subID, CreatedAt: now}
	case err != nil:
		return nil, err
	}

	sub.UserID = userID
	sub.Endpoint = req.Endpoint
	sub.P256dh = req.Keys.P256dh
	sub.Auth = req.Keys.Auth
	sub.Latitude = req.Latitude
	sub.Longitude = req.Longitude
	sub.RadiusKm = req.RadiusKm
	sub.UpdatedAt = now
	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) UpdateLocation(ctx context.Context, subscriptionID, userID string, req domain.UpdateLocationRequest) (*domain.PushSubscription, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	if !domain.CoordinatesPaired(req.Latitude, req.Longitude) {
		return nil, fmt.Errorf("latitude and longitude must be supplied together: %w", domain.ErrBadRequest)
	}
	sub, err := s.owned(ctx, subscriptionID, userID)
	if err != nil {
		return nil, err
	}
	sub.Latitude = req.Latitude
	sub.Longitude = req.Longitude
	sub.RadiusKm = req.RadiusKm
	sub.UpdatedAt = s.now().UTC()
	if err := s.repo.Put(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *service) Unsubscribe(ctx context.Context, subscriptionID, userID string) error {
	if _, err := s.owned(ctx, subscriptionID, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, subscriptionID)
}

func (s *service) List(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) PurgeUser(ctx context.Context, userID string) (int, error) {
	subs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	removed := 0
	var firstErr error
	for _, sub := range subs {
		err := s.repo.Delete(ctx, sub.SubscriptionID)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, domain.ErrNotFound):
		default:
			slog.Warn("failed to purge push subscription", "subscription_id", sub.SubscriptionID, "user_id", userID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return removed, firstErr
}

func (s *service) owned(ctx context.Context, subscriptionID, userID string) (*domain.PushSubscription, error) {
	sub, err := s.repo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, fmt.Errorf("subscription belongs to another user: %w", domain.ErrForbidden)
	}
	return sub, nil
}
