package http

import (
	"context"

	"github.com/lostfound-notify/internal/domain"
	"github.com/lostfound-notify/internal/infrastructure/sns"
	"github.com/lostfound-notify/internal/infrastructure/webpush"
	"github.com/lostfound-notify/internal/observability/metrics"
	"github.com/lostfound-notify/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

// SubscriptionRepository is the minimal interface the router requires from a push subscription store.
type SubscriptionRepository interface {
	Put(ctx context.Context, s *domain.PushSubscription) error
	Get(ctx context.Context, subscriptionID string) (*domain.PushSubscription, error)
	ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error)
	// ListLocated returns every subscription with both coordinates set,
	// excluding those owned by excludeUserID.
	ListLocated(ctx context.Context, excludeUserID string) ([]domain.PushSubscription, error)
	Delete(ctx context.Context, subscriptionID string) error
}

// Deps holds all infrastructure dependencies for the router.
// Sender, Publisher, Metrics and Verifier are optional; leave them nil to disable.
type Deps struct {
	Notifications NotificationRepository
	Subscriptions SubscriptionRepository
	Sender        webpush.Sender
	Publisher     sns.DispatchPublisher
	Metrics       *metrics.DispatchMetrics
	Gatherer      prometheus.Gatherer
	Verifier      middleware.TokenVerifier
}
