package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lostfound-notify/internal/domain"
	"golang.org/x/sync/errgroup"
)

type tally struct {
	delivered int
	failed    int
	removed   int
}

// fanOut delivers payload to every subscription with at most
// s.maxConcurrency sends in flight. Attempts never fail each other.
func (s *service) fanOut(ctx context.Context, subs []domain.PushSubscription, payload []byte) tally {
	s.metrics.FanOutStarted()
	defer s.metrics.FanOutFinished()

	var delivered, failed, removed atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i := range subs {
		sub := &subs[i]
		g.Go(func() error {
			switch s.deliver(ctx, sub, payload) {
			case domain.OutcomeDelivered:
				delivered.Add(1)
			case domain.OutcomeDeleted:
				removed.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return tally{
		delivered: int(delivered.Load()),
		failed:    int(failed.Load()),
		removed:   int(removed.Load()),
	}
}

// deliver makes one attempt and, when the endpoint is gone, deletes the subscription.
func (s *service) deliver(ctx context.Context, sub *domain.PushSubscription, payload []byte) (outcome domain.PushOutcome) {
	start := time.Now()
	defer func() {
		s.metrics.PushAttempted(outcome, time.Since(start))
	}()

	err := s.send(ctx, sub, payload)
	switch {
	case err == nil:
		return domain.OutcomeDelivered
	case errors.Is(err, domain.ErrSubscriptionGone):
		if derr := s.subs.Delete(ctx, sub.SubscriptionID); derr != nil && !errors.Is(derr, domain.ErrNotFound) {
			slog.Warn("failed to remove expired push subscription", "subscription_id", sub.SubscriptionID, "user_id", sub.UserID, "err", derr)
			return domain.OutcomeFailedTransient
		}
		slog.Info("removed expired push subscription", "subscription_id", sub.SubscriptionID, "user_id", sub.UserID)
		return domain.OutcomeDeleted
	default:
		slog.Warn("push delivery failed", "subscription_id", sub.SubscriptionID, "user_id", sub.UserID, "err", err)
		return domain.OutcomeFailedTransient
	}
}

// send bounds one attempt by s.sendTimeout and turns a panicking sender into an error.
func (s *service) send(ctx context.Context, sub *domain.PushSubscription, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("push sender panic: %v", r)
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return s.sender.Send(sendCtx, sub, payload)
}
