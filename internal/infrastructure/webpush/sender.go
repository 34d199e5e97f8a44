// Package webpush delivers VAPID-signed Web Push messages.
package webpush

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	webpushgo "github.com/SherClockHolmes/webpush-go"
	"github.com/lostfound-notify/internal/config"
	"github.com/lostfound-notify/internal/domain"
)

// maxErrorBody caps how much of a failed push response is kept for logs.
const maxErrorBody = 512

// Sender pushes one payload to one subscription.
type Sender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

// StatusError is returned for non-2xx push service responses other than 404/410.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("push service responded %d: %s", e.StatusCode, e.Body)
}

type sender struct {
	opts webpushgo.Options
}

// NewSender returns a VAPID sender, or an error wrapping domain.ErrPushDisabled
// when either key is missing.
func NewSender(cfg config.PushConfig, client webpushgo.HTTPClient) (Sender, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("vapid keys not configured: %w", domain.ErrPushDisabled)
	}
	return &sender{opts: webpushgo.Options{
		HTTPClient:      client,
		Subscriber:      subscriber(cfg.Subject),
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		TTL:             cfg.TTLSeconds,
		Urgency:         webpushgo.UrgencyNormal,
	}}, nil
}

// subscriber converts a VAPID contact to the form webpush-go expects: it
// prefixes anything that is not https: with mailto: itself.
func subscriber(subject string) string {
	if len(subject) >= len("mailto:") && strings.EqualFold(subject[:len("mailto:")], "mailto:") {
		return subject[len("mailto:"):]
	}
	return subject
}

// Send returns nil on 2xx, an error wrapping domain.ErrSubscriptionGone on
// 404/410, and a *StatusError or transport error otherwise.
func (s *sender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	opts := s.opts
	resp, err := webpushgo.SendNotificationWithContext(ctx, payload, &webpushgo.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpushgo.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &opts)
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("endpoint returned %d: %w", resp.StatusCode, domain.ErrSubscriptionGone)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// GenerateKeys returns a new base64url VAPID key pair.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpushgo.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}
