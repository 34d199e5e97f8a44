package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrSubscriptionGone means the push service reported the endpoint as
	// permanently invalid (404/410). The subscription should be deleted.
	ErrSubscriptionGone = errors.New("push subscription gone")
	// ErrPushDisabled means no VAPID key pair is configured.
	ErrPushDisabled = errors.New("push notifications disabled")
)
