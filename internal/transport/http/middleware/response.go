package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lostfound-notify/internal/domain"
)

// rejection is a request the chain refused before it reached a handler.
// It unwraps to the domain sentinel that picks the status, so handlers and
// middleware agree on what ErrUnauthorized and ErrForbidden mean on the wire.
type rejection struct {
	reason string
	kind   error
}

func (r *rejection) Error() string { return r.reason }
func (r *rejection) Unwrap() error { return r.kind }

var errRateLimited = errors.New("rate limited")

var (
	errNoBearer       = &rejection{"missing or invalid authorization header", domain.ErrUnauthorized}
	errBadToken       = &rejection{"invalid or expired token", domain.ErrUnauthorized}
	errAuthDisabled   = &rejection{"authentication not configured", domain.ErrUnauthorized}
	errNoClaims       = &rejection{"unauthorized", domain.ErrUnauthorized}
	errRoleNotAllowed = &rejection{"forbidden", domain.ErrForbidden}
	errTooManyReqs    = &rejection{"too many requests", errRateLimited}
)

type errorBody struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// reject writes err in the {"error": "..."} shape the handlers use.
func reject(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusOf(err))
	_ = json.NewEncoder(w).Encode(errorBody{Error: err.Error()})
}
