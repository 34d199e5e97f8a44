package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lostfound-notify/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NotifyEnvelope wraps trigger responses.
type NotifyEnvelope struct {
	Success      bool                 `json:"success"`
	Notification *domain.Notification `json:"notification,omitempty"`
	Dispatch     *DispatchSummary     `json:"dispatch,omitempty"`
}

// DispatchSummary reports what the push stage did.
type DispatchSummary struct {
	Mode        string `json:"mode"`
	PushEnabled bool   `json:"push_enabled"`
	Selected    int    `json:"selected"`
	Delivered   int    `json:"delivered"`
	Failed      int    `json:"failed"`
	Removed     int    `json:"removed"`
}

// PublicKeyEnvelope carries the VAPID application server key.
type PublicKeyEnvelope struct {
	PublicKey string `json:"publicKey"`
}

// PurgeEnvelope reports an admin purge.
type PurgeEnvelope struct {
	Removed int    `json:"removed"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to a status. Unknown errors are
// logged and reported as 500 without their text.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

const maxBodyBytes = 64 << 10

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
