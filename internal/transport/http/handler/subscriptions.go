package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lostfound-notify/internal/application/subscription"
	"github.com/lostfound-notify/internal/domain"
	"github.com/lostfound-notify/internal/transport/http/middleware"
)

// SubscriptionHandler handles browser push opt-in and the admin purge.
type SubscriptionHandler struct {
	svc       subscription.Service
	publicKey string
}

// NewSubscriptionHandler takes the VAPID public key; empty means push is disabled.
func NewSubscriptionHandler(svc subscription.Service, publicKey string) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, publicKey: publicKey}
}

func (h *SubscriptionHandler) PublicKey(w http.ResponseWriter, _ *http.Request) {
	if h.publicKey == "" {
		writeError(w, http.StatusNotFound, domain.ErrPushDisabled.Error())
		return
	}
	writeJSON(w, http.StatusOK, PublicKeyEnvelope{PublicKey: h.publicKey})
}

func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.Subscribe(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := h.svc.UpdateLocation(r.Context(), chi.URLParam(r, "id"), claims.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Unsubscribe(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	subs, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(subs))
}

func (h *SubscriptionHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	subs, err := h.svc.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(subs))
}

func (h *SubscriptionHandler) PurgeUser(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.PurgeUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PurgeEnvelope{Removed: n})
}

func nonNil(subs []domain.PushSubscription) []domain.PushSubscription {
	if subs == nil {
		return []domain.PushSubscription{}
	}
	return subs
}
