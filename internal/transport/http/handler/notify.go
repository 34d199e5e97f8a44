package handler

import (
	"net/http"

	"github.com/lostfound-notify/internal/application/dispatch"
	"github.com/lostfound-notify/internal/domain"
)

// NotifyHandler is the trigger used by the item-posting and claim flows.
type NotifyHandler struct {
	svc dispatch.Service
}

func NewNotifyHandler(svc dispatch.Service) *NotifyHandler {
	return &NotifyHandler{svc: svc}
}

func (h *NotifyHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req domain.DispatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Dispatch(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NotifyEnvelope{
		Success:      true,
		Notification: result.Notification,
		Dispatch: &DispatchSummary{
			Mode:        result.Mode,
			PushEnabled: result.PushEnabled,
			Selected:    result.Selected,
			Delivered:   result.Delivered,
			Failed:      result.Failed,
			Removed:     result.Removed,
		},
	})
}
