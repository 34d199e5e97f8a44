package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func withAction(r *http.Request, action string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("action", action)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPing(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler().Ping(rr, withAction(httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil), "ping"))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestPing_UnknownAction(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler().Ping(rr, withAction(httptest.NewRequest(http.MethodGet, "/v1/health-check/status", nil), "status"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
