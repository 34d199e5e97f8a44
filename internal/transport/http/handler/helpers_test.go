package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	jwtinfra "github.com/lostfound-notify/internal/infrastructure/jwt"
	"github.com/lostfound-notify/internal/transport/http/middleware"
	"github.com/stretchr/testify/require"
)

// testAuth holds a key pair so tests can mint tokens the Auth middleware accepts.
type testAuth struct {
	key      *rsa.PrivateKey
	verifier *jwtinfra.Verifier
}

func newTestAuth(t *testing.T) *testAuth {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &testAuth{key: key, verifier: jwtinfra.NewVerifier(&key.PublicKey)}
}

// bearerReq builds a request with a signed Bearer token for the given userID and role.
func (a *testAuth) bearerReq(t *testing.T, method, target, userID, role string, body []byte) *http.Request {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &jwtinfra.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(a.key)
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// serve wraps the handler with middleware.Auth before serving.
func (a *testAuth) serve(h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(a.verifier)(h).ServeHTTP(w, r)
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
