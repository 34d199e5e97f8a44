package middleware

import (
	"net/http"
	"slices"
)

// RoleAdmin is the JWT role allowed onto moderation routes.
const RoleAdmin = "admin"

// RequireRole lets a request through only when Auth has put claims on the
// context and their role is one of allowed.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			switch {
			case !ok:
				reject(w, errNoClaims)
			case !slices.Contains(allowed, claims.Role):
				reject(w, errRoleNotAllowed)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
