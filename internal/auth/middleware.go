package auth

import (
	"net/http"
	"strings"

	"github.com/GideonMwiti/garagemaster-sub000/internal/api"
)

// TenantHeader lets a super admin act on a specific garage.
const TenantHeader = "X-Tenant-ID"

// Middleware resolves the bearer token to an actor and stores it on the
// request context.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				api.RespondMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			actor, err := tokens.Parse(strings.TrimSpace(header[len("Bearer "):]))
			if err != nil {
				api.RespondMessage(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if actor.SuperAdmin {
				if tenant := strings.TrimSpace(r.Header.Get(TenantHeader)); tenant != "" {
					actor.TenantID = tenant
				}
			}
			if actor.TenantID == "" {
				api.RespondMessage(w, http.StatusBadRequest, "tenant is required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole rejects actors holding none of roles. Super admins pass.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				api.RespondMessage(w, http.StatusUnauthorized, "missing actor")
				return
			}
			if !actor.HasRole(roles...) {
				api.RespondMessage(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
