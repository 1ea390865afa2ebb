package rbac

import (
	"log/slog"
	"net/http"

	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/platform/httpx"
)

// Middleware wires role-based authorization helpers for HTTP handlers.
// Checks run against the EFFECTIVE roles, so an impersonating admin is
// constrained to what the impersonated user can do on feature routes.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the actor holds at least one of the given roles.
func (m Middleware) RequireAny(roles ...identity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor := identity.ActorFromContext(r.Context())
			if !actor.Authenticated() {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			for _, role := range roles {
				if actor.HasEffectiveRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac denied",
					slog.Int64("user_id", actor.EffectiveUserID()),
					slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "insufficient role")
		})
	}
}

// RequireAdmin gates a route on the admin role of the effective identity.
func (m Middleware) RequireAdmin() func(http.Handler) http.Handler {
	return m.RequireAny(identity.RoleAdmin)
}

// RequireAuthenticated only checks that a principal is present.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := identity.ActorFromContext(r.Context())
			if !actor.Authenticated() {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
