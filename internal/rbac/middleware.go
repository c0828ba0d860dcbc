package rbac

import (
	"log/slog"
	"net/http"

	"github.com/sitehem/sitehem/internal/platform/httpx"
	"github.com/sitehem/sitehem/internal/shared"
)

// Middleware wires the authorization guard for HTTP handlers. It expects the
// auth middleware to have resolved an Identity into the request context
// beforehand.
type Middleware struct {
	Logger *slog.Logger
}

// RequireAny ensures the current identity holds at least one of the required
// roles. A request without a resolved identity is unauthenticated; one with
// an identity but no matching role is forbidden.
func (m Middleware) RequireAny(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(roles) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if !Authorize(identity.Roles, roles) {
				if m.Logger != nil {
					m.Logger.Warn("access denied",
						slog.Int64("user_id", identity.UserID),
						slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
