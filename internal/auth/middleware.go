package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sitehem/sitehem/internal/platform/httpx"
	"github.com/sitehem/sitehem/internal/shared"
)

// Middleware authenticates requests from the Authorization header: it
// verifies the bearer token, resolves the session against the store, and
// places the Identity into the request context. Every failure is a 401 with
// a generic body.
type Middleware struct {
	Codec   *Codec
	Service *Service
	Logger  *slog.Logger
}

// Authenticate rejects requests without a valid, resolvable session.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		claims, err := m.Codec.Verify(token)
		if err != nil {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		identity, err := m.Service.Resolve(r.Context(), claims)
		if err != nil {
			if m.Logger != nil && !errors.Is(err, shared.ErrUnauthenticated) {
				m.Logger.Error("resolve session", slog.Any("error", err))
			}
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
