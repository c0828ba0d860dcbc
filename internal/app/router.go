package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sitehem/sitehem/internal/auth"
	"github.com/sitehem/sitehem/internal/observability"
	"github.com/sitehem/sitehem/internal/permissions"
	"github.com/sitehem/sitehem/internal/roles"
	"github.com/sitehem/sitehem/internal/users"
	"github.com/sitehem/sitehem/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Sitehem defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(sr chi.Router) {
		params.AuthHandler.MountRoutes(sr)
	})
	r.Route("/users", func(sr chi.Router) {
		params.UsersHandler.MountRoutes(sr)
	})
	r.Route("/roles", func(sr chi.Router) {
		params.RolesHandler.MountRoutes(sr)
	})
	r.Route("/permissions", func(sr chi.Router) {
		params.PermissionsHandler.MountRoutes(sr)
	})
	if params.JobHandler != nil {
		r.Route("/jobs", func(sr chi.Router) {
			params.JobHandler.MountRoutes(sr)
		})
	}

	return r
}
