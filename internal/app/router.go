package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/capria-app/capria/internal/activities"
	"github.com/capria-app/capria/internal/albums"
	"github.com/capria-app/capria/internal/audit"
	"github.com/capria-app/capria/internal/auth"
	"github.com/capria-app/capria/internal/caregivers"
	"github.com/capria-app/capria/internal/diary"
	"github.com/capria-app/capria/internal/identity"
	"github.com/capria-app/capria/internal/impersonation"
	"github.com/capria-app/capria/internal/observability"
	"github.com/capria-app/capria/internal/roles"
	"github.com/capria-app/capria/internal/shared"
	"github.com/capria-app/capria/internal/users"
	"github.com/capria-app/capria/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthService    *auth.Service
	Resolver       *identity.Resolver

	AuthHandler          *auth.Handler
	ImpersonationHandler *impersonation.Handler
	UsersHandler         *users.Handler
	RolesHandler         *roles.Handler
	CaregiversHandler    *caregivers.Handler
	ActivitiesHandler    *activities.Handler
	DiaryHandler         *diary.Handler
	AlbumsHandler        *albums.Handler
	AuditHandler         *audit.Handler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with CaprIA defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		AuthService:    params.AuthService,
		Resolver:       params.Resolver,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		if params.ImpersonationHandler != nil {
			params.ImpersonationHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.RolesHandler != nil {
			params.RolesHandler.MountRoutes(r)
		}
		if params.CaregiversHandler != nil {
			params.CaregiversHandler.MountRoutes(r)
		}
		if params.ActivitiesHandler != nil {
			params.ActivitiesHandler.MountRoutes(r)
		}
		if params.DiaryHandler != nil {
			params.DiaryHandler.MountRoutes(r)
		}
		if params.AlbumsHandler != nil {
			params.AlbumsHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
