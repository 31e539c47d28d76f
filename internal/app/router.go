package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/interviewhub/gateway/internal/admin"
	"github.com/interviewhub/gateway/internal/auth"
	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/guard"
	"github.com/interviewhub/gateway/internal/nav"
	"github.com/interviewhub/gateway/internal/observability"
	"github.com/interviewhub/gateway/internal/shared"
	"github.com/interviewhub/gateway/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Guard          guard.Guard
	AuthHandler    *auth.Handler
	NavHandler     *nav.Handler
	AdminHandler   *admin.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router for the gateway.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
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

	r.Route("/auth", func(r chi.Router) {
		r.Use(LoginRateLimiter(params.Config))
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.GuestOnly)
			params.AuthHandler.MountGuestRoutes(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(params.Guard.RequireAuth)
			params.AuthHandler.MountAuthenticatedRoutes(r)
		})
		params.AuthHandler.MountPublicRoutes(r)
	})

	// Navigation metadata is readable by anonymous sessions; the resolver
	// narrows what each view sees.
	r.Route("/nav", params.NavHandler.MountRoutes)

	r.With(params.Guard.RequireRole(authz.RoleAdmin, authz.RoleSuperAdmin)).
		Route("/admin", params.AdminHandler.MountAdminRoutes)
	r.With(params.Guard.RequireRole(authz.RoleSuperAdmin)).
		Route("/super-admin", params.AdminHandler.MountSuperAdminRoutes)

	if params.JobHandler != nil {
		r.With(params.Guard.RequireRole(authz.RoleSuperAdmin)).
			Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.NotFound(params.Guard.NotFound())

	return r
}
