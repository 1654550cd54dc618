package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lexora-legal/lexora/internal/approvals"
	"github.com/lexora-legal/lexora/internal/auth"
	"github.com/lexora-legal/lexora/internal/billing"
	"github.com/lexora-legal/lexora/internal/documents"
	"github.com/lexora-legal/lexora/internal/drafting"
	"github.com/lexora-legal/lexora/internal/matters"
	"github.com/lexora-legal/lexora/internal/notifications"
	"github.com/lexora-legal/lexora/internal/observability"
	"github.com/lexora-legal/lexora/internal/rbac"
	"github.com/lexora-legal/lexora/internal/shared"
	"github.com/lexora-legal/lexora/internal/tenancy"
	"github.com/lexora-legal/lexora/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthGate       auth.Gate

	AuthHandler          *auth.Handler
	TenancyHandler       *tenancy.Handler
	RolesHandler         *rbac.Handler
	MattersHandler       *matters.Handler
	DocumentsHandler     *documents.Handler
	ApprovalsHandler     *approvals.Handler
	NotificationsHandler *notifications.Handler
	BillingHandler       *billing.Handler
	DraftingHandler      *drafting.Handler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Lexora defaults. Everything
// except health, metrics, and the auth endpoints sits behind the
// authentication gate.
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

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.AuthGate.RequireSession)

		if params.TenancyHandler != nil {
			r.Route("/firms", params.TenancyHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.MattersHandler != nil {
			r.Route("/matters", params.MattersHandler.MountRoutes)
		}
		if params.DocumentsHandler != nil {
			r.Route("/documents", params.DocumentsHandler.MountRoutes)
		}
		if params.ApprovalsHandler != nil {
			r.Route("/approvals", params.ApprovalsHandler.MountRoutes)
		}
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		if params.BillingHandler != nil {
			r.Route("/billing", params.BillingHandler.MountRoutes)
		}
		if params.DraftingHandler != nil {
			r.Route("/drafts", params.DraftingHandler.MountRoutes)
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
