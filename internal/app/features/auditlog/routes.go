package auditlog

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for /api/audit-logs. Access is restricted to
// super admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(string(models.RoleSuperAdmin)))

		pr.Get("/", h.ServeList)
	})

	return r
}

// CampaignRoutes registers GET / on r, the router for
// /api/campaigns/{id}/audit-logs. The campaign access ladder limits it to
// admins.
func CampaignRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.With(sm.RequireSignedIn).Get("/", h.ServeCampaignLog)
}
