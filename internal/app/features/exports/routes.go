package exports

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// CampaignRoutes registers the export routes on r, the router for
// /api/campaigns/{id}/exports.
func CampaignRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Use(sm.RequireSignedIn)
	r.Post("/", h.HandleGenerate)
	r.Get("/", h.ServeList)
}

// Routes returns the router for /api/exports.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/{id}", h.ServeExport)
	r.Get("/{id}/download", h.ServeDownload)
	return r
}
