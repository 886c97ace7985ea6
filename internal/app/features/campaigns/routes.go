package campaigns

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the campaign routes on r, the router for
// /api/campaigns. Per-campaign sub-resources are mounted next to these by
// bootstrap.
//
// List, get and the public link lookup accept guests; every write requires a
// signed-in user and is then decided by the access ladder.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Get("/", h.ServeList)
	r.Get("/public/{link}", h.ServePublic)
	r.Get("/{id}", h.ServeCampaign)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
		pr.Post("/{id}/publish", h.HandlePublish)
		pr.Post("/{id}/close", h.HandleClose)
		pr.Get("/{id}/analytics", h.ServeAnalytics)
	})
}
