package questions

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the question routes on r, the router for
// /api/campaigns/{id}/questions.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Post("/reorder", h.HandleReorder)
		pr.Patch("/{qid}", h.HandleUpdate)
		pr.Delete("/{qid}", h.HandleDelete)
	})
}
