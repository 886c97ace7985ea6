package responses

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the response routes on r, the router for
// /api/campaigns/{id}/responses. Submitting is public and rate limited per
// client IP; everything else requires a signed-in user.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	if h.SubmitLimiter != nil {
		r.With(ratelimit.Middleware(h.SubmitLimiter, "submit", h.Log)).Post("/", h.HandleSubmit)
	} else {
		r.Post("/", h.HandleSubmit)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/{rid}", h.ServeRespondent)
		pr.Delete("/{rid}", h.HandleDelete)
	})
}
