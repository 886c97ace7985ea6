package managers

import (
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the manager routes on r, the router for
// /api/campaigns/{id}/managers. All of them require a signed-in user.
func MountRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleInvite)
	r.Post("/accept", h.HandleAccept)
	r.Patch("/{managerId}", h.HandleUpdate)
	r.Delete("/{managerId}", h.HandleRemove)
}

// InvitationRoutes registers GET /invitations on r, the router for
// /api/users.
func InvitationRoutes(r chi.Router, h *Handler, sm *auth.SessionManager) {
	r.With(sm.RequireSignedIn).Get("/invitations", h.ServeInvitations)
}
