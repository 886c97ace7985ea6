package managers

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
)

// ServeList handles GET /api/campaigns/{id}/managers. Pending and accepted
// edges are both listed.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list managers")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, authz.ActorFromRequest(r), campaignID, campaignpolicy.ActionViewManagers)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	lookup := h.newUserLookup()
	out := make([]managerView, 0, len(c.Managers))
	for _, m := range c.Managers {
		v, err := lookup.view(ctx, m)
		if err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
		out = append(out, v)
	}
	apiresp.OK(w, out)
}

// ServeInvitations handles GET /api/users/invitations: the caller's
// invitations that are still waiting to be accepted.
func (h *Handler) ServeInvitations(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list invitations")
	defer cancel()

	pending, err := h.Managers.ListPendingForUser(ctx, actor.ID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	lookup := h.newUserLookup()
	out := make([]invitationView, 0, len(pending))
	for _, m := range pending {
		c, err := h.Campaigns.GetByID(ctx, m.CampaignID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			apiresp.Error(w, r, h.Log, err)
			return
		}
		inviter, err := lookup.get(ctx, m.InvitedByID)
		if err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
		out = append(out, invitationView{
			CampaignManager: m,
			Campaign:        campaignSummary{ID: c.ID, Title: c.Title, Description: c.Description},
			InvitedBy:       inviter,
		})
	}
	apiresp.OK(w, out)
}
