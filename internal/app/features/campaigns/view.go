package campaigns

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// ServeCampaign handles GET /api/campaigns/{id}.
//
// Members get the full snapshot with questions and manager edges; viewers
// admitted only because the campaign is public get the public projection.
func (h *Handler) ServeCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get campaign")
	defer cancel()

	c, d, err := h.Engine.Authorize(ctx, authz.ActorFromRequest(r), id, campaignpolicy.ActionViewCampaign)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if d.PublicOnly() {
		apiresp.OK(w, c.Public())
		return
	}
	apiresp.OK(w, c)
}

// ServePublic handles GET /api/campaigns/public/{link}: the survey form a
// respondent fills in. Only PUBLISHED campaigns are served.
func (h *Handler) ServePublic(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get public campaign")
	defer cancel()

	c, err := h.Campaigns.GetByShareableLink(ctx, chi.URLParam(r, "link"))
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := h.Engine.CheckAcceptingResponses(c); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, c.Public())
}
