package questions

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
)

// ServeList handles GET /api/campaigns/{id}/questions. Anyone who may view
// the campaign may list its questions, guests included for public
// published campaigns.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list questions")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, authz.ActorFromRequest(r), campaignID, campaignpolicy.ActionViewCampaign)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, c.Public().Questions)
}
