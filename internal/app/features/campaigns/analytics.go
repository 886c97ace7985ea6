package campaigns

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/analytics"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
)

// ServeAnalytics handles GET /api/campaigns/{id}/analytics.
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "campaign analytics")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, authz.ActorFromRequest(r), id, campaignpolicy.ActionViewAnalytics)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	respondents, err := h.Respondents.AllSubmitted(ctx, id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	started, err := h.Respondents.CountStarted(ctx, id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	apiresp.OK(w, analytics.Compute(c, respondents, started))
}
