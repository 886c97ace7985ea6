package campaigns

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete handles DELETE /api/campaigns/{id}. Questions, manager edges,
// respondents and export records go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete campaign")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, actor, id, campaignpolicy.ActionDeleteCampaign)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := h.Campaigns.DeleteCascade(ctx, id); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if h.Exports != nil {
		if err := h.Exports.RemoveCampaign(id); err != nil {
			h.Log.Warn("campaign deleted but export files remain", zap.String("campaign_id", id.Hex()), zap.Error(err))
		}
	}

	h.AuditLog.CampaignDeleted(ctx, r, actor, id, c.Title)
	apiresp.NoContent(w)
}
