package campaigns

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandlePublish handles POST /api/campaigns/{id}/publish.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "publish campaign")
	defer cancel()

	c, err := h.Engine.Publish(ctx, actor, id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if c.ScheduledPublishAt != nil {
		if err := h.Campaigns.ClearSchedule(ctx, id); err != nil {
			h.Log.Warn("published campaign kept its schedule", zap.String("campaign_id", id.Hex()), zap.Error(err))
		} else {
			c.ScheduledPublishAt = nil
		}
	}

	h.AuditLog.CampaignPublished(ctx, r, actor, c)
	apiresp.OK(w, c)
}

// HandleClose handles POST /api/campaigns/{id}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "close campaign")
	defer cancel()

	c, err := h.Engine.Close(ctx, actor, id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	h.AuditLog.CampaignClosed(ctx, r, actor, id)
	apiresp.OK(w, c)
}
