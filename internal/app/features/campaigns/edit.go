package campaigns

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// HandleUpdate handles PATCH /api/campaigns/{id}.
//
// Descriptive fields need edit_campaign. allowManagerViewRespondentDetails is
// admin only; a request carrying it is refused as a whole when the caller
// may not set it. Status changes go through publish and close.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	var req updateRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update campaign")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, actor, id, campaignpolicy.ActionEditCampaign)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if req.AllowManagerViewRespondentDetails != nil {
		if err := h.Engine.Decide(actor, c, campaignpolicy.ActionSetRespondentDetailsVisibility).
			Err(campaignpolicy.ActionSetRespondentDetailsVisibility); err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
	}

	u, fields, err := buildUpdate(req, c, time.Now())
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if u.Empty() && req.AllowManagerViewRespondentDetails == nil {
		apiresp.Error(w, r, h.Log, apperr.InvalidInput("nothing to update"))
		return
	}

	if !u.Empty() {
		if err := h.Campaigns.Update(ctx, id, u); err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
		h.AuditLog.CampaignUpdated(ctx, r, actor, id, fields)
	}
	if req.AllowManagerViewRespondentDetails != nil {
		allow := *req.AllowManagerViewRespondentDetails
		if _, err := h.Engine.SetRespondentDetailsVisibility(ctx, actor, id, allow); err != nil {
			apiresp.Error(w, r, h.Log, err)
			return
		}
		h.AuditLog.RespondentDetailsVisibility(ctx, r, actor, id, allow)
	}

	updated, err := h.Engine.Load(ctx, id)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, updated)
}

// buildUpdate turns the request into a store update and the list of changed
// field names. Schedules apply to drafts only.
func buildUpdate(req updateRequest, c models.Campaign, now time.Time) (campaignstore.Update, []string, error) {
	var u campaignstore.Update
	var fields []string

	if req.Title != nil {
		title := htmlsanitize.PlainText(*req.Title)
		if title == "" {
			return u, nil, apperr.InvalidInput("Title is required.")
		}
		u.Title = &title
		fields = append(fields, "title")
	}
	if req.Description != nil {
		desc := htmlsanitize.Sanitize(*req.Description)
		u.Description = &desc
		fields = append(fields, "description")
	}
	if req.Visibility != nil {
		vis := models.Visibility(strings.ToUpper(*req.Visibility))
		u.Visibility = &vis
		fields = append(fields, "visibility")
	}
	if req.ClearSchedule && req.ScheduledPublishAt != nil {
		return u, nil, apperr.InvalidInput("scheduledPublishAt and clearSchedule are mutually exclusive")
	}
	if req.ScheduledPublishAt != nil || req.ClearSchedule {
		if c.Status != models.StatusDraft {
			return u, nil, apperr.WithMetadata(apperr.KindInvalidState, "only draft campaigns can be scheduled",
				map[string]string{"status": string(c.Status)})
		}
		if err := checkSchedule(req.ScheduledPublishAt, now); err != nil {
			return u, nil, err
		}
		u.ScheduledPublishAt = utcPtr(req.ScheduledPublishAt)
		u.ClearSchedule = req.ClearSchedule
		fields = append(fields, "scheduledPublishAt")
	}
	return u, fields, nil
}
