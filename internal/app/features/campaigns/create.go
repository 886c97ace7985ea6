package campaigns

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /api/campaigns. The caller becomes the creator.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor := authz.ActorFromRequest(r)
	if !authz.CanAuthorCampaigns(actor) {
		apiresp.Error(w, r, h.Log, apperr.Forbidden("your role cannot create campaigns"))
		return
	}

	var req createRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	title := htmlsanitize.PlainText(req.Title)
	if title == "" {
		apiresp.Error(w, r, h.Log, apperr.InvalidInput("Title is required."))
		return
	}
	if err := checkSchedule(req.ScheduledPublishAt, time.Now()); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	vis := models.VisibilityPrivate
	if req.Visibility != "" {
		vis = models.Visibility(strings.ToUpper(req.Visibility))
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create campaign")
	defer cancel()

	c, err := h.Campaigns.Create(ctx, models.Campaign{
		Title:              title,
		Description:        htmlsanitize.Sanitize(req.Description),
		CreatorID:          actor.ID,
		Visibility:         vis,
		ScheduledPublishAt: utcPtr(req.ScheduledPublishAt),
	})
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	h.AuditLog.CampaignCreated(ctx, r, actor, c)
	h.Log.Info("campaign created", zap.String("campaign_id", c.ID.Hex()), zap.String("creator_id", actor.ID.Hex()))
	apiresp.Created(w, c)
}

// checkSchedule rejects publish times that are not in the future.
func checkSchedule(at *time.Time, now time.Time) error {
	if at != nil && !at.After(now) {
		return apperr.InvalidInput("scheduled publish time must be in the future")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
