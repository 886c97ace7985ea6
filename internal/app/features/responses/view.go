package responses

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/policy/respondentpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/paging"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /api/campaigns/{id}/responses?page=&limit=&includeDetails=.
//
// Identifying fields are returned only when the caller asks for them and
// passes the respondent privacy gate.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	actor := authz.ActorFromRequest(r)
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list responses")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, actor, campaignID, campaignpolicy.ActionViewResponses)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	showDetails := parseBool(query.Get(r, "includeDetails")) && h.Engine.CanViewIdentifyingFields(actor, c)

	rows, total, err := h.Respondents.ListSubmitted(ctx, campaignID, p)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	byID := questionIndex(c.Questions)
	out := make([]respondentView, 0, len(rows))
	identified := 0
	for _, row := range rows {
		row = respondentpolicy.Redact(row, showDetails)
		if row.IdentifiableFields != nil {
			identified++
		}
		out = append(out, viewOf(row, byID))
	}
	if identified > 0 {
		h.AuditLog.RespondentDetailsViewed(ctx, r, actor, campaignID, identified)
	}
	apiresp.Paged(w, out, p.MetaFor(total))
}

// ServeRespondent handles GET /api/campaigns/{id}/responses/{rid}.
func (h *Handler) ServeRespondent(w http.ResponseWriter, r *http.Request) {
	campaignID, respondentID, ok := h.ids(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get response")
	defer cancel()

	c, _, err := h.Engine.Authorize(ctx, actor, campaignID, campaignpolicy.ActionViewResponses)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	row, err := h.loadRespondent(ctx, campaignID, respondentID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	row = respondentpolicy.Redact(row, h.Engine.CanViewIdentifyingFields(actor, c))
	if row.IdentifiableFields != nil {
		h.AuditLog.RespondentDetailsViewed(ctx, r, actor, campaignID, 1)
	}
	apiresp.OK(w, viewOf(row, questionIndex(c.Questions)))
}

// HandleDelete handles DELETE /api/campaigns/{id}/responses/{rid}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	campaignID, respondentID, ok := h.ids(w, r)
	if !ok {
		return
	}
	actor := authz.ActorFromRequest(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete response")
	defer cancel()

	if _, _, err := h.Engine.Authorize(ctx, actor, campaignID, campaignpolicy.ActionDeleteResponses); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if _, err := h.loadRespondent(ctx, campaignID, respondentID); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := h.Respondents.Delete(ctx, respondentID); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	h.AuditLog.RespondentDeleted(ctx, r, actor, campaignID, respondentID)
	apiresp.NoContent(w)
}

func (h *Handler) ids(w http.ResponseWriter, r *http.Request) (campaignID, respondentID primitive.ObjectID, ok bool) {
	cid, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return cid, primitive.NilObjectID, false
	}
	rid, err := apiresp.IDParam(r, "rid", "response")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return cid, rid, false
	}
	return cid, rid, true
}

// loadRespondent loads a respondent of campaignID. One that belongs to a
// different campaign is reported as not found.
func (h *Handler) loadRespondent(ctx context.Context, campaignID, respondentID primitive.ObjectID) (models.Respondent, error) {
	row, err := h.Respondents.GetByID(ctx, respondentID)
	if err != nil {
		return models.Respondent{}, err
	}
	if row.CampaignID != campaignID {
		return models.Respondent{}, apperr.NotFound("response not found")
	}
	return row, nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}
