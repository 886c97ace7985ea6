package questions

import (
	"net/http"
	"strings"

	questionstore "github.com/dalemusser/campaignhub/internal/app/store/questions"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// HandleUpdate handles PATCH /api/campaigns/{id}/questions/{qid}.
// Questions stay editable whatever the campaign status.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	questionID, err := apiresp.IDParam(r, "qid", "question")
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

	var u questionstore.Update
	changed := false
	if req.QuestionText != nil {
		text := htmlsanitize.PlainText(*req.QuestionText)
		if text == "" {
			apiresp.Error(w, r, h.Log, apperr.InvalidInput("Question text is required."))
			return
		}
		u.Text = &text
		changed = true
	}
	if req.Type != nil {
		t := models.QuestionType(strings.ToUpper(strings.TrimSpace(*req.Type)))
		u.Type = &t
		changed = true
	}
	if req.Options != nil {
		u.Options = req.Options
		changed = true
	}
	if req.Required != nil {
		u.Required = req.Required
		changed = true
	}
	if req.Order != nil {
		u.Order = req.Order
		changed = true
	}
	if !changed {
		apiresp.Error(w, r, h.Log, apperr.InvalidInput("nothing to update"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update question")
	defer cancel()

	if _, err := h.loadOwned(ctx, authz.ActorFromRequest(r), campaignID, questionID); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	q, err := h.Questions.Update(ctx, questionID, u)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, q)
}

// HandleDelete handles DELETE /api/campaigns/{id}/questions/{qid}.
// Answers already stored against the question are left in place.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	questionID, err := apiresp.IDParam(r, "qid", "question")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "delete question")
	defer cancel()

	if _, err := h.loadOwned(ctx, authz.ActorFromRequest(r), campaignID, questionID); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := h.Questions.Delete(ctx, questionID); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.NoContent(w)
}

// HandleReorder handles POST /api/campaigns/{id}/questions/reorder with
// {"orders":[{"id":..., "order":...}]}. The whole batch applies or none of
// it does. The response is the campaign's questions in their new order.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	var req reorderRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reorder questions")
	defer cancel()

	if err := h.Engine.ReorderQuestions(ctx, authz.ActorFromRequest(r), campaignID, req.Orders); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	qs, err := h.Questions.ListByCampaign(ctx, campaignID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.OK(w, qs)
}
