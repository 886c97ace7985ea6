package questions

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/policy/campaignpolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// HandleCreate handles POST /api/campaigns/{id}/questions. Without an
// explicit order the question goes after the current last one.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
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
	text := htmlsanitize.PlainText(req.QuestionText)
	if text == "" {
		apiresp.Error(w, r, h.Log, apperr.InvalidInput("Question text is required."))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create question")
	defer cancel()

	if _, _, err := h.Engine.Authorize(ctx, authz.ActorFromRequest(r), campaignID, campaignpolicy.ActionEditQuestions); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	q, err := h.Questions.Create(ctx, models.Question{
		CampaignID: campaignID,
		Text:       text,
		Type:       models.QuestionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Options:    req.Options,
		Required:   req.Required,
	}, req.Order)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	apiresp.Created(w, q)
}
