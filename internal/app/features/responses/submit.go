package responses

import (
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/system/apiresp"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/app/system/tokens"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleSubmit handles POST /api/campaigns/{id}/responses. It needs no
// account; the returned respondent token is the submitter's receipt.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	campaignID, err := apiresp.IDParam(r, "id", "campaign")
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	var req submitRequest
	if err := apiresp.Decode(r, &req); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Validate(req).Err(); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit response")
	defer cancel()

	c, err := h.Engine.Load(ctx, campaignID)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}
	if err := h.Engine.CheckAcceptingResponses(c); err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	answers, err := collectAnswers(c.Questions, req.Answers)
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	now := h.Now().UTC()
	resp, err := h.Respondents.Create(ctx, models.Respondent{
		CampaignID:         c.ID,
		RespondentToken:    tokens.RespondentToken(),
		IdentifiableFields: identifiableFields(req.IdentifiableFields),
		ConsentGiven:       req.ConsentGiven,
		Answers:            answers,
		StartedAt:          now,
		SubmittedAt:        &now,
	})
	if err != nil {
		apiresp.Error(w, r, h.Log, err)
		return
	}

	h.Log.Info("response submitted",
		zap.String("campaign_id", c.ID.Hex()),
		zap.String("respondent_id", resp.ID.Hex()),
		zap.Bool("anonymous", resp.Anonymous))
	apiresp.Created(w, submitResponse{RespondentToken: resp.RespondentToken})
}

// collectAnswers checks the submitted answers against the campaign's
// questions. Unknown or repeated question ids are rejected, and every
// required question must carry a non-empty answer.
func collectAnswers(questions []models.Question, in []answerInput) ([]models.Answer, error) {
	known := questionIndex(questions)
	answered := make(map[primitive.ObjectID]bool, len(in))
	out := make([]models.Answer, 0, len(in))

	for _, a := range in {
		qid, err := primitive.ObjectIDFromHex(a.QuestionID)
		if err != nil {
			return nil, apperr.InvalidInput("Question ID is invalid.")
		}
		if _, ok := known[qid]; !ok {
			return nil, apperr.WithMetadata(apperr.KindInvalidInput, "answer refers to a question not in this campaign",
				map[string]string{"question_id": qid.Hex()})
		}
		if answered[qid] {
			return nil, apperr.WithMetadata(apperr.KindInvalidInput, "question answered more than once",
				map[string]string{"question_id": qid.Hex()})
		}
		answered[qid] = !isEmptyAnswer(a.Answer)
		out = append(out, models.Answer{QuestionID: qid, Value: a.Answer})
	}

	for _, q := range questions {
		if q.Required && !answered[q.ID] {
			return nil, apperr.WithMetadata(apperr.KindPrecondition, `Question "`+q.Text+`" is required`,
				map[string]string{"question_id": q.ID.Hex()})
		}
	}
	return out, nil
}

func isEmptyAnswer(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	}
	return false
}

// identifiableFields returns nil when nothing identifying was supplied, so
// the respondent is stored as anonymous.
func identifiableFields(in *identifiableInput) *models.IdentifiableFields {
	if in == nil {
		return nil
	}
	f := models.IdentifiableFields{
		Name:  htmlsanitize.PlainText(in.Name),
		Email: normalize.Email(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
	if f.Name == "" && f.Email == "" && f.Phone == "" {
		return nil
	}
	return &f
}
