package responses

import (
	"time"

	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type answerInput struct {
	QuestionID string `json:"questionId" validate:"required,objectid" label:"Question ID"`
	Answer     any    `json:"answer"`
}

type identifiableInput struct {
	Name  string `json:"name" validate:"omitempty,max=100" label:"Name"`
	Email string `json:"email" validate:"omitempty,email" label:"Email"`
	Phone string `json:"phone" validate:"omitempty,max=40" label:"Phone"`
}

type submitRequest struct {
	Answers            []answerInput      `json:"answers" validate:"required,min=1,dive" label:"Answers"`
	IdentifiableFields *identifiableInput `json:"identifiableFields"`
	ConsentGiven       bool               `json:"consentGiven"`
}

type submitResponse struct {
	RespondentToken string `json:"respondentToken"`
}

// answerView is a stored answer joined with the question it answers. A
// deleted question leaves QuestionText empty.
type answerView struct {
	QuestionID   primitive.ObjectID  `json:"question_id"`
	QuestionText string              `json:"question_text"`
	QuestionType models.QuestionType `json:"question_type,omitempty"`
	Answer       any                 `json:"answer"`
}

type respondentView struct {
	ID                 primitive.ObjectID         `json:"id"`
	RespondentToken    string                     `json:"respondent_token"`
	SubmittedAt        *time.Time                 `json:"submitted_at"`
	Anonymous          bool                       `json:"anonymous"`
	ConsentGiven       bool                       `json:"consent_given"`
	IdentifiableFields *models.IdentifiableFields `json:"identifiable_fields"`
	Responses          []answerView               `json:"responses"`
}

// viewOf joins r's answers with the campaign's questions. r must already be
// redacted for the viewer.
func viewOf(r models.Respondent, byID map[primitive.ObjectID]models.Question) respondentView {
	v := respondentView{
		ID:                 r.ID,
		RespondentToken:    r.RespondentToken,
		SubmittedAt:        r.SubmittedAt,
		Anonymous:          r.Anonymous,
		ConsentGiven:       r.ConsentGiven,
		IdentifiableFields: r.IdentifiableFields,
		Responses:          make([]answerView, 0, len(r.Answers)),
	}
	for _, a := range r.Answers {
		av := answerView{QuestionID: a.QuestionID, Answer: a.Value}
		if q, ok := byID[a.QuestionID]; ok {
			av.QuestionText = q.Text
			av.QuestionType = q.Type
		}
		v.Responses = append(v.Responses, av)
	}
	return v
}

func questionIndex(qs []models.Question) map[primitive.ObjectID]models.Question {
	out := make(map[primitive.ObjectID]models.Question, len(qs))
	for _, q := range qs {
		out[q.ID] = q
	}
	return out
}
