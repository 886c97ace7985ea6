// internal/domain/models/question.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionType selects how a question is rendered and aggregated.
type QuestionType string

const (
	QuestionShortText      QuestionType = "SHORT_TEXT"
	QuestionLongText       QuestionType = "LONG_TEXT"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionCheckbox       QuestionType = "CHECKBOX"
	QuestionRating         QuestionType = "RATING"
	QuestionDate           QuestionType = "DATE"
	QuestionEmail          QuestionType = "EMAIL"
	QuestionNumber         QuestionType = "NUMBER"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionShortText, QuestionLongText, QuestionMultipleChoice, QuestionCheckbox,
		QuestionRating, QuestionDate, QuestionEmail, QuestionNumber:
		return true
	}
	return false
}

// HasDistribution reports whether answers to this type are tallied per value.
func (t QuestionType) HasDistribution() bool {
	return t == QuestionMultipleChoice || t == QuestionCheckbox || t == QuestionRating
}

// Question belongs to exactly one campaign. Order is ascending display order.
type Question struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	Text       string             `bson:"text" json:"text"`
	Type       QuestionType       `bson:"type" json:"type"`
	Options    map[string]any     `bson:"options,omitempty" json:"options,omitempty"`
	Required   bool               `bson:"required" json:"required"`
	Order      int                `bson:"order" json:"order"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// QuestionOrder is one entry of a reorder batch.
type QuestionOrder struct {
	ID    primitive.ObjectID `json:"id"`
	Order int                `json:"order"`
}
