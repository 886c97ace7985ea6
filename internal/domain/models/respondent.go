// internal/domain/models/respondent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdentifiableFields holds the respondent-identifying data that the privacy
// gate controls.
type IdentifiableFields struct {
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Answer is one respondent's answer to one question.
type Answer struct {
	QuestionID primitive.ObjectID `bson:"question_id" json:"question_id"`
	Value      any                `bson:"value" json:"answer"`
}

// Respondent is one submission attempt against a campaign.
//
// NOTE:
//   - Anonymous is decided at creation (no identifiable fields supplied) and
//     is never recomputed afterwards.
//   - SubmittedAt == nil marks an abandoned attempt; it only counts toward
//     completion-rate denominators.
type Respondent struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CampaignID         primitive.ObjectID  `bson:"campaign_id" json:"campaign_id"`
	RespondentToken    string              `bson:"respondent_token" json:"respondent_token"`
	Anonymous          bool                `bson:"anonymous" json:"anonymous"`
	IdentifiableFields *IdentifiableFields `bson:"identifiable_fields,omitempty" json:"identifiable_fields"`
	ConsentGiven       bool                `bson:"consent_given" json:"consent_given"`
	Answers            []Answer            `bson:"answers" json:"answers"`

	StartedAt   time.Time  `bson:"started_at" json:"started_at"`
	SubmittedAt *time.Time `bson:"submitted_at" json:"submitted_at"`
}

// Submitted reports whether the attempt was completed.
func (r Respondent) Submitted() bool { return r.SubmittedAt != nil }
