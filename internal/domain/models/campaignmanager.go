// internal/domain/models/campaignmanager.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Permission is an independently grantable manager capability.
// Permissions are flags, not levels: no permission implies another.
type Permission string

const (
	PermViewResults       Permission = "VIEW_RESULTS"
	PermEditCampaign      Permission = "EDIT_CAMPAIGN"
	PermManageRespondents Permission = "MANAGE_RESPONDENTS"
)

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p == PermViewResults || p == PermEditCampaign || p == PermManageRespondents
}

// CampaignManager is the membership edge delegating a permission set on one
// campaign to one user. Exactly one document per (campaign_id, user_id).
// The edge carries no authority until AcceptedAt is set.
type CampaignManager struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID  primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	InvitedByID primitive.ObjectID `bson:"invited_by_id" json:"invited_by_id"`
	Permissions []Permission       `bson:"permissions" json:"permissions"`
	AcceptedAt  *time.Time         `bson:"accepted_at" json:"accepted_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Accepted reports whether the invitation has been accepted.
func (m CampaignManager) Accepted() bool { return m.AcceptedAt != nil }

// Has reports whether the edge grants p. It does not look at acceptance.
func (m CampaignManager) Has(p Permission) bool {
	for _, have := range m.Permissions {
		if have == p {
			return true
		}
	}
	return false
}
