// internal/domain/models/campaign.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "DRAFT"
	StatusPublished CampaignStatus = "PUBLISHED"
	StatusClosed    CampaignStatus = "CLOSED"
	StatusArchived  CampaignStatus = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// Visibility controls unauthenticated discoverability, not editing rights.
type Visibility string

const (
	VisibilityPrivate Visibility = "PRIVATE"
	VisibilityPublic  Visibility = "PUBLIC"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// Campaign is a survey owned by its creator.
//
// NOTE:
//   - Questions and Managers live in their own collections. They are filled
//     in only when the campaign is loaded as a membership snapshot and are
//     never persisted on the campaign document.
//   - ShareableLink is assigned once, when the campaign is published.
type Campaign struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	CreatorID   primitive.ObjectID `bson:"creator_id" json:"creator_id"`

	Status                            CampaignStatus `bson:"status" json:"status"`
	Visibility                        Visibility     `bson:"visibility" json:"visibility"`
	AllowManagerViewRespondentDetails bool           `bson:"allow_manager_view_respondent_details" json:"allow_manager_view_respondent_details"`
	ShareableLink                     *string        `bson:"shareable_link,omitempty" json:"shareable_link,omitempty"`

	ScheduledPublishAt *time.Time `bson:"scheduled_publish_at,omitempty" json:"scheduled_publish_at,omitempty"`
	ClosedAt           *time.Time `bson:"closed_at,omitempty" json:"closed_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	Questions []Question        `bson:"-" json:"questions,omitempty"`
	Managers  []CampaignManager `bson:"-" json:"managers,omitempty"`
}

// ManagerFor returns the manager edge held by userID, if any.
// Accepted and pending edges are both returned; callers decide which counts.
func (c Campaign) ManagerFor(userID primitive.ObjectID) (CampaignManager, bool) {
	if userID.IsZero() {
		return CampaignManager{}, false
	}
	for _, m := range c.Managers {
		if m.UserID == userID {
			return m, true
		}
	}
	return CampaignManager{}, false
}

// PublicCampaign is the projection served to anyone, including guests.
// It never carries membership or respondent data.
type PublicCampaign struct {
	ID            primitive.ObjectID `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Status        CampaignStatus     `json:"status"`
	ShareableLink string             `json:"shareable_link,omitempty"`
	Questions     []Question         `json:"questions"`
}

// Public returns the public-safe projection of c.
func (c Campaign) Public() PublicCampaign {
	p := PublicCampaign{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Questions:   c.Questions,
	}
	if c.ShareableLink != nil {
		p.ShareableLink = *c.ShareableLink
	}
	if p.Questions == nil {
		p.Questions = []Question{}
	}
	return p
}

// StatusChange carries the fields written together with a lifecycle
// transition. Nil pointers leave the stored value untouched.
type StatusChange struct {
	ShareableLink *string
	ClosedAt      *time.Time
	UpdatedAt     time.Time
}
