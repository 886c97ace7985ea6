package managers

import (
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type inviteRequest struct {
	Email       string              `json:"email" validate:"required,email" label:"Email"`
	Permissions []models.Permission `json:"permissions" validate:"required,min=1" label:"Permissions"`
}

type updateRequest struct {
	Permissions []models.Permission `json:"permissions" validate:"required,min=1" label:"Permissions"`
}

type userSummary struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// managerView is an edge with the people on both ends resolved.
type managerView struct {
	models.CampaignManager
	User      *userSummary `json:"user,omitempty"`
	InvitedBy *userSummary `json:"invited_by,omitempty"`
}

type campaignSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
}

// invitationView is a pending edge as seen by the invited user.
type invitationView struct {
	models.CampaignManager
	Campaign  campaignSummary `json:"campaign"`
	InvitedBy *userSummary    `json:"invited_by,omitempty"`
}

func isNotFound(err error) bool { return apperr.Is(err, apperr.KindNotFound) }
