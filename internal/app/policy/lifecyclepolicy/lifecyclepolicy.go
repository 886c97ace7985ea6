// Package lifecyclepolicy encodes the campaign state machine.
//
// Transitions:
//   - DRAFT -> PUBLISHED (publish; requires at least one question)
//   - PUBLISHED -> CLOSED (close)
//
// ARCHIVED is terminal and has no public transition into or out of it. It is
// treated as CLOSED for access purposes. No transition ever moves backward.
package lifecyclepolicy

import (
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to models.CampaignStatus) bool {
	switch from {
	case models.StatusDraft:
		return to == models.StatusPublished
	case models.StatusPublished:
		return to == models.StatusClosed
	default:
		return false
	}
}

// IsOwnerOrAdmin reports whether the actor created the campaign or is a
// global admin. Managers never qualify, whatever their permissions.
func IsOwnerOrAdmin(c models.Campaign, a models.Actor) bool {
	if authz.IsGlobalAdmin(a) {
		return true
	}
	return !a.IsGuest() && c.CreatorID == a.ID
}

// CheckPublish validates publishing c on behalf of a.
//
// Checks run in order: authorization, then status, then questions.
func CheckPublish(c models.Campaign, a models.Actor) error {
	if !IsOwnerOrAdmin(c, a) {
		return apperr.Forbidden("only the campaign creator or an admin can publish this campaign")
	}
	if !CanTransition(c.Status, models.StatusPublished) {
		return apperr.WithMetadata(apperr.KindInvalidState, "only draft campaigns can be published",
			map[string]string{"status": string(c.Status)})
	}
	if len(c.Questions) == 0 {
		return apperr.Precondition("campaign must have at least one question to be published")
	}
	return nil
}

// CheckClose validates closing c on behalf of a.
func CheckClose(c models.Campaign, a models.Actor) error {
	if !IsOwnerOrAdmin(c, a) {
		return apperr.Forbidden("only the campaign creator or an admin can close this campaign")
	}
	if !CanTransition(c.Status, models.StatusClosed) {
		return apperr.WithMetadata(apperr.KindInvalidState, "only published campaigns can be closed",
			map[string]string{"status": string(c.Status)})
	}
	return nil
}

// CheckAcceptingResponses reports whether c accepts new submissions.
func CheckAcceptingResponses(c models.Campaign) error {
	if c.Status != models.StatusPublished {
		return apperr.WithMetadata(apperr.KindNotAcceptingResponses, "campaign is not accepting responses",
			map[string]string{"status": string(c.Status)})
	}
	return nil
}

// IsClosed reports whether the status behaves as CLOSED for access.
func IsClosed(s models.CampaignStatus) bool {
	return s == models.StatusClosed || s == models.StatusArchived
}
