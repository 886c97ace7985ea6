// Package invitepolicy validates the manager invitation workflow.
//
// An edge is created INVITED (AcceptedAt unset) and moves to ACCEPTED once
// the invited user accepts. There is no decline or expiry state.
//
// Authorization:
//   - Invite, update permissions, remove: creator or global admin only.
//     Managers cannot invite other managers, even with EDIT_CAMPAIGN.
//   - Accept: only the invited user.
package invitepolicy

import (
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/policy/lifecyclepolicy"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// CanManageManagers reports whether a may invite, update or remove managers.
func CanManageManagers(c models.Campaign, a models.Actor) bool {
	return lifecyclepolicy.IsOwnerOrAdmin(c, a)
}

// NormalizePermissions deduplicates perms, keeping first-seen order.
// Unknown bits and an empty set are rejected.
func NormalizePermissions(perms []models.Permission) ([]models.Permission, error) {
	if len(perms) == 0 {
		return nil, apperr.Precondition("at least one permission is required")
	}
	seen := make(map[models.Permission]bool, len(perms))
	out := make([]models.Permission, 0, len(perms))
	for _, p := range perms {
		p = models.Permission(strings.ToUpper(strings.TrimSpace(string(p))))
		if !p.Valid() {
			return nil, apperr.WithMetadata(apperr.KindPrecondition, "unknown permission",
				map[string]string{"permission": string(p)})
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}

// CheckInvite validates an invitation. target is the user matched by email
// (nil if none), existing is the current edge for (campaign, target) if any.
//
// Checks run in order: authorization, target lookup, duplicate edge,
// creator-as-manager, permission set. It returns the normalized permissions.
func CheckInvite(c models.Campaign, inviter models.Actor, target *models.User, existing *models.CampaignManager, perms []models.Permission) ([]models.Permission, error) {
	if !CanManageManagers(c, inviter) {
		return nil, apperr.Forbidden("only the campaign creator or an admin can invite managers")
	}
	if target == nil {
		return nil, apperr.NotFound("user not found; ask them to register first")
	}
	if existing != nil {
		return nil, apperr.Conflict("user is already a manager for this campaign")
	}
	if target.ID == c.CreatorID {
		return nil, apperr.Precondition("campaign creator cannot be added as a manager")
	}
	return NormalizePermissions(perms)
}

// CheckAccept validates accepting edge on behalf of a. edge is the actor's
// own edge on the campaign, or nil.
func CheckAccept(a models.Actor, edge *models.CampaignManager) error {
	if a.IsGuest() || edge == nil || edge.UserID != a.ID {
		return apperr.NotFound("invitation not found")
	}
	if edge.Accepted() {
		return apperr.New(apperr.KindAlreadyAccepted, "invitation already accepted")
	}
	return nil
}

// CheckManage validates updating or removing edge on behalf of a.
func CheckManage(c models.Campaign, a models.Actor, edge *models.CampaignManager) error {
	if !CanManageManagers(c, a) {
		return apperr.Forbidden("only the campaign creator or an admin can manage managers")
	}
	if edge == nil || edge.CampaignID != c.ID {
		return apperr.NotFound("manager not found")
	}
	return nil
}
