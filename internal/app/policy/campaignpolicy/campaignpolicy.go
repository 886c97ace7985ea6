// Package campaignpolicy decides whether an actor may perform an action on a
// campaign.
//
// Authorization is a strict priority ladder evaluated in fixed order; the
// first rung that matches decides:
//   - Global admin (SUPER_ADMIN, ADMIN): every action
//   - Creator: every action except the admin-only ones
//   - Accepted manager: only the actions implied by their permission bits
//   - PUBLIC + PUBLISHED campaign: view_campaign for anyone, including guests
//   - Otherwise: deny with reason "no access"
//
// A manager whose edge does not grant the action is denied even though they
// have a relationship with the campaign. An invitation that has not been
// accepted carries no authority at all.
//
// Every function here is a pure predicate over an already-loaded campaign
// snapshot and never touches the database.
package campaignpolicy

import (
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action names an operation on a campaign.
type Action string

const (
	ActionViewCampaign                   Action = "view_campaign"
	ActionEditCampaign                   Action = "edit_campaign"
	ActionEditQuestions                  Action = "edit_questions"
	ActionDeleteCampaign                 Action = "delete_campaign"
	ActionPublishCampaign                Action = "publish_campaign"
	ActionCloseCampaign                  Action = "close_campaign"
	ActionManageManagers                 Action = "manage_managers"
	ActionViewManagers                   Action = "view_managers"
	ActionViewAnalytics                  Action = "view_analytics"
	ActionExportResults                  Action = "export_results"
	ActionViewResponses                  Action = "view_responses"
	ActionDeleteResponses                Action = "delete_responses"
	ActionSetRespondentDetailsVisibility Action = "set_respondent_details_visibility"
	ActionViewAuditLog                   Action = "view_audit_log"
)

// Actions lists every action, in declaration order.
var Actions = []Action{
	ActionViewCampaign,
	ActionEditCampaign,
	ActionEditQuestions,
	ActionDeleteCampaign,
	ActionPublishCampaign,
	ActionCloseCampaign,
	ActionManageManagers,
	ActionViewManagers,
	ActionViewAnalytics,
	ActionExportResults,
	ActionViewResponses,
	ActionDeleteResponses,
	ActionSetRespondentDetailsVisibility,
	ActionViewAuditLog,
}

// adminOnly actions are denied to creators.
var adminOnly = map[Action]bool{
	ActionSetRespondentDetailsVisibility: true,
	ActionViewAuditLog:                   true,
}

// managerGrants maps each permission bit to the actions it unlocks.
var managerGrants = map[models.Permission][]Action{
	models.PermEditCampaign:      {ActionEditCampaign, ActionEditQuestions},
	models.PermViewResults:       {ActionViewAnalytics, ActionExportResults},
	models.PermManageRespondents: {ActionViewResponses, ActionDeleteResponses},
}

// anyManager actions are allowed to every accepted manager.
var anyManager = map[Action]bool{
	ActionViewCampaign: true,
	ActionViewManagers: true,
}

// Relationship is the rung of the ladder an actor resolves to on a campaign.
type Relationship string

const (
	RelAdmin   Relationship = "admin"
	RelCreator Relationship = "creator"
	RelManager Relationship = "manager"
	RelPublic  Relationship = "public"
	RelNone    Relationship = "none"
)

// Decision is the outcome of Decide.
type Decision struct {
	Allowed bool
	Reason  string
	Via     Relationship
}

// RelationshipOf resolves the actor's standing on the campaign, ignoring the
// action. A pending invitation resolves the same as no edge at all.
func RelationshipOf(a models.Actor, c models.Campaign) Relationship {
	switch {
	case authz.IsGlobalAdmin(a):
		return RelAdmin
	case !a.IsGuest() && a.ID == c.CreatorID:
		return RelCreator
	}
	if m, ok := c.ManagerFor(a.ID); ok && m.Accepted() {
		return RelManager
	}
	if isPubliclyVisible(c) {
		return RelPublic
	}
	return RelNone
}

// Decide evaluates the ladder for (actor, campaign, action).
func Decide(a models.Actor, c models.Campaign, action Action) Decision {
	// 1. global admin
	if authz.IsGlobalAdmin(a) {
		return Decision{Allowed: true, Reason: "global admin", Via: RelAdmin}
	}

	// 2. creator
	if !a.IsGuest() && a.ID == c.CreatorID {
		if adminOnly[action] {
			return Decision{Allowed: false, Reason: "action requires an admin", Via: RelCreator}
		}
		return Decision{Allowed: true, Reason: "campaign creator", Via: RelCreator}
	}

	// 3. accepted manager
	if m, ok := c.ManagerFor(a.ID); ok && m.Accepted() {
		if anyManager[action] {
			return Decision{Allowed: true, Reason: "campaign manager", Via: RelManager}
		}
		for _, p := range m.Permissions {
			for _, granted := range managerGrants[p] {
				if granted == action {
					return Decision{Allowed: true, Reason: "manager permission " + string(p), Via: RelManager}
				}
			}
		}
		return Decision{Allowed: false, Reason: "manager lacks permission for " + string(action), Via: RelManager}
	}

	// 4. public published campaign, read-only
	if isPubliclyVisible(c) && action == ActionViewCampaign {
		return Decision{Allowed: true, Reason: "public campaign", Via: RelPublic}
	}

	// 5. nothing matched
	return Decision{Allowed: false, Reason: "no access", Via: RelNone}
}

// Require converts a denial into a Forbidden error.
func Require(a models.Actor, c models.Campaign, action Action) error {
	return Decide(a, c, action).Err(action)
}

// Err returns nil for an allow and a Forbidden error carrying the reason for
// a deny.
func (d Decision) Err(action Action) error {
	if d.Allowed {
		return nil
	}
	return apperr.WithMetadata(apperr.KindForbidden, d.Reason, map[string]string{
		"action":       string(action),
		"relationship": string(d.Via),
	})
}

// PublicOnly reports whether a view_campaign decision only grants the
// public-safe projection.
func (d Decision) PublicOnly() bool {
	return d.Allowed && d.Via == RelPublic
}

func isPubliclyVisible(c models.Campaign) bool {
	return c.Visibility == models.VisibilityPublic && c.Status == models.StatusPublished
}

// ListScope describes which campaigns an actor can list.
type ListScope struct {
	// All indicates the actor can list every campaign.
	All bool
	// CreatorID restricts the list to campaigns the actor created.
	CreatorID primitive.ObjectID
	// ManagerUserID restricts the list to campaigns where the actor holds an
	// accepted manager edge.
	ManagerUserID primitive.ObjectID
	// PublicOnly restricts the list to PUBLIC + PUBLISHED campaigns.
	PublicOnly bool
}

// ListScopeFor determines the list scope by global role.
//
// Authorization:
//   - Admin: all campaigns
//   - Campaign creator: campaigns they created
//   - Campaign manager: campaigns where they hold an accepted edge
//   - Others, including guests: public published campaigns
func ListScopeFor(a models.Actor) ListScope {
	if a.IsGuest() {
		return ListScope{PublicOnly: true}
	}
	switch a.Role {
	case models.RoleSuperAdmin, models.RoleAdmin:
		return ListScope{All: true}
	case models.RoleCampaignCreator:
		return ListScope{CreatorID: a.ID}
	case models.RoleCampaignManager:
		return ListScope{ManagerUserID: a.ID}
	default:
		return ListScope{PublicOnly: true}
	}
}
