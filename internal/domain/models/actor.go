// internal/domain/models/actor.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a system-wide classification independent of any specific campaign.
type Role string

const (
	RoleSuperAdmin      Role = "SUPER_ADMIN"
	RoleAdmin           Role = "ADMIN"
	RoleCampaignCreator Role = "CAMPAIGN_CREATOR"
	RoleCampaignManager Role = "CAMPAIGN_MANAGER"
	RoleRespondent      Role = "RESPONDENT"
)

// Roles lists every global role, most privileged first.
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleCampaignCreator,
	RoleCampaignManager,
	RoleRespondent,
}

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Actor is the authenticated identity issuing a request.
// The zero Actor is an unauthenticated guest.
type Actor struct {
	ID   primitive.ObjectID
	Role Role
}

// Guest returns the unauthenticated actor.
func Guest() Actor { return Actor{} }

// IsGuest reports whether the actor carries no identity.
func (a Actor) IsGuest() bool { return a.ID.IsZero() }
