// internal/app/system/authz/roles.go
package authz

import "github.com/dalemusser/campaignhub/internal/domain/models"

// IsGlobalAdmin reports whether the actor holds SUPER_ADMIN or ADMIN.
// Global admins bypass every per-campaign check.
func IsGlobalAdmin(a models.Actor) bool {
	if a.IsGuest() {
		return false
	}
	return a.Role == models.RoleSuperAdmin || a.Role == models.RoleAdmin
}

// IsSuperAdmin reports whether the actor holds SUPER_ADMIN.
func IsSuperAdmin(a models.Actor) bool {
	return !a.IsGuest() && a.Role == models.RoleSuperAdmin
}

// CanAuthorCampaigns reports whether the actor may create new campaigns.
func CanAuthorCampaigns(a models.Actor) bool {
	return HasAnyRole(a, models.RoleSuperAdmin, models.RoleAdmin, models.RoleCampaignCreator)
}

// HasAnyRole reports whether the actor holds any of the given roles.
// Guests hold no role.
func HasAnyRole(a models.Actor, roles ...models.Role) bool {
	if a.IsGuest() {
		return false
	}
	for _, want := range roles {
		if a.Role == want {
			return true
		}
	}
	return false
}
