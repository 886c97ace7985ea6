// Package normalize canonicalizes user-supplied strings before they are
// stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role upper-cases a role name. It does not validate it.
func Role(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Status upper-cases a campaign status and reports whether it is known.
func Status(s string) (models.CampaignStatus, bool) {
	st := models.CampaignStatus(strings.ToUpper(strings.TrimSpace(s)))
	return st, st.Valid()
}
