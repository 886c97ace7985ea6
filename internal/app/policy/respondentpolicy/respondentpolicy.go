// Package respondentpolicy decides whether a viewer may see the fields that
// identify a respondent (name, email, phone).
//
// This gate is separate from campaignpolicy: campaignpolicy decides whether
// the viewer may see responses at all, this package decides how much of each
// response they see.
//
// Authorization:
//   - Global admin: always
//   - Creator: always, regardless of the campaign flag
//   - Accepted manager: only with MANAGE_RESPONDENTS and only while the
//     campaign's AllowManagerViewRespondentDetails flag is set
//   - Others: never
package respondentpolicy

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/domain/models"
)

// CanViewIdentifyingFields evaluates the privacy gate for (actor, campaign).
func CanViewIdentifyingFields(a models.Actor, c models.Campaign) bool {
	if authz.IsGlobalAdmin(a) {
		return true
	}
	if !a.IsGuest() && a.ID == c.CreatorID {
		return true
	}
	m, ok := c.ManagerFor(a.ID)
	if !ok || !m.Accepted() {
		return false
	}
	return m.Has(models.PermManageRespondents) && c.AllowManagerViewRespondentDetails
}

// Redact returns r with identifying fields removed when allowed is false.
// Answers and the anonymous flag are always preserved.
func Redact(r models.Respondent, allowed bool) models.Respondent {
	if allowed {
		return r
	}
	r.IdentifiableFields = nil
	return r
}

// RedactAll applies Redact to every respondent.
func RedactAll(rs []models.Respondent, allowed bool) []models.Respondent {
	if allowed {
		return rs
	}
	out := make([]models.Respondent, len(rs))
	for i, r := range rs {
		out[i] = Redact(r, false)
	}
	return out
}

// IdentifyingColumns are the export columns controlled by the gate.
var IdentifyingColumns = []string{"name", "email", "phone"}

// ExportColumns returns the fixed leading columns of an export. When allowed
// is false the identifying columns are absent, not blank.
func ExportColumns(allowed bool) []string {
	cols := []string{"respondentId", "submittedAt", "anonymous"}
	if allowed {
		cols = append(cols, IdentifyingColumns...)
	}
	return cols
}
