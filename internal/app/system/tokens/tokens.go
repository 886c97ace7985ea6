// Package tokens generates the opaque public identifiers used by campaigns
// and respondents.
package tokens

import (
	"strings"

	"github.com/google/uuid"
)

// ShareableLinkLength is the number of hex characters in a shareable link.
const ShareableLinkLength = 12

// ShareableLink returns a fresh public token for a published campaign.
// Uniqueness across campaigns is enforced by the store's unique index.
func ShareableLink() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:ShareableLinkLength]
}

// RespondentToken returns the token handed back to a respondent after a
// submission.
func RespondentToken() string {
	return uuid.NewString()
}

// ExportFileName returns a unique file name for an export artifact.
func ExportFileName(ext string) string {
	return "export-" + uuid.NewString() + "." + strings.TrimPrefix(ext, ".")
}
