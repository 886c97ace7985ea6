// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowTables()
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Number).OnElements("td", "th")
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "td", "th")
	p.AllowStyles("width", "text-align").OnElements("table", "td", "th")
	p.AllowElements("u", "s", "mark")
	return p
}

// Sanitize strips everything but safe formatting markup from rich text such
// as campaign descriptions.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}
	return richPolicy.Sanitize(input)
}

// PlainText removes all markup and returns unescaped text, trimmed.
// Used for titles, question text and choice labels.
func PlainText(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(input)))
}
