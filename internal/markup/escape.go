// Package markup prepares free text for embedding in XML request payloads.
package markup

import "strings"

var entities = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Escape replaces &, <, >, ' and " with their named entities in a single
// left-to-right pass. All other characters are left untouched.
func Escape(s string) string {
	return entities.Replace(s)
}
