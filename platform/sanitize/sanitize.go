// Package sanitize provides text clean-up for user supplied fields.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	entities     = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", "\"", "&#39;", "'")
)

// StripHTML removes HTML tags, decodes the common entities and strips again
// so that encoded tags do not survive.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entities.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text is the clean-up applied to names and free-text fields coming from public forms.
func Text(s string) string {
	return StripHTML(s)
}

// Optional trims s and returns nil for blank input, the storage form of "not set".
func Optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// OptionalText is Optional after Text.
func OptionalText(s string) *string {
	return Optional(Text(s))
}
