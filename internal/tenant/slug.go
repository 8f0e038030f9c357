package tenant

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe slug base from a tenant display name:
// lower-cased, non-alphanumeric characters stripped, whitespace
// collapsed to single hyphens. Uniqueness suffixes are handled
// separately at creation time.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		default:
			// apostrophes, punctuation etc. are dropped entirely
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		slug = "shop"
	}
	return slug
}
