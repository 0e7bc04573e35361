package helper

import (
	"strings"
	"unicode"
)

const DefaultSlugMaxLen = 160

// GenerateSlug normalises s into a slug:
// - lower-case
// - spaces and non-alnum become "-"
// - runs of "-" collapse into one
// - "-" trimmed at both ends
func GenerateSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
