package match

import (
	"strings"
	"unicode"
)

// NormalizeName lower-cases s and drops separators, so "activity_flow",
// "Activity-Flow" and "activityFlow" compare equal.
func NormalizeName(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}
