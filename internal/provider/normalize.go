package provider

import (
	"strings"
	"unicode"
)

// NormalizeStatName turns an upstream stat or category label into a stable
// lookup key: periods are stripped, camel-case and acronym boundaries become
// underscores, spaces and hyphens become underscores, and the result is
// lower-cased.
//
//	"Total Tackles"   -> "total_tackles"
//	"Q.B. Rating"     -> "qb_rating"
//	"netPassingYards" -> "net_passing_yards"
func NormalizeStatName(name string) string {
	runes := []rune(strings.ReplaceAll(strings.TrimSpace(name), ".", ""))

	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}
		switch {
		case r == ' ' || r == '-' || r == '/':
			b.WriteRune('_')
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '_' })
	return strings.Join(parts, "_")
}
