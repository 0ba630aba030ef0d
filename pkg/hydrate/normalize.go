package hydrate

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a field or section label into a matching key:
// hyphens become underscores and the result is lowercased.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "-", "_"))
}

// snakeCase converts a Go identifier to lower_snake_case, keeping acronyms
// together: "TracesSampleRate" -> "traces_sample_rate", "PGHost" -> "pg_host".
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
