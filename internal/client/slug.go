package client

import (
	"strings"
	"unicode"
)

const DefaultSlugSeparator = "-"

// Slugify lowercases text and joins its runs of letters, digits and combining
// marks with "-". Underscores count as separators.
func Slugify(text string) string {
	return SlugifyWithSeparator(text, DefaultSlugSeparator)
}

func SlugifyWithSeparator(text, separator string) string {
	var b strings.Builder
	pending := false

	for _, r := range strings.ToLower(text) {
		if !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteString(separator)
		}
		pending = false
		b.WriteRune(r)
	}

	return b.String()
}
