package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinTokenLength is the shortest query token that takes part in lexical
// matching.
const MinTokenLength = 3

// NormalizeQuery lowercases the input, keeps letters, digits and single
// spaces, and drops everything else.
func NormalizeQuery(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	input = strings.ToLower(input)

	b := strings.Builder{}
	b.Grow(len(input))
	lastWasSpace := false

	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if unicode.IsSpace(r) {
			if b.Len() == 0 || lastWasSpace {
				continue
			}
			b.WriteByte(' ')
			lastWasSpace = true
			continue
		}
		// drop all other characters
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// IsUsableQuery reports whether the query carries any letter or digit.
func IsUsableQuery(input string) bool {
	return NormalizeQuery(input) != ""
}

// Tokenize splits the query on whitespace, lowercases each token and drops
// tokens shorter than MinTokenLength.
func Tokenize(query string) []string {
	fields := strings.Fields(query)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) < MinTokenLength {
			continue
		}
		out = append(out, strings.ToLower(f))
	}
	return out
}
