package search

import "strings"

// Score returns the fraction of usable query tokens found as substrings of
// text, case-insensitively. A query with no usable tokens scores 0.
func Score(query, text string) float64 {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return 0
	}

	haystack := strings.ToLower(text)
	if haystack == "" {
		return 0
	}

	hits := 0
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}
