// Package compare quantifies similarity and divergence between a generated
// text and a canonical reference along lexical, distributional, structural
// and trajectory axes. All comparators are stateless and pure; every call
// builds its own intermediate state, so concurrent use with independent
// inputs is safe.
package compare

import "strings"

// tokenize lower-cases and whitespace-splits a text into tokens. This is
// the single tokenization rule shared by every comparator.
func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// tokenSet builds the set of unique tokens in a text.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// collapseWhitespace trims and collapses runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
