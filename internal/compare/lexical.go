package compare

import (
	"strings"

	"driftlab/domain/metric"
)

// Memorization score weighting. Fixed policy, not tunable per call: the
// composite blends exact reproduction, prefix retention and token overlap
// in a 0.4/0.3/0.3 split.
const (
	memorizationExactWeight   = 0.4
	memorizationPrefixWeight  = 0.3
	memorizationOverlapWeight = 0.3
)

// DefaultMemorizationThreshold marks a completion as memorized.
const DefaultMemorizationThreshold = 0.8

// Lexical computes exact, token, edit and prefix comparisons between two
// strings.
type Lexical struct{}

// NewLexical creates a lexical comparator.
func NewLexical() *Lexical {
	return &Lexical{}
}

// ExactMatch returns 1.0 if the strings are equal, else 0.0. When
// normalize is set, runs of whitespace collapse to single spaces and the
// ends are trimmed before comparison. Case is never folded.
func (l *Lexical) ExactMatch(a, b string, normalize bool) metric.Result {
	if normalize {
		a = collapseWhitespace(a)
		b = collapseWhitespace(b)
	}

	value := 0.0
	if a == b {
		value = 1.0
	}

	diff := len([]rune(a)) - len([]rune(b))
	if diff < 0 {
		diff = -diff
	}

	return metric.Result{
		Name:  "exact_match",
		Value: value,
		Meta:  metric.ExactMatchMeta{LengthDiff: diff},
	}
}

// TokenOverlap returns the Jaccard similarity between the token sets of
// the two strings. Both empty yields 1.0; exactly one empty yields 0.0.
func (l *Lexical) TokenOverlap(a, b string) metric.Result {
	setA := tokenSet(a)
	setB := tokenSet(b)

	shared := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			shared++
		}
	}

	var value float64
	switch {
	case len(setA) == 0 && len(setB) == 0:
		value = 1.0
	case len(setA) == 0 || len(setB) == 0:
		value = 0.0
	default:
		union := len(setA) + len(setB) - shared
		value = float64(shared) / float64(union)
	}

	return metric.Result{
		Name:  "token_overlap",
		Value: value,
		Meta: metric.TokenOverlapMeta{
			UniqueTokensA: len(setA),
			UniqueTokensB: len(setB),
			SharedTokens:  shared,
		},
	}
}

// EditDistance returns the character-level Levenshtein distance with unit
// costs. When normalize is set the distance is divided by the longer
// length (0 if both strings are empty). O(len(a)*len(b)) time; memory is
// kept to two rows.
func (l *Lexical) EditDistance(a, b string, normalize bool) metric.Result {
	ra := []rune(a)
	rb := []rune(b)
	m, n := len(ra), len(rb)

	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
			} else {
				del := prev[j]
				ins := curr[j-1]
				sub := prev[j-1]
				best := del
				if ins < best {
					best = ins
				}
				if sub < best {
					best = sub
				}
				curr[j] = 1 + best
			}
		}
		prev, curr = curr, prev
	}

	value := float64(prev[n])
	if normalize && max(m, n) > 0 {
		value /= float64(max(m, n))
	}

	return metric.Result{
		Name:  "levenshtein",
		Value: value,
		Meta:  metric.EditDistanceMeta{LengthA: m, LengthB: n},
	}
}

// PrefixMatch measures the longest common character prefix and the count
// of leading whitespace-tokens that match positionally. The word-level
// count is the reported value; the character count rides in metadata.
func (l *Lexical) PrefixMatch(a, b string) metric.Result {
	ra := []rune(a)
	rb := []rune(b)

	charMatch := 0
	for i := 0; i < min(len(ra), len(rb)); i++ {
		if ra[i] != rb[i] {
			break
		}
		charMatch++
	}

	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	wordMatch := 0
	for i := 0; i < min(len(wordsA), len(wordsB)); i++ {
		if wordsA[i] != wordsB[i] {
			break
		}
		wordMatch++
	}

	return metric.Result{
		Name:  "prefix_match",
		Value: float64(wordMatch),
		Meta: metric.PrefixMatchMeta{
			CharMatch:  charMatch,
			WordMatch:  wordMatch,
			TotalChars: max(len(ra), len(rb)),
		},
	}
}

// MemorizationScore blends exact match, word-prefix retention and token
// overlap into a composite in [0, 1]. Metadata records whether the score
// clears the supplied threshold.
func (l *Lexical) MemorizationScore(generated, canonical string, threshold float64) metric.Result {
	exact := l.ExactMatch(generated, canonical, true).Value
	prefix := l.PrefixMatch(generated, canonical)
	overlap := l.TokenOverlap(generated, canonical).Value

	prefixMeta := prefix.Meta.(metric.PrefixMatchMeta)
	canonicalWords := len(strings.Fields(canonical))
	prefixRetention := float64(prefixMeta.WordMatch) / float64(max(canonicalWords, 1))

	score := memorizationExactWeight*exact +
		memorizationPrefixWeight*prefixRetention +
		memorizationOverlapWeight*overlap

	return metric.Result{
		Name:  "memorization",
		Value: score,
		Meta: metric.MemorizationMeta{
			ExactMatch:   exact,
			PrefixWords:  prefixMeta.WordMatch,
			TokenOverlap: overlap,
			IsMemorized:  score >= threshold,
		},
	}
}
