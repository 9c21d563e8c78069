package compare

import (
	"strings"

	"driftlab/domain/metric"

	"github.com/montanaflynn/stats"
)

// Trajectory locates where a generated text first leaves the canonical
// trajectory and how consistently a model tracks a reference across
// repeated generations.
type Trajectory struct {
	lexical *Lexical
}

// NewTrajectory creates a trajectory analyzer.
func NewTrajectory() *Trajectory {
	return &Trajectory{lexical: NewLexical()}
}

// DivergencePoint scans both texts position-by-position at the character
// and word level and reports the index of the first mismatch (the shorter
// length when one is a strict prefix of the other). The reported value is
// the word-level index normalized by canonical word count: the fraction
// of the canonical text correctly reproduced before the first deviation.
func (t *Trajectory) DivergencePoint(generated, canonical string) metric.Result {
	genRunes := []rune(generated)
	canRunes := []rune(canonical)

	charIdx := min(len(genRunes), len(canRunes))
	for i := 0; i < min(len(genRunes), len(canRunes)); i++ {
		if genRunes[i] != canRunes[i] {
			charIdx = i
			break
		}
	}

	genWords := strings.Fields(generated)
	canWords := strings.Fields(canonical)

	wordIdx := min(len(genWords), len(canWords))
	for i := 0; i < min(len(genWords), len(canWords)); i++ {
		if genWords[i] != canWords[i] {
			wordIdx = i
			break
		}
	}

	value := float64(wordIdx) / float64(max(len(canWords), 1))

	return metric.Result{
		Name:  "divergence_point",
		Value: value,
		Meta: metric.DivergencePointMeta{
			CharIndex:  charIdx,
			WordIndex:  wordIdx,
			TotalWords: len(canWords),
		},
	}
}

// StabilityScore measures stability across repeated generations against
// one reference: mean token-overlap similarity scaled by
// (1 - min(variance, 1)). A model is stable only when it is both close to
// the reference and consistent across draws; high mean with high variance
// is penalized. Empty sample list yields 0.
func (t *Trajectory) StabilityScore(responses []string, reference string) metric.Result {
	if len(responses) == 0 {
		return metric.Result{Name: "stability", Value: 0.0, Meta: metric.StabilityMeta{}}
	}

	similarities := make([]float64, len(responses))
	for i, resp := range responses {
		similarities[i] = t.lexical.TokenOverlap(resp, reference).Value
	}

	mean, _ := stats.Mean(similarities)
	variance, _ := stats.PopulationVariance(similarities)

	penalty := variance
	if penalty > 1 {
		penalty = 1
	}
	value := mean * (1.0 - penalty)

	return metric.Result{
		Name:  "stability",
		Value: value,
		Meta: metric.StabilityMeta{
			MeanSimilarity: mean,
			Variance:       variance,
			NumSamples:     len(responses),
		},
	}
}
