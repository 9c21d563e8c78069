package compare

import (
	"strings"

	"driftlab/domain/metric"

	"gonum.org/v1/gonum/floats"
)

// Structural approximates semantic similarity through bag-of-words cosine
// and shallow structural features.
type Structural struct{}

// NewStructural creates a structural comparator.
func NewStructural() *Structural {
	return &Structural{}
}

// CosineSimilarityBOW builds raw integer count vectors over the shared
// token vocabulary (no smoothing, no normalization) and returns their
// cosine similarity. 0 if either vector has zero norm; empty shared
// vocabulary yields 1.0 (two empty texts are identical).
func (s *Structural) CosineSimilarityBOW(a, b string) metric.Result {
	dist := NewDistribution()
	vocab := dist.sharedVocabulary(a, b)
	if len(vocab) == 0 {
		return metric.Result{Name: "cosine_similarity", Value: 1.0, Meta: metric.CosineMeta{}}
	}

	vecA := countVector(a, vocab)
	vecB := countVector(b, vocab)

	normA := floats.Norm(vecA, 2)
	normB := floats.Norm(vecB, 2)

	value := 0.0
	if normA > 0 && normB > 0 {
		value = floats.Dot(vecA, vecB) / (normA * normB)
	}

	return metric.Result{
		Name:  "cosine_similarity",
		Value: value,
		Meta:  metric.CosineMeta{VocabSize: len(vocab)},
	}
}

func countVector(text string, vocab []string) []float64 {
	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		counts[tok]++
	}
	vec := make([]float64, len(vocab))
	for i, tok := range vocab {
		vec[i] = float64(counts[tok])
	}
	return vec
}

// StructuralSimilarity extracts five shallow features per text and
// averages per-feature agreement 1 - |f1-f2| / max(f1, f2, 1). Captures
// register and rhythm independent of lexical content; deliberately coarse.
func (s *Structural) StructuralSimilarity(a, b string) metric.Result {
	featA := extractFeatures(a)
	featB := extractFeatures(b)

	pairs := [][2]float64{
		{float64(featA.Sentences), float64(featB.Sentences)},
		{float64(featA.Words), float64(featB.Words)},
		{float64(featA.Commas), float64(featB.Commas)},
		{float64(featA.Periods), float64(featB.Periods)},
		{featA.MeanWordLen, featB.MeanWordLen},
	}

	sum := 0.0
	for _, pair := range pairs {
		f1, f2 := pair[0], pair[1]
		maxVal := f1
		if f2 > maxVal {
			maxVal = f2
		}
		if maxVal < 1 {
			maxVal = 1
		}
		diff := f1 - f2
		if diff < 0 {
			diff = -diff
		}
		sum += 1.0 - diff/maxVal
	}

	return metric.Result{
		Name:  "structural_similarity",
		Value: sum / float64(len(pairs)),
		Meta:  metric.StructuralMeta{FeaturesA: featA, FeaturesB: featB},
	}
}

// extractFeatures computes sentence count (split on runs of .!?), word
// count, comma count, period count and mean word length.
func extractFeatures(text string) metric.TextFeatures {
	sentences := 1
	inRun := false
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if !inRun {
				sentences++
				inRun = true
			}
		} else {
			inRun = false
		}
	}

	words := strings.Fields(text)
	meanLen := 0.0
	if len(words) > 0 {
		total := 0
		for _, w := range words {
			total += len([]rune(w))
		}
		meanLen = float64(total) / float64(len(words))
	}

	return metric.TextFeatures{
		Sentences:   sentences,
		Words:       len(words),
		Commas:      strings.Count(text, ","),
		Periods:     strings.Count(text, "."),
		MeanWordLen: meanLen,
	}
}
