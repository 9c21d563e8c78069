package compare

import (
	"math"
	"sort"

	"driftlab/domain/metric"
)

// DefaultSmoothing keeps every probability entry strictly positive before
// normalization, so KL never divides by zero mass.
const DefaultSmoothing = 1e-10

// Distribution builds token-frequency distributions and computes
// divergence between them.
type Distribution struct{}

// NewDistribution creates a distributional comparator.
func NewDistribution() *Distribution {
	return &Distribution{}
}

// sharedVocabulary returns the sorted union of tokens observed in the two
// texts. Two distributions under comparison must be built over this same
// token universe.
func (d *Distribution) sharedVocabulary(a, b string) []string {
	seen := make(map[string]struct{})
	for _, tok := range tokenize(a) {
		seen[tok] = struct{}{}
	}
	for _, tok := range tokenize(b) {
		seen[tok] = struct{}{}
	}

	vocab := make([]string, 0, len(seen))
	for tok := range seen {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)
	return vocab
}

// frequencyVector counts tokens of text over vocab, adds the smoothing
// constant to every entry, and normalizes to a probability vector.
func (d *Distribution) frequencyVector(text string, vocab []string, smoothing float64) []float64 {
	counts := make(map[string]int)
	for _, tok := range tokenize(text) {
		counts[tok]++
	}

	vec := make([]float64, len(vocab))
	total := 0.0
	for i, tok := range vocab {
		vec[i] = float64(counts[tok]) + smoothing
		total += vec[i]
	}
	for i := range vec {
		vec[i] /= total
	}
	return vec
}

// entropy computes Shannon entropy in nats over a probability vector.
func entropy(p []float64) float64 {
	h := 0.0
	for _, pi := range p {
		if pi > 0 {
			h -= pi * math.Log(pi)
		}
	}
	return h
}

// klTerms computes KL(P||Q) = sum p*log(p/q) over aligned vectors.
func klTerms(p, q []float64) float64 {
	kl := 0.0
	for i := range p {
		if p[i] > 0 && q[i] > 0 {
			kl += p[i] * math.Log(p[i]/q[i])
		}
	}
	return kl
}

// KLDivergence approximates KL(P||Q) between two texts using smoothed
// token-frequency distributions over their shared vocabulary. Reference
// comes first. Non-negative; 0 only when the distributions agree up to
// the smoothing floor. Empty shared vocabulary yields 0.
func (d *Distribution) KLDivergence(reference, comparison string, smoothing float64) metric.Result {
	vocab := d.sharedVocabulary(reference, comparison)
	if len(vocab) == 0 {
		return metric.Result{Name: "kl_divergence", Value: 0.0, Meta: metric.KLDivergenceMeta{}}
	}

	p := d.frequencyVector(reference, vocab, smoothing)
	q := d.frequencyVector(comparison, vocab, smoothing)

	return metric.Result{
		Name:  "kl_divergence",
		Value: klTerms(p, q),
		Meta: metric.KLDivergenceMeta{
			VocabSize: len(vocab),
			EntropyP:  entropy(p),
			EntropyQ:  entropy(q),
		},
	}
}

// JSDivergence computes the Jensen-Shannon divergence, the symmetric
// bounded variant of KL: 0.5*KL(P||M) + 0.5*KL(Q||M) with M = 0.5(P+Q).
// Always finite and within [0, ln 2] even when supports fully disagree.
func (d *Distribution) JSDivergence(a, b string) metric.Result {
	vocab := d.sharedVocabulary(a, b)
	if len(vocab) == 0 {
		return metric.Result{Name: "js_divergence", Value: 0.0, Meta: metric.JSDivergenceMeta{}}
	}

	p := d.frequencyVector(a, vocab, DefaultSmoothing)
	q := d.frequencyVector(b, vocab, DefaultSmoothing)

	m := make([]float64, len(vocab))
	for i := range m {
		m[i] = 0.5 * (p[i] + q[i])
	}

	js := 0.5*klTerms(p, m) + 0.5*klTerms(q, m)

	return metric.Result{
		Name:  "js_divergence",
		Value: js,
		Meta:  metric.JSDivergenceMeta{VocabSize: len(vocab)},
	}
}
