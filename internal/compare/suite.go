package compare

import "driftlab/domain/metric"

// Metric names in the collection contract. Ordering and naming are stable;
// downstream reporting keys on them.
const (
	MetricExactMatch      = "exact_match"
	MetricTokenOverlap    = "token_overlap"
	MetricLevenshtein     = "levenshtein"
	MetricPrefixMatch     = "prefix_match"
	MetricMemorization    = "memorization"
	MetricKLDivergence    = "kl_divergence"
	MetricJSDivergence    = "js_divergence"
	MetricCosine          = "cosine_similarity"
	MetricStructural      = "structural_similarity"
	MetricDivergencePoint = "divergence_point"
	MetricStability       = "stability"
)

// Suite runs every comparator over one (generated, canonical) pair and
// assembles a named metric collection.
type Suite struct {
	lexical      *Lexical
	distribution *Distribution
	structural   *Structural
	trajectory   *Trajectory
}

// NewSuite creates a metric suite wired with all four comparators.
func NewSuite() *Suite {
	return &Suite{
		lexical:      NewLexical(),
		distribution: NewDistribution(),
		structural:   NewStructural(),
		trajectory:   NewTrajectory(),
	}
}

// ComputeAllMetrics invokes every comparator over the pair and returns the
// collection keyed by the Metric* constants. The stability key is present
// iff additionalSamples is non-empty; the generated text itself joins the
// sample pool for that computation. Divergence metrics take the canonical
// text as reference, always.
func (s *Suite) ComputeAllMetrics(generated, canonical string, additionalSamples []string) *metric.Collection {
	c := metric.NewCollection()

	c.Add(s.lexical.ExactMatch(generated, canonical, true))
	c.Add(s.lexical.TokenOverlap(generated, canonical))
	c.Add(s.lexical.EditDistance(generated, canonical, true))
	c.Add(s.lexical.PrefixMatch(generated, canonical))
	c.Add(s.lexical.MemorizationScore(generated, canonical, DefaultMemorizationThreshold))

	c.Add(s.distribution.KLDivergence(canonical, generated, DefaultSmoothing))
	c.Add(s.distribution.JSDivergence(canonical, generated))

	c.Add(s.structural.CosineSimilarityBOW(generated, canonical))
	c.Add(s.structural.StructuralSimilarity(generated, canonical))

	c.Add(s.trajectory.DivergencePoint(generated, canonical))

	if len(additionalSamples) > 0 {
		pool := make([]string, 0, len(additionalSamples)+1)
		pool = append(pool, additionalSamples...)
		pool = append(pool, generated)
		c.Add(s.trajectory.StabilityScore(pool, canonical))
	}

	return c
}

// Summarize projects a collection down to a plain name -> value mapping.
func (s *Suite) Summarize(c *metric.Collection) map[string]float64 {
	return c.Summarize()
}
