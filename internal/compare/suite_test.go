package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseMetricNames = []string{
	MetricExactMatch,
	MetricTokenOverlap,
	MetricLevenshtein,
	MetricPrefixMatch,
	MetricMemorization,
	MetricKLDivergence,
	MetricJSDivergence,
	MetricCosine,
	MetricStructural,
	MetricDivergencePoint,
}

func TestComputeAllMetrics_KeyContract(t *testing.T) {
	suite := NewSuite()

	c := suite.ComputeAllMetrics("generated words here", "canonical words here", nil)
	require.Equal(t, baseMetricNames, c.Names(), "key set and ordering are a stable contract")
	assert.False(t, c.Has(MetricStability), "stability key must be absent without extra samples")
}

func TestComputeAllMetrics_WithSamples(t *testing.T) {
	suite := NewSuite()

	samples := []string{"canonical words here", "canonical words there"}
	c := suite.ComputeAllMetrics("canonical words here", "canonical words here", samples)

	require.True(t, c.Has(MetricStability), "stability key must be present with extra samples")
	assert.Equal(t, append(append([]string{}, baseMetricNames...), MetricStability), c.Names())

	stability, _ := c.Get(MetricStability)
	assert.Greater(t, stability.Value, 0.0)
}

func TestComputeAllMetrics_PerfectReproduction(t *testing.T) {
	suite := NewSuite()
	canonical := "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife."

	c := suite.ComputeAllMetrics(canonical, canonical, nil)

	assert.Equal(t, 1.0, c.Value(MetricExactMatch))
	assert.Equal(t, 1.0, c.Value(MetricTokenOverlap))
	assert.Equal(t, 0.0, c.Value(MetricLevenshtein))
	assert.InDelta(t, 1.0, c.Value(MetricMemorization), 1e-12)
	assert.InDelta(t, 0.0, c.Value(MetricKLDivergence), 1e-9)
	assert.InDelta(t, 1.0, c.Value(MetricCosine), 1e-12)
	assert.InDelta(t, 1.0, c.Value(MetricDivergencePoint), 1e-12)
}

func TestComputeAllMetrics_PerturbedScoresLower(t *testing.T) {
	suite := NewSuite()
	canonical := "En un lugar de la Mancha, de cuyo nombre no quiero acordarme"
	perturbed := "En un lugar de la Mancha, <ANOMALY> de cuyo nombre no quiero"

	clean := suite.ComputeAllMetrics(canonical, canonical, nil)
	noisy := suite.ComputeAllMetrics(perturbed, canonical, nil)

	assert.Less(t, noisy.Value(MetricMemorization), clean.Value(MetricMemorization))
	assert.Greater(t, noisy.Value(MetricJSDivergence), clean.Value(MetricJSDivergence))
	assert.Less(t, noisy.Value(MetricDivergencePoint), 1.0)
}

func TestSummarize(t *testing.T) {
	suite := NewSuite()

	c := suite.ComputeAllMetrics("a b c", "a b d", nil)
	summary := suite.Summarize(c)

	require.Len(t, summary, c.Len())
	for _, name := range c.Names() {
		assert.Contains(t, summary, name)
		assert.Equal(t, c.Value(name), summary[name])
	}
}
