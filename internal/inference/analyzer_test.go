package inference

import (
	"math"
	"math/rand"
	"testing"

	"driftlab/domain/core"
	"driftlab/domain/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceInterval(t *testing.T) {
	a := NewAnalyzer()

	sample := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	summary, err := a.ConfidenceInterval(sample, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, summary.Mean, 1e-12)
	assert.Equal(t, 8, summary.N)
	assert.Less(t, summary.CILower, summary.Mean)
	assert.Greater(t, summary.CIUpper, summary.Mean)
	// t(7, 0.975) = 2.3646, sd = 2.1381, sem = 0.7559
	assert.InDelta(t, 5.0-2.3646*0.75593, summary.CILower, 1e-3)
	assert.InDelta(t, 5.0+2.3646*0.75593, summary.CIUpper, 1e-3)
}

func TestConfidenceInterval_Errors(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.ConfidenceInterval([]float64{1.0}, 0.95)
	assert.True(t, core.IsInsufficientDataError(err), "n < 2 must fail explicitly, got %v", err)

	_, err = a.ConfidenceInterval([]float64{1, 2, 3}, 1.5)
	assert.True(t, core.IsConfigError(err))

	_, err = a.ConfidenceInterval([]float64{1, 2, 3}, 0)
	assert.True(t, core.IsConfigError(err))
}

func TestTwoSampleTest_LargeEffect(t *testing.T) {
	a := NewAnalyzer()

	groupA := []float64{0.9, 0.85, 0.88}
	groupB := []float64{0.2, 0.25, 0.3}

	res, err := a.TwoSampleTest(groupA, groupB, report.TwoSided)
	require.NoError(t, err)

	assert.True(t, res.Significant, "p = %v", res.PValue)
	assert.Less(t, res.PValue, 0.05)
	assert.Greater(t, res.MeanDifference, 0.0)
	assert.Equal(t, report.EffectLarge, res.EffectLabel)
	assert.Greater(t, res.TStatistic, 0.0)
	assert.Equal(t, 3, res.GroupA.N)
	assert.Equal(t, 3, res.GroupB.N)
}

func TestTwoSampleTest_NoDifference(t *testing.T) {
	a := NewAnalyzer()

	groupA := []float64{1.0, 1.1, 0.9, 1.05, 0.95}
	groupB := []float64{1.02, 1.08, 0.92, 1.0, 0.98}

	res, err := a.TwoSampleTest(groupA, groupB, report.TwoSided)
	require.NoError(t, err)
	assert.False(t, res.Significant)
	assert.Equal(t, report.EffectNegligible, res.EffectLabel)
}

func TestTwoSampleTest_OneSided(t *testing.T) {
	a := NewAnalyzer()

	lower := []float64{0.1, 0.2, 0.15, 0.12}
	higher := []float64{0.8, 0.9, 0.85, 0.88}

	greater, err := a.TwoSampleTest(higher, lower, report.Greater)
	require.NoError(t, err)
	less, err := a.TwoSampleTest(higher, lower, report.Less)
	require.NoError(t, err)

	assert.Less(t, greater.PValue, 0.05)
	assert.Greater(t, less.PValue, 0.95)
}

func TestTwoSampleTest_Errors(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.TwoSampleTest([]float64{1}, []float64{1, 2}, report.TwoSided)
	assert.True(t, core.IsInsufficientDataError(err))

	_, err = a.TwoSampleTest([]float64{1, 2}, []float64{}, report.TwoSided)
	assert.True(t, core.IsInsufficientDataError(err))

	_, err = a.TwoSampleTest([]float64{1, 2}, []float64{1, 2}, report.Alternative("sideways"))
	assert.True(t, core.IsConfigError(err))
}

func TestOneWayANOVA_DistinctGroups(t *testing.T) {
	a := NewAnalyzer()

	groups := map[string][]float64{
		"low":  {1.0, 1.1, 0.9, 1.05},
		"mid":  {5.0, 5.2, 4.8, 5.1},
		"high": {9.0, 9.1, 8.9, 9.05},
	}

	res, err := a.OneWayANOVA(groups)
	require.NoError(t, err)

	assert.True(t, res.Significant)
	assert.Greater(t, res.FStatistic, 1.0)
	assert.Greater(t, res.EtaSquared, 0.9, "group membership should explain nearly all variance")
	assert.Len(t, res.GroupMeans, 3)
	assert.InDelta(t, 5.025, res.GroupMeans["mid"], 1e-9)
}

func TestOneWayANOVA_IdenticalMeans(t *testing.T) {
	a := NewAnalyzer()

	// Three groups drawn around the same mean with only sampling noise:
	// not significant with high probability across seeded draws.
	rng := rand.New(rand.NewSource(7))
	rejected := 0
	const draws = 20
	for i := 0; i < draws; i++ {
		groups := map[string][]float64{}
		for _, name := range []string{"a", "b", "c"} {
			sample := make([]float64, 12)
			for j := range sample {
				sample[j] = 10 + rng.NormFloat64()
			}
			groups[name] = sample
		}
		res, err := a.OneWayANOVA(groups)
		require.NoError(t, err)
		if res.Significant {
			rejected++
		}
	}
	// Expected false-positive rate is alpha = 0.05; allow slack.
	assert.LessOrEqual(t, rejected, 4, "identical-mean groups should rarely reach significance")
}

func TestOneWayANOVA_AllIdenticalValues(t *testing.T) {
	a := NewAnalyzer()

	res, err := a.OneWayANOVA(map[string][]float64{
		"a": {2, 2, 2},
		"b": {2, 2, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.FStatistic)
	assert.Equal(t, 1.0, res.PValue)
	assert.False(t, res.Significant)
}

func TestOneWayANOVA_Errors(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.OneWayANOVA(map[string][]float64{"only": {1, 2, 3}})
	assert.True(t, core.IsInsufficientDataError(err))

	_, err = a.OneWayANOVA(map[string][]float64{"a": {1, 2}, "b": {}})
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestBonferroniCorrection(t *testing.T) {
	a := NewAnalyzer()

	pValues := []float64{0.001, 0.02, 0.04, 0.3}
	res, err := a.BonferroniCorrection(pValues, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 0.0125, res.CorrectedAlpha, 1e-12)
	assert.Equal(t, 4, res.NumTests)
	assert.Equal(t, 1, res.NumSignificant)
	assert.Equal(t, []bool{true, false, false, false}, res.Significant)
}

func TestBonferroniCorrection_Errors(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.BonferroniCorrection(nil, 0.05)
	assert.True(t, core.IsConfigError(err))

	_, err = a.BonferroniCorrection([]float64{0.01}, 0)
	assert.True(t, core.IsConfigError(err))
}

func TestRequiredSampleSize(t *testing.T) {
	a := NewAnalyzer()

	// Textbook value: d = 0.5, alpha = 0.05, power = 0.8 -> 64 per group.
	n, err := a.RequiredSampleSize(0.5, 0.05, 0.8)
	require.NoError(t, err)
	assert.InDelta(t, 64, float64(n), 1)

	// Larger effects need fewer observations.
	big, err := a.RequiredSampleSize(1.2, 0.05, 0.8)
	require.NoError(t, err)
	assert.Less(t, big, n)

	// Sign of the effect is irrelevant.
	neg, err := a.RequiredSampleSize(-0.5, 0.05, 0.8)
	require.NoError(t, err)
	assert.Equal(t, n, neg)
}

func TestRequiredSampleSize_Errors(t *testing.T) {
	a := NewAnalyzer()

	for _, tc := range []struct {
		effect, alpha, power float64
	}{
		{0, 0.05, 0.8},
		{0.5, 0, 0.8},
		{0.5, 1, 0.8},
		{0.5, 0.05, 0},
		{0.5, 0.05, 1},
	} {
		_, err := a.RequiredSampleSize(tc.effect, tc.alpha, tc.power)
		assert.True(t, core.IsConfigError(err), "effect=%v alpha=%v power=%v", tc.effect, tc.alpha, tc.power)
	}
}

func TestEffectLabels(t *testing.T) {
	assert.Equal(t, report.EffectNegligible, labelEffect(0.1))
	assert.Equal(t, report.EffectSmall, labelEffect(-0.3))
	assert.Equal(t, report.EffectMedium, labelEffect(0.6))
	assert.Equal(t, report.EffectLarge, labelEffect(-2.0))
}

func TestTwoSampleTest_ZeroVariance(t *testing.T) {
	a := NewAnalyzer()

	res, err := a.TwoSampleTest([]float64{3, 3, 3}, []float64{3, 3, 3}, report.TwoSided)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TStatistic)
	assert.Equal(t, 0.0, res.CohensD)
	assert.False(t, res.Significant)
	assert.False(t, math.IsNaN(res.PValue))
}
