// Package inference aggregates scalar measurements collected across many
// trials into statistically defensible conclusions: confidence intervals,
// two-sample tests with effect sizes, multi-group tests, multiple-comparison
// correction, resampling intervals and sample-size estimates. It operates
// purely on sequences of real numbers, independent of how they were produced.
package inference

import (
	"fmt"
	"math"

	"driftlab/domain/core"
	"driftlab/domain/report"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// significanceAlpha is the conventional threshold applied by every test.
const significanceAlpha = 0.05

// Analyzer runs statistical tests over scalar samples.
type Analyzer struct{}

// NewAnalyzer creates a statistical analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ConfidenceInterval returns mean +/- t-critical * SEM at the requested
// confidence level, using n-1 degrees of freedom. Requires n >= 2.
func (a *Analyzer) ConfidenceInterval(sample []float64, confidence float64) (report.GroupSummary, error) {
	if confidence <= 0 || confidence >= 1 {
		return report.GroupSummary{}, core.NewConfigError("confidence", "must be in (0, 1)")
	}
	n := len(sample)
	if n < 2 {
		return report.GroupSummary{}, core.NewInsufficientDataError("confidence interval", n, 2)
	}

	mean, _ := stats.Mean(sample)
	sd, _ := stats.StandardDeviationSample(sample)
	sem := sd / math.Sqrt(float64(n))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	tCrit := tDist.Quantile((1 + confidence) / 2)
	margin := tCrit * sem

	return report.GroupSummary{
		Mean:    mean,
		CILower: mean - margin,
		CIUpper: mean + margin,
		N:       n,
	}, nil
}

// TwoSampleTest runs an independent two-sample t-test under the
// pooled-variance assumption and reports the statistic, p-value, Cohen's d
// with its label, per-group 95% confidence intervals and the mean
// difference. Requires n >= 2 in each group.
func (a *Analyzer) TwoSampleTest(groupA, groupB []float64, alternative report.Alternative) (report.TwoSampleResult, error) {
	switch alternative {
	case report.TwoSided, report.Less, report.Greater:
	default:
		return report.TwoSampleResult{}, core.NewConfigError("alternative", fmt.Sprintf("unknown value %q", alternative))
	}
	if len(groupA) < 2 {
		return report.TwoSampleResult{}, core.NewInsufficientDataError("two-sample test group A", len(groupA), 2)
	}
	if len(groupB) < 2 {
		return report.TwoSampleResult{}, core.NewInsufficientDataError("two-sample test group B", len(groupB), 2)
	}

	n1 := float64(len(groupA))
	n2 := float64(len(groupB))
	mean1, _ := stats.Mean(groupA)
	mean2, _ := stats.Mean(groupB)
	var1, _ := stats.SampleVariance(groupA)
	var2, _ := stats.SampleVariance(groupB)

	df := n1 + n2 - 2
	pooledVar := ((n1-1)*var1 + (n2-1)*var2) / df
	pooledSD := math.Sqrt(pooledVar)

	tStat := 0.0
	if pooledSD > 0 {
		se := pooledSD * math.Sqrt(1/n1+1/n2)
		tStat = (mean1 - mean2) / se
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	var pValue float64
	switch alternative {
	case report.Less:
		pValue = tDist.CDF(tStat)
	case report.Greater:
		pValue = 1 - tDist.CDF(tStat)
	default:
		pValue = 2 * (1 - tDist.CDF(math.Abs(tStat)))
	}

	cohensD := 0.0
	if pooledSD > 0 {
		cohensD = (mean1 - mean2) / pooledSD
	}

	ciA, err := a.ConfidenceInterval(groupA, 0.95)
	if err != nil {
		return report.TwoSampleResult{}, err
	}
	ciB, err := a.ConfidenceInterval(groupB, 0.95)
	if err != nil {
		return report.TwoSampleResult{}, err
	}

	return report.TwoSampleResult{
		TStatistic:     tStat,
		PValue:         pValue,
		CohensD:        cohensD,
		EffectLabel:    labelEffect(cohensD),
		Significant:    pValue < significanceAlpha,
		GroupA:         ciA,
		GroupB:         ciB,
		MeanDifference: mean1 - mean2,
	}, nil
}

// labelEffect classifies Cohen's d by the conventional thresholds.
func labelEffect(d float64) report.EffectLabel {
	absD := math.Abs(d)
	switch {
	case absD < 0.2:
		return report.EffectNegligible
	case absD < 0.5:
		return report.EffectSmall
	case absD < 0.8:
		return report.EffectMedium
	default:
		return report.EffectLarge
	}
}

// OneWayANOVA computes the F statistic, p-value and eta-squared
// (SS_between / SS_total) over k >= 2 named groups. Every group needs
// n >= 2.
func (a *Analyzer) OneWayANOVA(groups map[string][]float64) (report.AnovaResult, error) {
	if len(groups) < 2 {
		return report.AnovaResult{}, core.NewInsufficientDataError("one-way ANOVA groups", len(groups), 2)
	}

	totalN := 0
	grandSum := 0.0
	for name, g := range groups {
		if len(g) < 2 {
			return report.AnovaResult{}, core.NewInsufficientDataError(fmt.Sprintf("ANOVA group %q", name), len(g), 2)
		}
		totalN += len(g)
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(totalN)

	ssBetween := 0.0
	ssTotal := 0.0
	groupMeans := make(map[string]float64, len(groups))
	for name, g := range groups {
		mean, _ := stats.Mean(g)
		groupMeans[name] = mean
		diff := mean - grandMean
		ssBetween += float64(len(g)) * diff * diff
		for _, v := range g {
			d := v - grandMean
			ssTotal += d * d
		}
	}
	ssWithin := ssTotal - ssBetween

	dfBetween := float64(len(groups) - 1)
	dfWithin := float64(totalN - len(groups))

	var fStat, pValue float64
	switch {
	case ssWithin <= 0 && ssBetween <= 0:
		// All observations identical: no evidence of any difference.
		fStat, pValue = 0, 1
	case ssWithin <= 0:
		fStat, pValue = math.Inf(1), 0
	default:
		fStat = (ssBetween / dfBetween) / (ssWithin / dfWithin)
		fDist := distuv.F{D1: dfBetween, D2: dfWithin}
		pValue = 1 - fDist.CDF(fStat)
	}

	etaSquared := 0.0
	if ssTotal > 0 {
		etaSquared = ssBetween / ssTotal
	}

	return report.AnovaResult{
		FStatistic:  fStat,
		PValue:      pValue,
		EtaSquared:  etaSquared,
		Significant: pValue < significanceAlpha,
		GroupMeans:  groupMeans,
	}, nil
}

// BonferroniCorrection divides alpha by the number of tests and reports
// which p-values stay significant under the corrected threshold.
func (a *Analyzer) BonferroniCorrection(pValues []float64, alpha float64) (report.CorrectionResult, error) {
	if alpha <= 0 || alpha >= 1 {
		return report.CorrectionResult{}, core.NewConfigError("alpha", "must be in (0, 1)")
	}
	if len(pValues) == 0 {
		return report.CorrectionResult{}, core.NewConfigError("p_values", "must not be empty")
	}

	corrected := alpha / float64(len(pValues))
	significant := make([]bool, len(pValues))
	count := 0
	for i, p := range pValues {
		if p < corrected {
			significant[i] = true
			count++
		}
	}

	return report.CorrectionResult{
		OriginalAlpha:  alpha,
		CorrectedAlpha: corrected,
		NumTests:       len(pValues),
		NumSignificant: count,
		Significant:    significant,
	}, nil
}

// RequiredSampleSize solves for the per-group sample size needed to detect
// a standardized effect with a two-sided two-sample t-test at the
// requested significance and power. Starts from the normal approximation
// and refines with central-t quantiles until the estimate stabilizes;
// returns a ceiling-rounded integer.
func (a *Analyzer) RequiredSampleSize(effectSize, alpha, power float64) (int, error) {
	if effectSize == 0 {
		return 0, core.NewConfigError("effect_size", "must be non-zero")
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, core.NewConfigError("alpha", "must be in (0, 1)")
	}
	if power <= 0 || power >= 1 {
		return 0, core.NewConfigError("power", "must be in (0, 1)")
	}

	d := math.Abs(effectSize)
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	zAlpha := normal.Quantile(1 - alpha/2)
	zBeta := normal.Quantile(power)

	n := 2 * math.Pow((zAlpha+zBeta)/d, 2)

	for i := 0; i < 50; i++ {
		df := 2 * (math.Ceil(n) - 1)
		if df < 1 {
			df = 1
		}
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		tAlpha := tDist.Quantile(1 - alpha/2)
		tBeta := tDist.Quantile(power)

		next := 2 * math.Pow((tAlpha+tBeta)/d, 2)
		if math.Ceil(next) == math.Ceil(n) {
			n = next
			break
		}
		n = next
	}

	size := int(math.Ceil(n))
	if size < 2 {
		size = 2
	}
	return size, nil
}
