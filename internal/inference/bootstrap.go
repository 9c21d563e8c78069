package inference

import (
	"fmt"
	"math/rand"

	"driftlab/domain/core"
	"driftlab/domain/report"

	"github.com/montanaflynn/stats"
)

// defaultResamples is the bootstrap resample count used by AnalyzePair.
const defaultResamples = 10000

// Mean is the default bootstrap statistic.
func Mean(sample []float64) float64 {
	m, _ := stats.Mean(sample)
	return m
}

// BootstrapCI resamples the input with replacement nResamples times (same
// size as the input), computes statistic on each resample, and reports the
// point estimate on the original sample plus the empirical percentile
// interval at the requested confidence. The random source is injected so
// callers control determinism; tests must seed explicitly.
func (a *Analyzer) BootstrapCI(sample []float64, statistic func([]float64) float64, nResamples int, confidence float64, rng *rand.Rand) (report.BootstrapInterval, error) {
	if rng == nil {
		return report.BootstrapInterval{}, core.NewConfigError("rng", "random source must be provided")
	}
	if statistic == nil {
		return report.BootstrapInterval{}, core.NewConfigError("statistic", "must be provided")
	}
	if nResamples < 1 {
		return report.BootstrapInterval{}, core.NewConfigError("n_resamples", "must be >= 1")
	}
	if confidence <= 0 || confidence >= 1 {
		return report.BootstrapInterval{}, core.NewConfigError("confidence", "must be in (0, 1)")
	}
	if len(sample) < 2 {
		return report.BootstrapInterval{}, core.NewInsufficientDataError("bootstrap", len(sample), 2)
	}

	resample := make([]float64, len(sample))
	estimates := make([]float64, nResamples)
	for i := 0; i < nResamples; i++ {
		for j := range resample {
			resample[j] = sample[rng.Intn(len(sample))]
		}
		estimates[i] = statistic(resample)
	}

	tail := (1 - confidence) / 2
	lower, _ := stats.Percentile(estimates, 100*tail)
	upper, _ := stats.Percentile(estimates, 100*(1-tail))

	return report.BootstrapInterval{
		Estimate:   statistic(sample),
		CILower:    lower,
		CIUpper:    upper,
		Resamples:  nResamples,
		Confidence: confidence,
	}, nil
}

// AnalyzePair orchestrates the full inferential report for one experiment:
// per-group summaries, a two-sided pooled t-test, and a bootstrap interval
// on the paired differences control[i] - modified[i]. The two samples must
// be equal-length and index-aligned; this is a paired comparison, not an
// independent one.
func (a *Analyzer) AnalyzePair(control, modified []float64, label string, rng *rand.Rand) (report.PairAnalysis, error) {
	return a.AnalyzePairWith(control, modified, label, rng, defaultResamples, 0.95)
}

// AnalyzePairWith is AnalyzePair with the bootstrap resample count and the
// confidence level pinned by the caller.
func (a *Analyzer) AnalyzePairWith(control, modified []float64, label string, rng *rand.Rand, resamples int, confidence float64) (report.PairAnalysis, error) {
	if len(control) != len(modified) {
		return report.PairAnalysis{}, core.NewConfigError("samples",
			fmt.Sprintf("paired analysis requires aligned samples, got %d vs %d", len(control), len(modified)))
	}
	if len(control) < 2 {
		return report.PairAnalysis{}, core.NewInsufficientDataError("paired analysis", len(control), 2)
	}

	controlSummary, err := a.ConfidenceInterval(control, confidence)
	if err != nil {
		return report.PairAnalysis{}, err
	}
	modifiedSummary, err := a.ConfidenceInterval(modified, confidence)
	if err != nil {
		return report.PairAnalysis{}, err
	}

	test, err := a.TwoSampleTest(control, modified, report.TwoSided)
	if err != nil {
		return report.PairAnalysis{}, err
	}

	differences := make([]float64, len(control))
	for i := range control {
		differences[i] = control[i] - modified[i]
	}
	diff, err := a.BootstrapCI(differences, Mean, resamples, confidence, rng)
	if err != nil {
		return report.PairAnalysis{}, err
	}

	return report.PairAnalysis{
		Label:          label,
		Control:        controlSummary,
		Modified:       modifiedSummary,
		Difference:     diff,
		Test:           test,
		Interpretation: interpret(test),
	}, nil
}

// interpret renders a human-readable sentence for a two-sample result.
func interpret(t report.TwoSampleResult) string {
	var sig string
	switch {
	case t.PValue < 0.001:
		sig = "highly significant (p < 0.001)"
	case t.PValue < 0.01:
		sig = "very significant (p < 0.01)"
	case t.PValue < 0.05:
		sig = "significant (p < 0.05)"
	default:
		sig = "not significant (p >= 0.05)"
	}
	return fmt.Sprintf("The difference is %s with a %s effect size (d = %.3f).", sig, t.EffectLabel, t.CohensD)
}
