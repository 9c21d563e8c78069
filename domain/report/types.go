package report

// GroupSummary describes one sample group with its confidence interval.
//
// INVARIANTS:
// - N always present and >= 2 (smaller groups are rejected upstream)
// - CILower <= Mean <= CIUpper
type GroupSummary struct {
	Mean    float64 `json:"mean"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
	N       int     `json:"n"`
}

// EffectLabel classifies a standardized effect size.
type EffectLabel string

const (
	EffectNegligible EffectLabel = "negligible"
	EffectSmall      EffectLabel = "small"
	EffectMedium     EffectLabel = "medium"
	EffectLarge      EffectLabel = "large"
)

// Alternative selects the sidedness of a two-sample test.
type Alternative string

const (
	TwoSided Alternative = "two-sided"
	Less     Alternative = "less"
	Greater  Alternative = "greater"
)

// TwoSampleResult is the outcome of an independent two-sample t-test.
type TwoSampleResult struct {
	TStatistic     float64      `json:"t_statistic"`
	PValue         float64      `json:"p_value"`
	CohensD        float64      `json:"cohens_d"`
	EffectLabel    EffectLabel  `json:"effect_label"`
	Significant    bool         `json:"significant"`
	GroupA         GroupSummary `json:"group_a"`
	GroupB         GroupSummary `json:"group_b"`
	MeanDifference float64      `json:"mean_difference"`
}

// AnovaResult is the outcome of a one-way ANOVA over k >= 2 groups.
type AnovaResult struct {
	FStatistic  float64            `json:"f_statistic"`
	PValue      float64            `json:"p_value"`
	EtaSquared  float64            `json:"eta_squared"`
	Significant bool               `json:"significant"`
	GroupMeans  map[string]float64 `json:"group_means"`
}

// CorrectionResult reports a Bonferroni multiple-comparison correction.
type CorrectionResult struct {
	OriginalAlpha  float64 `json:"original_alpha"`
	CorrectedAlpha float64 `json:"corrected_alpha"`
	NumTests       int     `json:"n_tests"`
	NumSignificant int     `json:"significant_tests"`
	Significant    []bool  `json:"corrected_significant"`
}

// BootstrapInterval is an empirical percentile interval from resampling.
type BootstrapInterval struct {
	Estimate   float64 `json:"estimate"`
	CILower    float64 `json:"ci_lower"`
	CIUpper    float64 `json:"ci_upper"`
	Resamples  int     `json:"resamples"`
	Confidence float64 `json:"confidence"`
}

// PairAnalysis is the full inferential report for one control/modified
// experiment: per-group summaries, the two-sample test, and a bootstrap
// interval on the index-aligned paired differences (control[i] - modified[i]).
type PairAnalysis struct {
	Label          string            `json:"label"`
	Control        GroupSummary      `json:"control"`
	Modified       GroupSummary      `json:"modified"`
	Difference     BootstrapInterval `json:"difference"`
	Test           TwoSampleResult   `json:"test"`
	Interpretation string            `json:"interpretation"`
}
