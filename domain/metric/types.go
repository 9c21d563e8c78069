package metric

import "fmt"

// Result is the outcome of a single comparator invocation.
//
// INVARIANTS:
// - Value is always defined for valid inputs (never NaN)
// - Meta is auxiliary; Value must be interpretable without it
// - Immutable once produced
type Result struct {
	Name  string   `json:"name"`
	Value float64  `json:"value"`
	Meta  Metadata `json:"metadata,omitempty"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %.4f", r.Name, r.Value)
}

// Metadata is the typed per-metric metadata record. Each comparator
// declares its own record with named fields so callers get compile-time
// checking instead of digging through a free-form map.
type Metadata interface {
	metricMetadata()
}

// ExactMatchMeta carries the character-length difference between the two
// inputs after optional normalization.
type ExactMatchMeta struct {
	LengthDiff int `json:"length_diff"`
}

// TokenOverlapMeta carries the set sizes behind a Jaccard similarity.
type TokenOverlapMeta struct {
	UniqueTokensA int `json:"unique_tokens_a"`
	UniqueTokensB int `json:"unique_tokens_b"`
	SharedTokens  int `json:"shared_tokens"`
}

// EditDistanceMeta carries the raw input lengths of a Levenshtein computation.
type EditDistanceMeta struct {
	LengthA int `json:"length_a"`
	LengthB int `json:"length_b"`
}

// PrefixMatchMeta carries both prefix measurements; WordMatch is the one
// consumed downstream.
type PrefixMatchMeta struct {
	CharMatch  int `json:"char_match"`
	WordMatch  int `json:"word_match"`
	TotalChars int `json:"total_chars"`
}

// MemorizationMeta carries the components of the composite score.
type MemorizationMeta struct {
	ExactMatch   float64 `json:"exact_match"`
	PrefixWords  int     `json:"prefix_words"`
	TokenOverlap float64 `json:"token_overlap"`
	IsMemorized  bool    `json:"is_memorized"`
}

// KLDivergenceMeta carries the shared vocabulary size and the entropies of
// the two smoothed distributions.
type KLDivergenceMeta struct {
	VocabSize int     `json:"vocab_size"`
	EntropyP  float64 `json:"entropy_p"`
	EntropyQ  float64 `json:"entropy_q"`
}

// JSDivergenceMeta carries the shared vocabulary size.
type JSDivergenceMeta struct {
	VocabSize int `json:"vocab_size"`
}

// CosineMeta carries the shared vocabulary size of the count vectors.
type CosineMeta struct {
	VocabSize int `json:"vocab_size"`
}

// TextFeatures are the five shallow structural features extracted per text.
type TextFeatures struct {
	Sentences   int     `json:"sentences"`
	Words       int     `json:"words"`
	Commas      int     `json:"commas"`
	Periods     int     `json:"periods"`
	MeanWordLen float64 `json:"mean_word_len"`
}

// StructuralMeta carries the raw feature vectors behind a structural score.
type StructuralMeta struct {
	FeaturesA TextFeatures `json:"features_a"`
	FeaturesB TextFeatures `json:"features_b"`
}

// DivergencePointMeta carries the raw divergence indices.
type DivergencePointMeta struct {
	CharIndex  int `json:"char_index"`
	WordIndex  int `json:"word_index"`
	TotalWords int `json:"total_words"`
}

// StabilityMeta carries the moments behind a stability score.
type StabilityMeta struct {
	MeanSimilarity float64 `json:"mean_similarity"`
	Variance       float64 `json:"variance"`
	NumSamples     int     `json:"num_samples"`
}

func (ExactMatchMeta) metricMetadata()      {}
func (TokenOverlapMeta) metricMetadata()    {}
func (EditDistanceMeta) metricMetadata()    {}
func (PrefixMatchMeta) metricMetadata()     {}
func (MemorizationMeta) metricMetadata()    {}
func (KLDivergenceMeta) metricMetadata()    {}
func (JSDivergenceMeta) metricMetadata()    {}
func (CosineMeta) metricMetadata()          {}
func (StructuralMeta) metricMetadata()      {}
func (DivergencePointMeta) metricMetadata() {}
func (StabilityMeta) metricMetadata()       {}
