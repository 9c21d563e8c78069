// Package canon curates reference passages that large models are very
// likely to have memorized. They serve as stable expected completions for
// perturbation experiments: a model that cannot reproduce them unperturbed
// is not a usable subject.
package canon

import (
	"sort"

	"driftlab/domain/core"
	"driftlab/domain/metric"
	"driftlab/internal/compare"
)

// Tier ranks how strongly a passage is expected to be memorized.
type Tier int

const (
	// TierMaximum passages exceed 97% expected memorization.
	TierMaximum Tier = 1
	// TierHigh passages exceed 90% expected memorization.
	TierHigh Tier = 2
)

// Passage is one canonical reference text.
type Passage struct {
	Key                  core.PassageKey `json:"key"`
	Text                 string          `json:"text"`
	Language             string          `json:"language"`
	Source               string          `json:"source"`
	ExpectedMemorization float64         `json:"expected_memorization"`
	TokensApprox         int             `json:"tokens_approx"`
	Category             string          `json:"category"`
	Tier                 Tier            `json:"tier"`
}

var passages = map[core.PassageKey]Passage{
	"hamlet_to_be": {
		Key:                  "hamlet_to_be",
		Text:                 "To be, or not to be, that is the question: Whether 'tis nobler in the mind to suffer The slings and arrows of outrageous fortune, Or to take arms against a sea of troubles And by opposing end them.",
		Language:             "en",
		Source:               "Hamlet, Act III, Scene 1 - William Shakespeare",
		ExpectedMemorization: 0.98,
		TokensApprox:         50,
		Category:             "literature",
		Tier:                 TierMaximum,
	},
	"dickens_two_cities": {
		Key:                  "dickens_two_cities",
		Text:                 "It was the best of times, it was the worst of times, it was the age of wisdom, it was the age of foolishness, it was the epoch of belief, it was the epoch of incredulity, it was the season of Light, it was the season of Darkness.",
		Language:             "en",
		Source:               "A Tale of Two Cities - Charles Dickens",
		ExpectedMemorization: 0.97,
		TokensApprox:         60,
		Category:             "literature",
		Tier:                 TierMaximum,
	},
	"moby_dick": {
		Key:                  "moby_dick",
		Text:                 "Call me Ishmael. Some years ago—never mind how long precisely—having little or no money in my purse, and nothing particular to interest me on shore, I thought I would sail about a little and see the watery part of the world.",
		Language:             "en",
		Source:               "Moby-Dick - Herman Melville",
		ExpectedMemorization: 0.96,
		TokensApprox:         50,
		Category:             "literature",
		Tier:                 TierMaximum,
	},
	"pride_prejudice": {
		Key:                  "pride_prejudice",
		Text:                 "It is a truth universally acknowledged, that a single man in possession of a good fortune, must be in want of a wife.",
		Language:             "en",
		Source:               "Pride and Prejudice - Jane Austen",
		ExpectedMemorization: 0.97,
		TokensApprox:         30,
		Category:             "literature",
		Tier:                 TierMaximum,
	},
	"romeo_juliet": {
		Key:                  "romeo_juliet",
		Text:                 "But, soft! what light through yonder window breaks? It is the east, and Juliet is the sun.",
		Language:             "en",
		Source:               "Romeo and Juliet - William Shakespeare",
		ExpectedMemorization: 0.95,
		TokensApprox:         25,
		Category:             "literature",
		Tier:                 TierMaximum,
	},
	"us_constitution": {
		Key:                  "us_constitution",
		Text:                 "We the People of the United States, in Order to form a more perfect Union, establish Justice, insure domestic Tranquility, provide for the common defence, promote the general Welfare, and secure the Blessings of Liberty to ourselves and our Posterity, do ordain and establish this Constitution for the United States of America.",
		Language:             "en",
		Source:               "US Constitution Preamble (1787)",
		ExpectedMemorization: 0.99,
		TokensApprox:         60,
		Category:             "legal",
		Tier:                 TierMaximum,
	},
	"declaration_independence": {
		Key:                  "declaration_independence",
		Text:                 "We hold these truths to be self-evident, that all men are created equal, that they are endowed by their Creator with certain unalienable Rights, that among these are Life, Liberty and the pursuit of Happiness.",
		Language:             "en",
		Source:               "Declaration of Independence (1776)",
		ExpectedMemorization: 0.99,
		TokensApprox:         45,
		Category:             "legal",
		Tier:                 TierMaximum,
	},
	"gettysburg_address": {
		Key:                  "gettysburg_address",
		Text:                 "Four score and seven years ago our fathers brought forth on this continent, a new nation, conceived in Liberty, and dedicated to the proposition that all men are created equal.",
		Language:             "en",
		Source:               "Gettysburg Address - Abraham Lincoln",
		ExpectedMemorization: 0.98,
		TokensApprox:         40,
		Category:             "speech",
		Tier:                 TierMaximum,
	},
	"mlk_dream": {
		Key:                  "mlk_dream",
		Text:                 "I have a dream that one day this nation will rise up and live out the true meaning of its creed: We hold these truths to be self-evident, that all men are created equal.",
		Language:             "en",
		Source:               "I Have a Dream - Martin Luther King Jr.",
		ExpectedMemorization: 0.97,
		TokensApprox:         40,
		Category:             "speech",
		Tier:                 TierMaximum,
	},
	"jfk_inaugural": {
		Key:                  "jfk_inaugural",
		Text:                 "And so, my fellow Americans: ask not what your country can do for you—ask what you can do for your country.",
		Language:             "en",
		Source:               "JFK Inaugural Address (1961)",
		ExpectedMemorization: 0.96,
		TokensApprox:         25,
		Category:             "speech",
		Tier:                 TierMaximum,
	},
	"genesis_1_1": {
		Key:                  "genesis_1_1",
		Text:                 "In the beginning God created the heaven and the earth. And the earth was without form, and void; and darkness was upon the face of the deep. And the Spirit of God moved upon the face of the waters.",
		Language:             "en",
		Source:               "Genesis 1:1-2 (King James Version)",
		ExpectedMemorization: 0.98,
		TokensApprox:         50,
		Category:             "religious",
		Tier:                 TierMaximum,
	},
	"john_1_1": {
		Key:                  "john_1_1",
		Text:                 "In the beginning was the Word, and the Word was with God, and the Word was God.",
		Language:             "en",
		Source:               "John 1:1 (King James Version)",
		ExpectedMemorization: 0.97,
		TokensApprox:         20,
		Category:             "religious",
		Tier:                 TierMaximum,
	},
	"psalm_23": {
		Key:                  "psalm_23",
		Text:                 "The Lord is my shepherd; I shall not want. He maketh me to lie down in green pastures: he leadeth me beside the still waters.",
		Language:             "en",
		Source:               "Psalm 23:1-2 (King James Version)",
		ExpectedMemorization: 0.95,
		TokensApprox:         30,
		Category:             "religious",
		Tier:                 TierMaximum,
	},
	"frost_road": {
		Key:                  "frost_road",
		Text:                 "Two roads diverged in a yellow wood, And sorry I could not travel both And be one traveler, long I stood And looked down one as far as I could To where it bent in the undergrowth;",
		Language:             "en",
		Source:               "The Road Not Taken - Robert Frost",
		ExpectedMemorization: 0.95,
		TokensApprox:         50,
		Category:             "poetry",
		Tier:                 TierHigh,
	},
	"poe_raven": {
		Key:                  "poe_raven",
		Text:                 "Once upon a midnight dreary, while I pondered, weak and weary, Over many a quaint and curious volume of forgotten lore—",
		Language:             "en",
		Source:               "The Raven - Edgar Allan Poe",
		ExpectedMemorization: 0.94,
		TokensApprox:         30,
		Category:             "poetry",
		Tier:                 TierHigh,
	},
	"newton_first_law": {
		Key:                  "newton_first_law",
		Text:                 "Every body perseveres in its state of rest, or of uniform motion in a right line, unless it is compelled to change that state by forces impressed thereon.",
		Language:             "en",
		Source:               "Principia Mathematica - Isaac Newton",
		ExpectedMemorization: 0.93,
		TokensApprox:         30,
		Category:             "science",
		Tier:                 TierHigh,
	},
	"darwin_origin": {
		Key:                  "darwin_origin",
		Text:                 "There is grandeur in this view of life, with its several powers, having been originally breathed into a few forms or into one; and that, whilst this planet has gone cycling on according to the fixed law of gravity, from so simple a beginning endless forms most beautiful and most wonderful have been, and are being, evolved.",
		Language:             "en",
		Source:               "On the Origin of Species - Charles Darwin",
		ExpectedMemorization: 0.90,
		TokensApprox:         70,
		Category:             "science",
		Tier:                 TierHigh,
	},
	"quijote_spanish": {
		Key:                  "quijote_spanish",
		Text:                 "En un lugar de la Mancha, de cuyo nombre no quiero acordarme, no ha mucho tiempo que vivía un hidalgo de los de lanza en astillero, adarga antigua, rocín flaco y galgo corredor.",
		Language:             "es",
		Source:               "Don Quijote - Miguel de Cervantes",
		ExpectedMemorization: 0.90,
		TokensApprox:         40,
		Category:             "literature",
		Tier:                 TierHigh,
	},
	"dante_inferno": {
		Key:                  "dante_inferno",
		Text:                 "Nel mezzo del cammin di nostra vita mi ritrovai per una selva oscura, ché la diritta via era smarrita.",
		Language:             "it",
		Source:               "Divina Commedia - Dante Alighieri",
		ExpectedMemorization: 0.85,
		TokensApprox:         25,
		Category:             "literature",
		Tier:                 TierHigh,
	},
}

// Registry provides lookup and filtering over the canonical passages.
type Registry struct{}

// NewRegistry creates a passage registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Get returns a passage by key.
func (r *Registry) Get(key core.PassageKey) (Passage, error) {
	p, ok := passages[key]
	if !ok {
		return Passage{}, core.ErrPassageNotFound
	}
	return p, nil
}

// All returns every passage, sorted by key for stable iteration.
func (r *Registry) All() []Passage {
	return r.filter(func(Passage) bool { return true })
}

// Tier1 returns the maximum-guarantee passages.
func (r *Registry) Tier1() []Passage {
	return r.filter(func(p Passage) bool { return p.Tier == TierMaximum })
}

// ByCategory returns passages in a category.
func (r *Registry) ByCategory(category string) []Passage {
	return r.filter(func(p Passage) bool { return p.Category == category })
}

// ByLanguage returns passages in a language.
func (r *Registry) ByLanguage(language string) []Passage {
	return r.filter(func(p Passage) bool { return p.Language == language })
}

// Short returns passages at or below a token ceiling.
func (r *Registry) Short(maxTokens int) []Passage {
	return r.filter(func(p Passage) bool { return p.TokensApprox <= maxTokens })
}

// Long returns passages at or above a token floor.
func (r *Registry) Long(minTokens int) []Passage {
	return r.filter(func(p Passage) bool { return p.TokensApprox >= minTokens })
}

func (r *Registry) filter(keep func(Passage) bool) []Passage {
	out := make([]Passage, 0, len(passages))
	for _, p := range passages {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SuiteSize selects how many passages an experiment sweep covers.
type SuiteSize string

const (
	SuiteMinimal       SuiteSize = "minimal"
	SuiteStandard      SuiteSize = "standard"
	SuiteComprehensive SuiteSize = "comprehensive"
)

var minimalSuite = []core.PassageKey{
	"hamlet_to_be", "dickens_two_cities", "us_constitution",
	"gettysburg_address", "genesis_1_1",
}

var standardExtras = []core.PassageKey{
	"moby_dick", "pride_prejudice", "mlk_dream", "frost_road", "newton_first_law",
}

// Suite returns the recommended passage set for an experiment sweep:
// minimal (5), standard (10), or comprehensive (all tier 1).
func (r *Registry) Suite(size SuiteSize) []Passage {
	switch size {
	case SuiteMinimal:
		return r.byKeys(minimalSuite)
	case SuiteStandard:
		return r.byKeys(append(append([]core.PassageKey{}, minimalSuite...), standardExtras...))
	default:
		return r.Tier1()
	}
}

// Validation reports whether a model reproduction of a passage clears the
// memorization threshold.
type Validation struct {
	Key       core.PassageKey `json:"key"`
	Score     float64         `json:"score"`
	Memorized bool            `json:"memorized"`
}

// ValidateReproduction scores a generated completion against the canonical
// text. A passage whose reproduction fails this check should be excluded
// from perturbation sweeps for that model.
func ValidateReproduction(p Passage, generated string) Validation {
	res := compare.NewLexical().MemorizationScore(generated, p.Text, compare.DefaultMemorizationThreshold)
	meta := res.Meta.(metric.MemorizationMeta)
	return Validation{Key: p.Key, Score: res.Value, Memorized: meta.IsMemorized}
}

func (r *Registry) byKeys(keys []core.PassageKey) []Passage {
	out := make([]Passage, 0, len(keys))
	for _, k := range keys {
		if p, ok := passages[k]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
