// Package perturb produces the modified-vs-control prompt pairs fed into
// the divergence engine. Interventions range from single rare-token
// insertions to out-of-domain segment shocks and style-space pushes. Every
// randomized choice draws from an injected random source so experiments
// replay deterministically under a fixed seed.
package perturb

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// ActionType identifies a kind of intervention.
type ActionType string

const (
	ActionTokenInsertion    ActionType = "token_insertion"
	ActionTokenSubstitution ActionType = "token_substitution"
	ActionSegmentShock      ActionType = "segment_shock"
	ActionStylePerturbation ActionType = "style_perturbation"
	ActionNoiseInjection    ActionType = "noise_injection"
	ActionTailAmplification ActionType = "tail_amplification"
)

// Action records one applied intervention: what was done, how hard, and
// where. Position is a word index, or -1 when the action is not positional.
type Action struct {
	Type      ActionType        `json:"type"`
	Magnitude float64           `json:"magnitude"`
	Position  int               `json:"position"`
	Params    map[string]string `json:"params,omitempty"`
}

func (a Action) String() string {
	return fmt.Sprintf("Action(%s, mag=%.2f, pos=%d)", a.Type, a.Magnitude, a.Position)
}

// rareTokens are unexpected insertions far outside any natural register.
var rareTokens = []string{
	"∮", "⊗", "∇", "≈", "∞", "⊕", "⊖", "⊙",
	"<ISO-2847>", "<X2F-ERROR>", "<ANOMALY>",
	"⟨quantum⟩", "⟨void⟩", "⟨glitch⟩",
}

// shockSegments are out-of-domain clauses grouped by flavor.
var shockSegments = map[string][]string{
	"technical": {
		"according to ISO-9001 specifications",
		"via quantum entanglement protocols",
		"through recursive neural pathways",
		"using Bayesian inference methods",
	},
	"modern": {
		"in the metaverse",
		"through blockchain consensus",
		"via neural network optimization",
		"using machine learning algorithms",
	},
	"absurd": {
		"with interdimensional portals",
		"through time-reversed causality",
		"via telepathic resonance",
		"using antimatter propulsion",
	},
}

// styleVectors map a direction in style space to its rewrite instruction.
var styleVectors = map[string]string{
	"technical": "Rewrite in highly technical, scientific language:",
	"poetic":    "Rewrite in poetic, lyrical language:",
	"modern":    "Rewrite in modern, contemporary language:",
	"archaic":   "Rewrite in archaic, old-fashioned language:",
	"casual":    "Rewrite in casual, informal language:",
	"formal":    "Rewrite in formal, academic language:",
}

var noiseWords = []string{
	"quantum", "recursive", "asymptotic", "stochastic",
	"ephemeral", "liminal", "fractal", "entropic",
}

// Perturber applies interventions using an injected random source.
type Perturber struct {
	rng *rand.Rand
}

// NewPerturber creates a perturber. A nil rng falls back to a time-seeded
// source; tests should always inject a seeded one.
func NewPerturber(rng *rand.Rand) *Perturber {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Perturber{rng: rng}
}

// InsertToken inserts a token at a word boundary. An empty token picks a
// random rare token; a negative position picks a random boundary.
func (p *Perturber) InsertToken(text, token string, position int) (string, Action) {
	if token == "" {
		token = rareTokens[p.rng.Intn(len(rareTokens))]
	}

	words := strings.Fields(text)
	if position < 0 || position > len(words) {
		position = p.rng.Intn(len(words) + 1)
	}

	out := make([]string, 0, len(words)+1)
	out = append(out, words[:position]...)
	out = append(out, token)
	out = append(out, words[position:]...)

	return strings.Join(out, " "), Action{
		Type:      ActionTokenInsertion,
		Magnitude: 1.0,
		Position:  position,
		Params:    map[string]string{"token": token},
	}
}

// SubstituteToken replaces a word with a rare token. An empty target picks
// a random word; an empty replacement picks a random rare token.
func (p *Perturber) SubstituteToken(text, target, replacement string) (string, Action) {
	if replacement == "" {
		replacement = rareTokens[p.rng.Intn(len(rareTokens))]
	}

	words := strings.Fields(text)
	position := -1
	if target == "" {
		if len(words) > 0 {
			idx := p.rng.Intn(len(words))
			target = words[idx]
			words[idx] = replacement
			position = idx
		}
	} else {
		for i, w := range words {
			if w == target {
				words[i] = replacement
				if position < 0 {
					position = i
				}
			}
		}
	}

	return strings.Join(words, " "), Action{
		Type:      ActionTokenSubstitution,
		Magnitude: 1.0,
		Position:  position,
		Params:    map[string]string{"target": target, "replacement": replacement},
	}
}

// AddSegmentShock splices an out-of-domain segment into the text. Unknown
// shock types fall back to technical; a negative position picks a random
// word boundary.
func (p *Perturber) AddSegmentShock(text, shockType string, position int) (string, Action) {
	segments, ok := shockSegments[shockType]
	if !ok {
		shockType = "technical"
		segments = shockSegments[shockType]
	}
	segment := segments[p.rng.Intn(len(segments))]

	words := strings.Fields(text)
	if position < 0 || position > len(words) {
		position = p.rng.Intn(len(words) + 1)
	}

	out := make([]string, 0, len(words)+1)
	out = append(out, words[:position]...)
	out = append(out, segment)
	out = append(out, words[position:]...)

	return strings.Join(out, " "), Action{
		Type:      ActionSegmentShock,
		Magnitude: 1.0,
		Position:  position,
		Params:    map[string]string{"shock_type": shockType, "segment": segment},
	}
}

// StylePerturbation prepends a style instruction whose forcefulness scales
// with magnitude: below 0.3 a parenthetical hint, below 0.7 the plain
// instruction, otherwise an emphatic one.
func (p *Perturber) StylePerturbation(text, direction string, magnitude float64) (string, Action) {
	instruction, ok := styleVectors[direction]
	if !ok {
		instruction = fmt.Sprintf("Rewrite in %s style:", direction)
	}

	var prefix string
	switch {
	case magnitude < 0.3:
		prefix = fmt.Sprintf("(Slightly %s:) ", direction)
	case magnitude < 0.7:
		prefix = instruction + " "
	default:
		prefix = "IMPORTANT: " + instruction + " "
	}

	return prefix + text, Action{
		Type:      ActionStylePerturbation,
		Magnitude: magnitude,
		Position:  -1,
		Params:    map[string]string{"direction": direction, "prefix": prefix},
	}
}

// InjectNoise appends up to three semantically unrelated words, scaled by
// magnitude.
func (p *Perturber) InjectNoise(text string, magnitude float64) (string, Action) {
	count := int(magnitude * 3)
	if count > len(noiseWords) {
		count = len(noiseWords)
	}

	modified := text
	if count > 0 {
		picked := make([]string, 0, count)
		for _, idx := range p.rng.Perm(len(noiseWords))[:count] {
			picked = append(picked, noiseWords[idx])
		}
		modified = fmt.Sprintf("%s [%s]", text, strings.Join(picked, " "))
	}

	return modified, Action{
		Type:      ActionNoiseInjection,
		Magnitude: magnitude,
		Position:  -1,
		Params:    map[string]string{"noise_words": fmt.Sprintf("%d", count)},
	}
}

// AmplifyTail returns a prompt prefix that pushes the model toward
// low-probability vocabulary, scaled by magnitude.
func (p *Perturber) AmplifyTail(magnitude float64) (string, Action) {
	var modifier string
	switch {
	case magnitude < 0.3:
		modifier = "(Use slightly unusual words) "
	case magnitude < 0.7:
		modifier = "Use creative, uncommon vocabulary: "
	default:
		modifier = "IMPORTANT: Use highly unusual, rare, and creative words: "
	}

	return modifier, Action{
		Type:      ActionTailAmplification,
		Magnitude: magnitude,
		Position:  -1,
		Params:    map[string]string{"modifier": modifier},
	}
}

// Apply replays a recorded action against a text.
func (p *Perturber) Apply(text string, action Action) string {
	switch action.Type {
	case ActionTokenInsertion:
		modified, _ := p.InsertToken(text, action.Params["token"], action.Position)
		return modified
	case ActionTokenSubstitution:
		modified, _ := p.SubstituteToken(text, action.Params["target"], action.Params["replacement"])
		return modified
	case ActionSegmentShock:
		modified, _ := p.AddSegmentShock(text, action.Params["shock_type"], action.Position)
		return modified
	case ActionStylePerturbation:
		modified, _ := p.StylePerturbation(text, action.Params["direction"], action.Magnitude)
		return modified
	case ActionNoiseInjection:
		modified, _ := p.InjectNoise(text, action.Magnitude)
		return modified
	case ActionTailAmplification:
		modifier, _ := p.AmplifyTail(action.Magnitude)
		return modifier + text
	default:
		return text
	}
}
