package perturb

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = "En un lugar de la Mancha de cuyo nombre no quiero acordarme"

func TestInsertToken_FixedPosition(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(1)))

	modified, action := p.InsertToken(sampleText, "<ISO-2847>", 5)
	words := strings.Fields(modified)

	assert.Equal(t, "<ISO-2847>", words[5])
	assert.Equal(t, len(strings.Fields(sampleText))+1, len(words))
	assert.Equal(t, ActionTokenInsertion, action.Type)
	assert.Equal(t, 5, action.Position)
	assert.Equal(t, "<ISO-2847>", action.Params["token"])
}

func TestInsertToken_DeterministicUnderSeed(t *testing.T) {
	first, _ := NewPerturber(rand.New(rand.NewSource(42))).InsertToken(sampleText, "", -1)
	second, _ := NewPerturber(rand.New(rand.NewSource(42))).InsertToken(sampleText, "", -1)
	assert.Equal(t, first, second, "a fixed seed must reproduce the same perturbation")
}

func TestSubstituteToken_SpecificTarget(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(1)))

	modified, action := p.SubstituteToken("the cat and the dog", "cat", "⟨void⟩")
	assert.Equal(t, "the ⟨void⟩ and the dog", modified)
	assert.Equal(t, ActionTokenSubstitution, action.Type)
	assert.Equal(t, 1, action.Position)
}

func TestSubstituteToken_RandomTarget(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(7)))

	modified, action := p.SubstituteToken(sampleText, "", "")
	assert.NotEqual(t, sampleText, modified)
	assert.NotEmpty(t, action.Params["replacement"])
	assert.Equal(t, len(strings.Fields(sampleText)), len(strings.Fields(modified)))
}

func TestAddSegmentShock(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(3)))

	modified, action := p.AddSegmentShock(sampleText, "absurd", 2)
	assert.Contains(t, modified, action.Params["segment"])
	assert.Equal(t, "absurd", action.Params["shock_type"])

	// Unknown shock type falls back to technical.
	_, action = p.AddSegmentShock(sampleText, "nonexistent", 0)
	assert.Equal(t, "technical", action.Params["shock_type"])
}

func TestStylePerturbation_MagnitudeTiers(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(1)))

	weak, _ := p.StylePerturbation(sampleText, "poetic", 0.1)
	assert.True(t, strings.HasPrefix(weak, "(Slightly poetic:)"))

	medium, _ := p.StylePerturbation(sampleText, "poetic", 0.5)
	assert.True(t, strings.HasPrefix(medium, "Rewrite in poetic"))

	strong, _ := p.StylePerturbation(sampleText, "poetic", 0.9)
	assert.True(t, strings.HasPrefix(strong, "IMPORTANT:"))
}

func TestInjectNoise(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(9)))

	unchanged, _ := p.InjectNoise(sampleText, 0.0)
	assert.Equal(t, sampleText, unchanged)

	noisy, action := p.InjectNoise(sampleText, 1.0)
	assert.NotEqual(t, sampleText, noisy)
	assert.True(t, strings.HasPrefix(noisy, sampleText))
	assert.Equal(t, "3", action.Params["noise_words"])
}

func TestAmplifyTail(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(1)))

	weak, _ := p.AmplifyTail(0.1)
	strong, _ := p.AmplifyTail(0.9)
	assert.NotEqual(t, weak, strong)
	assert.True(t, strings.HasPrefix(strong, "IMPORTANT:"))
}

func TestApply_Replay(t *testing.T) {
	p := NewPerturber(rand.New(rand.NewSource(11)))

	_, action := p.InsertToken(sampleText, "<ANOMALY>", 4)
	replayed := p.Apply(sampleText, action)

	words := strings.Fields(replayed)
	require.Greater(t, len(words), 4)
	assert.Equal(t, "<ANOMALY>", words[4])

	// Unknown action types leave the text untouched.
	assert.Equal(t, sampleText, p.Apply(sampleText, Action{Type: ActionType("unknown")}))
}
