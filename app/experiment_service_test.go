package app

import (
	"context"
	"strings"
	"sync"
	"testing"

	"driftlab/adapters/memory"
	"driftlab/domain/core"
	"driftlab/domain/experiment"
	"driftlab/internal/canon"
	"driftlab/internal/compare"
	"driftlab/internal/config"
	"driftlab/internal/perturb"
	"driftlab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient answers control prompts with near-perfect recall and any
// perturbed prompt with degraded text. Small per-call variation keeps the
// group variances nonzero.
type scriptedClient struct {
	mu            sync.Mutex
	controlPrompt string
	target        string
	calls         int
}

func (c *scriptedClient) Generate(ctx context.Context, model, prompt string, cfg ports.GenerationConfig) (*ports.Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	text := c.target
	if prompt != c.controlPrompt {
		text = "An entirely unrelated answer about something else altogether."
		if c.calls%2 == 0 {
			text += " Truly."
		}
	} else if c.calls%2 == 0 {
		words := strings.Fields(text)
		text = strings.Join(words[:len(words)-1], " ")
	}
	return &ports.Generation{
		Text:  text,
		Usage: &ports.Usage{TotalTokens: len(strings.Fields(text)), Model: model},
	}, nil
}

func testConfig() config.ExperimentConfig {
	return config.ExperimentConfig{
		TrialsPerGroup: 4,
		MaxConcurrency: 2,
		Confidence:     0.95,
		Resamples:      2000,
		Seed:           42,
	}
}

func newTestService(t *testing.T, passageKey core.PassageKey) (*ExperimentService, *memory.TrialRepository) {
	t.Helper()

	p, err := canon.NewRegistry().Get(passageKey)
	require.NoError(t, err)
	stem, target := splitPassage(p.Text)

	client := &scriptedClient{controlPrompt: completionPrompt(stem), target: target}
	repo := memory.NewTrialRepository()
	svc := NewExperimentService(client, repo, testConfig(), config.ModelConfig{
		DefaultModel: "test/model",
		MaxTokens:    256,
	})
	return svc, repo
}

func TestRun(t *testing.T) {
	svc, repo := newTestService(t, "hamlet_to_be")

	res, err := svc.Run(context.Background(), ExperimentRequest{
		Label:      "token_insertion",
		PassageKey: "hamlet_to_be",
		Variant:    perturb.ActionTokenInsertion,
	})
	require.NoError(t, err)

	assert.Len(t, res.Trials, 8)
	assert.Greater(t, res.Analysis.Control.Mean, res.Analysis.Modified.Mean)
	assert.True(t, res.Analysis.Test.Significant, "p = %v", res.Analysis.Test.PValue)
	assert.Greater(t, res.Stability, 0.5, "near-identical control outputs should score as stable")

	// Everything landed in the store.
	saved, err := repo.GetExperiment(context.Background(), res.Experiment.ID)
	require.NoError(t, err)
	assert.Equal(t, "token_insertion", saved.Label)
	assert.Equal(t, "test/model", saved.Model)

	trials, err := repo.ListTrials(context.Background(), res.Experiment.ID)
	require.NoError(t, err)
	assert.Len(t, trials, 8)
	for _, trial := range trials {
		assert.Contains(t, trial.Scores, compare.MetricMemorization)
		assert.Contains(t, trial.Scores, compare.MetricKLDivergence)
	}

	byGroup, err := repo.ListScores(context.Background(), res.Experiment.ID, compare.MetricMemorization)
	require.NoError(t, err)
	assert.Len(t, byGroup[experiment.GroupControl], 4)
	assert.Len(t, byGroup[experiment.GroupModified], 4)
}

func TestRun_AllVariants(t *testing.T) {
	for _, variant := range Variants() {
		t.Run(string(variant), func(t *testing.T) {
			svc, _ := newTestService(t, "dickens_two_cities")

			res, err := svc.Run(context.Background(), ExperimentRequest{
				Label:      string(variant),
				PassageKey: "dickens_two_cities",
				Variant:    variant,
				Magnitude:  0.8,
			})
			require.NoError(t, err)
			assert.Equal(t, string(variant), res.Experiment.ActionType)
			assert.Greater(t, res.Analysis.Control.Mean, res.Analysis.Modified.Mean)
		})
	}
}

func TestRun_UnknownVariant(t *testing.T) {
	svc, _ := newTestService(t, "hamlet_to_be")

	_, err := svc.Run(context.Background(), ExperimentRequest{
		Label:      "bad",
		PassageKey: "hamlet_to_be",
		Variant:    perturb.ActionType("chaos"),
	})
	assert.True(t, core.IsConfigError(err))
}

func TestRun_UnknownPassage(t *testing.T) {
	svc, _ := newTestService(t, "hamlet_to_be")

	_, err := svc.Run(context.Background(), ExperimentRequest{
		Label:      "missing",
		PassageKey: "no_such_passage",
		Variant:    perturb.ActionTokenInsertion,
	})
	assert.True(t, core.IsNotFoundError(err))
}

func TestAnalyzeStored(t *testing.T) {
	svc, _ := newTestService(t, "hamlet_to_be")

	res, err := svc.Run(context.Background(), ExperimentRequest{
		Label:      "token_insertion",
		PassageKey: "hamlet_to_be",
		Variant:    perturb.ActionTokenInsertion,
	})
	require.NoError(t, err)

	analysis, err := svc.AnalyzeStored(context.Background(), res.Experiment.ID, compare.MetricMemorization)
	require.NoError(t, err)
	assert.Equal(t, "token_insertion", analysis.Label)
	assert.InDelta(t, res.Analysis.Control.Mean, analysis.Control.Mean, 1e-9)

	_, err = svc.AnalyzeStored(context.Background(), core.ExperimentID("missing"), compare.MetricMemorization)
	assert.True(t, core.IsNotFoundError(err))
}

// echoClient returns exactly the expected continuation for any prompt.
type echoClient struct {
	registry *canon.Registry
}

func (c *echoClient) Generate(ctx context.Context, model, prompt string, cfg ports.GenerationConfig) (*ports.Generation, error) {
	for _, p := range c.registry.All() {
		stem, target := splitPassage(p.Text)
		if prompt == completionPrompt(stem) {
			return &ports.Generation{Text: target}, nil
		}
	}
	return &ports.Generation{Text: "no recall"}, nil
}

func TestValidateMemorization(t *testing.T) {
	repo := memory.NewTrialRepository()
	svc := NewExperimentService(&echoClient{registry: canon.NewRegistry()}, repo, testConfig(), config.ModelConfig{
		DefaultModel: "test/model",
	})

	results, err := svc.ValidateMemorization(context.Background(), "", canon.SuiteMinimal)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, v := range results {
		assert.True(t, v.Memorized, "passage %s should validate under perfect recall", v.Key)
		assert.InDelta(t, 1.0, v.Score, 1e-9)
	}
}
