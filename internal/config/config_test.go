package config

import (
	"testing"

	"driftlab/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Experiment.TrialsPerGroup)
	assert.Equal(t, 0.95, cfg.Experiment.Confidence)
	assert.Equal(t, 10000, cfg.Experiment.Resamples)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 512, cfg.Model.MaxTokens)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DRIFTLAB_TRIALS", "25")
	t.Setenv("DRIFTLAB_CONFIDENCE", "0.99")
	t.Setenv("DRIFTLAB_MODEL", "anthropic/claude-3.5-sonnet")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Experiment.TrialsPerGroup)
	assert.Equal(t, 0.99, cfg.Experiment.Confidence)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", cfg.Model.DefaultModel)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"DRIFTLAB_CONFIDENCE", "1.5"},
		{"DRIFTLAB_SMOOTHING", "-0.1"},
		{"DRIFTLAB_RESAMPLES", "0"},
		{"DRIFTLAB_TRIALS", "1"},
		{"DRIFTLAB_CONCURRENCY", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.True(t, core.IsConfigError(err), "%s=%s must be rejected, got %v", tc.key, tc.value, err)
		})
	}
}
