package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"driftlab/adapters/memory"
	"driftlab/app"
	"driftlab/domain/experiment"
	"driftlab/domain/report"
	"driftlab/internal/config"
	"driftlab/internal/perturb"
	"driftlab/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wobbleClient returns slightly different text on every call so group
// variances stay nonzero.
type wobbleClient struct {
	mu    sync.Mutex
	calls int
}

func (c *wobbleClient) Generate(ctx context.Context, model, prompt string, cfg ports.GenerationConfig) (*ports.Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	text := "that is the question whether tis nobler" + strings.Repeat(" indeed", c.calls%3)
	return &ports.Generation{Text: text, Usage: &ports.Usage{TotalTokens: 10}}, nil
}

func newTestApp(t *testing.T) (*App, *experiment.Experiment) {
	t.Helper()

	repo := memory.NewTrialRepository()
	svc := app.NewExperimentService(&wobbleClient{}, repo, config.ExperimentConfig{
		TrialsPerGroup: 4,
		MaxConcurrency: 2,
		Confidence:     0.95,
		Resamples:      500,
		Seed:           42,
	}, config.ModelConfig{DefaultModel: "test/model", MaxTokens: 128})

	res, err := svc.Run(context.Background(), app.ExperimentRequest{
		Label:      "token_insertion",
		PassageKey: "hamlet_to_be",
		Variant:    perturb.ActionTokenInsertion,
	})
	require.NoError(t, err)

	return NewApp(repo, svc), res.Experiment
}

func TestHealthz(t *testing.T) {
	a, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListExperiments(t *testing.T) {
	a, exp := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiments", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count       int                      `json:"count"`
		Experiments []*experiment.Experiment `json:"experiments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, exp.ID, body.Experiments[0].ID)
}

func TestGetExperiment(t *testing.T) {
	a, exp := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiments/"+exp.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Trials []*experiment.Trial `json:"trials"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Trials, 8)
}

func TestGetExperiment_NotFound(t *testing.T) {
	a, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiments/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalysis(t *testing.T) {
	a, exp := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/experiments/"+exp.ID.String()+"/analysis", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis report.PairAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "token_insertion", analysis.Label)
	assert.Equal(t, 4, analysis.Control.N)
	assert.Equal(t, 4, analysis.Modified.N)
}

func TestReport(t *testing.T) {
	a, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Divergence Report")
	assert.Contains(t, rec.Body.String(), "token_insertion")
}
