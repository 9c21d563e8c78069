// Package app orchestrates experiments: it drives the model client,
// computes metric collections for each trial, persists results, and runs
// the inferential analysis over the stored scores.
package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"driftlab/domain/core"
	"driftlab/domain/experiment"
	"driftlab/domain/report"
	"driftlab/internal/canon"
	"driftlab/internal/compare"
	"driftlab/internal/config"
	"driftlab/internal/inference"
	"driftlab/internal/perturb"
	"driftlab/ports"

	"golang.org/x/sync/semaphore"
)

// ExperimentService runs perturbation experiments end to end
type ExperimentService struct {
	client    ports.ModelClient
	repo      ports.TrialRepository
	registry  *canon.Registry
	perturber *perturb.Perturber
	suite     *compare.Suite
	analyzer  *inference.Analyzer
	cfg       config.ExperimentConfig
	model     config.ModelConfig
	rng       *rand.Rand
}

// NewExperimentService creates an experiment service. A zero seed in the
// experiment config draws a time-based one.
func NewExperimentService(client ports.ModelClient, repo ports.TrialRepository, cfg config.ExperimentConfig, model config.ModelConfig) *ExperimentService {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &ExperimentService{
		client:    client,
		repo:      repo,
		registry:  canon.NewRegistry(),
		perturber: perturb.NewPerturber(rand.New(rand.NewSource(seed + 1))),
		suite:     compare.NewSuite(),
		analyzer:  inference.NewAnalyzer(),
		cfg:       cfg,
		model:     model,
		rng:       rng,
	}
}

// ExperimentRequest defines one passage/model/perturbation sweep
type ExperimentRequest struct {
	Label      string
	PassageKey core.PassageKey
	Model      string
	Variant    perturb.ActionType
	Magnitude  float64
	// Direction selects the style vector for style perturbations.
	Direction string
}

// ExperimentResult is the in-memory outcome of a completed sweep
type ExperimentResult struct {
	Experiment *experiment.Experiment
	Trials     []*experiment.Trial
	Analysis   report.PairAnalysis
	// Stability is the control group's self-consistency score.
	Stability float64
}

// Variants returns the perturbation suite in its canonical run order.
func Variants() []perturb.ActionType {
	return []perturb.ActionType{
		perturb.ActionTokenInsertion,
		perturb.ActionTokenSubstitution,
		perturb.ActionStylePerturbation,
		perturb.ActionTailAmplification,
		perturb.ActionSegmentShock,
	}
}

// Run executes a full experiment: control and modified trial batches,
// per-trial metrics, persistence, then a paired analysis over the
// memorization scores.
func (s *ExperimentService) Run(ctx context.Context, req ExperimentRequest) (*ExperimentResult, error) {
	passage, err := s.registry.Get(req.PassageKey)
	if err != nil {
		return nil, err
	}
	model := req.Model
	if model == "" {
		model = s.model.DefaultModel
	}

	stem, target := splitPassage(passage.Text)
	controlPrompt := completionPrompt(stem)
	modifiedPrompt, action, err := s.perturbPrompt(stem, req)
	if err != nil {
		return nil, err
	}

	exp := &experiment.Experiment{
		ID:         core.ExperimentID(core.NewID()),
		Label:      req.Label,
		PassageKey: req.PassageKey,
		Model:      model,
		ActionType: string(action.Type),
		Magnitude:  action.Magnitude,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.SaveExperiment(ctx, exp); err != nil {
		return nil, err
	}

	log.Printf("[ExperimentService] %s: passage=%s model=%s variant=%s trials=%d/group",
		req.Label, req.PassageKey, model, action.Type, s.cfg.TrialsPerGroup)

	control, err := s.runGroup(ctx, exp, experiment.GroupControl, controlPrompt, target)
	if err != nil {
		return nil, err
	}
	modified, err := s.runGroup(ctx, exp, experiment.GroupModified, modifiedPrompt, target)
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.AnalyzePairWith(
		scores(control, compare.MetricMemorization),
		scores(modified, compare.MetricMemorization),
		req.Label, s.rng, s.cfg.Resamples, s.cfg.Confidence)
	if err != nil {
		return nil, err
	}

	stability := compare.NewTrajectory().StabilityScore(outputs(control), target)

	log.Printf("[ExperimentService] %s: control=%.4f modified=%.4f p=%.4g effect=%s",
		req.Label, analysis.Control.Mean, analysis.Modified.Mean,
		analysis.Test.PValue, analysis.Test.EffectLabel)

	trials := append(append([]*experiment.Trial{}, control...), modified...)
	return &ExperimentResult{
		Experiment: exp,
		Trials:     trials,
		Analysis:   analysis,
		Stability:  stability.Value,
	}, nil
}

// runGroup executes one trial batch, bounded by the configured concurrency.
// Trials keep their index order so paired analysis stays aligned.
func (s *ExperimentService) runGroup(ctx context.Context, exp *experiment.Experiment, group experiment.Group, prompt, target string) ([]*experiment.Trial, error) {
	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrency))
	trials := make([]*experiment.Trial, s.cfg.TrialsPerGroup)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for i := 0; i < s.cfg.TrialsPerGroup; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("acquire trial slot: %w", err)
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer sem.Release(1)

			trial, err := s.runTrial(ctx, exp, group, prompt, target)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			trials[idx] = trial
		}(i)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return trials, nil
}

func (s *ExperimentService) runTrial(ctx context.Context, exp *experiment.Experiment, group experiment.Group, prompt, target string) (*experiment.Trial, error) {
	gen, err := s.client.Generate(ctx, exp.Model, prompt, ports.GenerationConfig{
		MaxTokens:   s.model.MaxTokens,
		Temperature: s.model.Temperature,
	})
	if err != nil {
		return nil, err
	}

	collection := s.suite.ComputeAllMetrics(gen.Text, target, nil)
	trial := &experiment.Trial{
		ID:           core.TrialID(core.NewID()),
		ExperimentID: exp.ID,
		Group:        group,
		Prompt:       prompt,
		Output:       gen.Text,
		Scores:       s.suite.Summarize(collection),
		CreatedAt:    time.Now().UTC(),
	}
	if gen.Usage != nil {
		trial.TotalTokens = gen.Usage.TotalTokens
	}

	if err := s.repo.SaveTrial(ctx, trial); err != nil {
		return nil, err
	}
	return trial, nil
}

// AnalyzeStored reruns the paired analysis for a persisted experiment.
func (s *ExperimentService) AnalyzeStored(ctx context.Context, id core.ExperimentID, metricName string) (report.PairAnalysis, error) {
	exp, err := s.repo.GetExperiment(ctx, id)
	if err != nil {
		return report.PairAnalysis{}, err
	}
	byGroup, err := s.repo.ListScores(ctx, id, metricName)
	if err != nil {
		return report.PairAnalysis{}, err
	}
	return s.analyzer.AnalyzePairWith(
		byGroup[experiment.GroupControl],
		byGroup[experiment.GroupModified],
		exp.Label, s.rng, s.cfg.Resamples, s.cfg.Confidence)
}

// ValidateMemorization checks which suite passages a model can actually
// reproduce. Passages that fail should be excluded from sweeps.
func (s *ExperimentService) ValidateMemorization(ctx context.Context, model string, size canon.SuiteSize) ([]canon.Validation, error) {
	if model == "" {
		model = s.model.DefaultModel
	}
	passages := s.registry.Suite(size)
	out := make([]canon.Validation, 0, len(passages))
	for _, p := range passages {
		stem, target := splitPassage(p.Text)
		gen, err := s.client.Generate(ctx, model, completionPrompt(stem), ports.GenerationConfig{
			MaxTokens:   s.model.MaxTokens,
			Temperature: s.model.Temperature,
		})
		if err != nil {
			return nil, err
		}
		v := canon.ValidateReproduction(canon.Passage{Key: p.Key, Text: target}, gen.Text)
		log.Printf("[ExperimentService] validate %s on %s: score=%.3f memorized=%v", p.Key, model, v.Score, v.Memorized)
		out = append(out, v)
	}
	return out, nil
}

// perturbPrompt applies the requested variant to the prompt stem.
func (s *ExperimentService) perturbPrompt(stem string, req ExperimentRequest) (string, perturb.Action, error) {
	magnitude := req.Magnitude
	if magnitude <= 0 {
		magnitude = 1.0
	}

	switch req.Variant {
	case perturb.ActionTokenInsertion:
		modified, action := s.perturber.InsertToken(stem, "", -1)
		return completionPrompt(modified), action, nil
	case perturb.ActionTokenSubstitution:
		modified, action := s.perturber.SubstituteToken(stem, "", "")
		return completionPrompt(modified), action, nil
	case perturb.ActionSegmentShock:
		// Mid-sequence shock lands at the middle word boundary.
		mid := len(strings.Fields(stem)) / 2
		modified, action := s.perturber.AddSegmentShock(stem, req.Direction, mid)
		return completionPrompt(modified), action, nil
	case perturb.ActionStylePerturbation:
		direction := req.Direction
		if direction == "" {
			direction = "technical"
		}
		modified, action := s.perturber.StylePerturbation(stem, direction, magnitude)
		return completionPrompt(modified), action, nil
	case perturb.ActionNoiseInjection:
		modified, action := s.perturber.InjectNoise(stem, magnitude)
		return completionPrompt(modified), action, nil
	case perturb.ActionTailAmplification:
		modifier, action := s.perturber.AmplifyTail(magnitude)
		return modifier + completionPrompt(stem), action, nil
	default:
		return "", perturb.Action{}, core.NewConfigError("variant", fmt.Sprintf("unknown perturbation %q", req.Variant))
	}
}

// splitPassage cuts a passage at its middle word boundary: the first half
// seeds the prompt, the second half is the expected completion.
func splitPassage(text string) (stem, target string) {
	words := strings.Fields(text)
	cut := len(words) / 2
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}

func completionPrompt(stem string) string {
	return fmt.Sprintf("Continue this famous text exactly as the original does. Reply with the continuation only.\n\n%s", stem)
}

func scores(trials []*experiment.Trial, metricName string) []float64 {
	out := make([]float64, 0, len(trials))
	for _, t := range trials {
		out = append(out, t.Scores[metricName])
	}
	return out
}

func outputs(trials []*experiment.Trial) []string {
	out := make([]string, 0, len(trials))
	for _, t := range trials {
		out = append(out, t.Output)
	}
	return out
}
