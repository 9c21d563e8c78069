// Package memory implements ports.TrialRepository in process memory. It
// backs tests and store-less CLI runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"driftlab/domain/core"
	"driftlab/domain/experiment"
	"driftlab/ports"
)

// TrialRepository is a thread-safe in-memory trial store
type TrialRepository struct {
	mu          sync.RWMutex
	experiments map[core.ExperimentID]*experiment.Experiment
	trials      map[core.ExperimentID][]*experiment.Trial
}

// NewTrialRepository creates an empty in-memory repository
func NewTrialRepository() *TrialRepository {
	return &TrialRepository{
		experiments: make(map[core.ExperimentID]*experiment.Experiment),
		trials:      make(map[core.ExperimentID][]*experiment.Trial),
	}
}

var _ ports.TrialRepository = (*TrialRepository)(nil)

func (r *TrialRepository) SaveExperiment(ctx context.Context, exp *experiment.Experiment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *exp
	r.experiments[exp.ID] = &cp
	return nil
}

func (r *TrialRepository) SaveTrial(ctx context.Context, trial *experiment.Trial) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.experiments[trial.ExperimentID]; !ok {
		return core.ErrExperimentNotFound
	}
	cp := *trial
	cp.Scores = make(map[string]float64, len(trial.Scores))
	for k, v := range trial.Scores {
		cp.Scores[k] = v
	}
	r.trials[trial.ExperimentID] = append(r.trials[trial.ExperimentID], &cp)
	return nil
}

func (r *TrialRepository) GetExperiment(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exp, ok := r.experiments[id]
	if !ok {
		return nil, core.ErrExperimentNotFound
	}
	cp := *exp
	return &cp, nil
}

func (r *TrialRepository) ListExperiments(ctx context.Context) ([]*experiment.Experiment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*experiment.Experiment, 0, len(r.experiments))
	for _, exp := range r.experiments {
		cp := *exp
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *TrialRepository) ListTrials(ctx context.Context, id core.ExperimentID) ([]*experiment.Trial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.experiments[id]; !ok {
		return nil, core.ErrExperimentNotFound
	}
	trials := r.trials[id]
	out := make([]*experiment.Trial, 0, len(trials))
	for _, t := range trials {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *TrialRepository) ListScores(ctx context.Context, id core.ExperimentID, metricName string) (map[experiment.Group][]float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.experiments[id]; !ok {
		return nil, core.ErrExperimentNotFound
	}
	out := make(map[experiment.Group][]float64)
	for _, t := range r.trials[id] {
		if value, ok := t.Scores[metricName]; ok {
			out[t.Group] = append(out[t.Group], value)
		}
	}
	return out, nil
}
