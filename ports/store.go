package ports

import (
	"context"

	"driftlab/domain/core"
	"driftlab/domain/experiment"
)

// TrialRepository defines the interface for experiment persistence
type TrialRepository interface {
	// Save the experiment header before its trials
	SaveExperiment(ctx context.Context, exp *experiment.Experiment) error

	// Save one trial with its metric scores
	SaveTrial(ctx context.Context, trial *experiment.Trial) error

	// Get one experiment by id
	GetExperiment(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error)

	// List all experiments, newest first
	ListExperiments(ctx context.Context) ([]*experiment.Experiment, error)

	// List trials for an experiment in insertion order
	ListTrials(ctx context.Context, id core.ExperimentID) ([]*experiment.Trial, error)

	// List one metric's values for an experiment, split by trial group
	ListScores(ctx context.Context, id core.ExperimentID, metricName string) (map[experiment.Group][]float64, error)
}
