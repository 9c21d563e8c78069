// Package experiment defines the persisted records of a perturbation
// experiment: the experiment header and its individual trials.
package experiment

import (
	"time"

	"driftlab/domain/core"
)

// Group separates the unperturbed baseline trials from the perturbed ones.
type Group string

const (
	GroupControl  Group = "control"
	GroupModified Group = "modified"
)

// Experiment is one passage/model/perturbation sweep.
type Experiment struct {
	ID         core.ExperimentID `db:"id" json:"id"`
	Label      string            `db:"label" json:"label"`
	PassageKey core.PassageKey   `db:"passage_key" json:"passage_key"`
	Model      string            `db:"model" json:"model"`
	ActionType string            `db:"action_type" json:"action_type"`
	Magnitude  float64           `db:"magnitude" json:"magnitude"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
}

// Trial is one model generation inside an experiment, with the metric
// values computed against the canonical text.
type Trial struct {
	ID           core.TrialID       `db:"id" json:"id"`
	ExperimentID core.ExperimentID  `db:"experiment_id" json:"experiment_id"`
	Group        Group              `db:"trial_group" json:"group"`
	Prompt       string             `db:"prompt" json:"prompt"`
	Output       string             `db:"output" json:"output"`
	Scores       map[string]float64 `db:"-" json:"scores"`
	TotalTokens  int                `db:"total_tokens" json:"total_tokens"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
}
