// Package postgres implements ports.TrialRepository on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"driftlab/domain/core"
	"driftlab/domain/experiment"
	"driftlab/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a postgres connection pool and verifies it.
func Connect(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("%w: missing DATABASE_URL", core.ErrInvalidConfig)
	}
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", core.ErrStore, err)
	}
	return db, nil
}

// TrialRepositoryImpl implements TrialRepository for PostgreSQL
type TrialRepositoryImpl struct {
	db *sqlx.DB
}

// NewTrialRepository creates a new PostgreSQL trial repository
func NewTrialRepository(db *sqlx.DB) *TrialRepositoryImpl {
	return &TrialRepositoryImpl{db: db}
}

var _ ports.TrialRepository = (*TrialRepositoryImpl)(nil)

// EnsureSchema creates the experiment tables if they do not exist.
func (r *TrialRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS experiments (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			passage_key TEXT NOT NULL,
			model TEXT NOT NULL,
			action_type TEXT NOT NULL,
			magnitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS trials (
			id TEXT PRIMARY KEY,
			experiment_id TEXT NOT NULL REFERENCES experiments(id),
			trial_group TEXT NOT NULL,
			prompt TEXT NOT NULL,
			output TEXT NOT NULL,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS trial_scores (
			trial_id TEXT NOT NULL REFERENCES trials(id),
			metric_name TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (trial_id, metric_name)
		);
		CREATE INDEX IF NOT EXISTS idx_trials_experiment ON trials(experiment_id);
	`)
	if err != nil {
		return fmt.Errorf("%w: ensure schema: %v", core.ErrStore, err)
	}
	return nil
}

// SaveExperiment persists an experiment header
func (r *TrialRepositoryImpl) SaveExperiment(ctx context.Context, exp *experiment.Experiment) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO experiments (id, label, passage_key, model, action_type, magnitude, created_at)
		VALUES (:id, :label, :passage_key, :model, :action_type, :magnitude, :created_at)
	`, exp)
	if err != nil {
		return fmt.Errorf("%w: save experiment %s: %v", core.ErrStore, exp.ID, err)
	}
	return nil
}

// SaveTrial persists a trial and its metric scores
func (r *TrialRepositoryImpl) SaveTrial(ctx context.Context, trial *experiment.Trial) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", core.ErrStore, err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO trials (id, experiment_id, trial_group, prompt, output, total_tokens, created_at)
		VALUES (:id, :experiment_id, :trial_group, :prompt, :output, :total_tokens, :created_at)
	`, trial)
	if err != nil {
		return fmt.Errorf("%w: save trial %s: %v", core.ErrStore, trial.ID, err)
	}

	for name, value := range trial.Scores {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO trial_scores (trial_id, metric_name, value) VALUES ($1, $2, $3)
		`, trial.ID, name, value)
		if err != nil {
			return fmt.Errorf("%w: save score %s for trial %s: %v", core.ErrStore, name, trial.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit trial %s: %v", core.ErrStore, trial.ID, err)
	}
	return nil
}

// GetExperiment retrieves one experiment by id
func (r *TrialRepositoryImpl) GetExperiment(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	var exp experiment.Experiment
	err := r.db.GetContext(ctx, &exp, `
		SELECT id, label, passage_key, model, action_type, magnitude, created_at
		FROM experiments WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrExperimentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get experiment %s: %v", core.ErrStore, id, err)
	}
	return &exp, nil
}

// ListExperiments retrieves all experiments, newest first
func (r *TrialRepositoryImpl) ListExperiments(ctx context.Context) ([]*experiment.Experiment, error) {
	var exps []*experiment.Experiment
	err := r.db.SelectContext(ctx, &exps, `
		SELECT id, label, passage_key, model, action_type, magnitude, created_at
		FROM experiments ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list experiments: %v", core.ErrStore, err)
	}
	return exps, nil
}

// ListTrials retrieves an experiment's trials with their scores attached
func (r *TrialRepositoryImpl) ListTrials(ctx context.Context, id core.ExperimentID) ([]*experiment.Trial, error) {
	var trials []*experiment.Trial
	err := r.db.SelectContext(ctx, &trials, `
		SELECT id, experiment_id, trial_group, prompt, output, total_tokens, created_at
		FROM trials WHERE experiment_id = $1 ORDER BY created_at ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: list trials for %s: %v", core.ErrStore, id, err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT s.trial_id, s.metric_name, s.value
		FROM trial_scores s JOIN trials t ON t.id = s.trial_id
		WHERE t.experiment_id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: list scores for %s: %v", core.ErrStore, id, err)
	}
	defer rows.Close()

	byTrial := make(map[core.TrialID]map[string]float64)
	for rows.Next() {
		var trialID core.TrialID
		var name string
		var value float64
		if err := rows.Scan(&trialID, &name, &value); err != nil {
			return nil, fmt.Errorf("%w: scan score: %v", core.ErrStore, err)
		}
		if byTrial[trialID] == nil {
			byTrial[trialID] = make(map[string]float64)
		}
		byTrial[trialID][name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate scores: %v", core.ErrStore, err)
	}

	for _, trial := range trials {
		trial.Scores = byTrial[trial.ID]
	}
	return trials, nil
}

// ListScores retrieves one metric's values for an experiment, split by group
func (r *TrialRepositoryImpl) ListScores(ctx context.Context, id core.ExperimentID, metricName string) (map[experiment.Group][]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.trial_group, s.value
		FROM trial_scores s JOIN trials t ON t.id = s.trial_id
		WHERE t.experiment_id = $1 AND s.metric_name = $2
		ORDER BY t.created_at ASC
	`, id, metricName)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s scores for %s: %v", core.ErrStore, metricName, id, err)
	}
	defer rows.Close()

	out := make(map[experiment.Group][]float64)
	for rows.Next() {
		var group experiment.Group
		var value float64
		if err := rows.Scan(&group, &value); err != nil {
			return nil, fmt.Errorf("%w: scan score: %v", core.ErrStore, err)
		}
		out[group] = append(out[group], value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate scores: %v", core.ErrStore, err)
	}
	return out, nil
}
