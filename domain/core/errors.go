package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrPassageNotFound    = fmt.Errorf("%w: passage", ErrNotFound)
	ErrExperimentNotFound = fmt.Errorf("%w: experiment", ErrNotFound)
	ErrTrialNotFound      = fmt.Errorf("%w: trial", ErrNotFound)

	// Statistical errors
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// Collaborator errors
	ErrModelQuery = errors.New("model query failed")
	ErrStore      = errors.New("result store failure")
)

// NewInsufficientDataError reports an operation given fewer observations than it requires.
func NewInsufficientDataError(operation string, got, need int) error {
	return fmt.Errorf("%w: %s requires n >= %d, got %d", ErrInsufficientData, operation, need, got)
}

// NewConfigError reports an invalid parameter value rejected before computation.
func NewConfigError(param string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, param, reason)
}

// NewModelQueryError wraps a provider failure for a specific model.
func NewModelQueryError(model string, err error) error {
	return fmt.Errorf("%w: model %s: %v", ErrModelQuery, model, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}
