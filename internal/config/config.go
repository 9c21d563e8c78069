package config

import (
	"os"
	"strconv"
	"time"

	"driftlab/domain/core"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Model      ModelConfig
	Server     ServerConfig
	Experiment ExperimentConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ModelConfig holds model provider settings
type ModelConfig struct {
	OpenRouterKey string
	DefaultModel  string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// ExperimentConfig holds statistical and sweep knobs
type ExperimentConfig struct {
	TrialsPerGroup int
	MaxConcurrency int
	Confidence     float64
	Smoothing      float64
	Resamples      int
	Seed           int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Model: ModelConfig{
			OpenRouterKey: os.Getenv("OPENROUTER_API_KEY"),
			DefaultModel:  getEnvOrDefault("DRIFTLAB_MODEL", "openai/gpt-4o"),
			MaxTokens:     getEnvIntOrDefault("DRIFTLAB_MAX_TOKENS", 512),
			Temperature:   getEnvFloatOrDefault("DRIFTLAB_TEMPERATURE", 0.0),
			Timeout:       getEnvDurationOrDefault("DRIFTLAB_TIMEOUT", 60*time.Second),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Experiment: ExperimentConfig{
			TrialsPerGroup: getEnvIntOrDefault("DRIFTLAB_TRIALS", 10),
			MaxConcurrency: getEnvIntOrDefault("DRIFTLAB_CONCURRENCY", 4),
			Confidence:     getEnvFloatOrDefault("DRIFTLAB_CONFIDENCE", 0.95),
			Smoothing:      getEnvFloatOrDefault("DRIFTLAB_SMOOTHING", 1e-10),
			Resamples:      getEnvIntOrDefault("DRIFTLAB_RESAMPLES", 10000),
			Seed:           int64(getEnvIntOrDefault("DRIFTLAB_SEED", 0)),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	exp := config.Experiment
	if exp.Confidence <= 0 || exp.Confidence >= 1 {
		return core.NewConfigError("DRIFTLAB_CONFIDENCE", "must be in (0, 1)")
	}
	if exp.Smoothing < 0 {
		return core.NewConfigError("DRIFTLAB_SMOOTHING", "must be non-negative")
	}
	if exp.Resamples < 1 {
		return core.NewConfigError("DRIFTLAB_RESAMPLES", "must be positive")
	}
	if exp.TrialsPerGroup < 2 {
		return core.NewConfigError("DRIFTLAB_TRIALS", "must be at least 2 per group")
	}
	if exp.MaxConcurrency < 1 {
		return core.NewConfigError("DRIFTLAB_CONCURRENCY", "must be positive")
	}
	if config.Model.MaxTokens < 1 {
		return core.NewConfigError("DRIFTLAB_MAX_TOKENS", "must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
