package ports

import "context"

// Usage represents raw usage data from model provider APIs
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// Generation is one model completion with its usage data
type Generation struct {
	Text  string
	Usage *Usage
}

// GenerationConfig carries the sampling knobs a trial may pin down.
// Zero values mean provider defaults.
type GenerationConfig struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	LogitBias   map[string]float64
}

// ModelClient interface for model providers
type ModelClient interface {
	Generate(ctx context.Context, model string, prompt string, cfg GenerationConfig) (*Generation, error)
}
