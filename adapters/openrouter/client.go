// Package openrouter implements ports.ModelClient against the OpenRouter
// chat completions API, which fronts many hosted models behind one key.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"driftlab/domain/core"
	"driftlab/ports"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Config holds client construction parameters
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Referer and Title are OpenRouter attribution headers, optional.
	Referer string
	Title   string
}

// Client implements ports.ModelClient for OpenRouter
type Client struct {
	apiKey  string
	baseURL string
	referer string
	title   string
	http    *http.Client
}

// NewClient creates an OpenRouter client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing OpenRouter API key", core.ErrInvalidConfig)
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		referer: cfg.Referer,
		title:   cfg.Title,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Generate(ctx context.Context, model string, prompt string, cfg ports.GenerationConfig) (*ports.Generation, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: missing model", core.ErrInvalidConfig)
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model       string             `json:"model"`
		Messages    []msg              `json:"messages"`
		MaxTokens   int                `json:"max_tokens,omitempty"`
		Temperature *float64           `json:"temperature,omitempty"`
		TopP        *float64           `json:"top_p,omitempty"`
		LogitBias   map[string]float64 `json:"logit_bias,omitempty"`
	}
	body := reqBody{
		Model:     model,
		Messages:  []msg{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
		LogitBias: cfg.LogitBias,
	}
	if cfg.Temperature > 0 {
		body.Temperature = &cfg.Temperature
	}
	if cfg.TopP > 0 {
		body.TopP = &cfg.TopP
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: request failed: %v", core.ErrModelQuery, model, err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", core.ErrModelQuery, model, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: http %d: %s", core.ErrModelQuery, model, resp.StatusCode, string(respRaw))
	}

	type choice struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	type respBody struct {
		Choices []choice `json:"choices"`
		Usage   struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: unmarshal response: %v", core.ErrModelQuery, model, err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s: response missing choices", core.ErrModelQuery, model)
	}

	return &ports.Generation{
		Text: decoded.Choices[0].Message.Content,
		Usage: &ports.Usage{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
			TotalTokens:      decoded.Usage.TotalTokens,
			Model:            model,
			Provider:         "openrouter",
		},
	}, nil
}
