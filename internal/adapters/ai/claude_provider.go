package ai

import (
	"context"
	"time"

	"maxwell/pkg/errors"
)

// ClaudeProvider implements ChatProvider against the Anthropic messages API.
type ClaudeProvider struct {
	apiKey  string
	timeout time.Duration
	limiter RateLimiter
	models  map[string]ModelInfo
}

// NewClaudeProvider creates a Claude provider.
func NewClaudeProvider(apiKey string, timeout time.Duration, limiter RateLimiter) *ClaudeProvider {
	if limiter == nil {
		limiter = NewNoOpLimiter()
	}
	return &ClaudeProvider{
		apiKey:  apiKey,
		timeout: timeout,
		limiter: limiter,
		models:  claudeModels(),
	}
}

// Name returns the provider identifier.
func (p *ClaudeProvider) Name() string {
	return ProviderNameClaude.String()
}

// GetModel returns metadata for the given model.
func (p *ClaudeProvider) GetModel(ctx context.Context, model string) (ModelInfo, error) {
	info, ok := p.models[model]
	if !ok {
		return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "claude model %q", model)
	}
	return info, nil
}

// ListModels returns all known Claude models.
func (p *ClaudeProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models := make([]ModelInfo, 0, len(p.models))
	for _, info := range p.models {
		models = append(models, info)
	}
	return models, nil
}

// SupportsTools indicates Claude supports tool calling.
func (p *ClaudeProvider) SupportsTools() bool {
	return true
}

func claudeModels() map[string]ModelInfo {
	models := []ModelInfo{
		{
			Name:            "claude-3-5-sonnet-latest",
			Family:          "claude-3-5",
			MaxTokens:       8192,
			InputCostPer1K:  0.003,
			OutputCostPer1K: 0.015,
			SupportsTools:   true,
		},
		{
			Name:            "claude-3-5-haiku-latest",
			Family:          "claude-3-5",
			MaxTokens:       8192,
			InputCostPer1K:  0.0008,
			OutputCostPer1K: 0.004,
			SupportsTools:   true,
		},
		{
			Name:            "claude-3-opus-latest",
			Family:          "claude-3",
			MaxTokens:       4096,
			InputCostPer1K:  0.015,
			OutputCostPer1K: 0.075,
			SupportsTools:   true,
		},
	}

	byName := make(map[string]ModelInfo, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}
	return byName
}
