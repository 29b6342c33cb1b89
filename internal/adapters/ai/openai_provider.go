package ai

import (
	"context"
	"strings"
	"time"

	"maxwell/pkg/errors"
)

// OpenAIProvider implements ChatProvider against any OpenAI-compatible
// chat completions endpoint.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	limiter RateLimiter
	models  map[string]ModelInfo
}

// NewOpenAIProvider creates an OpenAI provider. baseURL defaults to the
// official API when empty.
func NewOpenAIProvider(apiKey, baseURL string, timeout time.Duration, limiter RateLimiter) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if limiter == nil {
		limiter = NewNoOpLimiter()
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: limiter,
		models:  openAIModels(),
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return ProviderNameOpenAI.String()
}

// GetModel returns metadata for the given model.
func (p *OpenAIProvider) GetModel(ctx context.Context, model string) (ModelInfo, error) {
	info, ok := p.models[model]
	if !ok {
		return ModelInfo{}, errors.Wrapf(errors.ErrNotFound, "openai model %q", model)
	}
	return info, nil
}

// ListModels returns all known OpenAI models.
func (p *OpenAIProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	models := make([]ModelInfo, 0, len(p.models))
	for _, info := range p.models {
		models = append(models, info)
	}
	return models, nil
}

// SupportsTools indicates OpenAI supports tool calling.
func (p *OpenAIProvider) SupportsTools() bool {
	return true
}

func openAIModels() map[string]ModelInfo {
	models := []ModelInfo{
		{
			Name:            "gpt-4o",
			Family:          "gpt-4o",
			MaxTokens:       16384,
			InputCostPer1K:  0.0025,
			OutputCostPer1K: 0.01,
			SupportsTools:   true,
		},
		{
			Name:            "gpt-4o-mini",
			Family:          "gpt-4o",
			MaxTokens:       16384,
			InputCostPer1K:  0.00015,
			OutputCostPer1K: 0.0006,
			SupportsTools:   true,
		},
	}

	byName := make(map[string]ModelInfo, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}
	return byName
}
