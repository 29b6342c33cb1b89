package ai

import (
	"maxwell/internal/adapters/config"
	"maxwell/pkg/errors"
)

// BuildRegistry initializes a ProviderRegistry with all providers whose API
// keys are configured. Each provider gets its own in-memory rate limiter.
func BuildRegistry(cfg config.AIConfig) (*ProviderRegistry, error) {
	registry := NewProviderRegistry()

	if cfg.ClaudeKey != "" {
		limiter := NewRateLimiter(cfg.RequestsPerMin)
		if err := registry.Register(NewClaudeProvider(cfg.ClaudeKey, cfg.RequestTimeout, limiter)); err != nil {
			return nil, err
		}
	}

	if cfg.OpenAIKey != "" {
		limiter := NewRateLimiter(cfg.RequestsPerMin)
		if err := registry.Register(NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.RequestTimeout, limiter)); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no AI providers configured")
	}

	return registry, nil
}
