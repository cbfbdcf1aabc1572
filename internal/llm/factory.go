package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/qgen/internal/store"
)

// NewProvider builds the provider named by cfg.Provider and wraps it as
//
//	caller -> timeout -> retry -> logging -> backend
//
// Retry is left out unless more than one attempt is configured.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return wrap(backend, cfg, events), nil
}

func newBackend(ctx context.Context, cfg Config) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch cfg.Provider {
	case "kimi":
		p, err = NewKimiProvider(cfg.Kimi)
	case "deepseek":
		p, err = NewDeepSeekProvider(cfg.DeepSeek)
	case "openrouter":
		p, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "openai":
		p, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		p, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		p, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		p = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}
	return p, nil
}

func wrap(p Provider, cfg Config, events store.EventRepo) Provider {
	p = WithLogging(p, cfg.Provider, events)
	if cfg.Retry.MaxAttempts > 1 {
		p = WithRetry(p, cfg.Retry)
	}
	return WithTimeout(p, cfg.Timeout)
}
