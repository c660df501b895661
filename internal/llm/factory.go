package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/persona/internal/logger"
)

// NewProvider builds the provider selected by cfg and wraps it as
// caller → retry → logging → provider. repo may be nil.
func NewProvider(ctx context.Context, cfg Config, repo RequestLog, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, repo, log), cfg.Retry), nil
}

// NewProviderFromConfig uses cfg when it names a provider and otherwise
// falls back to DiscoverConfig. It returns ErrNotConfigured when neither
// yields a provider.
func NewProviderFromConfig(ctx context.Context, cfg Config, repo RequestLog, log *logger.Logger) (Provider, error) {
	if cfg.Provider == "" {
		found, ok := DiscoverConfig(cfg)
		if !ok {
			return nil, ErrNotConfigured
		}
		cfg = found
	}
	return NewProvider(ctx, cfg, repo, log)
}
