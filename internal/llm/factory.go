package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

// NewProvider creates a Provider from configuration.
// The base provider is wrapped as caller → timeout → logging → base, so
// each logged call carries its own deadline. events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, events, logger)
	return WithTimeout(logged, cfg.Timeout), nil
}

// Resolve upgrades the default mock provider to a real one when a vendor
// API key variable (GEMINI_API_KEY and so on) is exported and the
// provider was not chosen explicitly. Other settings in cfg are kept.
func Resolve(cfg Config) Config {
	if cfg.Provider != "mock" || os.Getenv("CLARIO_LLM_PROVIDER") != "" {
		return cfg
	}
	for _, p := range providerKeys {
		if k := os.Getenv(p.vendor); k != "" {
			cfg.Provider = p.name
			*p.key(&cfg) = k
			return cfg
		}
	}
	return cfg
}
