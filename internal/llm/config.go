package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects and configures the question generation provider.
type Config struct {
	// Provider is one of anthropic, openai, gemini, openrouter or mock.
	// The mock provider has no responses queued, so every session built
	// on it draws from the question bank.
	Provider string `yaml:"provider" validate:"oneof=anthropic openai gemini openrouter mock"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	// Timeout bounds a single provider call, not the retry loop around it.
	// Default: 15s.
	Timeout time.Duration `yaml:"timeout"`

	MaxTokens   int     `yaml:"max_tokens" validate:"min=0"`
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

// OpenAIConfig also serves any chat-completions compatible endpoint.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional. Override for compatible APIs.
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

func DefaultConfig() Config {
	return Config{
		Provider:    "mock",
		Anthropic:   AnthropicConfig{Model: "claude-haiku"},
		OpenAI:      OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:      GeminiConfig{Model: "gemini-flash"},
		OpenRouter:  OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Timeout:     15 * time.Second,
		MaxTokens:   2048,
		Temperature: 0.8,
	}
}

// providerKeys lists the providers that need an API key, in the order
// Resolve probes their vendor variables.
var providerKeys = []struct {
	name   string
	vendor string
	key    func(*Config) *string
}{
	{"gemini", "GEMINI_API_KEY", func(c *Config) *string { return &c.Gemini.APIKey }},
	{"openai", "OPENAI_API_KEY", func(c *Config) *string { return &c.OpenAI.APIKey }},
	{"anthropic", "ANTHROPIC_API_KEY", func(c *Config) *string { return &c.Anthropic.APIKey }},
	{"openrouter", "OPENROUTER_API_KEY", func(c *Config) *string { return &c.OpenRouter.APIKey }},
}

func keyEnv(provider string) string {
	return "CLARIO_" + strings.ToUpper(provider) + "_API_KEY"
}

// ApplyEnv overrides cfg from CLARIO_* environment variables.
func ApplyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, "CLARIO_LLM_PROVIDER")
	for _, p := range providerKeys {
		set(p.key(cfg), keyEnv(p.name))
	}
	set(&cfg.Anthropic.Model, "CLARIO_ANTHROPIC_MODEL")
	set(&cfg.OpenAI.Model, "CLARIO_OPENAI_MODEL")
	set(&cfg.OpenAI.BaseURL, "CLARIO_OPENAI_BASE_URL")
	set(&cfg.Gemini.Model, "CLARIO_GEMINI_MODEL")
	set(&cfg.OpenRouter.Model, "CLARIO_OPENROUTER_MODEL")

	if v := os.Getenv("CLARIO_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	for _, p := range providerKeys {
		if p.name != c.Provider {
			continue
		}
		if *p.key(&c) == "" {
			return fmt.Errorf("%s is required for the %s provider", keyEnv(p.name), p.name)
		}
		return nil
	}
	return fmt.Errorf("unknown LLM provider: %q", c.Provider)
}
