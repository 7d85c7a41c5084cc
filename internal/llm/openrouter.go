package llm

import (
	"cmp"
	"errors"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is the chat completions adapter pointed at
// OpenRouter. Model IDs such as "google/gemini-2.0-flash-exp" pass through
// untouched.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	inner := newChatProvider(cfg.APIKey, cmp.Or(cfg.BaseURL, defaultOpenRouterBaseURL), cfg.Model)
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
