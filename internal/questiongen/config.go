package questiongen

import (
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/llm"
)

// Config controls the behavior of the Pipeline.
type Config struct {
	// Validators is the ordered chain run on every parsed item. The first
	// failure drops the item.
	Validators []Validator `yaml:"-"`

	// MaxTokens is the token budget for the provider response.
	MaxTokens int `yaml:"max_tokens" validate:"min=0"`

	// Temperature controls provider output randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature" validate:"min=0,max=1"`

	// Retry governs the sequential provider attempts per tier.
	Retry llm.RetryConfig `yaml:"retry"`

	// AugmentTimeout bounds the context augmentation call. It is never
	// retried.
	AugmentTimeout time.Duration `yaml:"augment_timeout"`

	// MaxContextChars caps augmentation text placed in the prompt.
	MaxContextChars int `yaml:"max_context_chars" validate:"min=0"`
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&OptionsValidator{},
		},
		MaxTokens:       2048,
		Temperature:     0.8,
		Retry:           llm.DefaultRetryConfig(),
		AugmentTimeout:  2 * time.Second,
		MaxContextChars: 1500,
	}
}
