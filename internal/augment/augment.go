// Package augment fetches short, current text about a topic to enrich
// question generation. Every failure here is non-fatal to callers.
package augment

import (
	"context"
	"time"
)

// Augmenter returns a short text blob relevant to topic and level, or "".
// Implementations must respect ctx cancellation.
type Augmenter interface {
	Augment(ctx context.Context, topic, level string) (string, error)
}

// Func adapts a function to Augmenter.
type Func func(ctx context.Context, topic, level string) (string, error)

func (f Func) Augment(ctx context.Context, topic, level string) (string, error) {
	return f(ctx, topic, level)
}

// Noop always returns "".
type Noop struct{}

func (Noop) Augment(context.Context, string, string) (string, error) { return "", nil }

// Config configures the web augmenter.
type Config struct {
	Enabled bool `yaml:"enabled"`

	// SearchURL is a results page URL with a single %s for the escaped
	// query, e.g. "https://html.duckduckgo.com/html/?q=%s".
	SearchURL string `yaml:"search_url" validate:"required_if=Enabled true"`

	// QuerySuffix is appended to "<topic> <level>" when searching.
	QuerySuffix string `yaml:"query_suffix"`

	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" validate:"min=0"`
	MaxSnippets  int           `yaml:"max_snippets" validate:"min=0"`
	MaxChars     int           `yaml:"max_chars" validate:"min=0"`

	// RedisURL enables result caching when set.
	RedisURL string        `yaml:"redis_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// DefaultConfig returns a disabled augmenter with usable limits.
func DefaultConfig() Config {
	return Config{
		SearchURL:    "https://html.duckduckgo.com/html/?q=%s",
		QuerySuffix:  "skills interview questions",
		UserAgent:    "clario-assessment/1.0",
		Timeout:      2 * time.Second,
		MaxBodyBytes: 2 << 20,
		MaxSnippets:  5,
		MaxChars:     1500,
		CacheTTL:     6 * time.Hour,
	}
}
