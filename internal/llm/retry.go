package llm

import (
	"context"
	"errors"
	"math"
	"time"
)

// Backoff strategies for RetryConfig.
const (
	BackoffLinear      = "linear"
	BackoffExponential = "exponential"
)

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	// MaxAttempts counts the first try. 3 means two retries.
	MaxAttempts int           `yaml:"max_attempts" validate:"min=1,max=10"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
	// Strategy is "linear" (attempt × InitialWait) or "exponential".
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=linear exponential"`
}

// DefaultRetryConfig returns three sequential attempts with linear backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
		Strategy:    BackoffLinear,
	}
}

// Retry calls fn until it succeeds, returns a non-retryable error, or
// MaxAttempts is reached. Attempts are numbered from 1 and never overlap.
// The last error is returned when every attempt fails.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) error) error {
	attempts := max(cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(cfg.backoff(attempt, err)):
		}
	}
	return lastErr
}

// backoff computes the wait after the given (1-based) failed attempt.
func (c RetryConfig) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	var wait float64
	switch c.Strategy {
	case BackoffExponential:
		mult := c.Multiplier
		if mult <= 0 {
			mult = 2
		}
		wait = float64(c.InitialWait) * math.Pow(mult, float64(attempt-1))
	default:
		wait = float64(c.InitialWait) * float64(attempt)
	}

	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
