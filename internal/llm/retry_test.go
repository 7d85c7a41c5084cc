package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Strategy:    BackoffLinear,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), func(context.Context, int) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	var attempts []int
	err := Retry(context.Background(), fastRetry(), func(_ context.Context, attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 2 {
			return &ErrProviderUnavailable{Err: errors.New("down")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Fatalf("attempts = %v, want [1 2]", attempts)
	}
}

func TestRetry_AllAttemptsFailReturnsLastError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), func(_ context.Context, attempt int) error {
		calls++
		return &ErrInvalidResponse{Err: errors.New("attempt failed")}
	})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastRetry(), func(context.Context, int) error {
		calls++
		return &ErrMaxTokensExceeded{}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetry_CancelledContextStopsWaiting(t *testing.T) {
	cfg := fastRetry()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, cfg, func(context.Context, int) error {
			calls++
			return &ErrProviderUnavailable{}
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected last attempt error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Retry did not return after cancel")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestBackoff(t *testing.T) {
	linear := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Strategy: BackoffLinear}
	exp := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2, Strategy: BackoffExponential}
	plain := errors.New("x")

	tests := []struct {
		name    string
		cfg     RetryConfig
		attempt int
		err     error
		want    time.Duration
	}{
		{"linear 1", linear, 1, plain, 100 * time.Millisecond},
		{"linear 2", linear, 2, plain, 200 * time.Millisecond},
		{"linear capped", linear, 20, plain, time.Second},
		{"exponential 1", exp, 1, plain, 100 * time.Millisecond},
		{"exponential 3", exp, 3, plain, 400 * time.Millisecond},
		{"rate limit hint", linear, 1, &ErrRateLimit{RetryAfter: 3 * time.Second}, 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.backoff(tt.attempt, tt.err); got != tt.want {
				t.Fatalf("backoff = %s, want %s", got, tt.want)
			}
		})
	}
}
