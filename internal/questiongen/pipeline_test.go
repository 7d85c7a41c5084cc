package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/augment"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/llm"
)

// fakeBank hands out numbered questions in a fixed order.
type fakeBank struct {
	size  int
	calls int
}

func (b *fakeBank) Take(tier Tier, n int, exclude map[string]bool) ([]Question, error) {
	b.calls++
	var out []Question
	for i := 0; i < b.size && len(out) < n; i++ {
		q := Question{
			ID:   fmt.Sprintf("bank-%d-%d", b.calls, i),
			Text: fmt.Sprintf("Bank question %d?", i),
			Options: map[Label]string{
				LabelA: "one", LabelB: "two", LabelC: "three", LabelD: "four",
			},
			Correct: LabelA,
			Tier:    tier,
			Source:  SourceBank,
		}
		if exclude[q.Signature()] {
			continue
		}
		out = append(out, q)
	}
	if len(out) < n {
		return out, errors.New("not enough")
	}
	return out, nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts map[string]int
	degraded map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{attempts: map[string]int{}, degraded: map[string]int{}}
}

func (r *fakeRecorder) GenerationAttempts(tier string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[tier] += n
}

func (r *fakeRecorder) GenerationDegraded(tier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded[tier]++
}

func item(text, correct string) string {
	return fmt.Sprintf(`{"question": %q, "options": {"A": "alpha", "B": "beta", "C": "gamma", "D": "delta"}, "correctAnswer": %q}`, text, correct)
}

func array(items ...string) string {
	return "[" + strings.Join(items, ",") + "]"
}

const malformedItem = `{"question": "Only three options?", "options": {"A": "x", "B": "y", "C": "z"}, "correctAnswer": "A"}`

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry.InitialWait = time.Millisecond
	cfg.Retry.MaxWait = 5 * time.Millisecond
	return cfg
}

func backendInput() GenerateInput {
	return GenerateInput{Topic: "Backend Engineer", Tier: TierBeginner, Count: 4, Nonce: "abc123"}
}

func TestGenerate_AllValid(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(array(item("What is an API?", "A"), item("What is HTTP?", "b"), item("What is a database?", "C"), item("What is a queue?", "D")))
	bank := &fakeBank{size: 10}

	batch, err := New(mock, bank, testConfig()).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Degraded {
		t.Error("expected non-degraded batch")
	}
	if batch.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", batch.Attempts)
	}
	if len(batch.Questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(batch.Questions))
	}
	if bank.calls != 0 {
		t.Errorf("bank called %d times, want 0", bank.calls)
	}

	ids := map[string]bool{}
	for _, q := range batch.Questions {
		if q.Source != SourceLLM {
			t.Errorf("source = %q, want llm", q.Source)
		}
		if q.Tier != TierBeginner {
			t.Errorf("tier = %q", q.Tier)
		}
		if q.ID == "" || ids[q.ID] {
			t.Errorf("bad or duplicate id %q", q.ID)
		}
		ids[q.ID] = true
	}
	if batch.Questions[1].Correct != LabelB {
		t.Errorf("correct label not normalized: %q", batch.Questions[1].Correct)
	}
	if req := mock.Calls[0]; !req.JSON || req.Prefill != "[" {
		t.Errorf("request should ask for a JSON array, got json=%v prefill=%q", req.JSON, req.Prefill)
	}
}

func TestGenerate_ShortThenPadded(t *testing.T) {
	mock := llm.NewMockProvider()
	short := array(item("What is an API?", "A"), item("What is HTTP?", "B"), item("What is a database?", "C"), malformedItem)
	mock.AddText(short)
	mock.AddText(short)

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 2
	bank := &fakeBank{size: 10}
	rec := newFakeRecorder()

	batch, err := New(mock, bank, cfg, WithRecorder(rec)).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("provider calls = %d, want 2", mock.CallCount())
	}
	if !batch.Degraded {
		t.Error("expected degraded batch")
	}
	if len(batch.Questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(batch.Questions))
	}

	var fromLLM, fromBank int
	for _, q := range batch.Questions {
		switch q.Source {
		case SourceLLM:
			fromLLM++
		case SourceBank:
			fromBank++
		}
	}
	if fromLLM != 3 || fromBank != 1 {
		t.Errorf("llm=%d bank=%d, want 3 and 1", fromLLM, fromBank)
	}
	if rec.attempts["beginner"] != 2 || rec.degraded["beginner"] != 1 {
		t.Errorf("recorder = %v %v", rec.attempts, rec.degraded)
	}
}

func TestGenerate_RetryRebuildsFullPrompt(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText("not json at all")
	mock.AddText(array(item("Q1?", "A"), item("Q2?", "A"), item("Q3?", "A"), item("Q4?", "A")))

	batch, err := New(mock, &fakeBank{size: 10}, testConfig()).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Degraded || batch.Attempts != 2 {
		t.Fatalf("degraded=%v attempts=%d", batch.Degraded, batch.Attempts)
	}
	if mock.Calls[0].Messages[0].Content != mock.Calls[1].Messages[0].Content {
		t.Error("retry prompt differs from first attempt")
	}
	if !strings.Contains(mock.Calls[1].Messages[0].Content, "abc123") {
		t.Error("nonce missing from retry prompt")
	}
}

func TestGenerate_ProviderDownUsesBank(t *testing.T) {
	mock := llm.NewMockProvider()
	bank := &fakeBank{size: 10}

	batch, err := New(mock, bank, testConfig()).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("provider calls = %d, want 3", mock.CallCount())
	}
	if !batch.Degraded || len(batch.Questions) != 4 {
		t.Fatalf("degraded=%v len=%d", batch.Degraded, len(batch.Questions))
	}
	for _, q := range batch.Questions {
		if q.Source != SourceBank {
			t.Errorf("source = %q, want bank", q.Source)
		}
	}
}

func TestGenerate_NonRetryableStopsEarly(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{}})

	batch, err := New(mock, &fakeBank{size: 10}, testConfig()).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("provider calls = %d, want 1", mock.CallCount())
	}
	if !batch.Degraded {
		t.Error("expected degraded batch")
	}
}

func TestGenerate_BankExhausted(t *testing.T) {
	mock := llm.NewMockProvider()

	_, err := New(mock, &fakeBank{size: 2}, testConfig()).Generate(context.Background(), backendInput())
	if !errors.Is(err, ErrFallbackExhausted) {
		t.Fatalf("expected ErrFallbackExhausted, got %v", err)
	}
}

func TestGenerate_InvalidInput(t *testing.T) {
	mock := llm.NewMockProvider()
	p := New(mock, &fakeBank{size: 10}, testConfig())

	tests := []GenerateInput{
		{Topic: "", Tier: TierBeginner, Count: 4},
		{Topic: "Backend Engineer", Tier: "expert", Count: 4},
		{Topic: "Backend Engineer", Tier: TierBeginner, Count: 0},
	}
	for _, in := range tests {
		if _, err := p.Generate(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("input %+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
	if mock.CallCount() != 0 {
		t.Errorf("provider called %d times for invalid input", mock.CallCount())
	}
}

func TestGenerate_DedupWithinAttempt(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(array(item("What is an API?", "A"), item("what   is an API?", "B"), item("Q3?", "A"), item("Q4?", "A"), item("Q5?", "A")))

	batch, err := New(mock, &fakeBank{size: 10}, testConfig()).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Degraded {
		t.Error("expected non-degraded batch")
	}
	seen := map[string]bool{}
	for _, q := range batch.Questions {
		if seen[q.Signature()] {
			t.Errorf("duplicate signature %q", q.Signature())
		}
		seen[q.Signature()] = true
	}
}

func TestGenerate_FencedResponse(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText("Here you go:\n```json\n" + array(item("Q1?", "A"), item("Q2?", "A"), item("Q3?", "A"), item("Q4?", "A")) + "\n```")

	batch, err := New(mock, &fakeBank{size: 10}, testConfig()).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Degraded || len(batch.Questions) != 4 {
		t.Errorf("degraded=%v len=%d", batch.Degraded, len(batch.Questions))
	}
}

func TestGenerate_AugmentTimeoutIsNonFatal(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(array(item("Q1?", "A"), item("Q2?", "A"), item("Q3?", "A"), item("Q4?", "A")))

	slow := augment.Func(func(ctx context.Context, topic, level string) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "too late", nil
	})
	cfg := testConfig()
	cfg.AugmentTimeout = 20 * time.Millisecond

	start := time.Now()
	batch, err := New(mock, &fakeBank{size: 10}, cfg, WithAugmenter(slow)).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Error("pipeline waited for the slow augmenter")
	}
	if batch.Degraded {
		t.Error("augment failure must not degrade the batch")
	}
	if strings.Contains(mock.Calls[0].Messages[0].Content, "too late") {
		t.Error("late augmentation leaked into the prompt")
	}
}

func TestGenerate_AugmentTextInPrompt(t *testing.T) {
	mock := llm.NewMockProvider()
	mock.AddText(array(item("Q1?", "A"), item("Q2?", "A"), item("Q3?", "A"), item("Q4?", "A")))

	aug := augment.Func(func(ctx context.Context, topic, level string) (string, error) {
		if topic != "Backend Engineer" || level != "beginner" {
			t.Errorf("augment got %q %q", topic, level)
		}
		return "- gRPC is common for service calls", nil
	})

	_, err := New(mock, &fakeBank{size: 10}, testConfig(), WithAugmenter(aug)).Generate(context.Background(), backendInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "gRPC is common") {
		t.Error("augmentation missing from prompt")
	}
}

func TestGenerate_SetsPurpose(t *testing.T) {
	var got string
	p := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		got = llm.PurposeFrom(ctx)
		return nil, &llm.ErrProviderUnavailable{}
	})
	cfg := testConfig()
	cfg.Retry.MaxAttempts = 1

	if _, err := New(p, &fakeBank{size: 10}, cfg).Generate(context.Background(), backendInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "question-gen:beginner" {
		t.Errorf("purpose = %q", got)
	}
}

type providerFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
