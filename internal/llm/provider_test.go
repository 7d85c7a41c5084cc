package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[{"question":"q"}]`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
	)
	mock.AddText("second")

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text() != `[{"question":"q"}]` {
		t.Fatalf("unexpected content %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != "second" {
		t.Fatalf("expected second, got %s", resp2.Content)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestMockProvider_EmptyQueueReturnsUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_DelayHonorsContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("[]"), Delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWithTimeout_ConvertsPerCallDeadline(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("[]"), Delay: time.Second})
	p := WithTimeout(mock, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	var to *ErrTimeout
	if !errors.As(err, &to) {
		t.Fatalf("expected ErrTimeout, got %T (%v)", err, err)
	}
	if !IsRetryable(err) {
		t.Fatal("per-call timeout should be retryable")
	}
}

func TestWithTimeout_ParentCancelStaysFinal(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage("[]"), Delay: time.Second})
	p := WithTimeout(mock, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if IsRetryable(err) {
		t.Fatal("caller cancellation must not be retryable")
	}
}

func TestWithTimeout_ZeroIsPassThrough(t *testing.T) {
	mock := NewMockProvider()
	if WithTimeout(mock, 0) != Provider(mock) {
		t.Fatal("expected the same provider back")
	}
}

type memEvents struct {
	events []store.LLMRequestEventData
	err    error
}

func (m *memEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	m.events = append(m.events, data)
	return m.err
}

func (m *memEvents) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMRequestEventRecord, error) {
	return nil, nil
}

func (m *memEvents) GetLLMEvent(context.Context, int64) (*store.LLMRequestEventRecord, error) {
	return nil, store.ErrNotFound
}

func TestLoggingProvider_RecordsSuccessAndFailure(t *testing.T) {
	events := &memEvents{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[]`), Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, events, nil)
	ctx := WithPurpose(context.Background(), "question-gen:beginner")

	req := Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "make questions"}}}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("expected error")
	}

	if len(events.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events.events))
	}
	ok, failed := events.events[0], events.events[1]
	if !ok.Success || ok.InputTokens != 3 || ok.Purpose != "question-gen:beginner" {
		t.Errorf("success event = %+v", ok)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure event = %+v", failed)
	}
	if ok.RequestBody == "" {
		t.Error("request body not serialized")
	}
}

func TestLoggingProvider_EventErrorDoesNotFailRequest(t *testing.T) {
	events := &memEvents{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`[]`)}), events, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("logging failure leaked into request: %v", err)
	}
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Content: json.RawMessage(`[]`)}), nil, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeQuestionGen)
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"max tokens", &ErrMaxTokensExceeded{}, false},
		{"rate limit", &ErrRateLimit{}, true},
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"invalid", &ErrInvalidResponse{Err: errors.New("bad")}, true},
		{"timeout", &ErrTimeout{After: time.Second}, true},
		{"plain", errors.New("network"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CLARIO_LLM_PROVIDER", "openai")
	t.Setenv("CLARIO_OPENAI_API_KEY", "sk-env")
	t.Setenv("CLARIO_LLM_TIMEOUT", "9s")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Timeout != 9*time.Second {
		t.Fatalf("timeout = %s, want 9s", cfg.Timeout)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("default model lost: %q", cfg.OpenAI.Model)
	}
}

func TestNewProvider_MockChain(t *testing.T) {
	cfg := DefaultConfig()
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q, want mock", p.ModelID())
	}
	if _, ok := p.(*TimeoutProvider); !ok {
		t.Fatalf("expected outermost TimeoutProvider, got %T", p)
	}
}

func TestResolve(t *testing.T) {
	for _, k := range []string{"CLARIO_LLM_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}

	cfg := DefaultConfig()
	cfg.Anthropic.Model = "claude-custom"
	if got := Resolve(cfg); got.Provider != "mock" {
		t.Fatalf("no keys: provider = %q, want mock", got.Provider)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	got := Resolve(cfg)
	if got.Provider != "anthropic" || got.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("unexpected config %+v", got)
	}
	if got.Anthropic.Model != "claude-custom" {
		t.Fatalf("configured model lost: %q", got.Anthropic.Model)
	}

	t.Setenv("CLARIO_LLM_PROVIDER", "mock")
	if got := Resolve(cfg); got.Provider != "mock" {
		t.Fatalf("explicit mock overridden: %q", got.Provider)
	}
}
