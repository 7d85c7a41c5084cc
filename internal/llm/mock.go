package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockResponse is one scripted reply. Err, when set, is returned instead
// of Content. Delay holds the reply back unless ctx ends first.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	Delay   time.Duration
}

// MockProvider replays scripted replies in order and records every
// request. Once the script runs out each call fails as unavailable, so the
// default "mock" provider sends sessions straight to the question bank.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddText scripts a successful reply.
func (m *MockProvider) AddText(text string) {
	m.mu.Lock()
	m.script = append(m.script, MockResponse{Content: json.RawMessage(text)})
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		return MockResponse{}, false
	}
	r := m.script[0]
	m.script = m.script[1:]
	return r, true
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	r, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}

	if r.Delay > 0 {
		t := time.NewTimer(r.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", StopReason: StopEnd}, nil
}
