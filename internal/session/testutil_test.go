package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

func makeQuestion(tier questiongen.Tier, text string, source questiongen.Source) questiongen.Question {
	return questiongen.Question{
		ID:   fmt.Sprintf("%s-%s-%d", tier, source, nextID()),
		Text: text,
		Options: map[questiongen.Label]string{
			questiongen.LabelA: "one",
			questiongen.LabelB: "two",
			questiongen.LabelC: "three",
			questiongen.LabelD: "four",
		},
		Correct: questiongen.LabelB,
		Tier:    tier,
		Source:  source,
	}
}

var (
	idMu sync.Mutex
	idN  int
)

func nextID() int {
	idMu.Lock()
	defer idMu.Unlock()
	idN++
	return idN
}

// fakeGen returns texts[tier] as questions, in order.
type fakeGen struct {
	mu    sync.Mutex
	texts map[questiongen.Tier][]string
	err   error
	calls []questiongen.GenerateInput
}

func newFakeGen() *fakeGen {
	g := &fakeGen{texts: map[questiongen.Tier][]string{}}
	for _, tier := range questiongen.Tiers() {
		for i := range 5 {
			g.texts[tier] = append(g.texts[tier], fmt.Sprintf("%s question %d?", tier, i))
		}
	}
	return g
}

func (g *fakeGen) Generate(ctx context.Context, in questiongen.GenerateInput) (*questiongen.Batch, error) {
	g.mu.Lock()
	g.calls = append(g.calls, in)
	texts := g.texts[in.Tier]
	err := g.err
	g.mu.Unlock()

	if err != nil {
		return nil, err
	}
	b := &questiongen.Batch{Tier: in.Tier, Attempts: 1}
	for _, text := range texts[:min(in.Count, len(texts))] {
		b.Questions = append(b.Questions, makeQuestion(in.Tier, text, questiongen.SourceLLM))
	}
	return b, nil
}

type fakeBank struct {
	size int
}

func (b *fakeBank) Take(tier questiongen.Tier, n int, exclude map[string]bool) ([]questiongen.Question, error) {
	var out []questiongen.Question
	for i := 0; i < b.size && len(out) < n; i++ {
		q := makeQuestion(tier, fmt.Sprintf("bank %s %d?", tier, i), questiongen.SourceBank)
		if exclude[q.Signature()] {
			continue
		}
		out = append(out, q)
	}
	if len(out) < n {
		return out, errors.New("bank short")
	}
	return out, nil
}

type fakeEnv struct {
	mu         sync.Mutex
	requests   int
	exits      int
	acquired   int
	released   int
	requestErr error
}

func (e *fakeEnv) RequestExclusiveMode() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests++
	return e.requestErr
}

func (e *fakeEnv) ExitExclusiveMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exits++
}

func (e *fakeEnv) AcquireKeepAlive() (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acquired++
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.released++
	}, nil
}

func (e *fakeEnv) setRequestErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requestErr = err
}

type captureSink struct {
	mu      sync.Mutex
	records []Record
}

func (s *captureSink) Deliver(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func noShuffle(int, func(i, j int)) {}

var fixedStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type harness struct {
	ctrl *Controller
	env  *fakeEnv
	sink *captureSink
	gen  *fakeGen
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{env: &fakeEnv{}, sink: &captureSink{}, gen: newFakeGen()}
	composer := NewComposer(h.gen, &fakeBank{size: 10}, cfg, WithShuffle(noShuffle))
	ctrl, err := New(composer, cfg,
		WithEnvironment(h.env),
		WithSink(h.sink),
		WithNow(func() time.Time { return fixedStart }),
		WithID("session-1"))
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

// started returns a harness whose session is Active on question 0.
func started(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := newHarness(t, cfg)
	require.NoError(t, h.ctrl.Load(context.Background(), "Backend Engineer"))
	require.NoError(t, h.ctrl.Start())
	return h
}

func (h *harness) tick(n int) {
	for range n {
		h.ctrl.Tick()
	}
}
