package questiongen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/augment"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/llm"
)

var (
	// ErrInvalidInput means the caller passed an unusable GenerateInput.
	ErrInvalidInput = errors.New("invalid generate input")

	// ErrFallbackExhausted means the bank could not cover a shortfall.
	ErrFallbackExhausted = errors.New("fallback bank exhausted")
)

// ShortfallError reports an attempt that produced too few usable items.
type ShortfallError struct {
	Got, Want int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("got %d valid questions, want %d", e.Got, e.Want)
}

// Fallback supplies pre-validated questions when generation fails.
type Fallback interface {
	// Take returns n questions of tier in a deterministic order, skipping
	// any whose Signature is in exclude. Each call assigns fresh IDs.
	Take(tier Tier, n int, exclude map[string]bool) ([]Question, error)
}

// Recorder receives pipeline telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	GenerationAttempts(tier string, attempts int)
	GenerationDegraded(tier string)
}

// Pipeline turns provider output into validated questions for one tier,
// retrying and falling back to the bank as needed.
type Pipeline struct {
	provider  llm.Provider
	fallback  Fallback
	augmenter augment.Augmenter
	config    Config
	logger    *slog.Logger
	recorder  Recorder
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithAugmenter enables the context augmentation step.
func WithAugmenter(a augment.Augmenter) Option {
	return func(p *Pipeline) { p.augmenter = a }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New creates a Pipeline. fallback must not be nil.
func New(provider llm.Provider, fallback Fallback, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		provider: provider,
		fallback: fallback,
		config:   cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "questiongen")
	return p
}

// Generate produces exactly input.Count questions for input.Tier.
//
// Provider failures never surface as errors: after the configured
// attempts the best attempt is padded from the fallback bank and the
// batch is marked Degraded. An error is returned only for invalid input
// or when the bank cannot cover the shortfall.
func (p *Pipeline) Generate(ctx context.Context, input GenerateInput) (*Batch, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	log := p.logger.With("topic", input.Topic, "tier", input.Tier, "nonce", input.Nonce)
	extra := p.augment(ctx, input, log)

	var (
		best     []Question
		attempts int
	)
	err := llm.Retry(ctx, p.config.Retry, func(ctx context.Context, attempt int) error {
		attempts = attempt
		qs, err := p.attempt(ctx, input, extra, log)
		if len(qs) > len(best) {
			best = qs
		}
		if err != nil {
			log.Warn("generation attempt failed", "attempt", attempt, "error", err)
			return err
		}
		if len(qs) < input.Count {
			err := &ShortfallError{Got: len(qs), Want: input.Count}
			log.Warn("generation attempt short", "attempt", attempt, "error", err)
			return err
		}
		return nil
	})

	if p.recorder != nil {
		p.recorder.GenerationAttempts(string(input.Tier), attempts)
	}

	batch := &Batch{Tier: input.Tier, Attempts: attempts}
	if err == nil {
		batch.Questions = best[:input.Count]
		return batch, nil
	}

	questions, ferr := p.pad(best, input)
	if ferr != nil {
		log.Error("fallback failed", "error", ferr, "generation_error", err)
		return nil, ferr
	}
	log.Info("using fallback questions",
		"generated", min(len(best), input.Count),
		"from_bank", len(questions)-min(len(best), input.Count))
	if p.recorder != nil {
		p.recorder.GenerationDegraded(string(input.Tier))
	}

	batch.Questions = questions
	batch.Degraded = true
	return batch, nil
}

// attempt runs one provider call and returns the valid, unique items.
func (p *Pipeline) attempt(ctx context.Context, input GenerateInput, extra string, log *slog.Logger) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, fmt.Sprintf("%s:%s", llm.PurposeQuestionGen, input.Tier))

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, extra, p.config)},
		},
		MaxTokens:   p.config.MaxTokens,
		Temperature: p.config.Temperature,
		JSON:        true,
		Prefill:     "[",
	}

	resp, err := p.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	items, itemErrs, err := parseItems(resp.Text(), input.Tier)
	if err != nil {
		return nil, err
	}
	for _, e := range itemErrs {
		log.Debug("dropped malformed item", "error", e)
	}

	seen := make(map[string]bool, len(items))
	valid := make([]Question, 0, len(items))
	for i := range items {
		q := &items[i]
		if verr := runValidators(p.config.Validators, q, input); verr != nil {
			log.Debug("dropped invalid item", "error", verr)
			continue
		}
		sig := q.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		q.ID = uuid.NewString()
		valid = append(valid, *q)
	}
	return valid, nil
}

// pad fills the batch from the fallback bank without repeating any
// signature already present.
func (p *Pipeline) pad(have []Question, input GenerateInput) ([]Question, error) {
	if len(have) > input.Count {
		have = have[:input.Count]
	}
	need := input.Count - len(have)
	out := make([]Question, 0, input.Count)
	out = append(out, have...)
	if need == 0 {
		return out, nil
	}
	if p.fallback == nil {
		return nil, fmt.Errorf("%w: no fallback configured", ErrFallbackExhausted)
	}

	exclude := make(map[string]bool, len(have))
	for i := range have {
		exclude[have[i].Signature()] = true
	}
	extra, err := p.fallback.Take(input.Tier, need, exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFallbackExhausted, err)
	}
	if len(extra) < need {
		return nil, fmt.Errorf("%w: tier %s needs %d, bank gave %d", ErrFallbackExhausted, input.Tier, need, len(extra))
	}
	return append(out, extra[:need]...), nil
}

// augment fetches optional context under its own deadline. Any failure,
// including an augmenter that ignores cancellation, yields "".
func (p *Pipeline) augment(ctx context.Context, input GenerateInput, log *slog.Logger) string {
	if p.augmenter == nil || p.config.AugmentTimeout <= 0 {
		return ""
	}

	actx, cancel := context.WithTimeout(ctx, p.config.AugmentTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := p.augmenter.Augment(actx, input.Topic, string(input.Tier))
		ch <- result{text, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			log.Debug("augmentation failed", "error", r.err)
			return ""
		}
		return r.text
	case <-actx.Done():
		log.Debug("augmentation timed out", "timeout", p.config.AugmentTimeout)
		return ""
	}
}
