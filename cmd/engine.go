package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/augment"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/config"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/llm"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/metrics"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/questionbank"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/results"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/store"
)

// engine is the generation stack shared by every command that builds
// question sets.
type engine struct {
	provider llm.Provider
	bank     *questionbank.Bank
	pipeline *questiongen.Pipeline
	composer *session.Composer
	closers  []func() error
}

// buildEngine wires provider → augmenter → pipeline → composer. st may
// be nil to skip the LLM event log; m may be nil.
func buildEngine(ctx context.Context, c *config.Config, st *store.Store, m *metrics.Metrics, logger *slog.Logger) (*engine, error) {
	e := &engine{}

	var events store.EventRepo
	if st != nil {
		events = st.EventRepo()
	}
	llmCfg := llm.Resolve(c.LLM)
	provider, err := llm.NewProvider(ctx, llmCfg, events, logger)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	if llmCfg.Provider == "mock" {
		logger.Warn("no LLM provider configured, questions come from the bank")
	}
	e.provider = provider

	bank, err := loadBank(c.Bank)
	if err != nil {
		return nil, err
	}
	e.bank = bank

	aug, closeAug, err := augment.New(ctx, c.Augment, logger)
	if err != nil {
		return nil, fmt.Errorf("context augmentation: %w", err)
	}
	e.closers = append(e.closers, closeAug)

	opts := []questiongen.Option{
		questiongen.WithAugmenter(aug),
		questiongen.WithLogger(logger),
	}
	if m != nil {
		opts = append(opts, questiongen.WithRecorder(m))
	}
	e.pipeline = questiongen.New(provider, bank, c.Generation, opts...)
	e.composer = session.NewComposer(e.pipeline, bank, c.Session, session.WithComposerLogger(logger))
	return e, nil
}

func (e *engine) Close() error {
	var errs []error
	for _, c := range e.closers {
		if c == nil {
			continue
		}
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func loadBank(c config.BankConfig) (*questionbank.Bank, error) {
	if c.Path == "" {
		bank, err := questionbank.Default()
		if err != nil {
			return nil, fmt.Errorf("built-in question bank: %w", err)
		}
		return bank, nil
	}
	return questionbank.LoadFile(c.Path)
}

// buildSink assembles the results hand-off. With a local bus the store
// consumes from it; with Kafka the store is written directly as well,
// since the consumers live elsewhere. The returned close func drains
// the consumer before returning.
func buildSink(ctx context.Context, c results.Config, st *store.Store, m *metrics.Metrics, logger *slog.Logger) (session.Sink, func() error, error) {
	rec := results.NewRecorder(st.ResultRepo(), logger)
	var sinks results.Fanout
	if m != nil {
		sinks = append(sinks, m)
	}

	bus, err := results.OpenBus(c, logger)
	if err != nil {
		return nil, nil, err
	}
	if bus == nil {
		return append(sinks, rec), func() error { return nil }, nil
	}

	sinks = append(sinks, results.NewPublisher(bus.Publisher, bus.Topic, logger))
	if bus.Subscriber == nil {
		return append(sinks, rec), bus.Close, nil
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	done, err := rec.Consume(consumeCtx, bus.Subscriber, bus.Topic)
	if err != nil {
		cancel()
		bus.Close()
		return nil, nil, err
	}
	closeFn := func() error {
		err := bus.Close()
		cancel()
		<-done
		return err
	}
	return sinks, closeFn, nil
}
