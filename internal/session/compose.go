package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

// ErrComposition means a full QuestionSet could not be assembled even
// with the fallback bank.
var ErrComposition = errors.New("question set composition failed")

// Generator produces questions for one tier. *questiongen.Pipeline
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, input questiongen.GenerateInput) (*questiongen.Batch, error)
}

// QuestionSet is the ordered, immutable list of questions for a session.
type QuestionSet []questiongen.Question

// Composed is the output of Composer.Compose.
type Composed struct {
	Questions QuestionSet

	// Degraded is set when any question came from the fallback bank.
	Degraded bool
}

// Composer builds a QuestionSet from three concurrent tier calls.
type Composer struct {
	gen     Generator
	bank    questiongen.Fallback
	cfg     Config
	logger  *slog.Logger
	shuffle func(n int, swap func(i, j int))
}

// ComposerOption customizes a Composer.
type ComposerOption func(*Composer)

// WithShuffle replaces the per-tier shuffle. Tests use it to pin order.
func WithShuffle(fn func(n int, swap func(i, j int))) ComposerOption {
	return func(c *Composer) { c.shuffle = fn }
}

// WithComposerLogger sets the logger.
func WithComposerLogger(l *slog.Logger) ComposerOption {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewComposer creates a Composer. bank is used to pad sets that come up
// short after deduplication.
func NewComposer(gen Generator, bank questiongen.Fallback, cfg Config, opts ...ComposerOption) *Composer {
	c := &Composer{
		gen:     gen,
		bank:    bank,
		cfg:     cfg,
		logger:  slog.Default(),
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose generates every tier concurrently and waits for all of them.
// Each tier is shuffled on its own, then the whole set is deduplicated
// by text signature (later duplicates are dropped), truncated to Size,
// and padded from the bank. Tier order is beginner, intermediate,
// advanced.
func (c *Composer) Compose(ctx context.Context, topic, nonce string) (*Composed, error) {
	tiers := questiongen.Tiers()
	batches := make([]*questiongen.Batch, len(tiers))

	g, gctx := errgroup.WithContext(ctx)
	for i, tier := range tiers {
		n := c.cfg.Composition.For(tier)
		if n == 0 {
			continue
		}
		g.Go(func() error {
			b, err := c.gen.Generate(gctx, questiongen.GenerateInput{
				Topic: topic,
				Tier:  tier,
				Count: n,
				Nonce: nonce,
			})
			if err != nil {
				return fmt.Errorf("tier %s: %w", tier, err)
			}
			batches[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Composed{}
	byTier := make(map[questiongen.Tier][]questiongen.Question, len(tiers))
	seen := make(map[string]bool)
	total := 0
	for i, tier := range tiers {
		b := batches[i]
		if b == nil {
			continue
		}
		out.Degraded = out.Degraded || b.Degraded

		qs := append([]questiongen.Question(nil), b.Questions...)
		c.shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		for _, q := range qs {
			sig := q.Signature()
			if seen[sig] {
				c.logger.Debug("dropped duplicate question", "tier", tier, "signature", sig)
				continue
			}
			if total == c.cfg.Size {
				break
			}
			seen[sig] = true
			byTier[tier] = append(byTier[tier], q)
			total++
		}
	}

	if total < c.cfg.Size {
		padded, err := c.pad(byTier, seen, c.cfg.Size-total)
		if err != nil {
			return nil, err
		}
		if padded > 0 {
			out.Degraded = true
		}
	}

	for _, tier := range tiers {
		out.Questions = append(out.Questions, byTier[tier]...)
	}
	return out, nil
}

// pad fills the shortfall. Tiers under their composition target are
// filled from the same tier, so the tier mix is preserved; any remaining
// room is filled from any tier. It returns the number of questions added.
func (c *Composer) pad(byTier map[questiongen.Tier][]questiongen.Question, seen map[string]bool, need int) (int, error) {
	if c.bank == nil {
		return 0, fmt.Errorf("%w: short by %d and no bank configured", ErrComposition, need)
	}

	added := 0
	take := func(tier questiongen.Tier, n int) {
		if n <= 0 {
			return
		}
		qs, err := c.bank.Take(tier, n, seen)
		if err != nil {
			c.logger.Warn("bank short while padding", "tier", tier, "error", err)
		}
		for _, q := range qs {
			seen[q.Signature()] = true
			byTier[tier] = append(byTier[tier], q)
			added++
		}
	}

	strict := c.cfg.Composition.Total() <= c.cfg.Size
	for _, tier := range questiongen.Tiers() {
		deficit := c.cfg.Composition.For(tier) - len(byTier[tier])
		take(tier, min(deficit, need-added))
		if strict && len(byTier[tier]) < c.cfg.Composition.For(tier) {
			return added, fmt.Errorf("%w: tier %s short by %d after padding", ErrComposition, tier, c.cfg.Composition.For(tier)-len(byTier[tier]))
		}
	}
	// Remaining room, if any, comes from any tier.
	for _, tier := range questiongen.Tiers() {
		take(tier, need-added)
	}

	if added < need {
		return added, fmt.Errorf("%w: short by %d after padding", ErrComposition, need-added)
	}
	c.logger.Info("padded question set from bank", "count", added)
	return added, nil
}
