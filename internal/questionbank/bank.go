// Package questionbank holds the static, versioned pool of validated
// questions used when generation fails.
package questionbank

import (
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
)

type entry struct {
	key string
	q   questiongen.Question
}

// Bank is an immutable set of questions per tier. It is safe for
// concurrent use.
type Bank struct {
	version string
	byTier  map[questiongen.Tier][]entry
}

// Version returns the bank's semantic version.
func (b *Bank) Version() string { return b.version }

// Count returns the number of questions for tier.
func (b *Bank) Count(tier questiongen.Tier) int { return len(b.byTier[tier]) }

// Keys returns the stable bank ids for tier, in bank order.
func (b *Bank) Keys(tier questiongen.Tier) []string {
	out := make([]string, 0, len(b.byTier[tier]))
	for _, e := range b.byTier[tier] {
		out = append(out, e.key)
	}
	return out
}

// Take returns the first n questions of tier in bank order whose
// signatures are not in exclude. Every returned question gets a fresh
// ID so bank questions never share ids across or within sessions.
func (b *Bank) Take(tier questiongen.Tier, n int, exclude map[string]bool) ([]questiongen.Question, error) {
	if n <= 0 {
		return nil, nil
	}
	out := make([]questiongen.Question, 0, n)
	for _, e := range b.byTier[tier] {
		if len(out) == n {
			break
		}
		if exclude[e.q.Signature()] {
			continue
		}
		q := e.q
		q.ID = uuid.NewString()
		q.Options = maps.Clone(e.q.Options)
		out = append(out, q)
	}
	if len(out) < n {
		return out, fmt.Errorf("tier %s: need %d questions, only %d available", tier, n, len(out))
	}
	return out, nil
}

var _ questiongen.Fallback = (*Bank)(nil)
