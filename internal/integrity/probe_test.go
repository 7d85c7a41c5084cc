package integrity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := NewProbe(DetectorFunc(func(context.Context) (bool, error) { return true, nil }), time.Second, 10*time.Second)
	p.now = func() time.Time { return now }

	ev, ok := p.Check(context.Background())
	require.True(t, ok)
	assert.Equal(t, KindInspectionTool, ev.Kind)
	assert.Equal(t, ClassGeneric, Classify(ev.Kind))

	now = now.Add(5 * time.Second)
	_, ok = p.Check(context.Background())
	assert.False(t, ok, "inside cooldown")

	now = now.Add(5 * time.Second)
	_, ok = p.Check(context.Background())
	assert.True(t, ok)
}

func TestProbeIgnoresMissesAndErrors(t *testing.T) {
	results := []error{nil, errors.New("probe failed")}
	i := 0
	p := NewProbe(DetectorFunc(func(context.Context) (bool, error) {
		err := results[i%len(results)]
		i++
		return false, err
	}), 0, 0)

	for range 4 {
		_, ok := p.Check(context.Background())
		assert.False(t, ok)
	}
}

func TestProbeRun(t *testing.T) {
	p := NewProbe(DetectorFunc(func(context.Context) (bool, error) { return true, nil }), time.Millisecond, time.Hour)
	out := make(chan Event, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	p.Run(ctx, out)

	assert.Len(t, out, 1, "cooldown allows a single event")
}
