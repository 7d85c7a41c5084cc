package integrity

import (
	"context"
	"time"
)

// Detector reports whether an inspection tool appears to be attached.
type Detector interface {
	Detect(ctx context.Context) (bool, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context) (bool, error)

func (f DetectorFunc) Detect(ctx context.Context) (bool, error) { return f(ctx) }

// Probe polls a Detector and emits KindInspectionTool events.
//
// Detection is a heuristic. Timing and environment probes give false
// positives on slow machines and miss tools that hide themselves, so
// the probe only ever raises a generic violation and is rate limited to
// one event per cooldown.
type Probe struct {
	detector Detector
	interval time.Duration
	cooldown time.Duration
	now      func() time.Time
	last     time.Time
}

// NewProbe creates a Probe. Zero durations fall back to 1s polling and
// a 10s cooldown.
func NewProbe(d Detector, interval, cooldown time.Duration) *Probe {
	if interval <= 0 {
		interval = time.Second
	}
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	return &Probe{detector: d, interval: interval, cooldown: cooldown, now: time.Now}
}

// Check runs the detector once and returns an event if one is due.
func (p *Probe) Check(ctx context.Context) (Event, bool) {
	hit, err := p.detector.Detect(ctx)
	if err != nil || !hit {
		return Event{}, false
	}
	now := p.now()
	if !p.last.IsZero() && now.Sub(p.last) < p.cooldown {
		return Event{}, false
	}
	p.last = now
	return Event{Kind: KindInspectionTool, At: now}, true
}

// Run polls until ctx ends, sending events to out. A send that cannot
// proceed is abandoned when ctx ends.
func (p *Probe) Run(ctx context.Context, out chan<- Event) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ev, ok := p.Check(ctx)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
