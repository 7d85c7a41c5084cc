package session

import (
	"context"
	"time"
)

// Ticker is the timer surface RunClock drives.
type Ticker interface {
	Tick()
	Done() <-chan struct{}
}

// RunClock calls t.Tick every interval until ctx ends or the session
// closes. Renderers with their own one-second tick call Tick directly
// instead.
func RunClock(ctx context.Context, t Ticker, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Done():
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}
