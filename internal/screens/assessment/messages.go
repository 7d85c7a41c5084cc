package assessment

import (
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
)

// loadedMsg is sent when question generation and composition finish.
type loadedMsg struct {
	Err error
}

// timerTickMsg drives the session clock once per second.
type timerTickMsg time.Time

// spinnerTickMsg animates the loading indicator.
type spinnerTickMsg time.Time

// warningMsg carries a transient warning from the monitor.
type warningMsg integrity.Warning

// warningExpiredMsg hides the banner shown for warning seq.
type warningExpiredMsg struct {
	seq int
}

// probeMsg carries an inspection-tool event from the probe goroutine.
type probeMsg integrity.Event
