package server

import (
	"sync"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// remoteEnv stands in for a browser that owns full screen and the wake
// lock. Requests are recorded and surfaced in the session view; the
// client acts on them and reports back through integrity events.
type remoteEnv struct {
	mu           sync.Mutex
	modeRequests int
	exclusive    bool
	keepAlive    bool
}

var _ session.Environment = (*remoteEnv)(nil)

func (e *remoteEnv) RequestExclusiveMode() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modeRequests++
	e.exclusive = true
	return nil
}

func (e *remoteEnv) ExitExclusiveMode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exclusive = false
}

func (e *remoteEnv) AcquireKeepAlive() (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keepAlive = true
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.keepAlive = false
	}, nil
}

type environmentView struct {
	ModeRequests int  `json:"modeRequests"`
	Exclusive    bool `json:"exclusive"`
	KeepAlive    bool `json:"keepAlive"`
}

func (e *remoteEnv) view() environmentView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return environmentView{
		ModeRequests: e.modeRequests,
		Exclusive:    e.exclusive,
		KeepAlive:    e.keepAlive,
	}
}
