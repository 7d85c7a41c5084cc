package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

const maxWarnings = 10

// entry is one live session and the goroutines serving it.
type entry struct {
	ctrl    *session.Controller
	env     *remoteEnv
	events  chan integrity.Event
	cancel  context.CancelFunc
	created time.Time

	mu       sync.Mutex
	warnings []integrity.Warning
}

func (e *entry) addWarning(w integrity.Warning) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.warnings = append(e.warnings, w)
	if len(e.warnings) > maxWarnings {
		e.warnings = e.warnings[len(e.warnings)-maxWarnings:]
	}
}

func (e *entry) recentWarnings() []integrity.Warning {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]integrity.Warning(nil), e.warnings...)
}

// Registry owns the sessions served by one Server. Finished sessions
// stay readable for ttl; sessions never started are abandoned after ttl.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (r *Registry) add(id string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = e
}

func (r *Registry) get(id string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	return e, ok
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.cancel()
		delete(r.sessions, id)
	}
}

// Len returns the number of held sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep abandons stale unstarted sessions and drops finished ones whose
// ttl has passed. It returns the number dropped.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var stale []*entry
	dropped := 0
	for id, e := range r.sessions {
		rec, done := e.ctrl.Record()
		switch {
		case done && now.Sub(rec.FinishedAt) >= r.ttl:
			e.cancel()
			delete(r.sessions, id)
			dropped++
		case !done && e.ctrl.Phase() == session.PhaseAwaitingStart && now.Sub(e.created) >= r.ttl:
			stale = append(stale, e)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		r.logger.Info("abandoning unstarted session", "session_id", e.ctrl.ID())
		_ = e.ctrl.Terminate(session.ReasonAbandoned)
	}
	return dropped
}

// Run sweeps every interval until ctx ends, then cancels every session.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted sessions", "count", n)
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.sessions {
		_ = e.ctrl.Terminate(session.ReasonAbandoned)
		e.cancel()
		delete(r.sessions, id)
	}
}
