package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
)

// Target is the part of session.Controller the monitor drives.
type Target interface {
	Phase() session.Phase
	RecordModeExit() (int, error)
	RecordViolation() (int, error)
	EnterAlert() error
	ResumeFromAlert() error
	Terminate(reason session.Reason) error
	Done() <-chan struct{}
}

var _ Target = (*session.Controller)(nil)

// Outcome is what Observe did with an event.
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeWarned     Outcome = "warned"
	OutcomeCounted    Outcome = "counted"
	OutcomeAlert      Outcome = "alert"
	OutcomeResumed    Outcome = "resumed"
	OutcomeTerminated Outcome = "terminated"
)

// Warning is a transient notice for the renderer.
type Warning struct {
	Kind    Kind
	Count   int
	Cap     int
	Message string
	At      time.Time
}

// Recorder receives integrity telemetry.
type Recorder interface {
	IntegrityEvent(kind, outcome string)
}

// Monitor applies Policy to one session's event stream.
type Monitor struct {
	target   Target
	policy   Policy
	warnings chan Warning
	logger   *slog.Logger
	recorder Recorder
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRecorder sets the telemetry sink.
func WithRecorder(r Recorder) MonitorOption {
	return func(m *Monitor) { m.recorder = r }
}

// NewMonitor creates a Monitor for target.
func NewMonitor(target Target, policy Policy, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		target:   target,
		policy:   policy,
		warnings: make(chan Warning, max(policy.WarningBuffer, 1)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "integrity")
	return m
}

// Warnings delivers transient warnings. Readers that fall behind lose
// warnings; classification never waits for them.
func (m *Monitor) Warnings() <-chan Warning { return m.warnings }

// Run observes events until ctx ends, the stream closes, or the session
// reaches a terminal phase.
func (m *Monitor) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.target.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Observe(ev)
		}
	}
}

// Observe classifies ev and requests the transition the policy calls
// for. Signals outside Active and Alert are ignored.
func (m *Monitor) Observe(ev Event) Outcome {
	out := m.observe(ev)
	if m.recorder != nil {
		m.recorder.IntegrityEvent(string(ev.Kind), string(out))
	}
	if out != OutcomeIgnored {
		m.logger.Info("integrity event", "kind", ev.Kind, "outcome", out)
	}
	return out
}

func (m *Monitor) observe(ev Event) Outcome {
	phase := m.target.Phase()
	if !phase.Running() {
		return OutcomeIgnored
	}

	switch Classify(ev.Kind) {
	case ClassFocusLoss:
		return m.terminate(session.ReasonTabSwitch)

	case ClassModeExit:
		n, err := m.target.RecordModeExit()
		if err != nil {
			return m.rejected(ev, err)
		}
		if n >= m.policy.ModeExitCap {
			return m.terminate(session.ReasonModeExit)
		}
		if phase == session.PhaseAlert {
			return OutcomeCounted
		}
		if err := m.target.EnterAlert(); err != nil {
			return m.rejected(ev, err)
		}
		return OutcomeAlert

	case ClassModeRestored:
		if phase != session.PhaseAlert {
			return OutcomeIgnored
		}
		if err := m.target.ResumeFromAlert(); err != nil {
			return m.rejected(ev, err)
		}
		return OutcomeResumed

	case ClassGeneric:
		n, err := m.target.RecordViolation()
		if err != nil {
			return m.rejected(ev, err)
		}
		if phase == session.PhaseAlert {
			return m.terminate(session.ReasonAlertInteraction)
		}
		if n >= m.policy.ViolationCap {
			return m.terminate(session.ReasonViolationCap)
		}
		m.warn(Warning{
			Kind:    ev.Kind,
			Count:   n,
			Cap:     m.policy.ViolationCap,
			Message: warningText(ev.Kind, n, m.policy.ViolationCap),
			At:      ev.At,
		})
		return OutcomeWarned

	case ClassInteraction:
		if phase == session.PhaseAlert {
			return m.terminate(session.ReasonAlertInteraction)
		}
	}
	return OutcomeIgnored
}

func (m *Monitor) terminate(reason session.Reason) Outcome {
	if err := m.target.Terminate(reason); err != nil {
		m.logger.Error("terminate session", "reason", reason, "error", err)
	}
	return OutcomeTerminated
}

// rejected handles a transition the controller refused, usually because
// the phase changed between the read and the request.
func (m *Monitor) rejected(ev Event, err error) Outcome {
	m.logger.Debug("transition rejected", "kind", ev.Kind, "error", err)
	return OutcomeIgnored
}

func (m *Monitor) warn(w Warning) {
	select {
	case m.warnings <- w:
	default:
		m.logger.Debug("warning dropped", "kind", w.Kind)
	}
}

func warningText(k Kind, n, limit int) string {
	what := "Restricted action"
	switch k {
	case KindClipboardCopy, KindClipboardCut, KindClipboardPaste:
		what = "Clipboard use"
	case KindInspectionTool:
		what = "Developer tools"
	case KindPointerLeft:
		what = "Pointer left the assessment"
	case KindRestrictedKey:
		what = "Restricted shortcut"
	case KindContextMenu:
		what = "Context menu"
	}
	if left := limit - n; left > 1 {
		return fmt.Sprintf("%s detected. %d more violations will end the session.", what, left)
	}
	return fmt.Sprintf("%s detected. One more violation will end the session.", what)
}
