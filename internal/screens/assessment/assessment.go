package assessment

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/router"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/tui"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/components"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/layout"
)

const (
	spinnerInterval = 120 * time.Millisecond
	warningDuration = 4 * time.Second
)

// Screen runs one proctored assessment in the terminal. It is both the
// renderer and the signal source: terminal input is translated into
// integrity events and handed to the monitor on the Update goroutine.
type Screen struct {
	ctx     context.Context
	cancel  context.CancelFunc
	ctrl    *session.Controller
	monitor *integrity.Monitor
	env     *tui.Environment
	signals *tui.Signals
	topic   string
	probe   *integrity.Probe
	probed  chan integrity.Event

	loading     bool
	frame       int
	choice      components.MultiChoice
	choiceIndex int
	warning     *integrity.Warning
	warnSeq     int
	notice      string
	confirmQuit bool
	loadErr     error
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
	_ screen.KeyCapturer     = (*Screen)(nil)
)

// Option configures a Screen.
type Option func(*Screen)

// WithProbe polls p while the session runs and reports its events to
// the monitor.
func WithProbe(p *integrity.Probe) Option {
	return func(s *Screen) { s.probe = p }
}

// New creates the screen. ctrl must be Idle; monitor must target ctrl;
// env must be the Environment ctrl was built with.
func New(ctx context.Context, ctrl *session.Controller, monitor *integrity.Monitor, env *tui.Environment, topic string, opts ...Option) *Screen {
	ctx, cancel := context.WithCancel(ctx)
	s := &Screen{
		ctx:         ctx,
		cancel:      cancel,
		ctrl:        ctrl,
		monitor:     monitor,
		env:         env,
		signals:     tui.NewSignals(env),
		topic:       topic,
		loading:     true,
		choiceIndex: -1,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.load(), spinnerTick())
}

func (s *Screen) Title() string { return s.topic }

// CapturesKeys is true while the session is running, so ctrl+c and esc
// reach the integrity policy instead of quitting.
func (s *Screen) CapturesKeys() bool {
	return s.ctrl.Phase().Running()
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		s.loadErr = msg.Err
		s.sync()
		return s, nil

	case spinnerTickMsg:
		if !s.loading {
			return s, nil
		}
		s.frame++
		return s, spinnerTick()

	case timerTickMsg:
		s.ctrl.Tick()
		s.sync()
		if s.ctrl.Phase().Terminal() {
			return s, nil
		}
		return s, tickCmd()

	case warningMsg:
		w := integrity.Warning(msg)
		s.warning = &w
		s.warnSeq++
		return s, tea.Batch(s.waitWarning(), expireWarning(s.warnSeq))

	case warningExpiredMsg:
		if msg.seq == s.warnSeq {
			s.warning = nil
		}
		return s, nil

	case probeMsg:
		if !s.ctrl.Phase().Running() {
			return s, nil
		}
		s.monitor.Observe(integrity.Event(msg))
		s.sync()
		return s, s.waitProbe()
	}

	phase := s.ctrl.Phase()
	if key, ok := msg.(tea.KeyPressMsg); ok && phase == session.PhaseAlert && isReenterKey(key) {
		return s.reenter()
	}
	kinds := s.signals.Translate(msg, phase == session.PhaseAlert)
	if phase.Running() && len(kinds) > 0 {
		for _, k := range kinds {
			s.monitor.Observe(integrity.NewEvent(k))
		}
		s.sync()
		return s, nil
	}

	if key, ok := msg.(tea.KeyPressMsg); ok {
		return s.handleKey(key)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	phase := s.ctrl.Phase()

	switch {
	case s.loading:
		if key == "esc" {
			// Load sees the cancellation and ends the session as abandoned.
			s.cancel()
		}
		return s, nil

	case phase.Terminal():
		switch key {
		case "q":
			return s, tea.Quit
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case phase == session.PhaseAwaitingStart:
		switch key {
		case "enter":
			return s.start()
		case "esc":
			_ = s.ctrl.Terminate(session.ReasonAbandoned)
			s.sync()
		}
		return s, nil

	case phase == session.PhaseActive:
		return s.handleActiveKey(msg)
	}
	return s, nil
}

func (s *Screen) handleActiveKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			_ = s.ctrl.Terminate(session.ReasonAbandoned)
			s.sync()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "n", "right", "tab":
		s.notice = ""
		_ = s.ctrl.Next()
		s.sync()
		return s, nil
	}

	if label, ok := s.choice.Choice(msg); ok {
		st := s.ctrl.State()
		if st.Current != nil {
			if err := s.ctrl.Answer(st.Current.ID, label); err == nil {
				s.choice.Choose(label)
			}
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}

func (s *Screen) start() (screen.Screen, tea.Cmd) {
	if err := s.env.RequestExclusiveMode(); err != nil {
		s.notice = "Enlarge the terminal before starting."
		return s, nil
	}
	if err := s.ctrl.Start(); err != nil {
		return s, nil
	}
	s.notice = ""
	s.sync()
	cmds := []tea.Cmd{tickCmd(), s.waitWarning()}
	if s.probe != nil {
		s.probed = make(chan integrity.Event)
		go s.probe.Run(s.ctx, s.probed)
		cmds = append(cmds, s.waitProbe())
	}
	return s, tea.Batch(cmds...)
}

func (s *Screen) reenter() (screen.Screen, tea.Cmd) {
	err := s.ctrl.ReenterExclusiveMode()
	switch {
	case errors.Is(err, tui.ErrWindowTooSmall):
		s.notice = "The window is still too small."
	case err != nil:
		s.notice = err.Error()
	default:
		s.notice = ""
	}
	s.sync()
	return s, nil
}

// Close abandons a session that is still open when the screen leaves
// the stack or the program exits.
func (s *Screen) Close() {
	_ = s.ctrl.Terminate(session.ReasonAbandoned)
	s.cancel()
}

// sync rebuilds the option selector when the question changes and
// releases resources once the session has ended.
func (s *Screen) sync() {
	st := s.ctrl.State()
	if st.Phase.Terminal() {
		s.loading = false
		s.confirmQuit = false
		s.cancel()
		return
	}
	if st.Current == nil || st.Index == s.choiceIndex {
		return
	}
	s.choice = components.NewMultiChoice(*st.Current)
	if label, ok := st.Answers[st.Current.ID]; ok {
		s.choice.Choose(label)
	}
	s.choiceIndex = st.Index
}

func (s *Screen) load() tea.Cmd {
	ctx, ctrl, topic := s.ctx, s.ctrl, s.topic
	return func() tea.Msg {
		return loadedMsg{Err: ctrl.Load(ctx, topic)}
	}
}

// waitWarning blocks until the monitor emits a warning or the session
// ends, whichever comes first.
func (s *Screen) waitWarning() tea.Cmd {
	warnings, done := s.monitor.Warnings(), s.ctrl.Done()
	return func() tea.Msg {
		select {
		case w := <-warnings:
			return warningMsg(w)
		case <-done:
			return nil
		}
	}
}

// waitProbe delivers the next probe event. It returns nil once the
// screen context ends, which also stops the probe.
func (s *Screen) waitProbe() tea.Cmd {
	events, done := s.probed, s.ctx.Done()
	return func() tea.Msg {
		select {
		case ev := <-events:
			return probeMsg(ev)
		case <-done:
			return nil
		}
	}
}

func isReenterKey(msg tea.KeyPressMsg) bool {
	switch msg.String() {
	case "enter", "f":
		return true
	}
	return false
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}

func expireWarning(seq int) tea.Cmd {
	return tea.Tick(warningDuration, func(time.Time) tea.Msg {
		return warningExpiredMsg{seq: seq}
	})
}

func (s *Screen) KeyHints() []layout.KeyHint {
	phase := s.ctrl.Phase()
	switch {
	case s.loading:
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	case phase.Terminal():
		return []layout.KeyHint{
			{Key: "Enter", Description: "New assessment"},
			{Key: "Q", Description: "Quit"},
		}
	case phase == session.PhaseAwaitingStart:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case phase == session.PhaseAlert:
		return []layout.KeyHint{{Key: "Enter", Description: "Return to full size"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "End assessment"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "A-D", Description: "Answer"},
		{Key: "N", Description: "Next"},
		{Key: "Esc", Description: "Quit"},
	}
}
