package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/router"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screen"
)

type stubScreen struct {
	title    string
	status   string
	capture  bool
	received []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.received = append(s.received, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "body of " + s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) Status() string       { return s.status }
func (s *stubScreen) CapturesKeys() bool   { return s.capture }

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestCtrlCQuitsUnlessCaptured(t *testing.T) {
	s := &stubScreen{title: "one"}
	m := New(s)
	ctrlC := tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}

	_, cmd := update(m, ctrlC)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg, got %T", cmd())
	}
	if len(s.received) != 0 {
		t.Errorf("screen should not see ctrl+c, got %v", s.received)
	}

	s.capture = true
	_, cmd = update(m, ctrlC)
	if cmd != nil {
		t.Error("captured ctrl+c should not quit")
	}
	if len(s.received) != 1 {
		t.Errorf("screen should see captured ctrl+c, got %d messages", len(s.received))
	}
}

func TestEscPopsUnlessCaptured(t *testing.T) {
	base := &stubScreen{title: "base"}
	top := &stubScreen{title: "top", capture: true}
	m := New(base)
	m.router.Push(top)
	esc := tea.KeyPressMsg{Code: tea.KeyEscape}

	_, cmd := update(m, esc)
	if cmd != nil {
		t.Error("captured esc should not pop")
	}

	top.capture = false
	_, cmd = update(m, esc)
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatalf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestPushForwardsWindowSize(t *testing.T) {
	m := New(&stubScreen{title: "base"})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	next := &stubScreen{title: "next"}
	m, _ = update(m, router.PushScreenMsg{Screen: next})
	if m.router.Active() != next {
		t.Fatal("pushed screen should be active")
	}
	if len(next.received) != 1 {
		t.Fatalf("expected one message, got %d", len(next.received))
	}
	size, ok := next.received[0].(tea.WindowSizeMsg)
	if !ok || size.Width != 100 || size.Height != 30 {
		t.Errorf("expected 100x30 size, got %#v", next.received[0])
	}
}

func TestViewShowsStatus(t *testing.T) {
	m := New(&stubScreen{title: "Backend", status: "Q 3/10"})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.render()
	if !strings.Contains(out, "Q 3/10") {
		t.Error("header should show the screen status")
	}
	if !strings.Contains(out, "body of Backend") {
		t.Error("view should contain the screen body")
	}
}

func TestSmallWindow(t *testing.T) {
	s := &stubScreen{title: "x"}
	m := New(s)
	m, _ = update(m, tea.WindowSizeMsg{Width: 40, Height: 10})

	if strings.Contains(m.render(), "body of x") {
		t.Error("small window should show the size message")
	}
	s.capture = true
	if !strings.Contains(m.render(), "body of x") {
		t.Error("capturing screen should render even when small")
	}
}
