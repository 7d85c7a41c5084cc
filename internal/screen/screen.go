package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a
// status (timer, progress) on the right of the header.
type StatusProvider interface {
	Status() string
}

// KeyCapturer is implemented by screens that need every key, including
// the ones the app would otherwise handle (ctrl+c, esc). A proctored
// question must see ctrl+c as a copy attempt, not a quit.
type KeyCapturer interface {
	CapturesKeys() bool
}

// Closer is implemented by screens that hold resources (goroutines,
// sessions) past their time on the stack. The router calls Close when
// the screen is popped or replaced.
type Closer interface {
	Close()
}
