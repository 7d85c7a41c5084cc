package components

import (
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

// Button is a one-line call to action. It only renders; the owning
// screen decides what its key does.
type Button struct {
	Label  string
	Active bool
}

// NewButton creates a new button.
func NewButton(label string, active bool) Button {
	return Button{Label: label, Active: active}
}

// View renders the button, dimmed while inactive.
func (b Button) View() string {
	label := "▸ " + b.Label
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
