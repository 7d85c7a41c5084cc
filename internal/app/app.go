// Package app hosts the root Bubble Tea model: a screen router framed
// by a header and footer.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/router"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// New creates an AppModel starting at initial.
func New(initial screen.Screen) AppModel {
	return AppModel{router: router.New(initial)}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

// capturing reports whether the active screen wants every key.
func (m AppModel) capturing() bool {
	kc, ok := m.router.Active().(screen.KeyCapturer)
	return ok && kc.CapturesKeys()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Screens track size too: the proctored screen treats a shrink
		// as leaving exclusive mode.
		return m, m.router.Update(msg)

	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg:
		cmd := m.router.Update(msg)
		if m.width == 0 {
			return m, cmd
		}
		// The newly active screen has not seen the current size.
		resize := m.router.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m, tea.Batch(cmd, resize)

	case tea.KeyPressMsg:
		if m.capturing() {
			break
		}
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	v.ReportFocus = true
	v.MouseMode = tea.MouseModeCellMotion
	v.SetContent(m.render())
	return v
}

// render draws the frame around the active screen.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	// A running session renders its own alert when the window shrinks.
	if layout.IsTooSmall(m.width, m.height) && !m.capturing() {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "Enter", Description: "Continue"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program at initial.
func Run(initial screen.Screen) error {
	m := New(initial)
	defer m.router.CloseAll()
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
