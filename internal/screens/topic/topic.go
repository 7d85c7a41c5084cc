// Package topic is the entry screen: the candidate names the career
// topic to be assessed on.
package topic

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/router"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/screen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/components"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/layout"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

const maxTopicLen = 120

// Factory builds the assessment screen for a topic.
type Factory func(topic string) (screen.Screen, error)

// Screen asks for a topic and pushes an assessment for it.
type Screen struct {
	input   components.TextInput
	factory Factory
	err     error
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates the topic screen. initial pre-fills the input.
func New(factory Factory, initial string) *Screen {
	in := components.NewTextInput("e.g. Backend Engineer", maxTopicLen)
	in.Model.SetValue(initial)
	return &Screen{input: in, factory: factory}
}

func (s *Screen) Init() tea.Cmd { return s.input.Init() }

func (s *Screen) Title() string { return "New assessment" }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "enter" {
		topic := s.input.Value()
		if topic == "" {
			return s, nil
		}
		next, err := s.factory(topic)
		if err != nil {
			s.err = err
			return s, nil
		}
		s.err = nil
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	w := min(width-4, 60)
	var sections []string
	sections = append(sections,
		theme.Title.Width(w).Render("What role are you preparing for?"),
		"",
		theme.Subtitle.Width(w).Render("Ten timed questions, beginner to advanced."),
		"",
		theme.Card.Width(w).Render(s.input.View()),
	)
	if s.err != nil {
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.Error).
			Width(w).
			Render(s.err.Error()))
	}
	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.TrimRight(body, "\n"))
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
