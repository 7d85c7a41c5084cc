package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/questiongen"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

// MultiChoice is an A-D option selector. It never reveals the key: the
// chosen label is only marked as the recorded answer.
type MultiChoice struct {
	Question string
	Options  map[questiongen.Label]string
	Selected int
	Chosen   questiongen.Label
}

// NewMultiChoice creates a selector for q with nothing chosen yet.
func NewMultiChoice(q questiongen.Question) MultiChoice {
	return MultiChoice{Question: q.Text, Options: q.Options}
}

// Update handles navigation. Choosing is reported through Choice so the
// caller can record it; the component itself only tracks the cursor.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}
	labels := questiongen.Labels()
	switch kmsg.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(labels)-1 {
			m.Selected++
		}
	}
	return m, nil
}

// Choice maps a key to a label: a-d, 1-4, or enter for the cursor.
func (m MultiChoice) Choice(msg tea.KeyPressMsg) (questiongen.Label, bool) {
	labels := questiongen.Labels()
	key := msg.String()
	if key == "enter" || key == "space" {
		return labels[m.Selected], true
	}
	if len(key) != 1 {
		return "", false
	}
	switch c := key[0]; {
	case c >= '1' && c <= '4':
		return labels[c-'1'], true
	case c >= 'a' && c <= 'd':
		return labels[c-'a'], true
	case c >= 'A' && c <= 'D':
		return labels[c-'A'], true
	}
	return "", false
}

// Choose marks label as the recorded answer and moves the cursor to it.
func (m *MultiChoice) Choose(label questiongen.Label) {
	m.Chosen = label
	for i, l := range questiongen.Labels() {
		if l == label {
			m.Selected = i
		}
	}
}

// View renders the question and options.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Foreground(theme.Text).
		Bold(true).
		Render(m.Question))
	b.WriteString("\n\n")

	for i, label := range questiongen.Labels() {
		prefix := "  "
		if i == m.Selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, label, m.Options[label])
		switch {
		case label == m.Chosen:
			line += "  ✓"
			b.WriteString(theme.Answered.Render(line))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render(line))
		default:
			b.WriteString(theme.Unselected.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
