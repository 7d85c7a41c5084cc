package assessment

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/session"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/components"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const maxContentWidth = 76

// Status shows progress and elapsed time in the header.
func (s *Screen) Status() string {
	st := s.ctrl.State()
	if !st.Phase.Running() {
		return ""
	}
	return fmt.Sprintf("Q %d/%d  %s", st.Index+1, len(st.Questions), clock(st.ElapsedSeconds))
}

func (s *Screen) View(width, height int) string {
	st := s.ctrl.State()
	w := min(width-4, maxContentWidth)

	var body string
	switch {
	case s.loading || st.Phase == session.PhaseLoading || st.Phase == session.PhaseIdle:
		body = s.viewLoading()
	case st.Phase == session.PhaseAwaitingStart:
		body = s.viewRules(st, w)
	case st.Phase == session.PhaseAlert:
		body = s.viewAlert(st, w)
	case st.Phase == session.PhaseActive:
		body = s.viewQuestion(st, w)
	default:
		body = s.viewResult(st, w)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (s *Screen) viewLoading() string {
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	spin := lipgloss.NewStyle().Foreground(theme.Primary).Render(frame)
	return spin + "  " + theme.Body.Render(fmt.Sprintf("Preparing questions on %s...", s.topic))
}

func (s *Screen) viewRules(st session.State, w int) string {
	rules := []string{
		fmt.Sprintf("%d questions across three tiers, one at a time.", len(st.Questions)),
		"Each question has its own timer and moves on when it runs out.",
		"Keep this window focused and at least 80x24.",
		"Copy, paste and developer shortcuts are recorded as violations.",
	}
	var b strings.Builder
	b.WriteString(theme.Title.Width(w).Render(st.Topic))
	b.WriteString("\n\n")
	for _, r := range rules {
		b.WriteString(theme.Body.Render("• " + r))
		b.WriteString("\n")
	}
	if st.Degraded {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Some questions come from the offline bank."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fits := s.env.RequestExclusiveMode() == nil
	b.WriteString(components.NewButton("Press Enter to start", fits).View())
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.notice))
	}
	return theme.Card.Width(w).Render(b.String())
}

func (s *Screen) viewQuestion(st session.State, w int) string {
	q := st.Current
	if q == nil {
		return ""
	}
	var sections []string
	if s.warning != nil {
		sections = append(sections, theme.Warning.Width(w).Render(s.warning.Message), "")
	}

	tier := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(strings.ToUpper(string(q.Tier)))
	sections = append(sections,
		tier,
		components.NewCountdown("Time", st.QuestionRemaining, st.QuestionBudget, w).View(),
		"",
		s.choice.View(w),
	)
	if s.confirmQuit {
		sections = append(sections, theme.Warning.Render("End the assessment now? (y/n)"))
	}
	if s.notice != "" {
		sections = append(sections, theme.Hint.Render(s.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s *Screen) viewAlert(st session.State, w int) string {
	lines := []string{
		lipgloss.NewStyle().Foreground(theme.Error).Bold(true).Render("Window too small"),
		"",
		"The assessment needs a window of at least 80x24.",
		"Any other input now ends the session.",
		"",
		fmt.Sprintf("Restore the window and press Enter within %ds.", max(st.GraceRemaining, 0)),
	}
	if s.notice != "" {
		lines = append(lines, "", theme.Hint.Render(s.notice))
	}
	return theme.Alert.Width(min(w, 60)).Render(strings.Join(lines, "\n"))
}

func (s *Screen) viewResult(st session.State, w int) string {
	title := "Assessment complete"
	color := theme.Success
	if st.Phase == session.PhaseTerminated {
		title = "Assessment ended"
		color = theme.Error
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(st.Reason.Describe()))
	b.WriteString("\n\n")
	if len(st.Questions) > 0 {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d of %d", len(st.Answers), len(st.Questions))))
		b.WriteString("\n")
	}
	b.WriteString(theme.Body.Render("Time " + clock(st.ElapsedSeconds)))
	b.WriteString("\n")
	if v := st.Violations; v.ModeExits+v.Generic > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Window exits %d, violations %d", v.ModeExits, v.Generic)))
		b.WriteString("\n")
	}
	if st.Reason == session.ReasonGenerationFailed && s.loadErr != nil {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Width(w - 4).Render(s.loadErr.Error()))
		b.WriteString("\n")
	}
	return theme.Card.Width(w).Render(b.String())
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
