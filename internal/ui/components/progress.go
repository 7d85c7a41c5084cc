package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

// lowFraction is where a countdown bar turns red.
const lowFraction = 0.25

// Countdown displays the time left on a timer as a shrinking bar.
type Countdown struct {
	Label     string
	Remaining int
	Budget    int
	Width     int
}

// NewCountdown creates a countdown bar.
func NewCountdown(label string, remaining, budget, width int) Countdown {
	return Countdown{Label: label, Remaining: remaining, Budget: budget, Width: width}
}

// Fraction is the share of the budget left, in [0, 1].
func (c Countdown) Fraction() float64 {
	if c.Budget <= 0 {
		return 0
	}
	return min(max(float64(c.Remaining)/float64(c.Budget), 0), 1)
}

// View renders the bar followed by the seconds left.
func (c Countdown) View() string {
	var result string
	if c.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(c.Label) + "  "
	}

	suffix := fmt.Sprintf("  %2ds", max(c.Remaining, 0))
	barWidth := max(c.Width-lipgloss.Width(result)-len(suffix), 4)

	frac := c.Fraction()
	filled := int(float64(barWidth) * frac)
	fill := theme.ProgressFilled
	if frac <= lowFraction {
		fill = theme.ProgressLow
	}

	result += fill.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	result += lipgloss.NewStyle().Foreground(theme.TextDim).Render(suffix)
	return result
}
