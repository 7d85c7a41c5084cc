// Package layout draws the chrome around every screen.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

// Smallest window a proctored session accepts. Shrinking below it while an
// assessment runs counts as leaving exclusive mode.
const (
	MinWidth  = 80
	MinHeight = 24
)

const brand = "Clario"

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the window with a resize prompt. Screens that
// capture keys draw their own alert instead.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Window is %dx%d.\n\nClario needs at least %dx%d.\nEnlarge the terminal to continue.",
		width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(msg))
}

var bar = lipgloss.NewStyle().
	Background(theme.BgCard).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(theme.Border)

// RenderHeader puts the brand on the left, title in the middle and status
// (question counter, clock) on the right. The title stays centered on the
// window regardless of how wide the status is.
func RenderHeader(title, status string, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" " + brand)
	mid := theme.Body.Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status + " ")

	inner := max(width-2, 0)
	w := lipgloss.Width
	lgap := max((inner-w(mid))/2-w(left), 1)
	rgap := max(inner-w(left)-lgap-w(mid)-w(right), 1)
	line := left + strings.Repeat(" ", lgap) + mid + strings.Repeat(" ", rgap) + right

	return bar.Width(width).Render(line)
}

// RenderFooter lists key hints left to right.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key))
		b.WriteByte(' ')
		b.WriteString(desc.Render(h.Description))
	}
	return bar.Width(width).Render(" " + b.String())
}

// RenderFrame stacks header, content and footer, stretching content to
// whatever height the bars leave.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).Render(content),
		footer,
	)
}
