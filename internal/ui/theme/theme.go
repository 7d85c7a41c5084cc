// Package theme holds the palette and shared lipgloss styles. Question
// screens stay muted so that warnings and the mode-loss alert stand out.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#7C83FD")
	Secondary = lipgloss.Color("#38BDF8")
	Accent    = lipgloss.Color("#FBBF24")
	Success   = lipgloss.Color("#34D399")
	Error     = lipgloss.Color("#F87171")

	Text    = lipgloss.Color("#E5E7EB")
	TextDim = lipgloss.Color("#9CA3AF")
	BgDark  = lipgloss.Color("#111827")
	BgCard  = lipgloss.Color("#1F2937")
	Border  = lipgloss.Color("#374151")
)

var (
	Body     = lipgloss.NewStyle().Foreground(Text)
	Title    = Body.Foreground(Primary).Bold(true).Align(lipgloss.Center)
	Subtitle = Body.Foreground(TextDim).Align(lipgloss.Center)
	Hint     = Body.Foreground(TextDim).Italic(true)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// Answer list.
var (
	Selected   = Body.Foreground(Primary).Bold(true)
	Unselected = Body
	Answered   = Body.Foreground(Success).Bold(true)
)

var (
	// Warning is the banner after a first violation of a kind.
	Warning = lipgloss.NewStyle().Background(Accent).Foreground(BgDark).Bold(true).Padding(0, 2)

	// Alert frames the countdown shown while exclusive mode is lost.
	Alert = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Error).
		Foreground(Text).
		Align(lipgloss.Center).
		Padding(1, 4)
)

// Countdown bar and start button.
var (
	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressLow    = lipgloss.NewStyle().Background(Error)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	ButtonActive   = lipgloss.NewStyle().Background(Primary).Foreground(BgDark).Bold(true).Padding(0, 2)
	ButtonInactive = lipgloss.NewStyle().Background(Border).Foreground(TextDim).Padding(0, 2)
)
