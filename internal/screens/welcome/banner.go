package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/theme"
)

const bannerArt = `
  ██████╗██╗      █████╗ ██████╗ ██╗ ██████╗
 ██╔════╝██║     ██╔══██╗██╔══██╗██║██╔═══██╗
 ██║     ██║     ███████║██████╔╝██║██║   ██║
 ██║     ██║     ██╔══██║██╔══██╗██║██║   ██║
 ╚██████╗███████╗██║  ██║██║  ██║██║╚██████╔╝
  ╚═════╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝ ╚═════╝`

const bannerCompact = "C L A R I O"

// RenderBanner returns the banner in the primary color, or a one-line
// fallback on terminals narrower than 48 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 48 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
