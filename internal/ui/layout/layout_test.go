package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestIsTooSmall(t *testing.T) {
	assert.False(t, IsTooSmall(80, 24))
	assert.True(t, IsTooSmall(79, 24))
	assert.True(t, IsTooSmall(80, 23))
}

func TestRenderFrameFillsHeight(t *testing.T) {
	header := RenderHeader("Backend Engineer", "Q 2/10  1:05", 100)
	footer := RenderFooter([]KeyHint{{Key: "Enter", Description: "Submit"}}, 100)

	out := RenderFrame(header, "body", footer, 100, 30)

	assert.Equal(t, 30, lipgloss.Height(out))
	assert.Contains(t, out, "Backend Engineer")
	assert.Contains(t, out, "Q 2/10")
	assert.Contains(t, out, "Submit")
}

func TestRenderMinSizeMessage(t *testing.T) {
	out := RenderMinSizeMessage(60, 20)
	assert.Contains(t, out, "60x20")
	assert.True(t, strings.Contains(out, "80x24"))
}
