package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/kbconsole/internal/ui/components"
)

func TestRenderBannerNamesOperatorAndScope(t *testing.T) {
	out := RenderBanner("alice", "Water (水务)")
	assert.NotContains(t, out, "\x1b]")

	clean := components.SanitizeText(out)
	assert.Contains(t, clean, bannerTitle+" · alice · Water (水务)")
	assert.Contains(t, clean, "─")
}

func TestRenderBannerSkipsEmptyParts(t *testing.T) {
	clean := components.SanitizeText(RenderBanner("", "Bus (公交)"))
	assert.Contains(t, clean, bannerTitle+" · Bus (公交)")
	assert.NotContains(t, clean, "·  ·")
}

func TestRenderBannerLinesShareWidth(t *testing.T) {
	out := strings.Trim(RenderBanner("bob", "Bike (单车)"), "\n")
	lines := strings.Split(out, "\n")
	want := lipgloss.Width(lines[0])
	for _, line := range lines {
		assert.Equal(t, want, lipgloss.Width(line))
	}
}

func TestRenderBannerStripsOperatorEscapes(t *testing.T) {
	out := RenderBanner("eve\x1b]0;owned\x07", "")
	assert.NotContains(t, out, "\x1b]0;")
	assert.Contains(t, components.SanitizeText(out), bannerTitle+" · eve")
}
