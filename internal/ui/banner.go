package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/kbconsole/internal/ui/components"
)

const (
	bannerTitle = "Knowledge-base moderation console"
	bannerArt   = ` _    _                              _
| | _| |__   ___ ___  _ __  ___  ___ | | ___
| |/ / '_ \ / __/ _ \| '_ \/ __|/ _ \| |/ _ \
|   <| |_) | (_| (_) | | | \__ \ (_) | |  __/
|_|\_\_.__/ \___\___/|_| |_|___/\___/|_|\___|`
)

// RenderBanner returns the logo over a subtitle naming the operator and the
// working scope. Empty parts are left out of the subtitle.
func RenderBanner(operator, scopeLine string) string {
	parts := []string{bannerTitle}
	for _, p := range []string{operator, scopeLine} {
		if p = components.SanitizeOneLine(p); p != "" {
			parts = append(parts, p)
		}
	}
	subtitle := strings.Join(parts, " · ")

	art := lipgloss.NewStyle().Foreground(ColorPrimary).Render(bannerArt)
	rule := lipgloss.NewStyle().Foreground(ColorBorder).Render(strings.Repeat("─", lipgloss.Width(subtitle)))
	block := lipgloss.JoinVertical(lipgloss.Center,
		art,
		"",
		lipgloss.NewStyle().Foreground(ColorMuted).Render(subtitle),
		rule,
	)
	return "\n" + block + "\n"
}
