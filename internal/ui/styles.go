package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/kbconsole/internal/scope"
)

// --- Palette ---

var (
	ColorPrimary    = lipgloss.Color("#2f7d95")
	ColorSecondary  = lipgloss.Color("#5a9e8f")
	ColorBackground = lipgloss.Color("#16161d")
	ColorText       = lipgloss.Color("#d7d9da")
	ColorMuted      = lipgloss.Color("#9ba0bf")
	ColorSuccess    = lipgloss.Color("#3f866b")
	ColorError      = lipgloss.Color("#e06c75")
	ColorWarning    = lipgloss.Color("#c78854")
	ColorBorder     = lipgloss.Color("#273540")
)

// scopeColors tints the scope badge so the operator can tell at a glance
// which tree an edit lands in.
var scopeColors = map[scope.Scope]lipgloss.Color{
	scope.Water: lipgloss.Color("#4f9fd6"),
	scope.Bus:   lipgloss.Color("#d6a64f"),
	scope.Bike:  lipgloss.Color("#7fbf6a"),
}

// --- Styles ---

var (
	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// tree badges, indexed by taxonomy level
	LevelStyles = map[int]lipgloss.Style{
		1: lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true),
		2: lipgloss.NewStyle().Foreground(ColorSecondary),
		3: lipgloss.NewStyle().Foreground(ColorText),
	}

	// keyword hit inside a category name
	MatchStyle = lipgloss.NewStyle().
			Foreground(ColorBackground).
			Background(ColorWarning)

	StatusActiveStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess).
				Bold(true)

	StatusDisabledStyle = lipgloss.NewStyle().
				Foreground(ColorMuted).
				Strikethrough(true)
)

// scopeBadge renders the working scope next to the tab row.
func scopeBadge(s scope.Scope) string {
	color, ok := scopeColors[s]
	if !ok {
		color = ColorMuted
	}
	return lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(color).
		Bold(true).
		Padding(0, 1).
		Render(s.Label())
}
