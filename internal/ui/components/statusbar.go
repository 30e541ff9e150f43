package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	hintDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ba0bf"))
	keyCapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#16161d")).
			Background(lipgloss.Color("#888ba4")).
			Bold(true).
			Padding(0, 1)
	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c78854")).
			Bold(true)
	segmentStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#273540")).
			Padding(0, 1).
			MarginRight(1)
)

// Hint formats one key hint, e.g. "Accept a".
func Hint(key, desc string) string {
	return hintDescStyle.Render(desc+" ") + keyCapStyle.Render(key)
}

// BusyHint is the status bar segment shown while a request is in flight.
func BusyHint(label string) string {
	return busyStyle.Render("⟳ " + SanitizeOneLine(label))
}

// StatusBar lays the hints out in bordered segments, wrapping onto more
// rows when width is too small for one. Each row is centred.
func StatusBar(hints []string, width int) string {
	if len(hints) == 0 {
		return ""
	}
	segments := make([]string, len(hints))
	for i, h := range hints {
		segments[i] = segmentStyle.Render(h)
	}

	rows := packRows(segments, width-2)
	rendered := make([]string, len(rows))
	for i, row := range rows {
		line := lipgloss.JoinHorizontal(lipgloss.Top, row...)
		if width > 0 {
			line = lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
		} else {
			line = "  " + line
		}
		rendered[i] = line
	}
	return strings.Join(rendered, "\n")
}

// packRows fills rows greedily. A segment wider than width gets a row of
// its own; width <= 0 keeps everything on one row.
func packRows(segments []string, width int) [][]string {
	var rows [][]string
	var row []string
	used := 0
	for _, seg := range segments {
		w := lipgloss.Width(seg)
		if width > 0 && len(row) > 0 && used+w > width {
			rows = append(rows, row)
			row, used = nil, 0
		}
		row = append(row, seg)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}
