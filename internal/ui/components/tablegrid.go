package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn is one column of a TableGrid. Width is the content width
// without separators.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

const gridIndent = "  "

var (
	gridLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#273540"))
	gridHeaderStyle = boxLabelStyle.Bold(true)
	gridActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d7d9da")).
			Background(lipgloss.Color("#1f2530")).
			Bold(true)
	gridActiveSepStyle = gridLineStyle.Background(lipgloss.Color("#1f2530"))
)

// rowMarkers colours the state markers the review tables put in their first
// or last column: selected and in flight.
var rowMarkers = []struct {
	text  string
	style lipgloss.Style
}{
	{"[x]", lipgloss.NewStyle().Foreground(lipgloss.Color("#d1606b")).Bold(true)},
	{"[~]", lipgloss.NewStyle().Foreground(lipgloss.Color("#c78854"))},
}

// TableGrid renders rows under a header and a rule. Every line is exactly
// width columns wide; pass BoxContentWidth(termWidth) to fit a box.
func TableGrid(columns []TableColumn, rows [][]string, width int) string {
	return TableGridWithActiveRow(columns, rows, width, -1)
}

// TableGridWithActiveRow is TableGrid with row active (0-based) drawn as the
// cursor row. Pass -1 for none.
func TableGridWithActiveRow(columns []TableColumn, rows [][]string, width int, active int) string {
	if width <= 0 {
		return ""
	}
	if len(columns) == 0 {
		return strings.Repeat(" ", width)
	}
	border := lipgloss.RoundedBorder()
	cols := fitColumns(columns, width-len(gridIndent))

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, gridRow(cols, headers, border.Left, width, gridHeaderStyle, gridLineStyle))

	rule := make([]string, len(cols))
	for i, c := range cols {
		rule[i] = strings.Repeat(border.Top, c.Width)
	}
	lines = append(lines, gridLineStyle.Inline(true).Render(padRight(gridIndent+strings.Join(rule, border.Middle), width)))

	for i, row := range rows {
		if i == active {
			lines = append(lines, gridRow(cols, row, border.Left, width, gridActiveStyle, gridActiveSepStyle))
			continue
		}
		lines = append(lines, gridRow(cols, row, border.Left, width, lipgloss.NewStyle(), gridLineStyle))
	}
	return strings.Join(lines, "\n")
}

// fitColumns makes the columns plus separators fill avail exactly. The
// widest column absorbs the difference since it holds free text.
func fitColumns(columns []TableColumn, avail int) []TableColumn {
	cols := make([]TableColumn, len(columns))
	copy(cols, columns)

	used := len(cols) - 1
	widest := 0
	for i := range cols {
		cols[i].Width = max(cols[i].Width, 1)
		used += cols[i].Width
		if cols[i].Width > cols[widest].Width {
			widest = i
		}
	}
	cols[widest].Width = max(cols[widest].Width+avail-used, 1)
	return cols
}

func gridRow(cols []TableColumn, cells []string, sep string, width int, cellStyle, sepStyle lipgloss.Style) string {
	styledSep := sepStyle.Inline(true).Render(sep)
	parts := make([]string, len(cols))
	for i, c := range cols {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		cell := cellStyle.Inline(true).Render(alignCell(SanitizeOneLine(text), c.Width, c.Align))
		parts[i] = markRow(cell)
	}
	return padRight(gridIndent+strings.Join(parts, styledSep), width)
}

func alignCell(text string, width int, align lipgloss.Position) string {
	text = ClampTextWidthEllipsis(text, width)
	pad := width - lipgloss.Width(text)
	if pad <= 0 {
		return truncateWidth(text, width)
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + text
	case lipgloss.Center:
		return strings.Repeat(" ", pad/2) + text + strings.Repeat(" ", pad-pad/2)
	}
	return text + strings.Repeat(" ", pad)
}

func markRow(cell string) string {
	for _, m := range rowMarkers {
		cell = strings.ReplaceAll(cell, m.text, m.style.Render(m.text))
	}
	return cell
}
