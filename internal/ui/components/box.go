package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// frame is one bordered box look: border colour, title colour and body
// colour.
type frame struct {
	border lipgloss.Color
	title  lipgloss.Style
	body   lipgloss.Style
}

var (
	plainFrame = frame{
		border: lipgloss.Color("#273540"),
		title:  lipgloss.NewStyle().Foreground(lipgloss.Color("#2f7d95")).Bold(true),
		body:   lipgloss.NewStyle(),
	}
	focusFrame = frame{
		border: lipgloss.Color("#2f7d95"),
		title:  plainFrame.title,
		body:   lipgloss.NewStyle(),
	}
	errorFrame = frame{
		border: lipgloss.Color("#7a2f3a"),
		title:  lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75")).Bold(true),
		body:   lipgloss.NewStyle().Foreground(lipgloss.Color("#d6b5b5")),
	}

	boxLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5a9e8f")).
			Bold(true)
	boxValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d7d9da"))
	boxTipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ba0bf"))
)

const (
	boxBorderCols  = 2
	boxPaddingCols = 4
)

// boxWidth is ~75% of the terminal, between 44 and 96 columns. Tree and
// table panes need more room than a form.
func boxWidth(termWidth int) int {
	if termWidth <= 0 {
		return 0
	}
	return min(max(termWidth*75/100, 44), 96)
}

// outerWidth is boxWidth, never wider than the terminal itself.
func outerWidth(termWidth int) int {
	w := boxWidth(termWidth)
	if termWidth > 0 {
		w = min(w, termWidth)
	}
	return w
}

// BoxContentWidth is the room left for content inside a box on a terminal
// termWidth columns wide.
func BoxContentWidth(termWidth int) int {
	return max(outerWidth(termWidth)-boxBorderCols-boxPaddingCols, 0)
}

// render draws content in f. lipgloss widths include padding but not the
// border, so the border columns come off first.
func (f frame) render(title, content string, termWidth int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.border).
		Padding(1, 2)
	if w := outerWidth(termWidth); w > 0 {
		style = style.Width(max(w-boxBorderCols, boxPaddingCols+1))
	}
	out := style.Render(f.body.Render(content))
	if title == "" {
		return out
	}
	lines := strings.Split(out, "\n")
	lines[0] = f.topEdge(title, lipgloss.Width(lines[0]))
	return strings.Join(lines, "\n")
}

// topEdge is the top border of a box span columns wide with the title set
// into its middle.
func (f frame) topEdge(title string, span int) string {
	b := lipgloss.RoundedBorder()
	edge := lipgloss.NewStyle().Foreground(f.border)
	inner := span - 2
	if inner < 2 {
		return edge.Render(b.TopLeft + strings.Repeat(b.Top, max(inner, 0)) + b.TopRight)
	}
	label := truncateWidth(" [ "+SanitizeOneLine(title)+" ] ", inner)
	rest := inner - runewidth.StringWidth(label)
	left := rest / 2
	return edge.Render(b.TopLeft+strings.Repeat(b.Top, left)) +
		f.title.Render(label) +
		edge.Render(strings.Repeat(b.Top, rest-left)+b.TopRight)
}

// TitledBox renders content in a box with the title set into the top border.
func TitledBox(title, content string, termWidth int) string {
	return plainFrame.render(title, content, termWidth)
}

// ActiveTitledBox is TitledBox for the focused pane.
func ActiveTitledBox(title, content string, termWidth int) string {
	return focusFrame.render(title, content, termWidth)
}

// ErrorBox renders message, stripped of escapes, in a red box.
func ErrorBox(title, message string, termWidth int) string {
	body := SanitizeText(message)
	if title == "" {
		return errorFrame.render("", body, termWidth)
	}
	return errorFrame.render("", errorFrame.title.Render(SanitizeOneLine(title))+"\n\n"+body, termWidth)
}

// EmptyStateBox tells the operator why a pane is empty and which keys help.
func EmptyStateBox(title, message string, tips []string, termWidth int) string {
	lines := []string{boxValueStyle.Render(SanitizeOneLine(message))}
	if len(tips) > 0 {
		lines = append(lines, "")
	}
	for _, tip := range tips {
		lines = append(lines, boxTipStyle.Render("· "+SanitizeOneLine(tip)))
	}
	return TitledBox(title, strings.Join(lines, "\n"), termWidth)
}

// ClampTextWidth flattens text to one line and cuts it to width display
// columns. CJK runes count as two.
func ClampTextWidth(text string, width int) string {
	return clamp(text, width, "")
}

// ClampTextWidthEllipsis is ClampTextWidth ending in "…" when it cuts.
func ClampTextWidthEllipsis(text string, width int) string {
	return clamp(text, width, "…")
}

func clamp(text string, width int, tail string) string {
	if width <= 0 {
		return text
	}
	return runewidth.Truncate(SanitizeOneLine(text), width, tail)
}

func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "")
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}

// TableRow is one label/value line of a Table.
type TableRow struct {
	Label string
	Value string
}

// Table renders label/value rows in a titled box. Labels take at most 24
// columns or half the box; values are cut with an ellipsis.
func Table(title string, rows []TableRow, termWidth int) string {
	if len(rows) == 0 {
		return ""
	}
	labelCols := 0
	for _, r := range rows {
		labelCols = max(labelCols, runewidth.StringWidth(SanitizeOneLine(r.Label)))
	}
	inner := BoxContentWidth(termWidth)
	if inner == 0 {
		inner = labelCols + 40
	}
	labelCols = min(labelCols, 24, max(inner/2, 4))
	valueCols := max(inner-labelCols-2, 4)

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = boxLabelStyle.Render(padRight(ClampTextWidth(r.Label, labelCols), labelCols)) +
			"  " + boxValueStyle.Render(ClampTextWidthEllipsis(r.Value, valueCols))
	}
	return TitledBox(title, strings.Join(lines, "\n"), termWidth)
}

// Indent shifts every line of s right by spaces columns.
func Indent(s string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
