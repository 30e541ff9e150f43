package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// dialogCols is the fixed inner width of every dialog.
const dialogCols = 56

var (
	warnFrame = frame{
		border: lipgloss.Color("#7a4f2a"),
		title:  lipgloss.NewStyle().Foreground(lipgloss.Color("#c78854")).Bold(true),
		body:   lipgloss.NewStyle(),
	}
	inputFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5a9e8f"))
)

const (
	confirmKeys = "y: confirm | n: cancel"
	inputKeys   = "enter: submit | esc: cancel"
)

// dialog stacks a heading, body paragraphs and a key line inside f.
func (f frame) dialog(heading string, keys string, paragraphs ...string) string {
	parts := append([]string{f.title.Render(SanitizeOneLine(heading))}, paragraphs...)
	parts = append(parts, boxTipStyle.Render(keys))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(f.border).
		Padding(1, 2).
		Width(dialogCols).
		Render(strings.Join(parts, "\n\n"))
}

// ConfirmDialog asks a yes/no question.
func ConfirmDialog(title, message string) string {
	return plainFrame.dialog(title, confirmKeys, boxTipStyle.Render(SanitizeText(message)))
}

// DestructiveDialog is ConfirmDialog for deletes and replacing imports. A
// positive count adds a line such as "Nodes: 4".
func DestructiveDialog(title, message string, count int, countLabel string) string {
	body := []string{boxTipStyle.Render(SanitizeText(message))}
	if count > 0 {
		body = append(body, warnFrame.title.Render(SanitizeOneLine(countLabel)+":")+" "+boxValueStyle.Render(fmt.Sprint(count)))
	}
	return warnFrame.dialog(title, confirmKeys, body...)
}

// InputDialog frames an already rendered input field, such as a bubbles
// textinput view, under a prompt.
func InputDialog(title, input string) string {
	if !strings.HasPrefix(input, ">") {
		input = "> " + input
	}
	return plainFrame.dialog(title, inputKeys, inputFieldStyle.Render(input))
}
