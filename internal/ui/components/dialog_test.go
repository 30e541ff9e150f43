package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestConfirmDialogShowsQuestionAndKeys(t *testing.T) {
	clean := SanitizeText(ConfirmDialog("Accept 3 FAQs", "They will be published to the knowledge base."))

	assert.Contains(t, clean, "Accept 3 FAQs")
	assert.Contains(t, clean, "published to the knowledge base")
	assert.Contains(t, clean, confirmKeys)
}

func TestDestructiveDialogCountLine(t *testing.T) {
	clean := SanitizeText(DestructiveDialog("Delete node", "Deletes the subtree and its cases.", 4, "Nodes"))
	assert.Contains(t, clean, "Delete node")
	assert.Contains(t, clean, "Nodes: 4")

	clean = SanitizeText(DestructiveDialog("Discard", "Gone.", 0, "Items"))
	assert.NotContains(t, clean, "Items:")
}

func TestInputDialogPrefixesPrompt(t *testing.T) {
	clean := SanitizeText(InputDialog("Filter", "bike"))
	assert.Contains(t, clean, "> bike")
	assert.Contains(t, clean, inputKeys)

	clean = SanitizeText(InputDialog("Filter", "> bike"))
	assert.NotContains(t, clean, "> > bike")
}

func TestDialogsKeepFixedWidth(t *testing.T) {
	out := ConfirmDialog("Replace taxonomy", strings.Repeat("long message ", 20))
	for _, line := range strings.Split(out, "\n") {
		assert.Equal(t, dialogCols+2, lipgloss.Width(line))
	}
}

func TestDialogStripsEscapesFromMessage(t *testing.T) {
	out := ConfirmDialog("Discard", "name\x1b]0;title\x07 here")
	assert.NotContains(t, out, "\x1b]0;")
	assert.Contains(t, SanitizeText(out), "name here")
}
