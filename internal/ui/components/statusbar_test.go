package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHintShowsDescriptionThenKey(t *testing.T) {
	out := SanitizeText(Hint("A/D", "Bulk"))
	assert.Less(t, strings.Index(out, "Bulk"), strings.Index(out, "A/D"))
}

func TestBusyHintStripsControls(t *testing.T) {
	out := BusyHint("request\x1b]0;x\x07 running")
	assert.NotContains(t, out, "\x1b]")
	assert.Contains(t, SanitizeText(out), "request running")
}

func TestStatusBarEmpty(t *testing.T) {
	assert.Empty(t, StatusBar(nil, 80))
}

func TestStatusBarWrapsWithinWidth(t *testing.T) {
	hints := []string{Hint("space", "Select"), Hint("b", "All/None"), Hint("A/D", "Bulk"), Hint("[/]", "Page")}
	out := StatusBar(hints, 40)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 3, "segments are three lines tall and must wrap at 40 columns")
	for _, line := range lines {
		assert.LessOrEqual(t, lipgloss.Width(line), 40)
	}
	assert.Contains(t, SanitizeText(out), "Page")
}

func TestPackRows(t *testing.T) {
	rows := packRows([]string{"123456", "abcdef", "ghijkl"}, 12)
	assert.Equal(t, [][]string{{"123456", "abcdef"}, {"ghijkl"}}, rows)

	rows = packRows([]string{"123456", "abcdefghijklmnop"}, 10)
	assert.Len(t, rows, 2, "an oversized segment still gets a row")

	rows = packRows([]string{"a", "b"}, 0)
	assert.Equal(t, [][]string{{"a", "b"}}, rows)
}
