package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowErrorColumns() []TableColumn {
	return []TableColumn{
		{Header: "Row", Width: 5, Align: lipgloss.Right},
		{Header: "Column", Width: 10},
		{Header: "Problem", Width: 24},
	}
}

func TestTableGridLinesMatchWidth(t *testing.T) {
	rows := [][]string{
		{"3", "definition", "level-3 category needs a definition"},
		{"12", "domain", "水务 expected, got 公交"},
	}
	out := TableGrid(rowErrorColumns(), rows, 70)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Equal(t, 70, lipgloss.Width(line))
	}

	clean := SanitizeText(out)
	assert.Contains(t, clean, "Problem")
	assert.Contains(t, clean, "definition")
	assert.Contains(t, clean, "水务 expected")
}

func TestTableGridClampsLongCellsWithEllipsis(t *testing.T) {
	rows := [][]string{{"1", "question", strings.Repeat("very long problem text ", 10)}}
	out := SanitizeText(TableGrid(rowErrorColumns(), rows, 50))
	assert.Contains(t, out, "…")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 50)
	}
}

func TestTableGridStripsEscapesFromCells(t *testing.T) {
	rows := [][]string{{"1", "answer\x1b]0;pwn\x07", "bad\ncell"}}
	out := TableGrid(rowErrorColumns(), rows, 60)
	assert.NotContains(t, out, "\x1b]")
	assert.Contains(t, SanitizeText(out), "bad cell")
}

func TestTableGridDegenerateInput(t *testing.T) {
	assert.Empty(t, TableGrid(rowErrorColumns(), nil, 0))
	assert.Equal(t, "    ", TableGrid(nil, nil, 4))
}

func TestFitColumnsGivesSlackToWidest(t *testing.T) {
	cols := fitColumns([]TableColumn{{Width: 3}, {Width: 6}, {Width: 30}, {Width: 0}}, 60)
	assert.Equal(t, 3, cols[0].Width)
	assert.Equal(t, 6, cols[1].Width)
	assert.Equal(t, 1, cols[3].Width)
	assert.Equal(t, 60-3-6-1-3, cols[2].Width)
}

func TestAlignCell(t *testing.T) {
	assert.Equal(t, "   42", alignCell("42", 5, lipgloss.Right))
	assert.Equal(t, " ab  ", alignCell("ab", 5, lipgloss.Center))
	assert.Equal(t, "ab   ", alignCell("ab", 5, lipgloss.Left))
	assert.Equal(t, "abcd…", alignCell("abcdefgh", 5, lipgloss.Left))
}
