package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/taxonomy"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.String())
}

func printTree(w io.Writer, tree *taxonomy.Tree) {
	if tree.Len() == 0 {
		fmt.Fprintln(w, "no nodes")
		return
	}
	var walk func(nodes []*taxonomy.Node, depth int)
	walk = func(nodes []*taxonomy.Node, depth int) {
		for _, n := range nodes {
			fmt.Fprintf(w, "%s[L%d] %s (#%d)\n", strings.Repeat("  ", depth), n.Level, n.Name, n.ID)
			walk(tree.Children(n.ID), depth+1)
		}
	}
	walk(tree.Roots(), 0)
}

func printRowErrors(w io.Writer, errs []api.ImportRowError) {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{
			fmt.Sprint(e.Row), e.Column, e.Message, deref(e.Expected), deref(e.Actual),
		})
	}
	printTable(w, []string{"row", "column", "message", "expected", "actual"}, rows)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
