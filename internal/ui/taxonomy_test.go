package ui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/kbconsole/internal/importer"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/taxonomy"
)

func waterTree(withPayments bool) map[string]any {
	billing := map[string]any{"id": 1, "name": "Billing", "level": 1, "parentId": nil, "children": []any{}}
	if withPayments {
		billing["children"] = []any{
			map[string]any{"id": 2, "name": "Payments", "level": 2, "parentId": 1, "children": []any{
				map[string]any{"id": 3, "name": "Late fee", "level": 3, "parentId": 2, "children": []any{}},
			}},
		}
	}
	outages := map[string]any{"id": 4, "name": "Outages", "level": 1, "parentId": nil, "children": []any{
		map[string]any{"id": 5, "name": "Planned", "level": 2, "parentId": 4, "children": []any{
			map[string]any{"id": 6, "name": "Notice", "level": 3, "parentId": 5, "children": []any{}},
		}},
	}}
	return map[string]any{"items": []any{billing, outages}}
}

type taxonomyBackend struct {
	deleted   []string
	validated int
	executed  int
	validate  map[string]any
}

func (b *taxonomyBackend) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1.12/kb-taxonomy/tree":
		writeJSON(w, waterTree(len(b.deleted) == 0))
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/v1.12/kb-taxonomy/nodes/"):
		b.deleted = append(b.deleted, r.URL.Path)
		writeJSON(w, map[string]any{"message": "deleted"})
	case r.URL.Path == "/api/v1.12/kb-taxonomy/nodes/3/cases":
		writeJSON(w, map[string]any{"items": []any{
			map[string]any{"id": 30, "nodeId": 3, "content": "Paid one day late"},
		}})
	case r.URL.Path == "/api/v1.12/kb-taxonomy/nodes/3":
		writeJSON(w, map[string]any{
			"id": 3, "scopeCode": "water", "level": 3, "name": "Late fee", "parentId": 2,
			"definition": "Fee for late payment",
			"path": []any{
				map[string]any{"id": 1, "name": "Billing", "level": 1},
				map[string]any{"id": 2, "name": "Payments", "level": 2},
				map[string]any{"id": 3, "name": "Late fee", "level": 3},
			},
		})
	case r.URL.Path == "/api/v1.12/kb-taxonomy/import/validate":
		b.validated++
		writeJSON(w, b.validate)
	case r.URL.Path == "/api/v1.12/kb-taxonomy/import/execute":
		b.executed++
		writeJSON(w, map[string]any{"ok": true, "summary": map[string]any{"categories": 6, "cases": 9}, "errors": []any{}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func loadedTaxonomy(t *testing.T, backend *taxonomyBackend) TaxonomyModel {
	t.Helper()
	sess := testSession(t, 1, backend.handle)
	ctrl := taxonomy.NewController(sess.Client, scope.Water)
	m := NewTaxonomyModel(ctrl, importer.NewPipeline(sess.Client, scope.Water))
	m.width = 110
	m, _ = m.Update(m.Init()())
	return m
}

func TestTaxonomyFilterNarrowsTreeWhileTyping(t *testing.T) {
	m := loadedTaxonomy(t, &taxonomyBackend{})
	view := m.View()
	assert.Contains(t, view, "Billing")
	assert.Contains(t, view, "Late fee")
	assert.Contains(t, view, "6 categories")

	m, _ = m.Update(runeKey('/'))
	require.True(t, m.capturing())
	m = typeText(m, "Plan")

	view = m.View()
	assert.Contains(t, view, "Outages")
	assert.Contains(t, view, "Planned")
	assert.NotContains(t, view, "Notice", "descendants of a match are not kept")
	assert.NotContains(t, view, "Billing")
	assert.Contains(t, view, "filter: Plan")

	m, _ = m.Update(key(tea.KeyEsc))
	assert.False(t, m.capturing())
	assert.Contains(t, m.View(), "Billing")
}

func TestTaxonomyFilterWithoutMatches(t *testing.T) {
	m := loadedTaxonomy(t, &taxonomyBackend{})
	m, _ = m.Update(runeKey('/'))
	m = typeText(m, "zzz")
	assert.Contains(t, m.View(), `No category name contains "zzz".`)
}

func TestTaxonomySelectLeafShowsDetailAndCases(t *testing.T) {
	m := loadedTaxonomy(t, &taxonomyBackend{})
	m, _ = m.Update(runeKey('j'))
	m, _ = m.Update(runeKey('j'))

	_, cmd := m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	sel := m.ctrl.Selection()
	require.NotNil(t, sel)
	assert.Equal(t, 3, sel.Node.ID)
	view := m.View()
	assert.Contains(t, view, "Billing / Payments / Late fee")
	assert.Contains(t, view, "Fee for late payment")
	assert.Contains(t, view, "Paid one day late")

	m, _ = m.Update(key(tea.KeyTab))
	assert.Equal(t, paneCases, m.pane)
}

func TestTaxonomyDeleteConfirmsSubtreeSize(t *testing.T) {
	backend := &taxonomyBackend{}
	m := loadedTaxonomy(t, backend)
	m, _ = m.Update(runeKey('j'))

	m, cmd := m.Update(runeKey('d'))
	require.NotNil(t, cmd)
	ask, ok := cmd().(confirmMsg)
	require.True(t, ok)
	assert.Equal(t, "delete node", ask.prompt.Action)
	assert.Equal(t, 1, ask.prompt.Count)
	assert.Empty(t, backend.deleted, "nothing is sent before the operator confirms")

	m, _ = m.Update(ask.run())
	assert.Equal(t, []string{"/api/v1.12/kb-taxonomy/nodes/2"}, backend.deleted)
	view := m.View()
	assert.NotContains(t, view, "Late fee")
	assert.Contains(t, view, "4 categories")
}

func TestTaxonomyChildOfLeafRejected(t *testing.T) {
	m := loadedTaxonomy(t, &taxonomyBackend{})
	for range 2 {
		m, _ = m.Update(runeKey('j'))
	}
	m, cmd := m.Update(runeKey('n'))
	require.NotNil(t, cmd)
	_, isErr := cmd().(errMsg)
	assert.True(t, isErr)
	assert.Nil(t, m.form)
}

func importFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "water.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("PK-sheet"), 0o600))
	return path
}

func submitImportPath(t *testing.T, m TaxonomyModel, path string) TaxonomyModel {
	t.Helper()
	m, _ = m.Update(runeKey('i'))
	require.NotNil(t, m.form)
	m.form.input.SetValue(path)
	m, cmd := m.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, m.busy())
	m, _ = m.Update(cmd())
	return m
}

func TestTaxonomyImportValidatesThenExecutes(t *testing.T) {
	backend := &taxonomyBackend{validate: map[string]any{
		"ok": true, "summary": map[string]any{"categories": 6, "cases": 9}, "errors": []any{},
	}}
	m := loadedTaxonomy(t, backend)
	m = submitImportPath(t, m, importFile(t))

	view := m.View()
	assert.Contains(t, view, "Validation passed.")
	assert.Contains(t, view, "6 categories, 9 cases")
	assert.Equal(t, 1, backend.validated)
	assert.Zero(t, backend.executed)

	m, cmd := m.Update(runeKey('x'))
	require.NotNil(t, cmd)
	ask, ok := cmd().(confirmMsg)
	require.True(t, ok)
	assert.Equal(t, "import execute", ask.prompt.Action)
	assert.Equal(t, 6, ask.prompt.Count)

	m, _ = m.Update(ask.run())
	assert.Equal(t, 1, backend.executed)
	assert.Contains(t, m.View(), "Import complete.")
}

func TestTaxonomyImportShowsRowErrors(t *testing.T) {
	backend := &taxonomyBackend{validate: map[string]any{
		"ok": false,
		"errors": []any{
			map[string]any{"row": 4, "column": "l2", "message": "level-2 name is empty"},
		},
	}}
	m := loadedTaxonomy(t, backend)
	m = submitImportPath(t, m, importFile(t))

	view := m.View()
	assert.Contains(t, view, "rejected by the server: 1 problem(s)")
	assert.Contains(t, view, "level-2 name is empty")

	_, cmd := m.Update(runeKey('x'))
	require.NotNil(t, cmd)
	failed, ok := cmd().(errMsg)
	require.True(t, ok)
	assert.ErrorIs(t, failed.err, importer.ErrNotValidated)
	assert.Zero(t, backend.executed)
}

func TestTaxonomyImportRejectsUnsupportedFile(t *testing.T) {
	m := loadedTaxonomy(t, &taxonomyBackend{})
	m, _ = m.Update(runeKey('i'))
	m.form.input.SetValue("tree.txt")
	m, cmd := m.Update(key(tea.KeyEnter))
	failed, ok := cmd().(errMsg)
	require.True(t, ok)
	assert.ErrorIs(t, failed.err, importer.ErrUnsupported)

	m, _ = m.Update(failed)
	assert.False(t, m.busy())
	assert.Contains(t, m.View(), "No file chosen.")
}
