package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/config"
	"github.com/gravitrone/kbconsole/internal/session"
)

// testSession points a session for alice at handler. HOME is moved to a
// temp dir because ending a session removes the saved session file.
func testSession(t *testing.T, scenarioID int, handler http.HandlerFunc) *session.Session {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{AccessToken: "tok", Username: "alice", ScenarioID: scenarioID}
	return session.New(cfg, api.NewClient(srv.URL, "tok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// emptyBackend answers every listing with nothing.
func emptyBackend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{"items": []any{}, "total": 0, "page": 1, "pageSize": 20})
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText[M interface {
	Update(tea.Msg) (M, tea.Cmd)
}](m M, text string) M {
	for _, r := range text {
		m, _ = m.Update(runeKey(r))
	}
	return m
}
