package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/review"
	"github.com/gravitrone/kbconsole/internal/ui/components"
)

type suggestionsLoadedMsg struct{}

type suggestionsDoneMsg struct{ note string }

// SuggestionsModel reviews machine-suggested level-3 categories for the
// active scope.
type SuggestionsModel struct {
	flow    *review.TaxonomyWorkflow
	list    *components.List
	form    *form
	detail  bool
	loading bool
	width   int
	height  int
}

// NewSuggestionsModel builds the taxonomy review tab.
func NewSuggestionsModel(flow *review.TaxonomyWorkflow) SuggestionsModel {
	return SuggestionsModel{
		flow: flow,
		list: components.NewList(15),
	}
}

func (m SuggestionsModel) Init() tea.Cmd {
	return m.load()
}

func (m SuggestionsModel) capturing() bool {
	return m.form != nil
}

func (m SuggestionsModel) busy() bool {
	return m.loading || m.flow.Queue().Busy()
}

func (m SuggestionsModel) Update(msg tea.Msg) (SuggestionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestionsLoadedMsg:
		m.loading = false
		m.sync()
		return m, nil
	case suggestionsDoneMsg:
		m.sync()
		return m, notice("success", "%s", msg.note)
	case errMsg:
		m.loading = false
		m.sync()
		return m, nil
	case tea.KeyMsg:
		m.sync()
		if m.form != nil {
			done, cmd := m.form.Update(msg)
			if done {
				m.form = nil
			}
			return m, cmd
		}
		if m.detail && (isBack(msg) || isEnter(msg)) {
			m.detail = false
			return m, nil
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m SuggestionsModel) items() []api.TaxonomyReviewItem {
	return m.flow.Queue().Items()
}

func (m *SuggestionsModel) sync() {
	items := m.items()
	rows := make([]string, len(items))
	for i, it := range items {
		rows[i] = strconv.Itoa(it.ID)
	}
	m.list.Refresh(rows)
	if len(items) == 0 {
		m.detail = false
	}
}

func (m SuggestionsModel) cursor() (api.TaxonomyReviewItem, bool) {
	items := m.items()
	idx := m.list.Selected()
	if idx < 0 || idx >= len(items) {
		return api.TaxonomyReviewItem{}, false
	}
	return items[idx], true
}

func (m SuggestionsModel) handleKeys(msg tea.KeyMsg) (SuggestionsModel, tea.Cmd) {
	switch {
	case isDown(msg):
		m.list.Down()
		return m, nil
	case isUp(msg):
		m.list.Up()
		return m, nil
	case m.loading:
		return m, nil
	case isKey(msg, "r"):
		m.loading = true
		return m, m.load()
	}

	item, ok := m.cursor()
	if !ok || m.flow.Queue().InFlight(item.ID) {
		return m, nil
	}
	id := item.ID
	switch {
	case isEnter(msg):
		m.detail = true
	case isKey(msg, "a"):
		name := review.Suggested(item).L3Name
		return m, m.run(func() (string, error) {
			return fmt.Sprintf("Added %q to the %s tree.", name, m.flow.Scope().Label()), m.flow.Accept(id, nil)
		})
	case isKey(msg, "e"):
		suggested := review.Suggested(item)
		m.form = newForm(fmt.Sprintf("Edit and accept #%d", id), func(values []string) tea.Cmd {
			edit := &review.TaxonomyEdit{
				L3Name:     values[0],
				Definition: values[1],
				Cases:      splitCases(values[2]),
			}
			return m.run(func() (string, error) {
				return fmt.Sprintf("Added %q to the %s tree.", strings.TrimSpace(edit.L3Name), m.flow.Scope().Label()), m.flow.Accept(id, edit)
			})
		},
			formStep{label: "Level-3 name", value: suggested.L3Name},
			formStep{label: "Definition", value: suggested.Definition},
			formStep{label: "Cases, separated by |", value: joinCases(suggested.Cases)},
		)
	case isKey(msg, "d"):
		prompt, err := m.flow.DiscardPrompt(id)
		if err != nil {
			return m, errCmd(err)
		}
		return m, askConfirm(prompt, m.run(func() (string, error) {
			return "Suggestion discarded.", m.flow.Discard(id, confirm.Yes)
		}))
	}
	return m, nil
}

func (m SuggestionsModel) run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		note, err := fn()
		if err != nil {
			return errMsg{err}
		}
		return suggestionsDoneMsg{note: note}
	}
}

func (m SuggestionsModel) load() tea.Cmd {
	flow := m.flow
	return func() tea.Msg {
		if err := flow.Load(); err != nil {
			return errMsg{err}
		}
		return suggestionsLoadedMsg{}
	}
}

// --- View ---

func (m SuggestionsModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.detail {
		if item, ok := m.cursor(); ok {
			return m.renderDetail(item)
		}
	}

	title := fmt.Sprintf("%s Taxonomy Review", m.flow.Scope().Label())
	items := m.items()
	if len(items) == 0 {
		msg := "No pending suggestions."
		if m.loading {
			msg = "Loading suggestions..."
		}
		return components.Indent(components.EmptyStateBox(title, msg, []string{"Press r to reload", "Press S to switch scope"}, m.width), 1)
	}

	cols := []components.TableColumn{
		{Header: "ID", Width: 6, Align: lipgloss.Right},
		{Header: "Path", Width: 34},
		{Header: "Cases", Width: 6, Align: lipgloss.Right},
		{Header: "", Width: 3},
	}
	rows := make([][]string, 0, m.list.PageSize)
	active := -1
	for i := range m.list.Visible() {
		abs := m.list.RelToAbs(i)
		if abs >= len(items) {
			break
		}
		it := items[abs]
		if m.list.IsSelected(abs) {
			active = i
		}
		mark := ""
		if m.flow.Queue().InFlight(it.ID) {
			mark = "[~]"
		}
		rows = append(rows, []string{
			strconv.Itoa(it.ID),
			components.SanitizeOneLine(review.PathLabel(it)),
			strconv.Itoa(len(it.Cases)),
			mark,
		})
	}

	header := MutedStyle.Render(fmt.Sprintf("%d pending suggestion(s)", len(items)))
	grid := components.TableGridWithActiveRow(cols, rows, components.BoxContentWidth(m.width), active)
	return components.Indent(components.ActiveTitledBox(title, header+"\n\n"+grid, m.width), 1)
}

func (m SuggestionsModel) renderDetail(item api.TaxonomyReviewItem) string {
	rows := []components.TableRow{
		{Label: "ID", Value: strconv.Itoa(item.ID)},
		{Label: "Path", Value: review.PathLabel(item)},
		{Label: "Definition", Value: item.Definition},
	}
	for i, c := range item.Cases {
		rows = append(rows, components.TableRow{Label: fmt.Sprintf("Case %d", i+1), Value: c.Content})
	}
	return components.Indent(components.Table("Suggested category", rows, m.width), 1)
}

func (m SuggestionsModel) hints() []string {
	if m.form != nil {
		return []string{components.Hint("enter", "Next"), components.Hint("esc", "Cancel")}
	}
	return []string{
		components.Hint("↑/↓", "Move"),
		components.Hint("enter", "Details"),
		components.Hint("a", "Accept"),
		components.Hint("e", "Edit"),
		components.Hint("d", "Discard"),
		components.Hint("r", "Reload"),
	}
}
