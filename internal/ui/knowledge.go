package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/publish"
	"github.com/gravitrone/kbconsole/internal/ui/components"
)

type knowledgeLoadedMsg struct{}

type knowledgeDoneMsg struct{ note string }

type knowledgeSyncedMsg struct{ result *api.ScenarioSyncResult }

// KnowledgeModel lists published knowledge items by status and toggles
// them between active and disabled.
type KnowledgeModel struct {
	board      *publish.Board
	scenarioID int
	list       *components.List
	form       *form
	detail     bool
	loading    bool
	lastSync   *api.ScenarioSyncResult
	width      int
	height     int
}

// NewKnowledgeModel builds the knowledge tab for scenarioID.
func NewKnowledgeModel(board *publish.Board, scenarioID int) KnowledgeModel {
	return KnowledgeModel{
		board:      board,
		scenarioID: scenarioID,
		list:       components.NewList(15),
	}
}

func (m KnowledgeModel) Init() tea.Cmd {
	return m.load()
}

func (m KnowledgeModel) capturing() bool {
	return m.form != nil
}

func (m KnowledgeModel) busy() bool {
	if m.loading || m.board.Syncing() {
		return true
	}
	for _, it := range m.board.View().Items {
		if m.board.InFlight(it.ID) {
			return true
		}
	}
	return false
}

func (m KnowledgeModel) Update(msg tea.Msg) (KnowledgeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case knowledgeLoadedMsg:
		m.loading = false
		m.sync()
		return m, nil
	case knowledgeDoneMsg:
		m.sync()
		return m, notice("success", "%s", msg.note)
	case knowledgeSyncedMsg:
		m.lastSync = msg.result
		text := fmt.Sprintf("Synced %d item(s) to the knowledge base.", msg.result.Items)
		if msg.result.Message != "" {
			text += " " + msg.result.Message
		}
		return m, notice("success", "%s", text)
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

func (m *KnowledgeModel) sync() {
	v := m.board.View()
	rows := make([]string, len(v.Items))
	for i, it := range v.Items {
		rows[i] = strconv.Itoa(it.ID)
	}
	m.list.Refresh(rows)
	if len(v.Items) == 0 {
		m.detail = false
	}
}

func (m KnowledgeModel) cursor() (api.KnowledgeItem, bool) {
	items := m.board.View().Items
	idx := m.list.Selected()
	if idx < 0 || idx >= len(items) {
		return api.KnowledgeItem{}, false
	}
	return items[idx], true
}

func (m KnowledgeModel) handleKeys(msg tea.KeyMsg) (KnowledgeModel, tea.Cmd) {
	v := m.board.View()

	switch {
	case isDown(msg):
		m.list.Down()
		return m, nil
	case isUp(msg):
		m.list.Up()
		return m, nil
	case isKey(msg, "s"):
		if m.board.Syncing() {
			return m, nil
		}
		board, scenario := m.board, m.scenarioID
		return m, askConfirm(publish.SyncPrompt(scenario, v.Counts.Active), func() tea.Msg {
			res, err := board.Sync(scenario, confirm.Yes)
			if err != nil {
				if api.IsTimeout(err) {
					return errMsg{fmt.Errorf("sync did not finish in time; check the knowledge base before retrying: %w", err)}
				}
				return errMsg{err}
			}
			return knowledgeSyncedMsg{result: res}
		})
	case m.loading:
		return m, nil
	case isKey(msg, "tab"):
		next := api.StatusDisabled
		if v.Status == api.StatusDisabled {
			next = api.StatusActive
		}
		if err := m.board.SetStatusTab(next); err != nil {
			return m, errCmd(err)
		}
		m.list.MoveTo(0)
		m.loading = true
		return m, m.load()
	case isKey(msg, "r"):
		m.loading = true
		return m, m.load()
	case isNextPage(msg):
		if v.Page*max(v.PageSize, 1) >= v.Total {
			return m, nil
		}
		m.board.SetPage(v.Page + 1)
		m.loading = true
		return m, m.load()
	case isPrevPage(msg):
		if v.Page <= 1 {
			return m, nil
		}
		m.board.SetPage(v.Page - 1)
		m.loading = true
		return m, m.load()
	case isKey(msg, "/"):
		board := m.board
		m.form = newForm("Search knowledge", func(values []string) tea.Cmd {
			board.SetKeyword(values[0])
			return m.load()
		}, formStep{label: "Keyword", value: v.Keyword})
		return m, nil
	}

	item, ok := m.cursor()
	if !ok || m.board.InFlight(item.ID) {
		return m, nil
	}
	id := item.ID
	switch {
	case isEnter(msg):
		m.detail = true
	case isKey(msg, "t"):
		target := api.StatusDisabled
		if item.Status == api.StatusDisabled {
			target = api.StatusActive
		}
		board := m.board
		return m, askConfirm(publish.TogglePrompt(id, target), m.run(func() (string, error) {
			return fmt.Sprintf("Item #%d is now %s.", id, target), board.Toggle(id, target, confirm.Yes)
		}))
	case isKey(msg, "e"):
		board := m.board
		m.form = newForm(fmt.Sprintf("Edit item #%d", id), func(values []string) tea.Cmd {
			return m.run(func() (string, error) {
				return fmt.Sprintf("Item #%d saved.", id), board.Edit(id, values[0], values[1])
			})
		}, formStep{label: "Question", value: item.Question}, formStep{label: "Answer", value: item.Answer})
	}
	return m, nil
}

func (m KnowledgeModel) run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		note, err := fn()
		if err != nil {
			return errMsg{err}
		}
		return knowledgeDoneMsg{note: note}
	}
}

func (m KnowledgeModel) load() tea.Cmd {
	board := m.board
	return func() tea.Msg {
		if err := board.Load(); err != nil {
			return errMsg{err}
		}
		return knowledgeLoadedMsg{}
	}
}

// --- View ---

func (m KnowledgeModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.detail {
		if item, ok := m.cursor(); ok {
			return m.renderDetail(item)
		}
	}

	v := m.board.View()
	var b strings.Builder
	b.WriteString(m.renderStatusTabs(v) + "\n")
	meta := fmt.Sprintf("scenario %d · page %d of %d", m.scenarioID, v.Page, pageCount(v.Total, v.PageSize))
	if v.Keyword != "" {
		meta += " · search: " + v.Keyword
	}
	if m.board.Syncing() {
		meta += " · syncing..."
	} else if m.lastSync != nil {
		meta += fmt.Sprintf(" · last sync: %d item(s), %s", m.lastSync.Items, m.lastSync.Status)
	}
	b.WriteString(MutedStyle.Render(meta) + "\n\n")

	switch {
	case len(v.Items) == 0 && m.loading:
		b.WriteString(MutedStyle.Render("Loading knowledge items..."))
	case len(v.Items) == 0:
		b.WriteString(MutedStyle.Render(fmt.Sprintf("No %s items.", v.Status)))
	default:
		b.WriteString(m.renderItems(v))
	}
	return components.Indent(components.ActiveTitledBox("Knowledge", b.String(), m.width), 1)
}

func (m KnowledgeModel) renderStatusTabs(v publish.View) string {
	tab := func(status, label string, n int) string {
		text := fmt.Sprintf("%s (%d)", label, n)
		if v.Status == status {
			return TabActiveStyle.Render(text)
		}
		return TabInactiveStyle.Render(text)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		tab(api.StatusActive, "Active", v.Counts.Active),
		" ",
		tab(api.StatusDisabled, "Disabled", v.Counts.Disabled),
	)
}

func (m KnowledgeModel) renderItems(v publish.View) string {
	cols := []components.TableColumn{
		{Header: "ID", Width: 6, Align: lipgloss.Right},
		{Header: "Question", Width: 32},
		{Header: "Status", Width: 9},
		{Header: "Updated", Width: 16},
		{Header: "", Width: 3},
	}
	rows := make([][]string, 0, m.list.PageSize)
	active := -1
	for i := range m.list.Visible() {
		abs := m.list.RelToAbs(i)
		if abs >= len(v.Items) {
			break
		}
		it := v.Items[abs]
		if m.list.IsSelected(abs) {
			active = i
		}
		mark := ""
		if m.board.InFlight(it.ID) {
			mark = "[~]"
		}
		updated := "-"
		if !it.UpdatedAt.IsZero() {
			updated = it.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.Itoa(it.ID),
			components.SanitizeOneLine(it.Question),
			renderStatus(it.Status),
			updated,
			mark,
		})
	}
	return components.TableGridWithActiveRow(cols, rows, components.BoxContentWidth(m.width), active)
}

func renderStatus(status string) string {
	if status == api.StatusDisabled {
		return StatusDisabledStyle.Render(status)
	}
	return StatusActiveStyle.Render(status)
}

func (m KnowledgeModel) renderDetail(item api.KnowledgeItem) string {
	rows := []components.TableRow{
		{Label: "ID", Value: strconv.Itoa(item.ID)},
		{Label: "Status", Value: item.Status},
		{Label: "Question", Value: item.Question},
		{Label: "Answer", Value: item.Answer},
	}
	if !item.UpdatedAt.IsZero() {
		rows = append(rows, components.TableRow{Label: "Updated", Value: item.UpdatedAt.Local().Format("2006-01-02 15:04:05")})
	}
	return components.Indent(components.Table("Knowledge item", rows, m.width), 1)
}

func (m KnowledgeModel) hints() []string {
	if m.form != nil {
		return []string{components.Hint("enter", "Next"), components.Hint("esc", "Cancel")}
	}
	return []string{
		components.Hint("tab", "Active/Disabled"),
		components.Hint("t", "Toggle"),
		components.Hint("e", "Edit"),
		components.Hint("s", "Sync"),
		components.Hint("[/]", "Page"),
		components.Hint("/", "Search"),
	}
}
