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

type faqsLoadedMsg struct{}

type faqsDoneMsg struct{ note string }

// FAQReviewModel lists pending FAQs for the active scenario and moves them
// into the knowledge store one at a time or in bulk.
type FAQReviewModel struct {
	flow    *review.FAQWorkflow
	list    *components.List
	form    *form
	detail  bool
	loading bool
	width   int
	height  int
}

// NewFAQReviewModel builds the FAQ review tab.
func NewFAQReviewModel(flow *review.FAQWorkflow) FAQReviewModel {
	return FAQReviewModel{
		flow: flow,
		list: components.NewList(15),
	}
}

// Init loads the first page.
func (m FAQReviewModel) Init() tea.Cmd {
	return m.load()
}

func (m FAQReviewModel) capturing() bool {
	return m.form != nil
}

func (m FAQReviewModel) busy() bool {
	return m.loading || m.flow.Queue().Busy()
}

func (m FAQReviewModel) Update(msg tea.Msg) (FAQReviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case faqsLoadedMsg:
		m.loading = false
		m.sync()
		return m, nil
	case faqsDoneMsg:
		m.sync()
		if len(m.items()) == 0 && m.flow.Queue().Total() > 0 {
			// page emptied by the action; pull the next batch
			m.loading = true
			return m, tea.Batch(notice("success", "%s", msg.note), m.load())
		}
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
		if m.detail {
			if isBack(msg) || isEnter(msg) {
				m.detail = false
				return m, nil
			}
		}
		return m.handleKeys(msg)
	}
	return m, nil
}

func (m FAQReviewModel) items() []api.PendingFAQ {
	return m.flow.Queue().Items()
}

func (m *FAQReviewModel) sync() {
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

func (m FAQReviewModel) cursor() (api.PendingFAQ, bool) {
	items := m.items()
	idx := m.list.Selected()
	if idx < 0 || idx >= len(items) {
		return api.PendingFAQ{}, false
	}
	return items[idx], true
}

func (m FAQReviewModel) handleKeys(msg tea.KeyMsg) (FAQReviewModel, tea.Cmd) {
	q := m.flow.Queue()
	page, _, keyword := m.flow.Page()

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
	case isNextPage(msg):
		if page*m.pageSize() >= q.Total() {
			return m, nil
		}
		m.flow.SetPage(page + 1)
		m.loading = true
		return m, m.load()
	case isPrevPage(msg):
		if page <= 1 {
			return m, nil
		}
		m.flow.SetPage(page - 1)
		m.loading = true
		return m, m.load()
	case isKey(msg, "/"):
		m.form = newForm("Search pending FAQs", func(values []string) tea.Cmd {
			m.flow.SetKeyword(values[0])
			return m.load()
		}, formStep{label: "Keyword", value: keyword})
		return m, nil
	case isKey(msg, "b"):
		if len(q.Selected()) > 0 {
			q.ClearSelection()
		} else {
			q.SelectAll()
		}
		return m, nil
	case isKey(msg, "A"):
		return m, m.bulk("accept", m.flow.BulkAccept)
	case isKey(msg, "D"):
		return m, m.bulk("discard", m.flow.BulkDiscard)
	}

	item, ok := m.cursor()
	if !ok || q.InFlight(item.ID) {
		return m, nil
	}
	id := item.ID
	switch {
	case isEnter(msg):
		m.detail = true
	case isSpace(msg):
		q.Toggle(id)
	case isKey(msg, "a"):
		return m, m.run(func() (string, error) {
			created, err := m.flow.Accept(id, nil)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Accepted as knowledge item #%d.", created.ID), nil
		})
	case isKey(msg, "e"):
		m.form = newForm(fmt.Sprintf("Edit and accept #%d", id), func(values []string) tea.Cmd {
			edit := &review.FAQEdit{Question: values[0], Answer: values[1]}
			return m.run(func() (string, error) {
				created, err := m.flow.Accept(id, edit)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Accepted with edits as knowledge item #%d.", created.ID), nil
			})
		}, formStep{label: "Question", value: item.Question}, formStep{label: "Answer", value: item.Answer})
	case isKey(msg, "d"):
		prompt, err := m.flow.DiscardPrompt(id)
		if err != nil {
			return m, errCmd(err)
		}
		return m, askConfirm(prompt, m.run(func() (string, error) {
			return "Discarded.", m.flow.Discard(id, confirm.Yes)
		}))
	}
	return m, nil
}

// bulk asks for the selection count to be confirmed. An empty or oversized
// selection fails here without a prompt.
func (m FAQReviewModel) bulk(action string, apply func(confirm.Confirmer) (int, error)) tea.Cmd {
	prompt, err := m.flow.BulkPrompt(action)
	if err != nil {
		return errCmd(err)
	}
	return askConfirm(prompt, m.run(func() (string, error) {
		n, err := apply(confirm.Yes)
		if err != nil {
			return "", err
		}
		verb := "Accepted"
		if action == "discard" {
			verb = "Discarded"
		}
		return fmt.Sprintf("%s %d pending FAQ(s).", verb, n), nil
	}))
}

func (m FAQReviewModel) pageSize() int {
	_, size, _ := m.flow.Page()
	return max(size, 1)
}

func (m FAQReviewModel) run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		note, err := fn()
		if err != nil {
			return errMsg{err}
		}
		return faqsDoneMsg{note: note}
	}
}

func (m FAQReviewModel) load() tea.Cmd {
	flow := m.flow
	return func() tea.Msg {
		if err := flow.Load(); err != nil {
			return errMsg{err}
		}
		return faqsLoadedMsg{}
	}
}

// --- View ---

func (m FAQReviewModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.detail {
		if item, ok := m.cursor(); ok {
			return m.renderDetail(item)
		}
	}

	q := m.flow.Queue()
	items := m.items()
	page, size, keyword := m.flow.Page()

	var b strings.Builder
	header := fmt.Sprintf("%d pending · page %d of %d · %d selected", q.Total(), page, pageCount(q.Total(), size), len(q.Selected()))
	if keyword != "" {
		header += " · search: " + keyword
	}
	b.WriteString(MutedStyle.Render(header) + "\n\n")

	if m.loading && len(items) == 0 {
		b.WriteString(MutedStyle.Render("Loading pending FAQs..."))
		return components.Indent(components.TitledBox("FAQ Review", b.String(), m.width), 1)
	}
	if len(items) == 0 {
		return components.Indent(components.EmptyStateBox(
			"FAQ Review",
			"No pending FAQs.",
			[]string{"Press r to reload", "Press / to change the search"},
			m.width,
		), 1)
	}

	contentWidth := components.BoxContentWidth(m.width)
	cols := []components.TableColumn{
		{Header: "", Width: 3},
		{Header: "ID", Width: 6, Align: lipgloss.Right},
		{Header: "Question", Width: 30},
		{Header: "Answer", Width: 30},
	}
	rows := make([][]string, 0, len(m.list.Visible()))
	active := -1
	for i := range m.list.Visible() {
		abs := m.list.RelToAbs(i)
		if abs >= len(items) {
			break
		}
		it := items[abs]
		mark := "[ ]"
		switch {
		case q.InFlight(it.ID):
			mark = "[~]"
		case q.IsSelected(it.ID):
			mark = "[x]"
		}
		if m.list.IsSelected(abs) {
			active = i
		}
		rows = append(rows, []string{
			mark,
			strconv.Itoa(it.ID),
			components.SanitizeOneLine(it.Question),
			components.SanitizeOneLine(it.Answer),
		})
	}
	b.WriteString(components.TableGridWithActiveRow(cols, rows, contentWidth, active))
	return components.Indent(components.ActiveTitledBox("FAQ Review", b.String(), m.width), 1)
}

func (m FAQReviewModel) renderDetail(item api.PendingFAQ) string {
	rows := []components.TableRow{
		{Label: "ID", Value: strconv.Itoa(item.ID)},
		{Label: "Question", Value: item.Question},
		{Label: "Answer", Value: item.Answer},
	}
	if item.SourceConversationText != nil {
		rows = append(rows, components.TableRow{Label: "Conversation", Value: *item.SourceConversationText})
	}
	return components.Indent(components.Table("Pending FAQ", rows, m.width), 1)
}

func pageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func (m FAQReviewModel) hints() []string {
	if m.form != nil {
		return []string{components.Hint("enter", "Next"), components.Hint("esc", "Cancel")}
	}
	if m.detail {
		return []string{components.Hint("a", "Accept"), components.Hint("e", "Edit"), components.Hint("d", "Discard"), components.Hint("esc", "Back")}
	}
	return []string{
		components.Hint("space", "Select"),
		components.Hint("b", "All/None"),
		components.Hint("a/e/d", "Accept/Edit/Discard"),
		components.Hint("A/D", "Bulk"),
		components.Hint("[/]", "Page"),
		components.Hint("/", "Search"),
	}
}
