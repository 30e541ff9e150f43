package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/importer"
	"github.com/gravitrone/kbconsole/internal/taxonomy"
	"github.com/gravitrone/kbconsole/internal/ui/components"
)

// --- Messages ---

// taxonomyMsg reports that the controller finished a request. The tree and
// selection are read back from the controller.
type taxonomyMsg struct{ note string }

type importValidatedMsg struct {
	file   importer.File
	result *importer.Result
}

type importExecutedMsg struct {
	file   importer.File
	result *importer.Result
	err    error
}

type taxonomyPane int

const (
	paneTree taxonomyPane = iota
	paneCases
)

// importWizard holds the state of the validate then execute flow.
type importWizard struct {
	open    bool
	file    *importer.File
	result  *importer.Result
	running bool
	done    bool
}

// --- Taxonomy Model ---

// TaxonomyModel shows the scope's category tree with a live keyword
// filter, the selected node's detail and cases, and the import wizard.
type TaxonomyModel struct {
	ctrl     *taxonomy.Controller
	pipeline *importer.Pipeline

	list      *components.List
	caseList  *components.List
	pane      taxonomyPane
	filter    textinput.Model
	filtering bool
	form      *form
	wizard    importWizard
	loading   bool
	width     int
	height    int
}

// NewTaxonomyModel builds the taxonomy tab.
func NewTaxonomyModel(ctrl *taxonomy.Controller, pipeline *importer.Pipeline) TaxonomyModel {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter by name"
	return TaxonomyModel{
		ctrl:     ctrl,
		pipeline: pipeline,
		list:     components.NewList(18),
		caseList: components.NewList(8),
		filter:   filter,
	}
}

func (m TaxonomyModel) Init() tea.Cmd {
	return m.reload("")
}

func (m TaxonomyModel) capturing() bool {
	return m.form != nil || m.filtering
}

func (m TaxonomyModel) busy() bool {
	return m.ctrl.Busy() || m.wizard.running
}

func (m TaxonomyModel) Update(msg tea.Msg) (TaxonomyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case taxonomyMsg:
		m.loading = false
		m.sync()
		if msg.note != "" {
			return m, notice("success", "%s", msg.note)
		}
		return m, nil

	case importValidatedMsg:
		m.wizard.running = false
		m.wizard.file = &msg.file
		m.wizard.result = msg.result
		m.wizard.done = false
		return m, nil

	case importExecutedMsg:
		m.wizard.running = false
		m.wizard.result = msg.result
		m.wizard.done = msg.result != nil && msg.result.OK
		m.sync()
		if msg.err != nil {
			return m, errCmd(msg.err)
		}
		if m.wizard.done {
			return m, notice("success", "%s taxonomy replaced: %d categories, %d cases.",
				m.ctrl.Scope().Label(), msg.result.Summary.Categories, msg.result.Summary.Cases)
		}
		return m, nil

	case errMsg:
		m.loading = false
		m.wizard.running = false
		m.sync()
		return m, nil

	case tea.KeyMsg:
		m.sync()
		if m.form != nil {
			done, cmd := m.form.Update(msg)
			if done {
				m.form = nil
				if cmd != nil && m.wizard.open && m.wizard.result == nil {
					m.wizard.running = true
				}
			}
			return m, cmd
		}
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		if m.wizard.open {
			return m.handleWizardKeys(msg)
		}
		if m.pane == paneCases {
			return m.handleCaseKeys(msg)
		}
		return m.handleTreeKeys(msg)
	}
	return m, nil
}

// --- Tree ---

// visible returns the filtered tree flattened in pre-order, the order rows
// are drawn in.
func (m TaxonomyModel) visible() []*taxonomy.Node {
	tree := taxonomy.Filter(m.ctrl.Tree(), m.filter.Value())
	var out []*taxonomy.Node
	tree.Walk(func(n *taxonomy.Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// sync re-aligns the cursors with the controller's current tree and cases.
func (m *TaxonomyModel) sync() {
	nodes := m.visible()
	rows := make([]string, len(nodes))
	for i, n := range nodes {
		rows[i] = strconv.Itoa(n.ID)
	}
	m.list.Refresh(rows)

	var cases []string
	if sel := m.ctrl.Selection(); sel != nil {
		for _, c := range sel.Cases {
			cases = append(cases, strconv.Itoa(c.ID))
		}
	}
	m.caseList.Refresh(cases)
	if len(cases) == 0 && (m.ctrl.Selection() == nil || !m.ctrl.Selection().Node.IsLeaf()) {
		m.pane = paneTree
	}
}

func (m TaxonomyModel) cursorNode() (*taxonomy.Node, bool) {
	nodes := m.visible()
	idx := m.list.Selected()
	if idx < 0 || idx >= len(nodes) {
		return nil, false
	}
	return nodes[idx], true
}

func (m TaxonomyModel) handleTreeKeys(msg tea.KeyMsg) (TaxonomyModel, tea.Cmd) {
	switch {
	case isDown(msg):
		m.list.Down()
	case isUp(msg):
		m.list.Up()
	case isKey(msg, "/"):
		m.filtering = true
		cmd := m.filter.Focus()
		return m, cmd
	case isBack(msg):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.sync()
			return m, nil
		}
		m.ctrl.ClearSelection()
		m.sync()
	case isKey(msg, "r"):
		return m, m.reload("")
	case isKey(msg, "tab"):
		if sel := m.ctrl.Selection(); sel != nil && sel.Node.IsLeaf() {
			m.pane = paneCases
		}
	case isKey(msg, "i"):
		m.wizard = importWizard{open: true}
		m.askImportPath()
		return m, nil
	}
	if m.ctrl.Busy() {
		// one request at a time per tree
		return m, nil
	}

	node, ok := m.cursorNode()
	switch {
	case isEnter(msg) && ok:
		return m, m.run(func() (string, error) { return "", m.ctrl.Select(node.ID) })
	case isKey(msg, "N"):
		m.askCreate(nil)
	case isKey(msg, "n") && ok:
		if node.Level >= taxonomy.MaxLevel {
			return m, errCmd(fmt.Errorf("%q is a level-%d category and cannot have children", node.Name, node.Level))
		}
		m.askCreate(node)
	case isKey(msg, "e"):
		cmd := m.askEdit()
		return m, cmd
	case isKey(msg, "d") && ok:
		prompt, err := m.ctrl.DeletePrompt(node.ID)
		if err != nil {
			return m, errCmd(err)
		}
		id, name := node.ID, node.Name
		return m, askConfirm(prompt, m.run(func() (string, error) {
			return fmt.Sprintf("Deleted %q.", name), m.ctrl.DeleteNode(id, confirm.Yes)
		}))
	}
	return m, nil
}

func (m TaxonomyModel) handleFilterKeys(msg tea.KeyMsg) (TaxonomyModel, tea.Cmd) {
	switch {
	case isEnter(msg):
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case isBack(msg):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.sync()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	// live: the tree is filtered locally on every keystroke
	m.list.MoveTo(0)
	m.sync()
	return m, cmd
}

func (m *TaxonomyModel) askCreate(parent *taxonomy.Node) {
	level := 1
	var parentID *int
	title := "New level-1 category"
	if parent != nil {
		level = parent.Level + 1
		id := parent.ID
		parentID = &id
		title = fmt.Sprintf("New level-%d category under %s", level, parent.Name)
	}
	steps := []formStep{{label: "Name"}}
	if level == taxonomy.MaxLevel {
		steps = append(steps, formStep{label: "Definition"})
	}
	m.form = newForm(title, func(values []string) tea.Cmd {
		def := ""
		if len(values) > 1 {
			def = values[1]
		}
		name := values[0]
		return m.run(func() (string, error) {
			_, err := m.ctrl.CreateNode(parentID, level, name, def)
			return fmt.Sprintf("Created %q.", strings.TrimSpace(name)), err
		})
	}, steps...)
}

// askEdit edits the selected node, whose detail carries the definition.
func (m *TaxonomyModel) askEdit() tea.Cmd {
	sel := m.ctrl.Selection()
	if sel == nil {
		return notice("info", "Open a category with enter before editing it.")
	}
	id, level := sel.Node.ID, sel.Node.Level
	steps := []formStep{{label: "Name", value: sel.Node.Name}}
	if level == taxonomy.MaxLevel {
		def := ""
		if sel.Detail != nil && sel.Detail.Definition != nil {
			def = *sel.Detail.Definition
		}
		steps = append(steps, formStep{label: "Definition", value: def})
	}
	m.form = newForm("Edit category", func(values []string) tea.Cmd {
		def := ""
		if len(values) > 1 {
			def = values[1]
		}
		return m.run(func() (string, error) {
			_, err := m.ctrl.UpdateNode(id, values[0], def)
			return "Category saved.", err
		})
	}, steps...)
	return nil
}

// --- Cases ---

func (m TaxonomyModel) cursorCase() (int, string, bool) {
	sel := m.ctrl.Selection()
	if sel == nil {
		return 0, "", false
	}
	idx := m.caseList.Selected()
	if idx < 0 || idx >= len(sel.Cases) {
		return 0, "", false
	}
	return sel.Cases[idx].ID, sel.Cases[idx].Content, true
}

func (m TaxonomyModel) handleCaseKeys(msg tea.KeyMsg) (TaxonomyModel, tea.Cmd) {
	switch {
	case isDown(msg):
		m.caseList.Down()
		return m, nil
	case isUp(msg):
		m.caseList.Up()
		return m, nil
	case isKey(msg, "tab"), isBack(msg):
		m.pane = paneTree
		return m, nil
	}
	if m.ctrl.Busy() {
		return m, nil
	}

	id, content, ok := m.cursorCase()
	switch {
	case isKey(msg, "a"):
		m.form = newForm("New case", func(values []string) tea.Cmd {
			return m.run(func() (string, error) {
				_, err := m.ctrl.CreateCase(values[0])
				return "Case added.", err
			})
		}, formStep{label: "Content"})
	case isKey(msg, "e") && ok:
		m.form = newForm("Edit case", func(values []string) tea.Cmd {
			return m.run(func() (string, error) {
				_, err := m.ctrl.UpdateCase(id, values[0])
				return "Case saved.", err
			})
		}, formStep{label: "Content", value: content})
	case isKey(msg, "d") && ok:
		prompt := confirm.Prompt{
			Title:   "Delete case",
			Message: fmt.Sprintf("Delete case #%d %q?", id, components.ClampTextWidthEllipsis(content, 40)),
			Action:  "delete case",
			Count:   1,
		}
		return m, askConfirm(prompt, m.run(func() (string, error) {
			return "Case deleted.", m.ctrl.DeleteCase(id, confirm.Yes)
		}))
	case isKey(msg, "/"):
		keyword := ""
		if sel := m.ctrl.Selection(); sel != nil {
			keyword = sel.Keyword
		}
		m.form = newForm("Search cases", func(values []string) tea.Cmd {
			return m.run(func() (string, error) { return "", m.ctrl.SetCaseKeyword(values[0]) })
		}, formStep{label: "Keyword", value: keyword})
	}
	return m, nil
}

// --- Import ---

func (m *TaxonomyModel) askImportPath() {
	m.form = newForm(fmt.Sprintf("Import %s taxonomy", m.ctrl.Scope().Label()), func(values []string) tea.Cmd {
		path := strings.TrimSpace(values[0])
		return m.validateImport(path)
	}, formStep{label: "File (.csv or .xlsx)"})
}

func (m TaxonomyModel) validateImport(path string) tea.Cmd {
	pipeline := m.pipeline
	return func() tea.Msg {
		f, err := importer.ReadFile(path)
		if err != nil {
			return errMsg{err}
		}
		res, err := pipeline.Validate(f)
		if err != nil {
			return errMsg{err}
		}
		return importValidatedMsg{file: f, result: res}
	}
}

func (m TaxonomyModel) handleWizardKeys(msg tea.KeyMsg) (TaxonomyModel, tea.Cmd) {
	if m.wizard.running {
		return m, nil
	}
	switch {
	case isBack(msg):
		m.pipeline.Reset()
		m.wizard = importWizard{}
		return m, nil
	case isKey(msg, "o"):
		m.pipeline.Reset()
		m.wizard = importWizard{open: true}
		m.askImportPath()
		return m, nil
	case isKey(msg, "x"):
		if m.wizard.file == nil || !m.pipeline.Prepared(*m.wizard.file) {
			return m, errCmd(importer.ErrNotValidated)
		}
		f := *m.wizard.file
		pipeline := m.pipeline
		return m, askConfirm(pipeline.ExecutePrompt(f), func() tea.Msg {
			res, err := pipeline.Execute(f, confirm.Yes)
			return importExecutedMsg{file: f, result: res, err: err}
		})
	}
	return m, nil
}

// run executes fn off the event loop and reports the outcome as a
// taxonomyMsg or errMsg.
func (m TaxonomyModel) run(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		note, err := fn()
		if err != nil {
			return errMsg{err}
		}
		return taxonomyMsg{note: note}
	}
}

func (m TaxonomyModel) reload(note string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		if err := ctrl.Reload(); err != nil {
			return errMsg{fmt.Errorf("load %s tree: %w", ctrl.Scope(), err)}
		}
		return taxonomyMsg{note: note}
	}
}

// --- View ---

func (m TaxonomyModel) View() string {
	if m.form != nil {
		return m.form.View()
	}
	if m.wizard.open {
		return m.renderWizard()
	}

	sections := []string{m.renderTree()}
	if sel := m.ctrl.Selection(); sel != nil {
		sections = append(sections, m.renderSelection(sel))
	}
	return strings.Join(sections, "\n")
}

func (m TaxonomyModel) renderTree() string {
	nodes := m.visible()
	keyword := strings.TrimSpace(m.filter.Value())
	title := fmt.Sprintf("%s Taxonomy", m.ctrl.Scope().Label())

	var b strings.Builder
	count := fmt.Sprintf("%d categories", m.ctrl.Tree().Len())
	if keyword != "" {
		count = fmt.Sprintf("%d of %s · filter: %s", len(nodes), count, keyword)
	}
	b.WriteString(MutedStyle.Render(count))
	if m.filtering {
		b.WriteString("\n" + m.filter.View())
	}
	b.WriteString("\n\n")

	switch {
	case m.ctrl.Tree().Len() == 0:
		b.WriteString(MutedStyle.Render("No categories yet. Press N to add one or i to import a file."))
	case len(nodes) == 0:
		b.WriteString(MutedStyle.Render("No category name contains " + strconv.Quote(keyword) + "."))
	default:
		selected := 0
		if sel := m.ctrl.Selection(); sel != nil {
			selected = sel.Node.ID
		}
		width := components.BoxContentWidth(m.width)
		lines := make([]string, 0, m.list.PageSize)
		for i := range m.list.Visible() {
			abs := m.list.RelToAbs(i)
			if abs >= len(nodes) {
				break
			}
			lines = append(lines, renderTreeRow(nodes[abs], keyword, m.list.IsSelected(abs) && m.pane == paneTree, nodes[abs].ID == selected, width))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}

	if m.pane == paneTree {
		return components.Indent(components.ActiveTitledBox(title, b.String(), m.width), 1)
	}
	return components.Indent(components.TitledBox(title, b.String(), m.width), 1)
}

func renderTreeRow(n *taxonomy.Node, keyword string, cursor, selected bool, width int) string {
	marker := "  "
	switch {
	case cursor && selected:
		marker = ">●"
	case cursor:
		marker = "> "
	case selected:
		marker = " ●"
	}
	indent := strings.Repeat("  ", n.Level-1)
	badge := LevelStyles[n.Level].Render(fmt.Sprintf("L%d", n.Level))
	name := components.ClampTextWidthEllipsis(n.Name, max(width-len(indent)-14, 8))
	name = highlightMatch(name, keyword)
	line := fmt.Sprintf("%s%s%s %s %s", marker, indent, badge, name, MutedStyle.Render(fmt.Sprintf("#%d", n.ID)))
	if cursor {
		return SelectedStyle.Render(line)
	}
	return line
}

func highlightMatch(name, keyword string) string {
	if keyword == "" {
		return name
	}
	i := strings.Index(name, keyword)
	if i < 0 {
		return name
	}
	return name[:i] + MatchStyle.Render(keyword) + name[i+len(keyword):]
}

func (m TaxonomyModel) renderSelection(sel *taxonomy.Selection) string {
	path := make([]string, 0, 3)
	if sel.Detail != nil {
		for _, seg := range sel.Detail.Path {
			path = append(path, seg.Name)
		}
	}
	rows := []components.TableRow{
		{Label: "ID", Value: strconv.Itoa(sel.Node.ID)},
		{Label: "Level", Value: strconv.Itoa(sel.Node.Level)},
		{Label: "Path", Value: strings.Join(path, " / ")},
	}
	if sel.Detail != nil && sel.Detail.Definition != nil {
		rows = append(rows, components.TableRow{Label: "Definition", Value: *sel.Detail.Definition})
	}
	out := components.Table(sel.Node.Name, rows, m.width)
	if !sel.Node.IsLeaf() {
		return components.Indent(out, 1)
	}

	var b strings.Builder
	header := fmt.Sprintf("%d case(s)", len(sel.Cases))
	if sel.Keyword != "" {
		header += " · search: " + sel.Keyword
	}
	b.WriteString(MutedStyle.Render(header) + "\n\n")
	if len(sel.Cases) == 0 {
		b.WriteString(MutedStyle.Render("No cases. Press tab then a to add one."))
	}
	width := components.BoxContentWidth(m.width)
	for i := range m.caseList.Visible() {
		abs := m.caseList.RelToAbs(i)
		if abs >= len(sel.Cases) {
			break
		}
		c := sel.Cases[abs]
		line := fmt.Sprintf("#%-5d %s", c.ID, components.ClampTextWidthEllipsis(c.Content, max(width-10, 8)))
		if m.pane == paneCases && m.caseList.IsSelected(abs) {
			line = SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	casesBox := components.TitledBox("Cases", strings.TrimRight(b.String(), "\n"), m.width)
	if m.pane == paneCases {
		casesBox = components.ActiveTitledBox("Cases", strings.TrimRight(b.String(), "\n"), m.width)
	}
	return components.Indent(lipgloss.JoinVertical(lipgloss.Left, out, casesBox), 1)
}

func (m TaxonomyModel) renderWizard() string {
	title := fmt.Sprintf("Import %s taxonomy", m.ctrl.Scope().Label())
	w := m.wizard
	if w.running {
		return components.Indent(components.TitledBox(title, MutedStyle.Render("Checking file..."), m.width), 1)
	}
	if w.result == nil {
		return components.Indent(components.TitledBox(title, MutedStyle.Render("No file chosen. Press o to pick one."), m.width), 1)
	}

	name := ""
	if w.file != nil {
		name = w.file.Name
	}
	var b strings.Builder
	switch {
	case w.done:
		b.WriteString(SuccessStyle.Render("Import complete.") + "\n\n")
		b.WriteString(fmt.Sprintf("%s now holds %d categories and %d cases from %s.",
			m.ctrl.Scope().Label(), w.result.Summary.Categories, w.result.Summary.Cases, name))
	case w.result.OK:
		b.WriteString(SuccessStyle.Render("Validation passed.") + " " + MutedStyle.Render("Nothing has been written yet.") + "\n\n")
		b.WriteString(fmt.Sprintf("%s: %d categories, %d cases.\n\n", name, w.result.Summary.Categories, w.result.Summary.Cases))
		b.WriteString(WarningStyle.Render("Executing deletes every existing " + m.ctrl.Scope().Label() + " node and case first."))
	default:
		source := "server"
		if w.result.Local {
			source = "local check"
		}
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%s rejected by the %s: %d problem(s).", name, source, len(w.result.Errors))) + "\n\n")
		b.WriteString(renderRowErrors(w.result, components.BoxContentWidth(m.width)))
	}
	return components.Indent(components.TitledBox(title, b.String(), m.width), 1)
}

func renderRowErrors(res *importer.Result, width int) string {
	cols := []components.TableColumn{
		{Header: "Row", Width: 5, Align: lipgloss.Right},
		{Header: "Column", Width: 10},
		{Header: "Problem", Width: 24},
		{Header: "Expected", Width: 12},
		{Header: "Actual", Width: 12},
	}
	rows := make([][]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		rows = append(rows, []string{
			strconv.Itoa(e.Row), e.Column, e.Message, deref(e.Expected), deref(e.Actual),
		})
	}
	return components.TableGrid(cols, rows, width)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func (m TaxonomyModel) hints() []string {
	switch {
	case m.form != nil:
		return []string{components.Hint("enter", "Next"), components.Hint("esc", "Cancel")}
	case m.filtering:
		return []string{components.Hint("type", "Filter"), components.Hint("enter", "Keep"), components.Hint("esc", "Clear")}
	case m.wizard.open:
		hints := []string{components.Hint("o", "Other file"), components.Hint("esc", "Close")}
		if m.wizard.result != nil && m.wizard.result.OK && !m.wizard.done {
			hints = append([]string{components.Hint("x", "Execute")}, hints...)
		}
		return hints
	case m.pane == paneCases:
		return []string{
			components.Hint("↑/↓", "Cases"),
			components.Hint("a", "Add"),
			components.Hint("e", "Edit"),
			components.Hint("d", "Delete"),
			components.Hint("/", "Search"),
			components.Hint("tab", "Tree"),
		}
	}
	return []string{
		components.Hint("↑/↓", "Move"),
		components.Hint("enter", "Open"),
		components.Hint("/", "Filter"),
		components.Hint("n/N", "New child/root"),
		components.Hint("e", "Edit"),
		components.Hint("d", "Delete"),
		components.Hint("tab", "Cases"),
		components.Hint("i", "Import"),
	}
}
