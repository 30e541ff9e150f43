package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/importer"
	"github.com/gravitrone/kbconsole/internal/publish"
	"github.com/gravitrone/kbconsole/internal/review"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/session"
	"github.com/gravitrone/kbconsole/internal/taxonomy"
	"github.com/gravitrone/kbconsole/internal/ui/components"
)

// --- Tab Constants ---

const (
	tabTaxonomy    = 0
	tabFAQReview   = 1
	tabTaxReview   = 2
	tabKnowledge   = 3
	tabCount       = 4
	defaultPageLen = 20
)

var tabNames = []string{"Taxonomy", "FAQ Review", "Taxonomy Review", "Knowledge"}

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}

// confirmMsg asks the app to show a confirmation dialog and run run once
// the operator accepts.
type confirmMsg struct {
	prompt confirm.Prompt
	run    tea.Cmd
}

// toastMsg reports a finished action.
type toastMsg struct {
	level string
	text  string
}

type appToast struct {
	level string
	text  string
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return errMsg{err} }
}

func askConfirm(p confirm.Prompt, run tea.Cmd) tea.Cmd {
	return func() tea.Msg { return confirmMsg{prompt: p, run: run} }
}

// tabModel is what the app needs from each tab beyond Update.
type tabModel interface {
	View() string
	Init() tea.Cmd
	// capturing is true while the tab owns every key, for example while a
	// text prompt is open.
	capturing() bool
	hints() []string
}

// Options configures NewApp.
type Options struct {
	Scope    scope.Scope
	PageSize int
	Log      zerolog.Logger
}

// --- App Model ---

// App is the root TUI model. It routes keys to the active tab, hosts the
// shared confirmation dialog and turns a rejected token into the session
// ended screen.
type App struct {
	sess     *session.Session
	scope    scope.Scope
	pageSize int
	log      zerolog.Logger

	tab         int
	width       int
	height      int
	err         string
	ended       bool
	helpOpen    bool
	quitConfirm bool
	pending     *confirmMsg
	toast       *appToast

	taxonomy    TaxonomyModel
	faqs        FAQReviewModel
	suggestions SuggestionsModel
	knowledge   KnowledgeModel
}

// NewApp wires the moderation services for the session and scope.
func NewApp(sess *session.Session, opts Options) App {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageLen
	}
	a := App{
		sess:     sess,
		pageSize: opts.PageSize,
		log:      opts.Log,
	}
	a.faqs = NewFAQReviewModel(newFAQWorkflow(sess, opts))
	board := publish.NewBoard(sess.Client, opts.PageSize)
	board.SetLogger(opts.Log)
	a.knowledge = NewKnowledgeModel(board, sess.Config.ScenarioID)
	a.bindScope(opts.Scope)
	return a
}

func newFAQWorkflow(sess *session.Session, opts Options) *review.FAQWorkflow {
	w := review.NewFAQWorkflow(sess.Client, sess.Config.ScenarioID, opts.PageSize)
	w.SetLogger(opts.Log)
	return w
}

// bindScope builds the scope-bound services: the tree controller, the
// import pipeline and the suggestion queue. An import or an accepted
// suggestion reloads the tree.
func (a *App) bindScope(s scope.Scope) {
	a.scope = s
	ctrl := taxonomy.NewController(a.sess.Client, s)
	ctrl.SetLogger(a.log)
	pipeline := importer.NewPipeline(a.sess.Client, s)
	pipeline.SetLogger(a.log)
	pipeline.OnReplaced(ctrl.Reload)
	suggestions := review.NewTaxonomyWorkflow(a.sess.Client, s)
	suggestions.SetLogger(a.log)
	suggestions.OnAccepted(ctrl.Reload)

	a.taxonomy = NewTaxonomyModel(ctrl, pipeline)
	a.suggestions = NewSuggestionsModel(suggestions)
	a.resize()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.taxonomy.Init(), a.faqs.Init(), a.suggestions.Init(), a.knowledge.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case errMsg:
		return a.fail(msg.err)

	case confirmMsg:
		a.pending = &msg
		return a, nil

	case toastMsg:
		return a.withToast(msg.level, msg.text)

	case clearToastMsg:
		a.toast = nil
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// results go to every tab; each ignores what it did not ask for
	return a.broadcast(msg)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.ended {
		if isQuit(msg) || isBack(msg) || isEnter(msg) {
			return a, tea.Quit
		}
		return a, nil
	}
	if a.pending != nil {
		switch {
		case isConfirm(msg):
			run := a.pending.run
			a.pending = nil
			return a, run
		case isDecline(msg):
			a.pending = nil
			return a.withToast("info", "Cancelled.")
		}
		return a, nil
	}
	if a.quitConfirm {
		switch {
		case isConfirm(msg):
			return a, tea.Quit
		case isDecline(msg):
			a.quitConfirm = false
		}
		return a, nil
	}
	if a.helpOpen {
		if isBack(msg) || isKey(msg, "?") {
			a.helpOpen = false
		}
		return a, nil
	}
	a.err = ""

	active := a.active()
	if !active.capturing() {
		switch {
		case isKey(msg, "ctrl+c"):
			return a, tea.Quit
		case isQuit(msg):
			if a.busy() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		case isKey(msg, "?"):
			a.helpOpen = true
			return a, nil
		case isKey(msg, "left"):
			return a.switchTab((a.tab - 1 + tabCount) % tabCount)
		case isKey(msg, "right"):
			return a.switchTab((a.tab + 1) % tabCount)
		case isKey(msg, "S"):
			return a.cycleScope()
		}
		if idx, ok := tabForKey(msg); ok {
			return a.switchTab(idx)
		}
	}

	var cmd tea.Cmd
	switch a.tab {
	case tabTaxonomy:
		a.taxonomy, cmd = a.taxonomy.Update(msg)
	case tabFAQReview:
		a.faqs, cmd = a.faqs.Update(msg)
	case tabTaxReview:
		a.suggestions, cmd = a.suggestions.Update(msg)
	case tabKnowledge:
		a.knowledge, cmd = a.knowledge.Update(msg)
	}
	return a, cmd
}

func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 4)
	a.taxonomy, cmds[0] = a.taxonomy.Update(msg)
	a.faqs, cmds[1] = a.faqs.Update(msg)
	a.suggestions, cmds[2] = a.suggestions.Update(msg)
	a.knowledge, cmds[3] = a.knowledge.Update(msg)
	return a, tea.Batch(cmds...)
}

// fail shows err. A rejected token ends the session for good.
func (a App) fail(err error) (tea.Model, tea.Cmd) {
	if err == nil {
		return a, nil
	}
	err = a.sess.Guard(err)
	if errors.Is(err, session.ErrSessionEnded) {
		a.ended = true
		a.pending = nil
		a.log.Warn().Err(err).Msg("session ended")
	}
	if errors.Is(err, confirm.ErrDeclined) {
		return a.withToast("info", "Cancelled.")
	}
	a.err = err.Error()
	a.log.Debug().Err(err).Msg("action failed")
	// tabs drop their loading state
	return a.broadcast(errMsg{err})
}

func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	a.tab = idx
	return a, nil
}

// cycleScope moves to the next scope the operator may use and reloads the
// scope-bound tabs.
func (a App) cycleScope() (tea.Model, tea.Cmd) {
	scopes := a.sess.Scopes()
	if len(scopes) < 2 {
		return a.withToast("info", fmt.Sprintf("Only %s is available to this account.", a.scope.Label()))
	}
	next := scopes[0]
	for i, s := range scopes {
		if s == a.scope {
			next = scopes[(i+1)%len(scopes)]
		}
	}
	if a.taxonomy.busy() || a.suggestions.busy() {
		return a.withToast("warning", "Wait for the running request before switching scope.")
	}
	a.bindScope(next)
	a.log.Info().Str("scope", next.String()).Msg("scope switched")
	model, toast := a.withToast("info", "Scope: "+scopeLine(next))
	return model, tea.Batch(a.taxonomy.Init(), a.suggestions.Init(), toast)
}

func (a *App) resize() {
	a.taxonomy.width, a.taxonomy.height = a.width, a.height
	a.faqs.width, a.faqs.height = a.width, a.height
	a.suggestions.width, a.suggestions.height = a.width, a.height
	a.knowledge.width, a.knowledge.height = a.width, a.height
}

func (a App) active() tabModel {
	switch a.tab {
	case tabFAQReview:
		return a.faqs
	case tabTaxReview:
		return a.suggestions
	case tabKnowledge:
		return a.knowledge
	}
	return a.taxonomy
}

func (a App) busy() bool {
	return a.taxonomy.busy() || a.faqs.busy() || a.suggestions.busy() || a.knowledge.busy()
}

func scopeLine(s scope.Scope) string {
	return fmt.Sprintf("%s (%s)", s.Label(), s.Domain())
}

// --- View ---

func (a App) View() string {
	operator := ""
	if a.sess != nil && a.sess.Config != nil {
		operator = a.sess.Config.Username
	}
	banner := centerBlockUniform(RenderBanner(operator, scopeLine(a.scope)), a.width)

	if a.ended {
		body := "Your session has expired or was revoked.\n\nRun 'kbconsole login' and start the console again."
		content := centerBlockUniform(components.ErrorBox("Session ended", body, a.width), a.width)
		hints := components.StatusBar([]string{navHint(navKeys.Quit)}, a.width)
		return fmt.Sprintf("%s\n%s\n\n\n%s", banner, content, hints)
	}

	tabs := centerBlockUniform(a.renderTabs(), a.width)

	var content string
	switch {
	case a.pending != nil:
		content = a.renderConfirm()
	case a.quitConfirm:
		content = components.Indent(components.ConfirmDialog("Quit", "Requests are still running. Quit anyway?"), 1)
	case a.helpOpen:
		content = a.renderHelp()
	default:
		content = a.active().View()
	}
	content = centerBlockUniform(content, a.width)

	hints := components.StatusBar(a.statusHints(), a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n\n%s%s", banner, tabs, content, hints, feedback)
}

func (a App) renderTabs() string {
	segments := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if i == a.tab {
			segments = append(segments, TabActiveStyle.Render(label))
		} else {
			segments = append(segments, TabInactiveStyle.Render(label))
		}
	}
	segments = append(segments, "  ", scopeBadge(a.scope))
	return lipgloss.JoinHorizontal(lipgloss.Top, segments...)
}

func (a App) renderConfirm() string {
	p := a.pending.prompt
	unit := p.Unit
	if unit == "" {
		unit = "Items"
	}
	return components.Indent(components.DestructiveDialog(p.Title, p.Message, p.Count, unit), 1)
}

func (a App) renderHelp() string {
	lines := []string{MutedStyle.Render("esc to close"), ""}
	for _, hint := range append(a.active().hints(), a.globalHints()...) {
		lines = append(lines, "  "+hint)
	}
	return components.Indent(components.TitledBox("Help", strings.Join(lines, "\n"), a.width), 1)
}

func (a App) statusHints() []string {
	switch {
	case a.pending != nil, a.quitConfirm:
		return []string{navHint(navKeys.Yes), navHint(navKeys.No)}
	case a.helpOpen:
		return []string{navHint(navKeys.Back)}
	}
	hints := a.active().hints()
	if a.busy() {
		// action keys on in-flight items are ignored until this clears
		hints = append([]string{components.BusyHint("request running")}, hints...)
	}
	if a.active().capturing() {
		return hints
	}
	return append(hints, a.globalHints()...)
}

func (a App) globalHints() []string {
	return []string{
		components.Hint("1-4", "Tabs"),
		components.Hint("S", "Scope"),
		components.Hint("?", "Help"),
		navHint(navKeys.Quit),
	}
}

// withToast shows text until the next clearToastMsg.
func (a App) withToast(level, text string) (tea.Model, tea.Cmd) {
	a.toast = &appToast{level: level, text: components.SanitizeOneLine(text)}
	return a, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Done"
	case "warning":
		title = "Warning"
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, lipgloss.Width(line))
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	prefix := strings.Repeat(" ", (width-maxWidth)/2)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func notice(level, format string, args ...any) tea.Cmd {
	return func() tea.Msg { return toastMsg{level: level, text: fmt.Sprintf(format, args...)} }
}
