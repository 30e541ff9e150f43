package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/kbconsole/internal/ui/components"
)

// formStep is one prompted field with its starting value.
type formStep struct {
	label string
	value string
}

// form asks for one or more values in sequence. Enter moves to the next
// step and submits after the last one; esc cancels the whole form.
type form struct {
	title  string
	steps  []formStep
	idx    int
	values []string
	input  textinput.Model
	submit func(values []string) tea.Cmd
}

func newForm(title string, submit func(values []string) tea.Cmd, steps ...formStep) *form {
	f := &form{title: title, steps: steps, submit: submit}
	f.input = textinput.New()
	f.input.Prompt = "> "
	f.input.CharLimit = 4000
	f.load()
	return f
}

func (f *form) load() {
	f.input.SetValue(f.steps[f.idx].value)
	f.input.CursorEnd()
	f.input.Focus()
}

// Update handles a key. done is true once the form submitted or was
// cancelled; cmd is the submit command, nil on cancel.
func (f *form) Update(msg tea.KeyMsg) (done bool, cmd tea.Cmd) {
	switch {
	case isBack(msg):
		return true, nil
	case isEnter(msg):
		f.values = append(f.values, f.input.Value())
		if f.idx == len(f.steps)-1 {
			return true, f.submit(f.values)
		}
		f.idx++
		f.load()
		return false, nil
	}
	f.input, cmd = f.input.Update(msg)
	return false, cmd
}

// Value is the text currently typed in the active step.
func (f *form) Value() string {
	return f.input.Value()
}

func (f *form) View() string {
	title := f.title
	if len(f.steps) > 1 {
		title = fmt.Sprintf("%s · %s (%d/%d)", f.title, f.steps[f.idx].label, f.idx+1, len(f.steps))
	} else if label := f.steps[f.idx].label; label != "" {
		title = f.title + " · " + label
	}
	return components.Indent(components.InputDialog(title, f.input.View()), 1)
}

// splitCases parses the "a | b | c" notation used to edit a case list on
// one line. Blank entries are kept so validation can reject them.
func splitCases(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinCases(cases []string) string {
	return strings.Join(cases, " | ")
}
