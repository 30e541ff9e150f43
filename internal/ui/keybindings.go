package ui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gravitrone/kbconsole/internal/ui/components"
)

// navKeys are the bindings every tab shares. Tab-specific action letters go
// through isKey.
var navKeys = struct {
	Quit, Back, Up, Down, Enter, Space, NextPage, PrevPage, Yes, No key.Binding
}{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "Quit")),
	Back:     key.NewBinding(key.WithKeys("esc", "ctrl+["), key.WithHelp("esc", "Back")),
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "Open")),
	Space:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "Select")),
	NextPage: key.NewBinding(key.WithKeys("]", "pgdown"), key.WithHelp("]", "Next page")),
	PrevPage: key.NewBinding(key.WithKeys("[", "pgup"), key.WithHelp("[", "Prev page")),
	Yes:      key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "Confirm")),
	No:       key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "Cancel")),
}

// navHint renders a binding's help as a status bar hint.
func navHint(b key.Binding) string {
	h := b.Help()
	return components.Hint(h.Key, h.Desc)
}

func isKey(msg tea.KeyMsg, keys ...string) bool {
	return slices.Contains(keys, msg.String())
}

func isQuit(msg tea.KeyMsg) bool     { return key.Matches(msg, navKeys.Quit) }
func isUp(msg tea.KeyMsg) bool       { return key.Matches(msg, navKeys.Up) }
func isDown(msg tea.KeyMsg) bool     { return key.Matches(msg, navKeys.Down) }
func isEnter(msg tea.KeyMsg) bool    { return key.Matches(msg, navKeys.Enter) }
func isSpace(msg tea.KeyMsg) bool    { return key.Matches(msg, navKeys.Space) }
func isNextPage(msg tea.KeyMsg) bool { return key.Matches(msg, navKeys.NextPage) }
func isPrevPage(msg tea.KeyMsg) bool { return key.Matches(msg, navKeys.PrevPage) }
func isConfirm(msg tea.KeyMsg) bool  { return key.Matches(msg, navKeys.Yes) }

func isBack(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEsc || key.Matches(msg, navKeys.Back)
}

// isDecline treats esc like n so a stray escape never confirms.
func isDecline(msg tea.KeyMsg) bool {
	return key.Matches(msg, navKeys.No) || isBack(msg)
}

// tabForKey maps 1..tabCount to a tab index.
func tabForKey(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return 0, false
	}
	idx := int(msg.Runes[0] - '1')
	return idx, idx >= 0 && idx < tabCount
}
