package confirm

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrDeclined is returned when the operator does not confirm an action.
var ErrDeclined = errors.New("action not confirmed")

// Prompt describes a destructive action awaiting confirmation. Unit names
// what Count counts, such as "Cases removed".
type Prompt struct {
	Title   string
	Message string
	Action  string
	Count   int
	Unit    string
}

// Confirmer asks the operator to approve a prompt.
type Confirmer interface {
	Confirm(p Prompt) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(p Prompt) (bool, error)

// Confirm calls f.
func (f Func) Confirm(p Prompt) (bool, error) { return f(p) }

// Yes approves every prompt. Used for --yes and for TUI dialogs that have
// already been answered.
var Yes Confirmer = Func(func(Prompt) (bool, error) { return true, nil })

// No declines every prompt.
var No Confirmer = Func(func(Prompt) (bool, error) { return false, nil })

// Require returns ErrDeclined unless c approves p. A nil Confirmer declines.
func Require(c Confirmer, p Prompt) error {
	if c == nil {
		return ErrDeclined
	}
	ok, err := c.Confirm(p)
	if err != nil {
		return fmt.Errorf("confirm %s: %w", p.Action, err)
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

// Terminal asks on the controlling terminal with a huh confirm field.
type Terminal struct{}

// Confirm renders the prompt and waits for an answer.
func (Terminal) Confirm(p Prompt) (bool, error) {
	var ok bool
	field := huh.NewConfirm().
		Title(p.Title).
		Description(p.Message).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)
	if err := field.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
