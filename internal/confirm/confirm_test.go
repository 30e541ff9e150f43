package confirm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequire(t *testing.T) {
	p := Prompt{Title: "Delete", Action: "delete node"}

	assert.NoError(t, Require(Yes, p))
	assert.ErrorIs(t, Require(No, p), ErrDeclined)
	assert.ErrorIs(t, Require(nil, p), ErrDeclined)
}

func TestRequirePropagatesPromptError(t *testing.T) {
	boom := errors.New("tty gone")
	c := Func(func(Prompt) (bool, error) { return false, boom })

	err := Require(c, Prompt{Action: "discard"})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "confirm discard")
}

func TestFuncSeesPrompt(t *testing.T) {
	var seen Prompt
	c := Func(func(p Prompt) (bool, error) {
		seen = p
		return true, nil
	})

	assert.NoError(t, Require(c, Prompt{Action: "bulk accept", Count: 12}))
	assert.Equal(t, 12, seen.Count)
	assert.Equal(t, "bulk accept", seen.Action)
}
