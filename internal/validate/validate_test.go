package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string   `json:"name" validate:"notblank"`
	Level  int      `json:"level" validate:"min=1,max=3"`
	Status string   `json:"status" validate:"omitempty,oneof=active disabled"`
	Cases  []string `json:"cases" validate:"min=1,dive,notblank"`
}

func TestStructPasses(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "n", Level: 2, Cases: []string{"c"}}))
}

func TestStructBlankName(t *testing.T) {
	err := Struct(sample{Name: "   ", Level: 1, Cases: []string{"c"}})
	require.Error(t, err)
	var vErr *Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name", vErr.Field)
	assert.Equal(t, "name: is required", err.Error())
}

func TestStructLevelBounds(t *testing.T) {
	err := Struct(sample{Name: "n", Level: 4, Cases: []string{"c"}})
	require.Error(t, err)
	assert.Equal(t, "level: must be at most 3", err.Error())
}

func TestStructEmptyCases(t *testing.T) {
	err := Struct(sample{Name: "n", Level: 1})
	require.Error(t, err)
	assert.Equal(t, "cases: needs at least 1 entries", err.Error())
}

func TestStructBlankCaseEntry(t *testing.T) {
	err := Struct(sample{Name: "n", Level: 1, Cases: []string{"ok", " "}})
	require.Error(t, err)
	assert.True(t, IsError(err))
	assert.Contains(t, err.Error(), "cases[1]")
}

func TestStructOneOf(t *testing.T) {
	err := Struct(sample{Name: "n", Level: 1, Cases: []string{"c"}, Status: "gone"})
	require.Error(t, err)
	assert.Equal(t, "status: must be one of active disabled", err.Error())
}

func TestFailAndIsError(t *testing.T) {
	err := fmt.Errorf("create: %w", Fail("parentId", "must be a level-%d node", 2))
	assert.True(t, IsError(err))
	assert.Equal(t, "create: parentId: must be a level-2 node", err.Error())
	assert.False(t, IsError(errors.New("plain")))
}
