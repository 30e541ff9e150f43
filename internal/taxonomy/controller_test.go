package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/validate"
)

func loadedController(t *testing.T) (*Controller, *fakeBackend) {
	t.Helper()
	backend := seededBackend()
	c := NewController(backend, scope.Water)
	require.NoError(t, c.Reload())
	backend.calls = nil
	return c, backend
}

func intPtr(v int) *int { return &v }

func TestReloadBuildsTreeAndNotifies(t *testing.T) {
	backend := seededBackend()
	c := NewController(backend, scope.Water)

	var changes []Change
	c.Subscribe(func(ch Change) { changes = append(changes, ch) })

	require.NoError(t, c.Reload())
	assert.Equal(t, 8, c.Tree().Len())
	require.Len(t, changes, 1)
	assert.Equal(t, scope.Water, changes[0].Scope)
}

func TestSelectLoadsDetailAndCases(t *testing.T) {
	c, _ := loadedController(t)

	require.NoError(t, c.Select(3))
	sel := c.Selection()
	require.NotNil(t, sel)
	assert.Equal(t, "Late fee", sel.Node.Name)
	assert.Len(t, sel.Detail.Path, 3)
	assert.Len(t, sel.Cases, 2)
}

func TestSelectUnknownNode(t *testing.T) {
	c, backend := loadedController(t)
	err := c.Select(999)
	assert.True(t, validate.IsError(err))
	assert.Empty(t, backend.calls)
}

func TestCaseKeywordFiltersServerSide(t *testing.T) {
	c, backend := loadedController(t)
	require.NoError(t, c.Select(3))

	require.NoError(t, c.SetCaseKeyword(" waived "))
	sel := c.Selection()
	require.Len(t, sel.Cases, 1)
	assert.Equal(t, "waived", sel.Keyword)
	assert.Contains(t, backend.calls, `ListCases 3 "waived"`)
}

func TestCreateLevelThreeWithoutDefinitionFails(t *testing.T) {
	c, backend := loadedController(t)

	_, err := c.CreateNode(intPtr(2), 3, "Meter fee", "  ")
	require.Error(t, err)
	assert.True(t, validate.IsError(err))
	assert.Contains(t, err.Error(), "definition")
	assert.Empty(t, backend.calls)
}

func TestCreateNodeValidation(t *testing.T) {
	c, backend := loadedController(t)

	tests := []struct {
		name   string
		parent *int
		level  int
		title  string
		def    string
		field  string
	}{
		{"blank name", nil, 1, " ", "", "name"},
		{"level out of range", nil, 4, "x", "", "level"},
		{"root with parent", intPtr(1), 1, "x", "", "parentId"},
		{"child without parent", nil, 2, "x", "", "parentId"},
		{"parent wrong level", intPtr(1), 3, "x", "d", "parentId"},
		{"unknown parent", intPtr(999), 2, "x", "", "parentId"},
		{"definition above leaf", intPtr(1), 2, "x", "d", "definition"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateNode(tt.parent, tt.level, tt.title, tt.def)
			require.Error(t, err)
			var vErr *validate.Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.Empty(t, backend.calls)
}

func TestCreateNodeReloadsTree(t *testing.T) {
	c, backend := loadedController(t)

	created, err := c.CreateNode(intPtr(2), 3, " Meter fee ", " Charged per meter ")
	require.NoError(t, err)

	node, ok := c.Tree().Node(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Meter fee", node.Name)
	assert.Equal(t, 2, node.ParentID)
	assert.Equal(t, "Charged per meter", backend.nodes[created.ID].def)
	assert.Equal(t, []string{"CreateNode", "GetTree"}, backend.calls)
}

func TestUpdateNodeKeepsLevelAndParent(t *testing.T) {
	c, backend := loadedController(t)

	_, err := c.UpdateNode(3, "Late payment fee", "After due date")
	require.NoError(t, err)

	node, _ := c.Tree().Node(3)
	assert.Equal(t, "Late payment fee", node.Name)
	assert.Equal(t, 3, node.Level)
	assert.Equal(t, 2, node.ParentID)
	assert.Equal(t, "After due date", backend.nodes[3].def)

	_, err = c.UpdateNode(3, "Late payment fee", "")
	assert.True(t, validate.IsError(err))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	c, backend := loadedController(t)

	err := c.DeleteNode(3, confirm.No)
	assert.ErrorIs(t, err, confirm.ErrDeclined)
	assert.Empty(t, backend.calls)
	_, ok := c.Tree().Node(3)
	assert.True(t, ok)
}

func TestDeleteLeafCascadesCases(t *testing.T) {
	c, backend := loadedController(t)
	require.NoError(t, c.Select(3))

	var prompt confirm.Prompt
	err := c.DeleteNode(3, confirm.Func(func(p confirm.Prompt) (bool, error) {
		prompt = p
		return true, nil
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, prompt.Count)
	assert.Equal(t, "Cases removed", prompt.Unit)
	assert.Contains(t, prompt.Message, "2 case(s)")
	assert.Equal(t, 0, backend.casesOf(3))
	assert.Nil(t, c.Selection())
}

func TestDeleteRootCascadesSubtree(t *testing.T) {
	c, backend := loadedController(t)
	require.NoError(t, c.Select(4))

	prompt, err := c.DeletePrompt(1)
	require.NoError(t, err)
	assert.Equal(t, 4, prompt.Count)
	assert.Equal(t, "Nodes removed", prompt.Unit)

	require.NoError(t, c.DeleteNode(1, confirm.Yes))

	for _, id := range []int{1, 2, 3, 4, 5} {
		_, ok := c.Tree().Node(id)
		assert.False(t, ok, "node %d", id)
	}
	assert.Equal(t, 0, backend.casesOf(3))
	assert.Equal(t, 0, backend.casesOf(4))
	assert.Nil(t, c.Selection(), "selection inside deleted subtree is cleared")
	assert.Equal(t, 3, c.Tree().Len())
}

func TestDeleteOutsideSelectionKeepsIt(t *testing.T) {
	c, _ := loadedController(t)
	require.NoError(t, c.Select(8))

	require.NoError(t, c.DeleteNode(1, confirm.Yes))
	sel := c.Selection()
	require.NotNil(t, sel)
	assert.Equal(t, 8, sel.Node.ID)
}

func TestCaseOpsRequireLeafSelection(t *testing.T) {
	c, backend := loadedController(t)

	_, err := c.CreateCase("x")
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, c.Select(2))
	backend.calls = nil
	_, err = c.CreateCase("x")
	assert.True(t, validate.IsError(err))

	require.NoError(t, c.Select(1))
	err = c.DeleteCase(31, confirm.Yes)
	assert.True(t, validate.IsError(err))
	assert.NotContains(t, backend.calls, "CreateCase")
}

func TestCaseLifecycle(t *testing.T) {
	c, backend := loadedController(t)
	require.NoError(t, c.Select(3))

	_, err := c.CreateCase("   ")
	assert.True(t, validate.IsError(err))

	created, err := c.CreateCase(" charged twice ")
	require.NoError(t, err)
	assert.Equal(t, "charged twice", created.Content)
	assert.Len(t, c.Selection().Cases, 3)

	_, err = c.UpdateCase(created.ID, "charged three times")
	require.NoError(t, err)
	assert.Equal(t, "charged three times", backend.cases[created.ID].Content)

	_, err = c.UpdateCase(41, "not mine")
	assert.True(t, validate.IsError(err))

	require.NoError(t, c.DeleteCase(created.ID, confirm.Yes))
	assert.Len(t, c.Selection().Cases, 2)
}

func TestReloadClearsVanishedSelection(t *testing.T) {
	c, backend := loadedController(t)
	require.NoError(t, c.Select(3))

	// the scope is replaced wholesale, e.g. by an import
	backend.mu.Lock()
	for id := range backend.nodes {
		delete(backend.nodes, id)
	}
	backend.seedNode(200, 0, 1, "Fresh", "")
	backend.mu.Unlock()

	require.NoError(t, c.Reload())
	assert.Nil(t, c.Selection())
	assert.Equal(t, 1, c.Tree().Len())
}

func TestBusyGuardRejectsConcurrentMutation(t *testing.T) {
	c, backend := loadedController(t)
	backend.entered = make(chan struct{})
	backend.release = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- c.Reload() }()
	<-backend.entered

	assert.True(t, c.Busy())
	_, err := c.CreateNode(nil, 1, "Another", "")
	assert.ErrorIs(t, err, ErrBusy)

	close(backend.release)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())
}
