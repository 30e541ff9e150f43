package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/kbconsole/internal/api"
)

func seededTree(t *testing.T) *Tree {
	t.Helper()
	items, err := seededBackend().GetTree("water")
	require.NoError(t, err)
	tree, err := Build(items)
	require.NoError(t, err)
	return tree
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildIndexesEveryNode(t *testing.T) {
	tree := seededTree(t)

	assert.Equal(t, 8, tree.Len())
	assert.Equal(t, []string{"Billing", "Outages"}, names(tree.Roots()))
	assert.Equal(t, []string{"Fees", "Refunds"}, names(tree.Children(1)))

	late, ok := tree.Node(3)
	require.True(t, ok)
	assert.Equal(t, 2, late.ParentID)
	assert.True(t, late.IsLeaf())
}

func TestBuildKeepsLevelInvariant(t *testing.T) {
	tree := seededTree(t)
	tree.Walk(func(n *Node) bool {
		if parent, ok := tree.Parent(n.ID); ok {
			assert.Equal(t, parent.Level+1, n.Level, "node %d", n.ID)
		} else {
			assert.Equal(t, 1, n.Level)
		}
		return true
	})
}

func TestBuildRejectsBadLevels(t *testing.T) {
	cases := map[string][]api.TreeNode{
		"root not level 1": {{ID: 1, Name: "a", Level: 2}},
		"skipped level": {{ID: 1, Name: "a", Level: 1, Children: []api.TreeNode{
			{ID: 2, Name: "b", Level: 3},
		}}},
		"too deep": {{ID: 1, Name: "a", Level: 1, Children: []api.TreeNode{
			{ID: 2, Name: "b", Level: 2, Children: []api.TreeNode{
				{ID: 3, Name: "c", Level: 3, Children: []api.TreeNode{{ID: 4, Name: "d", Level: 4}}},
			}},
		}}},
		"duplicate id": {{ID: 1, Name: "a", Level: 1}, {ID: 1, Name: "b", Level: 1}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Build(items)
			assert.Error(t, err)
		})
	}
}

func TestPathAndAncestors(t *testing.T) {
	tree := seededTree(t)

	assert.Equal(t, []string{"Billing", "Fees", "Late fee"}, names(tree.Path(3)))
	assert.Empty(t, tree.Path(999))
	assert.True(t, tree.IsAncestor(1, 3))
	assert.True(t, tree.IsAncestor(3, 3))
	assert.False(t, tree.IsAncestor(6, 3))
}

func TestDescendantsPreOrder(t *testing.T) {
	tree := seededTree(t)
	assert.Equal(t, []string{"Fees", "Late fee", "Reconnection fee", "Refunds"}, names(tree.Descendants(1)))
	assert.Empty(t, tree.Descendants(3))
}

func TestWalkSkipsSubtree(t *testing.T) {
	tree := seededTree(t)
	var seen []string
	tree.Walk(func(n *Node) bool {
		seen = append(seen, n.Name)
		return n.ID != 1
	})
	assert.Equal(t, []string{"Billing", "Outages", "Planned", "Maintenance window"}, seen)
}

func TestNilTreeIsEmpty(t *testing.T) {
	var tree *Tree
	assert.Equal(t, 0, tree.Len())
	assert.Nil(t, tree.Roots())
	_, ok := tree.Node(1)
	assert.False(t, ok)
}
