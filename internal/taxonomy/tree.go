package taxonomy

import (
	"fmt"

	"github.com/gravitrone/kbconsole/internal/api"
)

// MaxLevel is the depth of every taxonomy tree.
const MaxLevel = 3

// Node is one classification entry. Links are ids into the owning Tree.
type Node struct {
	ID       int
	Name     string
	Level    int
	ParentID int // 0 for level-1 nodes
	Children []int
}

// IsLeaf reports whether the node sits at the level that owns cases.
func (n *Node) IsLeaf() bool {
	return n.Level == MaxLevel
}

// Tree is an id-indexed arena of taxonomy nodes for one scope.
type Tree struct {
	nodes map[int]*Node
	roots []int
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: map[int]*Node{}}
}

// Build flattens the nested wire payload into an arena, keeping sibling
// order. It rejects trees that break the level rules.
func Build(items []api.TreeNode) (*Tree, error) {
	t := NewTree()
	for _, item := range items {
		if err := t.add(item, nil); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) add(item api.TreeNode, parent *Node) error {
	if _, dup := t.nodes[item.ID]; dup {
		return fmt.Errorf("tree: duplicate node id %d", item.ID)
	}
	if item.Level < 1 || item.Level > MaxLevel {
		return fmt.Errorf("tree: node %d has level %d, want 1..%d", item.ID, item.Level, MaxLevel)
	}

	n := &Node{ID: item.ID, Name: item.Name, Level: item.Level}
	if parent == nil {
		if item.Level != 1 {
			return fmt.Errorf("tree: root node %d has level %d", item.ID, item.Level)
		}
		t.roots = append(t.roots, n.ID)
	} else {
		if item.Level != parent.Level+1 {
			return fmt.Errorf("tree: node %d has level %d under level-%d parent %d", item.ID, item.Level, parent.Level, parent.ID)
		}
		n.ParentID = parent.ID
		parent.Children = append(parent.Children, n.ID)
	}
	t.nodes[n.ID] = n

	for _, child := range item.Children {
		if err := t.add(child, n); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Node looks up a node by id.
func (t *Tree) Node(id int) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.nodes[id]
	return n, ok
}

// Roots returns the level-1 nodes in order.
func (t *Tree) Roots() []*Node {
	if t == nil {
		return nil
	}
	return t.resolve(t.roots)
}

// Children returns a node's direct children in order.
func (t *Tree) Children(id int) []*Node {
	n, ok := t.Node(id)
	if !ok {
		return nil
	}
	return t.resolve(n.Children)
}

// Parent returns a node's parent, if any.
func (t *Tree) Parent(id int) (*Node, bool) {
	n, ok := t.Node(id)
	if !ok || n.ParentID == 0 {
		return nil, false
	}
	return t.Node(n.ParentID)
}

// Path returns the chain from the root down to id, inclusive.
func (t *Tree) Path(id int) []*Node {
	var rev []*Node
	for n, ok := t.Node(id); ok; n, ok = t.Parent(n.ID) {
		rev = append(rev, n)
	}
	out := make([]*Node, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

// IsAncestor reports whether ancestor lies on the path to id (or is id).
func (t *Tree) IsAncestor(ancestor, id int) bool {
	for n, ok := t.Node(id); ok; n, ok = t.Parent(n.ID) {
		if n.ID == ancestor {
			return true
		}
	}
	return false
}

// Descendants returns every node below id in pre-order.
func (t *Tree) Descendants(id int) []*Node {
	var out []*Node
	for _, child := range t.Children(id) {
		out = append(out, child)
		out = append(out, t.Descendants(child.ID)...)
	}
	return out
}

// Walk visits nodes in pre-order. Returning
// false from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	var visit func(ids []int)
	visit = func(ids []int) {
		for _, id := range ids {
			n := t.nodes[id]
			if fn(n) {
				visit(n.Children)
			}
		}
	}
	if t != nil {
		visit(t.roots)
	}
}

func (t *Tree) resolve(ids []int) []*Node {
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.nodes[id])
	}
	return out
}
