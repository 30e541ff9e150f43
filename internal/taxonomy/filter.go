package taxonomy

import "strings"

// Filter returns the subtree of nodes whose name contains keyword, each with
// its full ancestor chain. Matching is a case-sensitive substring test on the
// trimmed keyword. An empty keyword returns t itself. t is never modified.
func Filter(t *Tree, keyword string) *Tree {
	k := strings.TrimSpace(keyword)
	if k == "" || t == nil {
		return t
	}

	out := NewTree()
	var keep func(id int, parent *Node) bool
	keep = func(id int, parent *Node) bool {
		src := t.nodes[id]
		n := &Node{ID: src.ID, Name: src.Name, Level: src.Level, ParentID: src.ParentID}

		kept := false
		for _, child := range src.Children {
			if keep(child, n) {
				kept = true
			}
		}
		if !kept && !strings.Contains(src.Name, k) {
			return false
		}

		out.nodes[n.ID] = n
		if parent != nil {
			parent.Children = append(parent.Children, n.ID)
		} else {
			out.roots = append(out.roots, n.ID)
		}
		return true
	}

	for _, id := range t.roots {
		keep(id, nil)
	}
	return out
}
