package taxonomy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gravitrone/kbconsole/internal/api"
)

type fakeNode struct {
	id     int
	name   string
	level  int
	parent int
	def    string
}

// fakeBackend is an in-memory taxonomy store with the server's cascade rules.
type fakeBackend struct {
	mu     sync.Mutex
	nextID int
	nodes  map[int]*fakeNode
	cases  map[int]api.Case
	calls  []string

	// entered and release let a test hold GetTree mid-flight.
	entered chan struct{}
	release chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100, nodes: map[int]*fakeNode{}, cases: map[int]api.Case{}}
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) seedNode(id, parent, level int, name, def string) {
	f.nodes[id] = &fakeNode{id: id, name: name, level: level, parent: parent, def: def}
}

func (f *fakeBackend) seedCase(id, nodeID int, content string) {
	f.cases[id] = api.Case{ID: id, NodeID: nodeID, Content: content}
}

func (f *fakeBackend) casesOf(nodeID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.cases {
		if c.NodeID == nodeID {
			n++
		}
	}
	return n
}

func (f *fakeBackend) sortedIDs() []int {
	ids := make([]int, 0, len(f.nodes))
	for id := range f.nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (f *fakeBackend) subtree(parent int) []api.TreeNode {
	out := []api.TreeNode{}
	for _, id := range f.sortedIDs() {
		n := f.nodes[id]
		if n.parent != parent {
			continue
		}
		tn := api.TreeNode{ID: n.id, Name: n.name, Level: n.level, Children: f.subtree(n.id)}
		if n.parent != 0 {
			p := n.parent
			tn.ParentID = &p
		}
		out = append(out, tn)
	}
	return out
}

func (f *fakeBackend) GetTree(scope string) ([]api.TreeNode, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTree")
	return f.subtree(0), nil
}

func (f *fakeBackend) GetNode(scope string, id int) (*api.NodeDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("GetNode %d", id))
	n, ok := f.nodes[id]
	if !ok {
		return nil, &api.Error{StatusCode: 404, Message: "Node not found"}
	}
	d := &api.NodeDetail{ID: n.id, ScopeCode: scope, Level: n.level, Name: n.name}
	if n.level == MaxLevel {
		def := n.def
		d.Definition = &def
	}
	for cur := n; cur != nil; cur = f.nodes[cur.parent] {
		d.Path = append([]api.PathSegment{{ID: cur.id, Name: cur.name, Level: cur.level}}, d.Path...)
	}
	return d, nil
}

func (f *fakeBackend) ListCases(scope string, nodeID int, keyword string) ([]api.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("ListCases %d %q", nodeID, keyword))
	out := []api.Case{}
	ids := make([]int, 0, len(f.cases))
	for id := range f.cases {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c := f.cases[id]
		if c.NodeID == nodeID && strings.Contains(c.Content, keyword) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateNode(input api.CreateNodeInput) (*api.NodeDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateNode")
	f.nextID++
	n := &fakeNode{id: f.nextID, name: input.Name, level: input.Level}
	if input.ParentID != nil {
		n.parent = *input.ParentID
	}
	if input.Definition != nil {
		n.def = *input.Definition
	}
	f.nodes[n.id] = n
	return &api.NodeDetail{ID: n.id, Level: n.level, Name: n.name}, nil
}

func (f *fakeBackend) UpdateNode(id int, input api.UpdateNodeInput) (*api.NodeDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("UpdateNode %d", id))
	n := f.nodes[id]
	if input.Name != nil {
		n.name = *input.Name
	}
	if input.Definition != nil {
		n.def = *input.Definition
	}
	return &api.NodeDetail{ID: n.id, Level: n.level, Name: n.name}, nil
}

func (f *fakeBackend) DeleteNode(scope string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("DeleteNode %d", id))
	f.deleteLocked(id)
	return nil
}

func (f *fakeBackend) deleteLocked(id int) {
	for _, child := range f.sortedIDs() {
		if f.nodes[child] != nil && f.nodes[child].parent == id {
			f.deleteLocked(child)
		}
	}
	for cid, c := range f.cases {
		if c.NodeID == id {
			delete(f.cases, cid)
		}
	}
	delete(f.nodes, id)
}

func (f *fakeBackend) CreateCase(input api.CreateCaseInput) (*api.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateCase")
	f.nextID++
	c := api.Case{ID: f.nextID, NodeID: input.NodeID, Content: input.Content}
	f.cases[c.ID] = c
	return &c, nil
}

func (f *fakeBackend) UpdateCase(id int, input api.UpdateCaseInput) (*api.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("UpdateCase %d", id))
	c := f.cases[id]
	c.Content = input.Content
	f.cases[id] = c
	return &c, nil
}

func (f *fakeBackend) DeleteCase(scope string, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("DeleteCase %d", id))
	delete(f.cases, id)
	return nil
}

// seededBackend builds:
//
//	1 Billing
//	  2 Fees
//	    3 Late fee (cases 31, 32)
//	    4 Reconnection fee (case 41)
//	  5 Refunds
//	6 Outages
//	  7 Planned
//	    8 Maintenance window
func seededBackend() *fakeBackend {
	f := newFakeBackend()
	f.seedNode(1, 0, 1, "Billing", "")
	f.seedNode(2, 1, 2, "Fees", "")
	f.seedNode(3, 2, 3, "Late fee", "Charged after due date")
	f.seedNode(4, 2, 3, "Reconnection fee", "Charged to restore supply")
	f.seedNode(5, 1, 2, "Refunds", "")
	f.seedNode(6, 0, 1, "Outages", "")
	f.seedNode(7, 6, 2, "Planned", "")
	f.seedNode(8, 7, 3, "Maintenance window", "Announced works")
	f.seedCase(31, 3, "paid two days late")
	f.seedCase(32, 3, "late fee waived?")
	f.seedCase(41, 4, "supply cut after arrears")
	return f
}
