package taxonomy

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/validate"
)

// ErrBusy is returned when a request is issued while another one on the
// same controller is still in flight.
var ErrBusy = errors.New("taxonomy: another request is in flight")

// ErrNoSelection is returned by case operations when no node is selected.
var ErrNoSelection = errors.New("taxonomy: no node selected")

// Backend is the subset of the REST client the controller drives.
type Backend interface {
	GetTree(scope string) ([]api.TreeNode, error)
	GetNode(scope string, id int) (*api.NodeDetail, error)
	ListCases(scope string, nodeID int, keyword string) ([]api.Case, error)
	CreateNode(input api.CreateNodeInput) (*api.NodeDetail, error)
	UpdateNode(id int, input api.UpdateNodeInput) (*api.NodeDetail, error)
	DeleteNode(scope string, id int) error
	CreateCase(input api.CreateCaseInput) (*api.Case, error)
	UpdateCase(id int, input api.UpdateCaseInput) (*api.Case, error)
	DeleteCase(scope string, id int) error
}

// Change is delivered to subscribers after every successful reload.
type Change struct {
	Scope    scope.Scope
	Tree     *Tree
	Selected int
}

// Selection is the selected node with its detail and case list.
type Selection struct {
	Node    *Node
	Detail  *api.NodeDetail
	Cases   []api.Case
	Keyword string
}

type nodeInput struct {
	Name  string `json:"name" validate:"notblank"`
	Level int    `json:"level" validate:"min=1,max=3"`
}

type caseInput struct {
	Content string `json:"content" validate:"notblank"`
}

// Controller owns the taxonomy view of one scope. Every mutation goes to the
// backend first and is followed by a full re-fetch.
type Controller struct {
	backend Backend
	scope   scope.Scope
	log     zerolog.Logger

	mu          sync.Mutex
	tree        *Tree
	selected    int
	detail      *api.NodeDetail
	cases       []api.Case
	caseKeyword string
	busy        bool
	subs        []func(Change)
}

// NewController creates a controller for one scope. Call Reload to fetch.
func NewController(backend Backend, s scope.Scope) *Controller {
	return &Controller{
		backend: backend,
		scope:   s,
		log:     zerolog.Nop(),
		tree:    NewTree(),
	}
}

// SetLogger attaches a logger.
func (c *Controller) SetLogger(log zerolog.Logger) {
	c.log = log.With().Str("scope", c.scope.String()).Logger()
}

// Scope returns the controller's scope.
func (c *Controller) Scope() scope.Scope {
	return c.scope
}

// Subscribe registers fn to run after every successful reload.
func (c *Controller) Subscribe(fn func(Change)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Tree returns the last fetched tree.
func (c *Controller) Tree() *Tree {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tree
}

// Busy reports whether a request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Selection returns the selected node, or nil.
func (c *Controller) Selection() *Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == 0 {
		return nil
	}
	n, ok := c.tree.Node(c.selected)
	if !ok {
		return nil
	}
	cases := make([]api.Case, len(c.cases))
	copy(cases, c.cases)
	return &Selection{Node: n, Detail: c.detail, Cases: cases, Keyword: c.caseKeyword}
}

// Reload re-fetches the tree and, if a node is selected, its detail and
// cases. A selection whose node no longer exists is cleared.
func (c *Controller) Reload() error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()
	return c.refresh()
}

// Select makes id the selected node and loads its detail and cases.
func (c *Controller) Select(id int) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if _, ok := c.Tree().Node(id); !ok {
		return validate.Fail("id", "node %d is not in the %s tree", id, c.scope)
	}
	c.mu.Lock()
	c.selected = id
	c.caseKeyword = ""
	c.mu.Unlock()
	return c.loadSelection()
}

// ClearSelection drops the selected node.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSelectionLocked()
}

// SetCaseKeyword filters the selected node's cases server-side.
func (c *Controller) SetCaseKeyword(keyword string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	c.mu.Lock()
	if c.selected == 0 {
		c.mu.Unlock()
		return ErrNoSelection
	}
	c.caseKeyword = strings.TrimSpace(keyword)
	c.mu.Unlock()
	return c.loadSelection()
}

// CreateNode adds a node. parentID is nil for level 1 and must name a node
// one level shallower otherwise. definition is required at level 3 only.
func (c *Controller) CreateNode(parentID *int, level int, name, definition string) (*api.NodeDetail, error) {
	if err := validate.Struct(nodeInput{Name: name, Level: level}); err != nil {
		return nil, err
	}
	if err := checkDefinition(level, definition); err != nil {
		return nil, err
	}
	if err := c.checkParent(parentID, level); err != nil {
		return nil, err
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	input := api.CreateNodeInput{
		Scope:    c.scope.String(),
		ParentID: parentID,
		Level:    level,
		Name:     strings.TrimSpace(name),
	}
	if level == MaxLevel {
		def := strings.TrimSpace(definition)
		input.Definition = &def
	}
	created, err := c.backend.CreateNode(input)
	if err != nil {
		return nil, fmt.Errorf("create node: %w", err)
	}
	c.log.Info().Int("node_id", created.ID).Int("level", level).Msg("node created")
	return created, c.refresh()
}

// UpdateNode renames a node and, at level 3, replaces its definition.
// Level and parent never change.
func (c *Controller) UpdateNode(id int, name, definition string) (*api.NodeDetail, error) {
	node, ok := c.Tree().Node(id)
	if !ok {
		return nil, validate.Fail("id", "node %d is not in the %s tree", id, c.scope)
	}
	if err := validate.Struct(nodeInput{Name: name, Level: node.Level}); err != nil {
		return nil, err
	}
	if err := checkDefinition(node.Level, definition); err != nil {
		return nil, err
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	trimmed := strings.TrimSpace(name)
	input := api.UpdateNodeInput{Scope: c.scope.String(), Name: &trimmed}
	if node.IsLeaf() {
		def := strings.TrimSpace(definition)
		input.Definition = &def
	}
	updated, err := c.backend.UpdateNode(id, input)
	if err != nil {
		return nil, fmt.Errorf("update node: %w", err)
	}
	c.log.Info().Int("node_id", id).Msg("node updated")
	return updated, c.refresh()
}

// DeletePrompt describes what deleting id removes.
func (c *Controller) DeletePrompt(id int) (confirm.Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.tree.Node(id)
	if !ok {
		return confirm.Prompt{}, validate.Fail("id", "node %d is not in the %s tree", id, c.scope)
	}
	p := confirm.Prompt{Title: "Delete " + node.Name, Action: "delete node"}
	if node.IsLeaf() {
		if c.selected == id {
			p.Count = len(c.cases)
			p.Unit = "Cases removed"
			p.Message = fmt.Sprintf("Deletes %q and its %d case(s).", node.Name, p.Count)
		} else {
			p.Message = fmt.Sprintf("Deletes %q and all of its cases.", node.Name)
		}
		return p, nil
	}
	p.Count = len(c.tree.Descendants(id))
	p.Unit = "Nodes removed"
	p.Message = fmt.Sprintf("Deletes %q and its subtree of %d node(s), including every case below it.", node.Name, p.Count)
	return p, nil
}

// DeleteNode removes a node with its subtree and cases after confirmation.
// If the selection was inside the removed subtree it is cleared.
func (c *Controller) DeleteNode(id int, confirmer confirm.Confirmer) error {
	prompt, err := c.DeletePrompt(id)
	if err != nil {
		return err
	}
	if err := confirm.Require(confirmer, prompt); err != nil {
		return err
	}

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.DeleteNode(c.scope.String(), id); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	c.mu.Lock()
	if c.selected != 0 && c.tree.IsAncestor(id, c.selected) {
		c.clearSelectionLocked()
	}
	c.mu.Unlock()
	c.log.Info().Int("node_id", id).Int("removed_below", prompt.Count).Msg("node deleted")
	return c.refresh()
}

// CreateCase adds a case to the selected level-3 node.
func (c *Controller) CreateCase(content string) (*api.Case, error) {
	nodeID, err := c.selectedLeaf()
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(caseInput{Content: content}); err != nil {
		return nil, err
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	created, err := c.backend.CreateCase(api.CreateCaseInput{
		Scope:   c.scope.String(),
		NodeID:  nodeID,
		Content: strings.TrimSpace(content),
	})
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	c.log.Info().Int("node_id", nodeID).Int("case_id", created.ID).Msg("case created")
	return created, c.refresh()
}

// UpdateCase replaces the content of a case of the selected node.
func (c *Controller) UpdateCase(caseID int, content string) (*api.Case, error) {
	if err := c.checkCase(caseID); err != nil {
		return nil, err
	}
	if err := validate.Struct(caseInput{Content: content}); err != nil {
		return nil, err
	}

	if err := c.begin(); err != nil {
		return nil, err
	}
	defer c.end()

	updated, err := c.backend.UpdateCase(caseID, api.UpdateCaseInput{
		Scope:   c.scope.String(),
		Content: strings.TrimSpace(content),
	})
	if err != nil {
		return nil, fmt.Errorf("update case: %w", err)
	}
	c.log.Info().Int("case_id", caseID).Msg("case updated")
	return updated, c.refresh()
}

// DeleteCase removes a case of the selected node after confirmation.
func (c *Controller) DeleteCase(caseID int, confirmer confirm.Confirmer) error {
	if err := c.checkCase(caseID); err != nil {
		return err
	}
	prompt := confirm.Prompt{
		Title:   "Delete case",
		Message: fmt.Sprintf("Deletes case #%d.", caseID),
		Action:  "delete case",
		Count:   1,
	}
	if err := confirm.Require(confirmer, prompt); err != nil {
		return err
	}

	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.DeleteCase(c.scope.String(), caseID); err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	c.log.Info().Int("case_id", caseID).Msg("case deleted")
	return c.refresh()
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

func (c *Controller) refresh() error {
	items, err := c.backend.GetTree(c.scope.String())
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	tree, err := Build(items)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tree = tree
	if _, ok := tree.Node(c.selected); !ok {
		c.clearSelectionLocked()
	}
	selected := c.selected
	c.mu.Unlock()

	if selected != 0 {
		if err := c.loadSelection(); err != nil {
			return err
		}
	}
	c.log.Debug().Int("nodes", tree.Len()).Msg("tree loaded")
	c.notify()
	return nil
}

func (c *Controller) loadSelection() error {
	c.mu.Lock()
	id, keyword := c.selected, c.caseKeyword
	c.mu.Unlock()

	detail, err := c.backend.GetNode(c.scope.String(), id)
	if err != nil {
		return fmt.Errorf("load node %d: %w", id, err)
	}
	var cases []api.Case
	if detail.Level == MaxLevel {
		cases, err = c.backend.ListCases(c.scope.String(), id, keyword)
		if err != nil {
			return fmt.Errorf("load cases of node %d: %w", id, err)
		}
	}

	c.mu.Lock()
	if c.selected == id {
		c.detail = detail
		c.cases = cases
	}
	c.mu.Unlock()
	return nil
}

func (c *Controller) notify() {
	c.mu.Lock()
	change := Change{Scope: c.scope, Tree: c.tree, Selected: c.selected}
	subs := append([]func(Change){}, c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(change)
	}
}

func (c *Controller) clearSelectionLocked() {
	c.selected = 0
	c.detail = nil
	c.cases = nil
	c.caseKeyword = ""
}

func (c *Controller) checkParent(parentID *int, level int) error {
	if level == 1 {
		if parentID != nil {
			return validate.Fail("parentId", "must be empty for level-1 nodes")
		}
		return nil
	}
	if parentID == nil {
		return validate.Fail("parentId", "is required for level-%d nodes", level)
	}
	parent, ok := c.Tree().Node(*parentID)
	if !ok {
		return validate.Fail("parentId", "node %d is not in the %s tree", *parentID, c.scope)
	}
	if parent.Level != level-1 {
		return validate.Fail("parentId", "must be a level-%d node, got level %d", level-1, parent.Level)
	}
	return nil
}

func checkDefinition(level int, definition string) error {
	blank := strings.TrimSpace(definition) == ""
	if level == MaxLevel && blank {
		return validate.Fail("definition", "is required for level-3 nodes")
	}
	if level != MaxLevel && !blank {
		return validate.Fail("definition", "is only allowed on level-3 nodes")
	}
	return nil
}

func (c *Controller) selectedLeaf() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == 0 {
		return 0, ErrNoSelection
	}
	node, ok := c.tree.Node(c.selected)
	if !ok {
		return 0, ErrNoSelection
	}
	if !node.IsLeaf() {
		return 0, validate.Fail("nodeId", "cases belong to level-3 nodes, %q is level %d", node.Name, node.Level)
	}
	return node.ID, nil
}

func (c *Controller) checkCase(caseID int) error {
	if _, err := c.selectedLeaf(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cs := range c.cases {
		if cs.ID == caseID {
			return nil
		}
	}
	return validate.Fail("caseId", "case %d does not belong to the selected node", caseID)
}
