package publish

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/validate"
)

// ErrBusy is returned for an action on an item that already has a request
// in flight, or a second sync while one runs.
var ErrBusy = errors.New("publish: request already in flight")

// Backend is the subset of the REST client the board drives.
type Backend interface {
	ListKnowledgeItems(q api.KnowledgeQuery) (*api.KnowledgePage, error)
	CountKnowledgeItems(status string) (int, error)
	UpdateKnowledgeItem(id int, input api.UpdateKnowledgeInput) (*api.KnowledgeItem, error)
	TriggerScenarioSync(scenarioID int) (*api.ScenarioSyncResult, error)
}

// Counts holds the per-status totals shown on the tab headers.
type Counts struct {
	Active   int
	Disabled int
}

// View is a snapshot of the board.
type View struct {
	Status   string
	Keyword  string
	Page     int
	PageSize int
	Items    []api.KnowledgeItem
	Total    int
	Counts   Counts
}

type toggleInput struct {
	Status string `json:"status" validate:"oneof=active disabled"`
}

type editInput struct {
	Question string `json:"question" validate:"notblank"`
	Answer   string `json:"answer" validate:"notblank"`
}

// Board lists knowledge items by status and flips them between active and
// disabled. Every change is followed by a reload of the list and counters.
type Board struct {
	backend Backend
	log     zerolog.Logger

	mu       sync.Mutex
	status   string
	keyword  string
	page     int
	pageSize int
	items    []api.KnowledgeItem
	total    int
	counts   Counts
	inFlight map[int]struct{}
	syncing  bool
}

// NewBoard creates a board showing active items.
func NewBoard(backend Backend, pageSize int) *Board {
	return &Board{
		backend:  backend,
		log:      zerolog.Nop(),
		status:   api.StatusActive,
		page:     1,
		pageSize: pageSize,
		inFlight: map[int]struct{}{},
	}
}

// SetLogger attaches a logger.
func (b *Board) SetLogger(log zerolog.Logger) {
	b.log = log.With().Str("component", "publish").Logger()
}

// View returns a copy of the current state.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return View{
		Status:   b.status,
		Keyword:  b.keyword,
		Page:     b.page,
		PageSize: b.pageSize,
		Items:    append([]api.KnowledgeItem(nil), b.items...),
		Total:    b.total,
		Counts:   b.counts,
	}
}

// SetStatusTab switches between the active and disabled lists and returns
// to the first page.
func (b *Board) SetStatusTab(status string) error {
	if err := validate.Struct(toggleInput{Status: status}); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
	b.page = 1
	return nil
}

// SetKeyword changes the search keyword and returns to the first page.
func (b *Board) SetKeyword(keyword string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keyword = strings.TrimSpace(keyword)
	b.page = 1
}

// SetPage moves to page (1-based).
func (b *Board) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = max(page, 1)
}

// Load fetches the current page and both counters concurrently.
func (b *Board) Load() error {
	b.mu.Lock()
	q := api.KnowledgeQuery{Status: b.status, Page: b.page, PageSize: b.pageSize, Keyword: b.keyword}
	b.mu.Unlock()

	var (
		g      errgroup.Group
		page   *api.KnowledgePage
		counts Counts
	)
	g.Go(func() error {
		var err error
		page, err = b.backend.ListKnowledgeItems(q)
		return err
	})
	g.Go(func() error {
		var err error
		counts.Active, err = b.backend.CountKnowledgeItems(api.StatusActive)
		return err
	})
	g.Go(func() error {
		var err error
		counts.Disabled, err = b.backend.CountKnowledgeItems(api.StatusDisabled)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load knowledge items: %w", err)
	}

	b.mu.Lock()
	b.items = page.Items
	b.total = page.Total
	b.counts = counts
	b.mu.Unlock()
	b.log.Debug().Str("status", q.Status).Int("items", len(page.Items)).Int("total", page.Total).Msg("knowledge loaded")
	return nil
}

// TogglePrompt describes the status change Toggle performs.
func TogglePrompt(id int, target string) confirm.Prompt {
	verb := "Enable"
	detail := "It becomes visible to the downstream knowledge base on the next sync."
	if target == api.StatusDisabled {
		verb = "Disable"
		detail = "It is withdrawn from the downstream knowledge base on the next sync."
	}
	return confirm.Prompt{
		Title:   verb + " knowledge item",
		Message: fmt.Sprintf("%s item %d? %s", verb, id, detail),
		Action:  strings.ToLower(verb),
		Count:   1,
	}
}

// Toggle moves item id to target status after confirmation, then reloads.
// Only the status is sent.
func (b *Board) Toggle(id int, target string, confirmer confirm.Confirmer) error {
	if err := validate.Struct(toggleInput{Status: target}); err != nil {
		return err
	}
	if b.InFlight(id) {
		return fmt.Errorf("%w: %d", ErrBusy, id)
	}
	if err := confirm.Require(confirmer, TogglePrompt(id, target)); err != nil {
		return err
	}
	if err := b.claim(id); err != nil {
		return err
	}
	defer b.release(id)

	if _, err := b.backend.UpdateKnowledgeItem(id, api.UpdateKnowledgeInput{Status: &target}); err != nil {
		return fmt.Errorf("set item %d %s: %w", id, target, err)
	}
	b.log.Info().Int("id", id).Str("status", target).Msg("knowledge status changed")
	return b.Load()
}

// Edit replaces the question and answer of item id, then reloads.
func (b *Board) Edit(id int, question, answer string) error {
	in := editInput{Question: strings.TrimSpace(question), Answer: strings.TrimSpace(answer)}
	if err := validate.Struct(in); err != nil {
		return err
	}
	if err := b.claim(id); err != nil {
		return err
	}
	defer b.release(id)

	if _, err := b.backend.UpdateKnowledgeItem(id, api.UpdateKnowledgeInput{Question: &in.Question, Answer: &in.Answer}); err != nil {
		return fmt.Errorf("edit item %d: %w", id, err)
	}
	b.log.Info().Int("id", id).Msg("knowledge item edited")
	return b.Load()
}

// SyncPrompt describes the push Sync performs.
func SyncPrompt(scenarioID, active int) confirm.Prompt {
	return confirm.Prompt{
		Title: "Sync knowledge base",
		Message: fmt.Sprintf(
			"Push all %d active item(s) of scenario %d to the downstream knowledge base? This can take several minutes.",
			active, scenarioID,
		),
		Action: "sync",
		Count:  active,
	}
}

// Sync pushes every active item of scenarioID downstream. A timeout is
// reported as is and never retried.
func (b *Board) Sync(scenarioID int, confirmer confirm.Confirmer) (*api.ScenarioSyncResult, error) {
	b.mu.Lock()
	active := b.counts.Active
	b.mu.Unlock()
	if err := confirm.Require(confirmer, SyncPrompt(scenarioID, active)); err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.syncing {
		b.mu.Unlock()
		return nil, ErrBusy
	}
	b.syncing = true
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.syncing = false
		b.mu.Unlock()
	}()

	res, err := b.backend.TriggerScenarioSync(scenarioID)
	if err != nil {
		if api.IsTimeout(err) {
			b.log.Warn().Int("scenario", scenarioID).Msg("knowledge sync timed out")
		}
		return nil, fmt.Errorf("sync scenario %d: %w", scenarioID, err)
	}
	b.log.Info().Int("scenario", scenarioID).Int("items", res.Items).Str("status", res.Status).Msg("knowledge synced")
	return res, nil
}

// Syncing reports whether a sync is running.
func (b *Board) Syncing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.syncing
}

// InFlight reports whether item id has a request in flight.
func (b *Board) InFlight(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.inFlight[id]
	return ok
}

func (b *Board) claim(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.inFlight[id]; ok {
		return fmt.Errorf("%w: %d", ErrBusy, id)
	}
	b.inFlight[id] = struct{}{}
	return nil
}

func (b *Board) release(id int) {
	b.mu.Lock()
	delete(b.inFlight, id)
	b.mu.Unlock()
}
