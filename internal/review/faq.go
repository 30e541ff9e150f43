package review

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/validate"
)

// FAQBackend is the subset of the REST client the FAQ workflow drives.
type FAQBackend interface {
	ListPendingFAQs(page, pageSize int, keyword string) (*api.PendingFAQPage, error)
	AcceptPendingFAQ(input api.CreateKnowledgeItemInput) (*api.CreatedKnowledgeItem, error)
	DiscardPendingFAQ(id int) error
	BulkCreateKnowledgeItems(items []api.CreateKnowledgeItemInput) (int, error)
	BulkDiscardPendingFAQs(ids []int) (int, error)
}

// FAQEdit overrides the suggested text on accept.
type FAQEdit struct {
	Question string `json:"question" validate:"notblank"`
	Answer   string `json:"answer" validate:"notblank"`
}

// FAQWorkflow moves pending FAQs into the knowledge store or discards them.
type FAQWorkflow struct {
	backend    FAQBackend
	scenarioID int
	log        zerolog.Logger
	queue      *Queue[api.PendingFAQ]

	mu       sync.Mutex
	page     int
	pageSize int
	keyword  string
}

// NewFAQWorkflow creates a workflow that accepts into scenarioID.
func NewFAQWorkflow(backend FAQBackend, scenarioID, pageSize int) *FAQWorkflow {
	return &FAQWorkflow{
		backend:    backend,
		scenarioID: scenarioID,
		log:        zerolog.Nop(),
		queue:      NewQueue(func(f api.PendingFAQ) int { return f.ID }),
		page:       1,
		pageSize:   pageSize,
	}
}

// SetLogger attaches a logger.
func (w *FAQWorkflow) SetLogger(log zerolog.Logger) {
	w.log = log.With().Str("queue", "faq").Logger()
}

// Queue exposes the working set.
func (w *FAQWorkflow) Queue() *Queue[api.PendingFAQ] {
	return w.queue
}

// ScenarioID returns the scenario accepted items are filed under.
func (w *FAQWorkflow) ScenarioID() int {
	return w.scenarioID
}

// Page returns the current page, page size and keyword.
func (w *FAQWorkflow) Page() (page, pageSize int, keyword string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page, w.pageSize, w.keyword
}

// SetPage moves to page (1-based). Call Load to fetch it.
func (w *FAQWorkflow) SetPage(page int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.page = max(page, 1)
}

// SetKeyword changes the search keyword and returns to the first page.
func (w *FAQWorkflow) SetKeyword(keyword string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keyword = strings.TrimSpace(keyword)
	w.page = 1
}

// Load fetches the current page.
func (w *FAQWorkflow) Load() error {
	page, size, keyword := w.Page()
	res, err := w.backend.ListPendingFAQs(page, size, keyword)
	if err != nil {
		return fmt.Errorf("load pending faqs: %w", err)
	}
	w.queue.Replace(res.Items, res.Total)
	w.log.Debug().Int("page", page).Int("items", len(res.Items)).Int("total", res.Total).Msg("pending faqs loaded")
	return nil
}

// Accept files the pending FAQ id as a knowledge item, with edit replacing
// the suggested text when given.
func (w *FAQWorkflow) Accept(id int, edit *FAQEdit) (*api.CreatedKnowledgeItem, error) {
	item, ok := w.queue.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	in := FAQEdit{Question: item.Question, Answer: item.Answer}
	if edit != nil {
		in = *edit
	}
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if err := w.queue.claim(false, id); err != nil {
		return nil, err
	}
	defer w.queue.release(false, id)

	created, err := w.backend.AcceptPendingFAQ(api.CreateKnowledgeItemInput{
		PendingFAQID: id,
		ScenarioID:   w.scenarioID,
		Question:     in.Question,
		Answer:       in.Answer,
	})
	if err != nil {
		return nil, fmt.Errorf("accept faq %d: %w", id, err)
	}
	w.queue.remove([]int{id}, 1)
	w.log.Info().Int("id", id).Int("knowledge_id", created.ID).Msg("faq accepted")
	return created, nil
}

// DiscardPrompt describes discarding the pending FAQ id.
func (w *FAQWorkflow) DiscardPrompt(id int) (confirm.Prompt, error) {
	item, ok := w.queue.Get(id)
	if !ok {
		return confirm.Prompt{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return confirm.Prompt{
		Title:   "Discard pending FAQ",
		Message: fmt.Sprintf("Discard %q? It will not be offered for review again.", item.Question),
		Action:  "discard",
		Count:   1,
	}, nil
}

// Discard drops the pending FAQ id after confirmation.
func (w *FAQWorkflow) Discard(id int, confirmer confirm.Confirmer) error {
	prompt, err := w.DiscardPrompt(id)
	if err != nil {
		return err
	}
	if w.queue.InFlight(id) {
		return fmt.Errorf("%w: %d", ErrBusy, id)
	}
	if err := confirm.Require(confirmer, prompt); err != nil {
		return err
	}

	if err := w.queue.claim(false, id); err != nil {
		return err
	}
	defer w.queue.release(false, id)

	if err := w.backend.DiscardPendingFAQ(id); err != nil {
		return fmt.Errorf("discard faq %d: %w", id, err)
	}
	w.queue.remove([]int{id}, 1)
	w.log.Info().Int("id", id).Msg("faq discarded")
	return nil
}

// BulkAccept accepts every selected FAQ with its suggested text. The
// backend applies the batch in one transaction and returns the count.
func (w *FAQWorkflow) BulkAccept(confirmer confirm.Confirmer) (int, error) {
	return w.bulk("accept", confirmer, func(items []api.PendingFAQ) (int, error) {
		inputs := make([]api.CreateKnowledgeItemInput, 0, len(items))
		for _, it := range items {
			inputs = append(inputs, api.CreateKnowledgeItemInput{
				PendingFAQID: it.ID,
				ScenarioID:   w.scenarioID,
				Question:     strings.TrimSpace(it.Question),
				Answer:       strings.TrimSpace(it.Answer),
			})
		}
		return w.backend.BulkCreateKnowledgeItems(inputs)
	})
}

// BulkDiscard discards every selected FAQ.
func (w *FAQWorkflow) BulkDiscard(confirmer confirm.Confirmer) (int, error) {
	return w.bulk("discard", confirmer, func(items []api.PendingFAQ) (int, error) {
		return w.backend.BulkDiscardPendingFAQs(ids(items))
	})
}

func (w *FAQWorkflow) bulk(action string, confirmer confirm.Confirmer, send func([]api.PendingFAQ) (int, error)) (int, error) {
	items, err := w.queue.bulkTargets()
	if err != nil {
		return 0, err
	}
	targets := ids(items)
	if err := w.queue.claim(true, targets...); err != nil {
		return 0, err
	}
	defer w.queue.release(true, targets...)

	if err := confirm.Require(confirmer, bulkPrompt(action, len(targets))); err != nil {
		return 0, err
	}

	count, err := send(items)
	if err != nil {
		return 0, fmt.Errorf("bulk %s: %w", action, err)
	}
	w.queue.remove(targets, count)
	w.log.Info().Str("action", action).Int("selected", len(targets)).Int("count", count).Msg("bulk review applied")
	return count, nil
}

// BulkPrompt describes a bulk accept or discard of the current selection.
// It fails the same way the bulk call would for an empty or oversized
// selection.
func (w *FAQWorkflow) BulkPrompt(action string) (confirm.Prompt, error) {
	items, err := w.queue.bulkTargets()
	if err != nil {
		return confirm.Prompt{}, err
	}
	return bulkPrompt(action, len(items)), nil
}

func bulkPrompt(action string, n int) confirm.Prompt {
	return confirm.Prompt{
		Title:   fmt.Sprintf("Bulk %s", action),
		Message: fmt.Sprintf("%s %d selected pending FAQ(s)?", capitalize(action), n),
		Action:  "bulk " + action,
		Count:   n,
	}
}

func ids(items []api.PendingFAQ) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
