package review

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/scope"
	"github.com/gravitrone/kbconsole/internal/validate"
)

// TaxonomyBackend is the subset of the REST client the taxonomy suggestion
// workflow drives.
type TaxonomyBackend interface {
	ListPendingTaxonomy(scope string) ([]api.TaxonomyReviewItem, error)
	AcceptTaxonomyItem(id int, input api.AcceptTaxonomyInput) (*api.MessageResponse, error)
	DiscardTaxonomyItem(scope string, id int) (*api.MessageResponse, error)
}

// TaxonomyEdit is what gets written when a suggestion is accepted.
type TaxonomyEdit struct {
	L3Name     string   `json:"l3Name" validate:"notblank"`
	Definition string   `json:"definition" validate:"notblank"`
	Cases      []string `json:"cases" validate:"min=1,dive,notblank"`
}

// TaxonomyWorkflow reviews machine-suggested taxonomy entries of one scope.
type TaxonomyWorkflow struct {
	backend    TaxonomyBackend
	scope      scope.Scope
	log        zerolog.Logger
	queue      *Queue[api.TaxonomyReviewItem]
	onAccepted func() error
}

// NewTaxonomyWorkflow creates a workflow for one scope.
func NewTaxonomyWorkflow(backend TaxonomyBackend, s scope.Scope) *TaxonomyWorkflow {
	return &TaxonomyWorkflow{
		backend: backend,
		scope:   s,
		log:     zerolog.Nop(),
		queue:   NewQueue(func(it api.TaxonomyReviewItem) int { return it.ID }),
	}
}

// SetLogger attaches a logger.
func (w *TaxonomyWorkflow) SetLogger(log zerolog.Logger) {
	w.log = log.With().Str("queue", "taxonomy").Str("scope", w.scope.String()).Logger()
}

// OnAccepted registers a hook run after a suggestion lands in the tree.
func (w *TaxonomyWorkflow) OnAccepted(fn func() error) {
	w.onAccepted = fn
}

// Queue exposes the working set.
func (w *TaxonomyWorkflow) Queue() *Queue[api.TaxonomyReviewItem] {
	return w.queue
}

// Scope returns the workflow's scope.
func (w *TaxonomyWorkflow) Scope() scope.Scope {
	return w.scope
}

// Load fetches every pending suggestion of the scope.
func (w *TaxonomyWorkflow) Load() error {
	items, err := w.backend.ListPendingTaxonomy(w.scope.String())
	if err != nil {
		return fmt.Errorf("load pending taxonomy: %w", err)
	}
	w.queue.Replace(items, len(items))
	w.log.Debug().Int("items", len(items)).Msg("pending taxonomy loaded")
	return nil
}

// Suggested returns the edit an accept without overrides would send.
func Suggested(item api.TaxonomyReviewItem) TaxonomyEdit {
	edit := TaxonomyEdit{Definition: item.Definition}
	if n := len(item.Path); n > 0 {
		edit.L3Name = item.Path[n-1].Name
	}
	for _, c := range item.Cases {
		edit.Cases = append(edit.Cases, c.Content)
	}
	return edit
}

// Accept writes suggestion id into the tree, with edit replacing the
// suggested leaf name, definition and cases when given.
func (w *TaxonomyWorkflow) Accept(id int, edit *TaxonomyEdit) error {
	item, ok := w.queue.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	in := Suggested(item)
	if edit != nil {
		in = *edit
	}
	in.L3Name = strings.TrimSpace(in.L3Name)
	in.Definition = strings.TrimSpace(in.Definition)
	cases := make([]string, 0, len(in.Cases))
	for _, c := range in.Cases {
		cases = append(cases, strings.TrimSpace(c))
	}
	in.Cases = cases
	if err := validate.Struct(in); err != nil {
		return err
	}

	if err := w.queue.claim(false, id); err != nil {
		return err
	}
	defer w.queue.release(false, id)

	_, err := w.backend.AcceptTaxonomyItem(id, api.AcceptTaxonomyInput{
		Scope:      w.scope.String(),
		L3Name:     in.L3Name,
		Definition: in.Definition,
		Cases:      in.Cases,
	})
	if err != nil {
		return fmt.Errorf("accept suggestion %d: %w", id, err)
	}
	w.queue.remove([]int{id}, 1)
	w.log.Info().Int("id", id).Str("l3", in.L3Name).Int("cases", len(in.Cases)).Msg("suggestion accepted")
	if w.onAccepted != nil {
		if err := w.onAccepted(); err != nil {
			return fmt.Errorf("reload after accept: %w", err)
		}
	}
	return nil
}

// DiscardPrompt describes discarding the suggestion id.
func (w *TaxonomyWorkflow) DiscardPrompt(id int) (confirm.Prompt, error) {
	item, ok := w.queue.Get(id)
	if !ok {
		return confirm.Prompt{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return confirm.Prompt{
		Title:   "Discard suggestion",
		Message: fmt.Sprintf("Discard the suggested category %s?", PathLabel(item)),
		Action:  "discard",
		Count:   1,
	}, nil
}

// Discard drops suggestion id after confirmation.
func (w *TaxonomyWorkflow) Discard(id int, confirmer confirm.Confirmer) error {
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

	if _, err := w.backend.DiscardTaxonomyItem(w.scope.String(), id); err != nil {
		return fmt.Errorf("discard suggestion %d: %w", id, err)
	}
	w.queue.remove([]int{id}, 1)
	w.log.Info().Int("id", id).Msg("suggestion discarded")
	return nil
}

// PathLabel joins a suggestion's path as "L1 / L2 / L3".
func PathLabel(item api.TaxonomyReviewItem) string {
	parts := make([]string, 0, len(item.Path))
	for _, seg := range item.Path {
		parts = append(parts, seg.Name)
	}
	return strings.Join(parts, " / ")
}
