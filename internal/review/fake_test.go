package review

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gravitrone/kbconsole/internal/api"
)

var errServer = &api.Error{Method: http.MethodPost, Path: "/bulk", StatusCode: http.StatusInternalServerError, Message: "boom"}

type fakeFAQs struct {
	mu        sync.Mutex
	pending   []api.PendingFAQ
	total     int
	accepted  []api.CreateKnowledgeItemInput
	discarded []int
	bulkSizes []int
	fail      error
	entered   chan struct{}
	release   chan struct{}
}

func newFakeFAQs(n int) *fakeFAQs {
	f := &fakeFAQs{}
	for i := 1; i <= n; i++ {
		f.pending = append(f.pending, api.PendingFAQ{
			ID:       i,
			Question: fmt.Sprintf("question %d", i),
			Answer:   fmt.Sprintf("answer %d", i),
		})
	}
	f.total = n
	return f
}

func (f *fakeFAQs) block() {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
}

func (f *fakeFAQs) ListPendingFAQs(page, pageSize int, _ string) (*api.PendingFAQPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	start := min((page-1)*pageSize, len(f.pending))
	end := min(start+pageSize, len(f.pending))
	return &api.PendingFAQPage{
		Total:    f.total,
		Page:     page,
		PageSize: pageSize,
		Items:    append([]api.PendingFAQ(nil), f.pending[start:end]...),
	}, nil
}

func (f *fakeFAQs) AcceptPendingFAQ(in api.CreateKnowledgeItemInput) (*api.CreatedKnowledgeItem, error) {
	f.block()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.accepted = append(f.accepted, in)
	f.drop(in.PendingFAQID)
	return &api.CreatedKnowledgeItem{ID: 1000 + in.PendingFAQID, Status: api.StatusActive}, nil
}

func (f *fakeFAQs) DiscardPendingFAQ(id int) error {
	f.block()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.discarded = append(f.discarded, id)
	f.drop(id)
	return nil
}

func (f *fakeFAQs) BulkCreateKnowledgeItems(items []api.CreateKnowledgeItemInput) (int, error) {
	f.block()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkSizes = append(f.bulkSizes, len(items))
	if f.fail != nil {
		return 0, f.fail
	}
	for _, in := range items {
		f.accepted = append(f.accepted, in)
		f.drop(in.PendingFAQID)
	}
	return len(items), nil
}

func (f *fakeFAQs) BulkDiscardPendingFAQs(ids []int) (int, error) {
	f.block()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkSizes = append(f.bulkSizes, len(ids))
	if f.fail != nil {
		return 0, f.fail
	}
	for _, id := range ids {
		f.discarded = append(f.discarded, id)
		f.drop(id)
	}
	return len(ids), nil
}

func (f *fakeFAQs) drop(id int) {
	for i, p := range f.pending {
		if p.ID == id {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			f.total--
			return
		}
	}
}

type fakeSuggestions struct {
	items     []api.TaxonomyReviewItem
	accepted  map[int]api.AcceptTaxonomyInput
	discarded []int
	scopes    []string
}

func newFakeSuggestions() *fakeSuggestions {
	return &fakeSuggestions{
		accepted: map[int]api.AcceptTaxonomyInput{},
		items: []api.TaxonomyReviewItem{
			{
				ID:        11,
				ScopeCode: "water",
				Path: []api.ReviewPathSegment{
					{Level: 1, Name: "Billing"}, {Level: 2, Name: "Fees"}, {Level: 3, Name: "Meter fee"},
				},
				Definition: "Charged per meter",
				Cases:      []api.ReviewCase{{ID: 1, Content: "two meters billed"}},
			},
			{
				ID:        12,
				ScopeCode: "water",
				Path: []api.ReviewPathSegment{
					{Level: 1, Name: "Outages"}, {Level: 2, Name: "Unplanned"}, {Level: 3, Name: "Burst pipe"},
				},
				Definition: "Main burst",
			},
		},
	}
}

func (f *fakeSuggestions) ListPendingTaxonomy(s string) ([]api.TaxonomyReviewItem, error) {
	f.scopes = append(f.scopes, s)
	return append([]api.TaxonomyReviewItem(nil), f.items...), nil
}

func (f *fakeSuggestions) AcceptTaxonomyItem(id int, in api.AcceptTaxonomyInput) (*api.MessageResponse, error) {
	if !f.remove(id) {
		return nil, errors.New("not pending")
	}
	f.accepted[id] = in
	return &api.MessageResponse{Message: "accepted"}, nil
}

func (f *fakeSuggestions) DiscardTaxonomyItem(s string, id int) (*api.MessageResponse, error) {
	f.scopes = append(f.scopes, s)
	if !f.remove(id) {
		return nil, errors.New("not pending")
	}
	f.discarded = append(f.discarded, id)
	return &api.MessageResponse{Message: "discarded"}, nil
}

func (f *fakeSuggestions) remove(id int) bool {
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	return false
}
