package review

import (
	"errors"
	"fmt"
	"sync"
)

// MaxBulk is the largest selection a bulk action accepts.
const MaxBulk = 100

var (
	// ErrBulkLimit is returned for a bulk selection larger than MaxBulk.
	ErrBulkLimit = fmt.Errorf("review: bulk actions accept at most %d items", MaxBulk)
	// ErrEmptySelection is returned for a bulk action with nothing selected.
	ErrEmptySelection = errors.New("review: nothing selected")
	// ErrBusy is returned for an action on an item that is already in flight.
	ErrBusy = errors.New("review: item already has a request in flight")
	// ErrNotFound is returned for an id that is not in the working set.
	ErrNotFound = errors.New("review: item not in the pending list")
)

// Queue is the working set of one review list: items in server order, the
// server-reported total, the operator's selection and the ids with a
// request in flight.
type Queue[T any] struct {
	idOf func(T) int

	mu       sync.Mutex
	items    []T
	total    int
	selected map[int]struct{}
	inFlight map[int]struct{}
	batch    bool
}

// NewQueue creates an empty queue. idOf extracts an item's id.
func NewQueue[T any](idOf func(T) int) *Queue[T] {
	return &Queue[T]{
		idOf:     idOf,
		selected: map[int]struct{}{},
		inFlight: map[int]struct{}{},
	}
}

// Replace swaps in a freshly fetched page and prunes the selection to ids
// still present.
func (q *Queue[T]) Replace(items []T, total int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]T(nil), items...)
	q.total = total
	q.prune()
}

// Items returns a copy of the items in server order.
func (q *Queue[T]) Items() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]T(nil), q.items...)
}

// Total returns the server-reported total, adjusted for local removals.
func (q *Queue[T]) Total() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.total
}

// Len returns the number of items held.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Get looks up an item by id.
func (q *Queue[T]) Get(id int) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.find(id)
}

// Toggle flips the selection of id and reports whether it is now selected.
// Unknown ids are never selected.
func (q *Queue[T]) Toggle(id int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.find(id); !ok {
		return false
	}
	if _, ok := q.selected[id]; ok {
		delete(q.selected, id)
		return false
	}
	q.selected[id] = struct{}{}
	return true
}

// SelectAll selects every item held.
func (q *Queue[T]) SelectAll() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range q.items {
		q.selected[q.idOf(it)] = struct{}{}
	}
}

// ClearSelection deselects everything.
func (q *Queue[T]) ClearSelection() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.selected)
}

// IsSelected reports whether id is selected.
func (q *Queue[T]) IsSelected(id int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.selected[id]
	return ok
}

// Selected returns the selected ids in server order.
func (q *Queue[T]) Selected() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selectedIDs()
}

// InFlight reports whether id has a request in flight.
func (q *Queue[T]) InFlight(id int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.inFlight[id]
	return ok
}

// Busy reports whether any request is in flight.
func (q *Queue[T]) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.batch || len(q.inFlight) > 0
}

// claim marks ids in flight, failing if any of them already is.
func (q *Queue[T]) claim(batch bool, ids ...int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if batch && q.batch {
		return ErrBusy
	}
	for _, id := range ids {
		if _, ok := q.inFlight[id]; ok {
			return fmt.Errorf("%w: %d", ErrBusy, id)
		}
	}
	for _, id := range ids {
		q.inFlight[id] = struct{}{}
	}
	q.batch = q.batch || batch
	return nil
}

func (q *Queue[T]) release(batch bool, ids ...int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, id := range ids {
		delete(q.inFlight, id)
	}
	if batch {
		q.batch = false
	}
}

// remove drops ids after the backend confirmed they left the pending state
// and lowers the total by count.
func (q *Queue[T]) remove(ids []int, count int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	gone := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	kept := q.items[:0]
	for _, it := range q.items {
		if _, ok := gone[q.idOf(it)]; !ok {
			kept = append(kept, it)
		}
	}
	q.items = kept
	q.total = max(q.total-count, 0)
	q.prune()
}

// bulkTargets snapshots the selection for a bulk action.
func (q *Queue[T]) bulkTargets() ([]T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := q.selectedIDs()
	switch {
	case len(ids) == 0:
		return nil, ErrEmptySelection
	case len(ids) > MaxBulk:
		return nil, fmt.Errorf("%w: %d selected", ErrBulkLimit, len(ids))
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		it, _ := q.find(id)
		out = append(out, it)
	}
	return out, nil
}

func (q *Queue[T]) find(id int) (T, bool) {
	for _, it := range q.items {
		if q.idOf(it) == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (q *Queue[T]) selectedIDs() []int {
	ids := make([]int, 0, len(q.selected))
	for _, it := range q.items {
		id := q.idOf(it)
		if _, ok := q.selected[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (q *Queue[T]) prune() {
	present := make(map[int]struct{}, len(q.items))
	for _, it := range q.items {
		present[q.idOf(it)] = struct{}{}
	}
	for id := range q.selected {
		if _, ok := present[id]; !ok {
			delete(q.selected, id)
		}
	}
}
