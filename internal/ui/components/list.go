package components

// List is a paged cursor over row keys. Tabs key rows by item id and keep
// the item data themselves in the same order.
type List struct {
	PageSize int

	keys   []string
	cursor int
	offset int
}

// NewList creates an empty list showing pageSize rows at a time.
func NewList(pageSize int) *List {
	return &List{PageSize: max(pageSize, 1)}
}

// Len is the number of rows.
func (l *List) Len() int {
	return len(l.keys)
}

// Down moves the cursor one row down, scrolling when it leaves the page.
func (l *List) Down() {
	l.MoveTo(l.cursor + 1)
}

// Up moves the cursor one row up.
func (l *List) Up() {
	if l.cursor > 0 {
		l.MoveTo(l.cursor - 1)
	}
}

// Visible returns the keys on the current page.
func (l *List) Visible() []string {
	if len(l.keys) == 0 {
		return nil
	}
	return l.keys[l.offset:min(l.offset+l.PageSize, len(l.keys))]
}

// Selected is the absolute index of the cursor row.
func (l *List) Selected() int {
	return l.cursor
}

// IsSelected reports whether abs is the cursor row.
func (l *List) IsSelected(abs int) bool {
	return abs == l.cursor
}

// RelToAbs turns an index into Visible() into an absolute index.
func (l *List) RelToAbs(rel int) int {
	return l.offset + rel
}

// Refresh swaps in the rows of a reload. The cursor follows its row's key
// when that row survived; otherwise it stays on the same index, clamped, so
// removing the cursor row lands on the next one.
func (l *List) Refresh(keys []string) {
	current := ""
	if l.cursor < len(l.keys) {
		current = l.keys[l.cursor]
	}
	l.keys = keys
	for i, k := range keys {
		if current != "" && k == current {
			l.MoveTo(i)
			return
		}
	}
	l.MoveTo(l.cursor)
}

// MoveTo puts the cursor on idx, clamped to the rows, and scrolls the page
// so it is visible.
func (l *List) MoveTo(idx int) {
	l.cursor = max(min(idx, len(l.keys)-1), 0)
	switch {
	case l.cursor < l.offset:
		l.offset = l.cursor
	case l.cursor >= l.offset+l.PageSize:
		l.offset = l.cursor - l.PageSize + 1
	}
	// no blank tail when rows were removed from the last page
	l.offset = max(min(l.offset, len(l.keys)-l.PageSize), 0)
}
