package pagination

import "sync"

// Summary describes the page a Pager currently shows.
type Summary struct {
	CurrentPage int `json:"current_page"` // 1-based
	TotalPages  int `json:"total_pages"`
	Showing     int `json:"showing"`
	TotalItems  int `json:"total_items"`
}

// Pager partitions a list into fixed-size pages and remembers which page is
// shown. The list is only replaced when a caller asks for it, so the cursor
// survives re-entering the same view.
//
// The cursor is clamped to [0, max(1, TotalPages)-1] on every read and write.
type Pager[T any] struct {
	mu       sync.RWMutex
	items    []T
	pageSize int
	cursor   int
}

// NewPager creates a pager with the given page size. Non-positive sizes fall
// back to DefaultPageSize.
func NewPager[T any](pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager[T]{pageSize: pageSize}
}

// SetItems replaces the list with items minus those matched by exclude and
// resets the cursor, unless preserve is set and the pager already holds a
// non-empty list, in which case nothing changes. Reports whether the list was
// replaced.
func (p *Pager[T]) SetItems(items []T, preserve bool, exclude func(T) bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if preserve && len(p.items) > 0 {
		return false
	}

	filtered := make([]T, 0, len(items))
	for _, it := range items {
		if exclude != nil && exclude(it) {
			continue
		}
		filtered = append(filtered, it)
	}
	p.items = filtered
	p.cursor = 0
	return true
}

// PageSize returns the fixed page size.
func (p *Pager[T]) PageSize() int {
	return p.pageSize
}

// Len returns the number of items in the list.
func (p *Pager[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// TotalPages returns ceil(Len / PageSize).
func (p *Pager[T]) TotalPages() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return TotalPages(len(p.items), p.pageSize)
}

// Page returns the zero-based cursor.
func (p *Pager[T]) Page() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clampedLocked()
}

// CurrentPage returns a copy of the items on the current page.
func (p *Pager[T]) CurrentPage() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pageLocked()
}

// Next moves to the following page. It returns false, leaving the cursor
// untouched, when already on the last page.
func (p *Pager[T]) Next() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.clampedLocked()
	if cur >= TotalPages(len(p.items), p.pageSize)-1 {
		p.cursor = cur
		return false
	}
	p.cursor = cur + 1
	return true
}

// Prev moves to the preceding page. It returns false on the first page.
func (p *Pager[T]) Prev() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur := p.clampedLocked()
	if cur <= 0 {
		p.cursor = 0
		return false
	}
	p.cursor = cur - 1
	return true
}

// HasNext reports whether Next would move.
func (p *Pager[T]) HasNext() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clampedLocked() < TotalPages(len(p.items), p.pageSize)-1
}

// HasPrev reports whether Prev would move.
func (p *Pager[T]) HasPrev() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.clampedLocked() > 0
}

// SetPage jumps to the given zero-based page, clamped to the valid range, and
// returns the page actually selected.
func (p *Pager[T]) SetPage(page int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cursor = page
	p.cursor = p.clampedLocked()
	return p.cursor
}

// Summary returns the derived page information without mutating anything.
func (p *Pager[T]) Summary() Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Summary{
		CurrentPage: p.clampedLocked() + 1,
		TotalPages:  TotalPages(len(p.items), p.pageSize),
		Showing:     len(p.pageLocked()),
		TotalItems:  len(p.items),
	}
}

// Result renders the current page in the shared Result envelope.
func (p *Pager[T]) Result() Result[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cur := p.clampedLocked()
	return newResult(p.pageLocked(), len(p.items), Params{Page: cur + 1, PerPage: p.pageSize})
}

func (p *Pager[T]) clampedLocked() int {
	last := TotalPages(len(p.items), p.pageSize) - 1
	if last < 0 {
		last = 0
	}
	switch {
	case p.cursor < 0:
		return 0
	case p.cursor > last:
		return last
	default:
		return p.cursor
	}
}

func (p *Pager[T]) pageLocked() []T {
	cur := p.clampedLocked()
	page := window(p.items, cur*p.pageSize, p.pageSize)
	return append(make([]T, 0, len(page)), page...)
}
