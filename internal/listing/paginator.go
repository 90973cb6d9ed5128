package listing

// DefaultPageSize is used when a screen does not choose its own
const DefaultPageSize = 10

// Paginator tracks the displayed window over a filtered collection.
// The window is always the first Window() items, so it can never have gaps.
type Paginator struct {
	page  int
	size  int
	total int
	busy  bool
}

// NewPaginator creates a paginator with a fixed page size
func NewPaginator(size int) *Paginator {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Paginator{page: 1, size: size}
}

// Reset returns to the first page over a collection of total items
func (p *Paginator) Reset(total int) {
	p.page = 1
	p.total = total
}

// Resize keeps the current page but clamps the window to a new total
func (p *Paginator) Resize(total int) {
	p.total = total
	for p.page > 1 && (p.page-1)*p.size >= total {
		p.page--
	}
}

// SetBusy marks a fetch as in flight; LoadMore is refused while busy
func (p *Paginator) SetBusy(busy bool) {
	p.busy = busy
}

// LoadMore grows the window by one page. It reports false, and changes
// nothing, when the window already covers everything or a load is in flight.
func (p *Paginator) LoadMore() bool {
	if p.busy || !p.HasMore() {
		return false
	}
	p.page++
	return true
}

// HasMore reports whether items exist past the window
func (p *Paginator) HasMore() bool {
	return p.page*p.size < p.total
}

// Window returns the number of displayed items
func (p *Paginator) Window() int {
	return min(p.page*p.size, p.total)
}

func (p *Paginator) Page() int { return p.page }
func (p *Paginator) Size() int { return p.size }

// NearEnd reports whether the cursor is within half a viewport of the last
// displayed item, which is when the next page should be requested.
func (p *Paginator) NearEnd(cursor, viewport int) bool {
	threshold := max(viewport/2, 1)
	return cursor >= p.Window()-threshold
}
