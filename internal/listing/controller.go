package listing

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/vnma/vaxtui/internal/domain"
)

// State is where a list screen is in its fetch cycle
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config describes one list screen's data source and shape
type Config[T domain.Item] struct {
	// Name identifies the list in logs
	Name string

	// Fetch retrieves the full collection
	Fetch func(ctx context.Context) ([]T, error)

	// Compare is the fixed sort applied right after every fetch
	Compare func(a, b T) int

	// Search returns the fields matched by search text
	Search func(T) []string

	PageSize int
	Logger   *slog.Logger
}

// Controller owns one screen's full, filtered and displayed collections.
// Every method is safe to call from bubbletea command goroutines.
type Controller[T domain.Item] struct {
	cfg    Config[T]
	logger *slog.Logger

	mu         sync.RWMutex
	full       []T
	filtered   []T
	search     string
	predicates []Predicate[T]
	pager      *Paginator
	state      State
	err        error
	inflight   int
}

// New creates an idle controller; call Fetch to populate it
func New[T domain.Item](cfg Config[T]) *Controller[T] {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		cfg:    cfg,
		logger: logger.With("list", cfg.Name),
		pager:  NewPaginator(cfg.PageSize),
	}
}

// Fetch replaces the full collection from the remote source and resets the
// window to the first page. On failure every collection is emptied. Overlapping
// fetches are not deduplicated; whichever finishes last wins.
func (c *Controller[T]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.inflight++
	c.state = StateLoading
	c.pager.SetBusy(true)
	c.mu.Unlock()

	items, err := c.cfg.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.inflight--
	c.pager.SetBusy(c.inflight > 0)

	if err != nil {
		c.logger.Error("failed to fetch list", "error", err)
		c.full = nil
		c.filtered = nil
		c.pager.Reset(0)
		c.state = StateError
		c.err = err
		return err
	}

	full := uniqueByID(items)
	if dropped := len(items) - len(full); dropped > 0 {
		c.logger.Warn("dropped items with duplicate ids", "count", dropped)
	}
	if c.cfg.Compare != nil {
		slices.SortStableFunc(full, c.cfg.Compare)
	}

	c.full = full
	c.err = nil
	c.state = StateReady
	c.recompute()
	c.logger.Debug("fetched list", "items", len(full), "filtered", len(c.filtered))
	return nil
}

// Refresh re-runs the fetch, keeping search text and predicates
func (c *Controller[T]) Refresh(ctx context.Context) error {
	return c.Fetch(ctx)
}

// SetCompare replaces the sort order, re-sorts the full collection and
// resets to the first page
func (c *Controller[T]) SetCompare(compare func(a, b T) int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Compare = compare
	if compare != nil {
		slices.SortStableFunc(c.full, compare)
	}
	c.recompute()
}

// SetSearch changes the search text and resets to the first page
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = text
	c.recompute()
}

// SetPredicate activates p, replacing any predicate with the same name
func (c *Controller[T]) SetPredicate(p Predicate[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.predicates, func(q Predicate[T]) bool { return q.Name == p.Name })
	switch {
	case p.Match == nil && idx >= 0:
		c.predicates = slices.Delete(c.predicates, idx, idx+1)
	case p.Match == nil:
	case idx >= 0:
		c.predicates[idx] = p
	default:
		c.predicates = append(c.predicates, p)
	}
	c.recompute()
}

// ClearPredicate deactivates the named predicate
func (c *Controller[T]) ClearPredicate(name string) {
	c.SetPredicate(Predicate[T]{Name: name})
}

// ClearFilters drops the search text and every predicate
func (c *Controller[T]) ClearFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = ""
	c.predicates = nil
	c.recompute()
}

// LoadMore grows the displayed window by one page. It reports whether the
// window changed.
func (c *Controller[T]) LoadMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.LoadMore()
}

// MaybeLoadMore loads the next page when the cursor is near the window end
func (c *Controller[T]) MaybeLoadMore(cursor, viewport int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pager.NearEnd(cursor, viewport) {
		return false
	}
	return c.pager.LoadMore()
}

// Patch replaces the item sharing item's ID with item, re-filters, and keeps
// the current page. It reports false if no such item exists. The full
// collection is not re-sorted, so item must not change its sort key.
func (c *Controller[T]) Patch(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.full, func(x T) bool { return x.GetID() == item.GetID() })
	if idx < 0 {
		return false
	}
	c.full[idx] = item
	c.filtered = Apply(c.full, c.query())
	c.pager.Resize(len(c.filtered))
	return true
}

// recompute re-derives the filtered collection and resets the window.
// Callers hold c.mu.
func (c *Controller[T]) recompute() {
	c.filtered = Apply(c.full, c.query())
	c.pager.Reset(len(c.filtered))
}

func (c *Controller[T]) query() Query[T] {
	return Query[T]{
		Search:     c.search,
		Fields:     c.cfg.Search,
		Predicates: c.predicates,
	}
}

// Displayed returns a copy of the visible window
func (c *Controller[T]) Displayed() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.filtered[:c.pager.Window()])
}

// Filtered returns a copy of the filtered collection
func (c *Controller[T]) Filtered() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.filtered)
}

// Full returns a copy of the full collection
func (c *Controller[T]) Full() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.full)
}

// Find looks an item up in the full collection by ID
func (c *Controller[T]) Find(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := slices.IndexFunc(c.full, func(x T) bool { return x.GetID() == id })
	if idx < 0 {
		var zero T
		return zero, false
	}
	return c.full[idx], true
}

// Counts returns the displayed, filtered and full lengths
func (c *Controller[T]) Counts() (displayed, filtered, full int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pager.Window(), len(c.filtered), len(c.full)
}

func (c *Controller[T]) HasMore() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pager.HasMore()
}

func (c *Controller[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Err returns the error from the last failed fetch, if the last fetch failed
func (c *Controller[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Controller[T]) Search() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.search
}

// Predicates returns the active predicates in the order they were set
func (c *Controller[T]) Predicates() []Predicate[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.predicates)
}

func uniqueByID[T domain.Item](items []T) []T {
	seen := make(map[int64]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.GetID()]; dup {
			continue
		}
		seen[item.GetID()] = struct{}{}
		out = append(out, item)
	}
	return out
}
