package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnma/vaxtui/internal/domain"
)

type testItem struct {
	ID   int64
	Name string
	Kind string
	Date domain.Date
}

func (i testItem) GetID() int64     { return i.ID }
func (i testItem) GetTitle() string { return i.Name }

func itemName(i testItem) string      { return i.Name }
func itemKind(i testItem) string      { return i.Kind }
func itemDate(i testItem) domain.Date { return i.Date }

// fakeRemote is an in-memory collection endpoint
type fakeRemote struct {
	mu    sync.Mutex
	items []testItem
	calls int
	err   error
}

func (r *fakeRemote) fetch(context.Context) ([]testItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return append([]testItem(nil), r.items...), nil
}

func (r *fakeRemote) delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, it := range r.items {
		if it.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return
		}
	}
}

func lettersAJ() []testItem {
	// deliberately out of order; the controller sorts
	names := []string{"J", "c", "A", "h", "E", "B", "g", "D", "I", "F"}
	items := make([]testItem, len(names))
	for i, n := range names {
		items[i] = testItem{ID: int64(i + 1), Name: n}
	}
	return items
}

func newTestController(remote *fakeRemote, pageSize int) *Controller[testItem] {
	return New(Config[testItem]{
		Name:     "test",
		Fetch:    remote.fetch,
		Compare:  ByText(itemName),
		Search:   func(i testItem) []string { return []string{i.Name, i.Kind} },
		PageSize: pageSize,
		Logger:   nil,
	})
}

func names(items []testItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestController_Scenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("Should grow the window one page at a time until exhausted", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 4)
		require.NoError(t, c.Fetch(ctx))

		assert.Equal(t, []string{"A", "B", "c", "D"}, names(c.Displayed()))
		assert.True(t, c.LoadMore())
		assert.Equal(t, []string{"A", "B", "c", "D", "E", "F", "g", "h"}, names(c.Displayed()))
		assert.True(t, c.LoadMore())
		assert.Len(t, c.Displayed(), 10)
		assert.False(t, c.LoadMore())
		assert.Len(t, c.Displayed(), 10)
	})

	t.Run("Should show every match when fewer than a page remain", func(t *testing.T) {
		items := lettersAJ()
		for _, i := range []int{1, 4, 7} {
			items[i].Kind = "X"
		}
		c := newTestController(&fakeRemote{items: items}, 4)
		require.NoError(t, c.Fetch(ctx))

		c.SetPredicate(Equals("kind", itemKind, "X"))
		assert.Len(t, c.Filtered(), 3)
		assert.Len(t, c.Displayed(), 3)
		assert.False(t, c.LoadMore())
	})

	t.Run("Should refetch after a successful delete", func(t *testing.T) {
		remote := &fakeRemote{items: lettersAJ()}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))
		_, ok := c.Find(5)
		require.True(t, ok)

		err := c.Mutate(ctx, Mutation[testItem]{
			Name: "delete",
			Do: func(context.Context) error {
				remote.delete(5)
				return nil
			},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, remote.calls)
		for _, set := range [][]testItem{c.Full(), c.Filtered(), c.Displayed()} {
			for _, it := range set {
				assert.NotEqual(t, int64(5), it.ID)
			}
		}
		assert.Len(t, c.Full(), 9)
	})

	t.Run("Should block a create with an empty required field", func(t *testing.T) {
		remote := &fakeRemote{items: lettersAJ()}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))
		before := c.Full()

		sent := false
		err := c.Mutate(ctx, Mutation[testItem]{
			Name:  "create site",
			Input: domain.SiteInput{Name: "", Address: "1 Main St", Phone: "0900000000"},
			Do: func(context.Context) error {
				sent = true
				return nil
			},
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Name is required", err.Error())
		assert.False(t, sent)
		assert.Equal(t, 1, remote.calls)
		assert.Equal(t, before, c.Full())
	})

	t.Run("Should reject month 13 and keep the filtered collection", func(t *testing.T) {
		items := lettersAJ()
		for i := range items {
			items[i].Date = domain.NewDate(2024, time.Month(i%3+1), 10)
		}
		c := newTestController(&fakeRemote{items: items}, 4)
		require.NoError(t, c.Fetch(ctx))
		good, err := MonthYear("month", itemDate, 1, 2024, time.Now())
		require.NoError(t, err)
		c.SetPredicate(good)
		prior := c.Filtered()

		_, err = MonthYear("month", itemDate, 13, 2024, time.Now())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, prior, c.Filtered())
	})
}

func TestController_Fetch(t *testing.T) {
	ctx := context.Background()

	t.Run("Should empty every collection on failure", func(t *testing.T) {
		remote := &fakeRemote{items: lettersAJ()}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))

		remote.err = domain.ErrNetwork
		err := c.Fetch(ctx)
		require.ErrorIs(t, err, domain.ErrNetwork)

		assert.Equal(t, StateError, c.State())
		assert.ErrorIs(t, c.Err(), domain.ErrNetwork)
		assert.Empty(t, c.Full())
		assert.Empty(t, c.Filtered())
		assert.Empty(t, c.Displayed())
		assert.False(t, c.LoadMore())
	})

	t.Run("Should recover on the next successful fetch", func(t *testing.T) {
		remote := &fakeRemote{err: domain.ErrServer}
		c := newTestController(remote, 4)
		require.Error(t, c.Fetch(ctx))

		remote.err = nil
		remote.items = lettersAJ()
		require.NoError(t, c.Fetch(ctx))
		assert.Equal(t, StateReady, c.State())
		assert.NoError(t, c.Err())
		assert.Len(t, c.Displayed(), 4)
	})

	t.Run("Should be idempotent across repeated fetches", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 3)
		c.SetSearch("a")
		require.NoError(t, c.Fetch(ctx))
		full, filtered, displayed := c.Full(), c.Filtered(), c.Displayed()

		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, full, c.Full())
		assert.Equal(t, filtered, c.Filtered())
		assert.Equal(t, displayed, c.Displayed())
	})

	t.Run("Should keep search and predicates across refresh and reset the page", func(t *testing.T) {
		items := lettersAJ()
		for i := range items {
			items[i].Kind = "X"
		}
		c := newTestController(&fakeRemote{items: items}, 2)
		require.NoError(t, c.Fetch(ctx))
		c.SetPredicate(Equals("kind", itemKind, "x"))
		c.LoadMore()
		require.Len(t, c.Displayed(), 4)

		require.NoError(t, c.Refresh(ctx))
		assert.Len(t, c.Predicates(), 1)
		assert.Len(t, c.Displayed(), 2)
	})

	t.Run("Should drop duplicate ids keeping the first", func(t *testing.T) {
		remote := &fakeRemote{items: []testItem{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}, {ID: 2, Name: "c"}}}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))
		assert.Equal(t, []string{"a", "c"}, names(c.Full()))
	})

	t.Run("Should refuse to load more while a fetch is in flight", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		first := true
		c := New(Config[testItem]{
			Name: "slow",
			Fetch: func(context.Context) ([]testItem, error) {
				if first {
					first = false
					return lettersAJ(), nil
				}
				close(started)
				<-release
				return lettersAJ(), nil
			},
			Compare:  ByText(itemName),
			PageSize: 4,
		})
		require.NoError(t, c.Fetch(ctx))

		done := make(chan error)
		go func() { done <- c.Refresh(ctx) }()
		<-started
		assert.Equal(t, StateLoading, c.State())
		assert.False(t, c.LoadMore())
		close(release)
		require.NoError(t, <-done)
		assert.True(t, c.LoadMore())
	})
}

func TestController_Filtering(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reset the window to one page on any filter change", func(t *testing.T) {
		for size := 1; size <= 5; size++ {
			c := newTestController(&fakeRemote{items: lettersAJ()}, size)
			require.NoError(t, c.Fetch(ctx))
			for c.LoadMore() {
			}

			c.SetSearch("e")
			assert.Len(t, c.Displayed(), min(size, len(c.Filtered())))

			for c.LoadMore() {
			}
			c.SetPredicate(Equals("kind", itemKind, ""))
			assert.Len(t, c.Displayed(), min(size, len(c.Filtered())))

			c.ClearFilters()
			assert.Len(t, c.Displayed(), min(size, 10))
		}
	})

	t.Run("Should replace a predicate with the same name", func(t *testing.T) {
		items := lettersAJ()
		items[0].Kind = "X"
		items[1].Kind = "Y"
		c := newTestController(&fakeRemote{items: items}, 10)
		require.NoError(t, c.Fetch(ctx))

		c.SetPredicate(Equals("kind", itemKind, "X"))
		c.SetPredicate(Equals("kind", itemKind, "Y"))
		require.Len(t, c.Predicates(), 1)
		assert.Equal(t, []string{"c"}, names(c.Filtered()))

		c.ClearPredicate("kind")
		assert.Empty(t, c.Predicates())
		assert.Len(t, c.Filtered(), 10)
	})

	t.Run("Should keep the page when patching a single item", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 4)
		require.NoError(t, c.Fetch(ctx))
		c.LoadMore()

		item, ok := c.Find(3)
		require.True(t, ok)
		item.Kind = "patched"
		require.True(t, c.Patch(item))

		assert.Len(t, c.Displayed(), 8)
		got, _ := c.Find(3)
		assert.Equal(t, "patched", got.Kind)
		assert.False(t, c.Patch(testItem{ID: 99}))
	})
}

func TestController_Mutate(t *testing.T) {
	ctx := context.Background()

	t.Run("Should surface a remote rejection without refetching", func(t *testing.T) {
		remote := &fakeRemote{items: lettersAJ()}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))

		rejected := &domain.APIError{Status: 400, Message: "Name already exists", Kind: domain.ErrValidation}
		err := c.Mutate(ctx, Mutation[testItem]{
			Name: "create",
			Do:   func(context.Context) error { return rejected },
		})
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "Name already exists", domain.UserMessage(err, "fallback"))
		assert.Equal(t, 1, remote.calls)
		assert.Len(t, c.Full(), 10)
	})

	t.Run("Should run the extra check before sending", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 4)
		require.NoError(t, c.Fetch(ctx))

		err := c.Mutate(ctx, Mutation[testItem]{
			Name:  "inoculate",
			Check: func() error { return domain.Invalid("is_inoculated", "Confirm the appointment first") },
			Do: func(context.Context) error {
				t.Fatal("request must not be sent")
				return nil
			},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Should patch instead of refetching when Apply is used", func(t *testing.T) {
		remote := &fakeRemote{items: lettersAJ()}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))

		err := c.Mutate(ctx, Mutation[testItem]{
			Name: "toggle",
			Apply: func(context.Context) (testItem, error) {
				return testItem{ID: 1, Name: "J", Kind: "on"}, nil
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, remote.calls)
		got, _ := c.Find(1)
		assert.Equal(t, "on", got.Kind)
	})

	t.Run("Should report a network failure", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 4)
		require.NoError(t, c.Fetch(ctx))
		err := c.Mutate(ctx, Mutation[testItem]{
			Name: "delete",
			Do:   func(context.Context) error { return &domain.APIError{Kind: domain.ErrNetwork} },
		})
		require.True(t, errors.Is(err, domain.ErrNetwork))
		assert.Contains(t, domain.UserMessage(err, ""), "Cannot reach the server")
		assert.NotErrorIs(t, err, ErrStale)
	})

	t.Run("Should tell a failed refresh apart from a failed write", func(t *testing.T) {
		remote := &fakeRemote{items: lettersAJ()}
		c := newTestController(remote, 4)
		require.NoError(t, c.Fetch(ctx))

		written := false
		err := c.Mutate(ctx, Mutation[testItem]{
			Name: "create account",
			Do: func(context.Context) error {
				written = true
				remote.mu.Lock()
				remote.err = &domain.APIError{Kind: domain.ErrNetwork}
				remote.mu.Unlock()
				return nil
			},
		})
		require.Error(t, err)
		assert.True(t, written)
		assert.ErrorIs(t, err, ErrStale)
		assert.ErrorIs(t, err, domain.ErrNetwork)
		assert.Contains(t, err.Error(), "create account succeeded")
	})
}

func TestController_SetCompare(t *testing.T) {
	t.Run("Should re-sort and return to the first page", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 4)
		require.NoError(t, c.Fetch(context.Background()))
		c.LoadMore()

		c.SetCompare(Desc(ByText(itemName)))
		assert.Equal(t, []string{"J", "I", "h", "g"}, names(c.Displayed()))
		assert.Equal(t, "J", c.Full()[0].Name)
	})
}

func TestController_Patch(t *testing.T) {
	t.Run("Should replace in place without re-sorting", func(t *testing.T) {
		c := newTestController(&fakeRemote{items: lettersAJ()}, 4)
		require.NoError(t, c.Fetch(context.Background()))
		c.LoadMore()

		require.True(t, c.Patch(testItem{ID: 3, Name: "A", Kind: "done"}))
		assert.Equal(t, "done", c.Full()[0].Kind)
		assert.Len(t, c.Displayed(), 8)

		assert.False(t, c.Patch(testItem{ID: 99, Name: "Z"}))
	})
}
