package listing

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sortStable(items []testItem, cmp func(a, b testItem) int) {
	slices.SortStableFunc(items, cmp)
}

func TestPaginator(t *testing.T) {
	t.Run("Should grow by min(size, remaining) until exhausted", func(t *testing.T) {
		for size := 1; size <= 6; size++ {
			for total := 0; total <= 13; total++ {
				p := NewPaginator(size)
				p.Reset(total)
				assert.Equal(t, min(size, total), p.Window())

				for p.Window() < total {
					before := p.Window()
					assert.True(t, p.LoadMore())
					assert.Equal(t, min(size, total-before), p.Window()-before)
				}
				assert.False(t, p.LoadMore())
				assert.Equal(t, total, p.Window())
			}
		}
	})

	t.Run("Should refuse to grow while busy", func(t *testing.T) {
		p := NewPaginator(2)
		p.Reset(10)
		p.SetBusy(true)
		assert.False(t, p.LoadMore())
		p.SetBusy(false)
		assert.True(t, p.LoadMore())
		assert.Equal(t, 2, p.Page())
	})

	t.Run("Should clamp the page when the total shrinks", func(t *testing.T) {
		p := NewPaginator(4)
		p.Reset(12)
		p.LoadMore()
		p.LoadMore()
		p.Resize(5)
		assert.Equal(t, 2, p.Page())
		assert.Equal(t, 5, p.Window())
	})

	t.Run("Should fall back to the default page size", func(t *testing.T) {
		assert.Equal(t, DefaultPageSize, NewPaginator(0).Size())
	})

	t.Run("Should signal near end within half a viewport", func(t *testing.T) {
		p := NewPaginator(10)
		p.Reset(30)
		assert.False(t, p.NearEnd(2, 6))
		assert.True(t, p.NearEnd(7, 6))
		assert.True(t, p.NearEnd(9, 1))
	})
}
