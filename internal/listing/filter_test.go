package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnma/vaxtui/internal/domain"
)

func isSubsequence(sub, full []testItem) bool {
	i := 0
	for _, it := range full {
		if i < len(sub) && sub[i].ID == it.ID {
			i++
		}
	}
	return i == len(sub)
}

func TestApply(t *testing.T) {
	fields := func(i testItem) []string { return []string{i.Name, i.Kind} }
	items := []testItem{
		{ID: 1, Name: "Vắc xin Viêm Gan B", Kind: "Hepatitis", Date: domain.NewDate(2024, 1, 5)},
		{ID: 2, Name: "Influvac", Kind: "Influenza", Date: domain.NewDate(2024, 2, 9)},
		{ID: 3, Name: "Comirnaty", Kind: "COVID-19", Date: domain.NewDate(2023, 1, 20)},
		{ID: 4, Name: "Vaxigrip", Kind: "Influenza", Date: domain.NewDate(2024, 1, 30)},
		{ID: 5, Name: "Engerix-B", Kind: "Hepatitis"},
	}

	t.Run("Should return everything for an empty query", func(t *testing.T) {
		assert.Equal(t, items, Apply(items, Query[testItem]{}))
		assert.Equal(t, items, Apply(items, Query[testItem]{Search: "   ", Fields: fields}))
	})

	t.Run("Should match search text case-insensitively across fields", func(t *testing.T) {
		got := Apply(items, Query[testItem]{Search: "INFLU", Fields: fields})
		assert.Equal(t, []int64{2, 4}, ids(got))

		got = Apply(items, Query[testItem]{Search: "viêm gan", Fields: fields})
		assert.Equal(t, []int64{1}, ids(got))

		got = Apply(items, Query[testItem]{Search: "hepatitis", Fields: fields})
		assert.Equal(t, []int64{1, 5}, ids(got))
	})

	t.Run("Should AND predicates with each other and with search", func(t *testing.T) {
		byMonth, err := MonthYear("date", itemDate, 1, 2024, time.Now())
		require.NoError(t, err)
		got := Apply(items, Query[testItem]{
			Search:     "v",
			Fields:     fields,
			Predicates: []Predicate[testItem]{Equals("kind", itemKind, "influenza"), byMonth},
		})
		assert.Equal(t, []int64{4}, ids(got))
	})

	t.Run("Should treat an unset predicate as a wildcard", func(t *testing.T) {
		got := Apply(items, Query[testItem]{Predicates: []Predicate[testItem]{Equals("kind", itemKind, "")}})
		assert.Equal(t, items, got)

		anyDate, err := MonthYear("date", itemDate, 0, 0, time.Now())
		require.NoError(t, err)
		assert.Nil(t, anyDate.Match)
	})

	t.Run("Should preserve relative order for every predicate", func(t *testing.T) {
		preds := []Predicate[testItem]{
			Equals("kind", itemKind, "Influenza"),
			Equals("kind", itemKind, "Hepatitis"),
			OnOrAfter("from", "", itemDate, domain.NewDate(2024, 1, 1)),
			Before("before", "", itemDate, domain.NewDate(2024, 1, 31)),
			Flag("named", "", func(i testItem) bool { return len(i.Name) > 8 }, true),
		}
		for _, p := range preds {
			got := Apply(items, Query[testItem]{Predicates: []Predicate[testItem]{p}})
			assert.True(t, isSubsequence(got, items), p.Name)
		}
	})

	t.Run("Should filter by date range with open bounds", func(t *testing.T) {
		from := domain.NewDate(2024, 1, 5)
		to := domain.NewDate(2024, 2, 9)
		got := Apply(items, Query[testItem]{Predicates: []Predicate[testItem]{DateRange("d", "", itemDate, from, to)}})
		assert.Equal(t, []int64{1, 4}, ids(got))

		got = Apply(items, Query[testItem]{Predicates: []Predicate[testItem]{Before("d", "", itemDate, from)}})
		assert.Equal(t, []int64{3}, ids(got))
	})

	t.Run("Should not mutate the input", func(t *testing.T) {
		orig := append([]testItem(nil), items...)
		_ = Apply(items, Query[testItem]{Search: "x", Fields: fields})
		assert.Equal(t, orig, items)
	})
}

func TestValidateMonthYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		month int
		year  int
		ok    bool
	}{
		{"both set", 3, 2024, true},
		{"month only", 12, 0, true},
		{"year only", 0, 1900, true},
		{"current year", 1, 2025, true},
		{"month 13", 13, 2024, false},
		{"negative month", -1, 2024, false},
		{"year before range", 1, 1899, false},
		{"future year", 1, 2026, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMonthYear(tc.month, tc.year, now)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestSort(t *testing.T) {
	t.Run("Should order text ignoring case", func(t *testing.T) {
		items := []testItem{{ID: 1, Name: "beta"}, {ID: 2, Name: "Alpha"}, {ID: 3, Name: "gamma"}, {ID: 4, Name: "Delta"}}
		cmp := ByText(itemName)
		sorted := append([]testItem(nil), items...)
		sortStable(sorted, cmp)
		assert.Equal(t, []string{"Alpha", "beta", "Delta", "gamma"}, names(sorted))
	})

	t.Run("Should order dates newest first with Desc", func(t *testing.T) {
		items := []testItem{
			{ID: 1, Date: domain.NewDate(2023, 5, 1)},
			{ID: 2, Date: domain.NewDate(2024, 5, 1)},
			{ID: 3, Date: domain.NewDate(2022, 5, 1)},
		}
		sortStable(items, Desc(ByDate(itemDate)))
		assert.Equal(t, []int64{2, 1, 3}, ids(items))
	})
}

func ids(items []testItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
