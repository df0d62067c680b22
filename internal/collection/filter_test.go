package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tripbook/internal/book"
)

func samplePOIs() []book.POI {
	t0 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return []book.POI{
		{ID: "1", Name: "Café de Flore", Category: book.CategoryFood, CreatedAt: t0.Add(3 * time.Hour)},
		{ID: "2", Name: "Louvre", Category: book.CategorySightseeing, Notes: "buy tickets online", CreatedAt: t0},
		{ID: "3", Name: "Le Marais", Category: book.CategoryShopping, CreatedAt: t0.Add(time.Hour)},
		{ID: "4", Name: "Hôtel du Nord", Category: book.CategoryAccommodation, CreatedAt: t0.Add(2 * time.Hour)},
		{ID: "5", Name: "bouillon chartier", Category: book.CategoryFood, ParentID: "3", CreatedAt: t0.Add(4 * time.Hour)},
	}
}

func ids(pois []book.POI) []string {
	out := make([]string, len(pois))
	for i, p := range pois {
		out[i] = p.ID
	}
	return out
}

func TestApply_CategoryAndQueryCombine(t *testing.T) {
	pois := samplePOIs()

	got := Apply(pois, Filter{Category: book.CategoryFood})
	assert.Equal(t, []string{"5", "1"}, ids(got))

	got = Apply(pois, Filter{Category: book.CategoryFood, Query: "CAFE"})
	assert.Equal(t, []string{"1"}, ids(got))

	got = Apply(pois, Filter{Query: "tickets"})
	assert.Equal(t, []string{"2"}, ids(got), "query should match notes")

	got = Apply(pois, Filter{Category: book.CategoryShopping, Query: "louvre"})
	assert.Empty(t, got)
}

func TestApply_QueryFoldsCaseAndAccents(t *testing.T) {
	pois := samplePOIs()

	for _, q := range []string{"cafe", "CAFÉ", "café", "hotel", "HÔTEL DU"} {
		got := Apply(pois, Filter{Query: q})
		require.Len(t, got, 1, "query %q", q)
	}
	assert.Equal(t, []string{"4"}, ids(Apply(pois, Filter{Query: "hôtel"})))
	assert.Empty(t, Apply(pois, Filter{Query: "cafes"}))
}

func TestApply_Sorts(t *testing.T) {
	pois := samplePOIs()
	cases := map[SortOrder][]string{
		SortNameAsc:     {"5", "1", "4", "3", "2"},
		SortNameDesc:    {"2", "3", "4", "1", "5"},
		SortCreatedAsc:  {"2", "3", "4", "1", "5"},
		SortCreatedDesc: {"5", "1", "4", "3", "2"},
	}
	for order, want := range cases {
		t.Run(order.String(), func(t *testing.T) {
			assert.Equal(t, want, ids(Apply(pois, Filter{Sort: order})))
		})
	}
}

func TestApply_DoesNotTouchInput(t *testing.T) {
	pois := samplePOIs()
	_ = Apply(pois, Filter{Sort: SortNameDesc})
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(pois))
}

func TestCategoryCounts_IgnoreFilter(t *testing.T) {
	pois := samplePOIs()
	filtered := Apply(pois, Filter{Category: book.CategoryShopping, Query: "marais"})
	require.Len(t, filtered, 1)

	counts := CategoryCounts(pois)
	assert.Equal(t, 2, counts[book.CategoryFood])
	assert.Equal(t, 1, counts[book.CategorySightseeing])
	assert.Equal(t, 0, counts[book.CategoryEntertainment])
	assert.Len(t, counts, len(book.Categories))
}

func TestHierarchy(t *testing.T) {
	pois := samplePOIs()
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Roots(pois)))
	assert.Equal(t, []string{"5"}, ids(Children(pois, "3")))
	assert.Empty(t, Children(pois, ""))

	orphan := append(pois, book.POI{ID: "6", Name: "Orphan", Category: book.CategoryFood, ParentID: "gone"})
	assert.Contains(t, ids(Roots(orphan)), "6")
}

func TestSortOrder_Next(t *testing.T) {
	assert.Equal(t, SortNameDesc, SortNameAsc.Next())
	assert.Equal(t, SortNameAsc, SortCreatedDesc.Next())
	assert.True(t, Filter{Query: " x "}.Active())
	assert.False(t, Filter{Query: "  "}.Active())
}

func TestSortOrder_KeyRoundTrip(t *testing.T) {
	for _, o := range SortOrders {
		got, ok := ParseSortOrder(o.Key())
		assert.True(t, ok, o.Key())
		assert.Equal(t, o, got)
	}
	got, ok := ParseSortOrder(" Created_Desc ")
	assert.True(t, ok)
	assert.Equal(t, SortCreatedDesc, got)

	got, ok = ParseSortOrder("rating")
	assert.False(t, ok)
	assert.Equal(t, SortNameAsc, got)
}
