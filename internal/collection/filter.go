// Package collection derives filtered and sorted views of a book's POIs.
//
// Everything here is read-only: functions take a slice and return a new
// one, so callers can pass a Snapshot's POIs straight through.
package collection

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/five82/tripbook/internal/book"
)

// SortOrder selects the secondary sort applied after filtering.
type SortOrder int

const (
	SortNameAsc SortOrder = iota
	SortNameDesc
	SortCreatedAsc
	SortCreatedDesc
)

// SortOrders lists every order in the sequence the UI cycles through.
var SortOrders = []SortOrder{SortNameAsc, SortNameDesc, SortCreatedAsc, SortCreatedDesc}

func (o SortOrder) String() string {
	switch o {
	case SortNameDesc:
		return "name ↓"
	case SortCreatedAsc:
		return "oldest"
	case SortCreatedDesc:
		return "newest"
	default:
		return "name ↑"
	}
}

// Key is the stable name of o used in preference files.
func (o SortOrder) Key() string {
	switch o {
	case SortNameDesc:
		return "name_desc"
	case SortCreatedAsc:
		return "created"
	case SortCreatedDesc:
		return "created_desc"
	default:
		return "name"
	}
}

// ParseSortOrder maps a Key back to its order. Unknown keys give
// SortNameAsc and false.
func ParseSortOrder(key string) (SortOrder, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, o := range SortOrders {
		if o.Key() == key {
			return o, true
		}
	}
	return SortNameAsc, false
}

// Next returns the order after o, wrapping around.
func (o SortOrder) Next() SortOrder {
	return SortOrders[(int(o)+1)%len(SortOrders)]
}

// Filter narrows a POI list. An empty Category or Query matches everything.
type Filter struct {
	Category book.Category
	Query    string
	Sort     SortOrder
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return f.Category != "" || strings.TrimSpace(f.Query) != ""
}

// Apply returns the POIs matching both the category and the query, sorted
// by f.Sort. The query is a substring of the name or notes after both sides
// are case folded and stripped of combining accents, so "cafe", "CAFÉ" and
// "Café" all match "Café de Flore". Sorting by name folds the same way.
func Apply(pois []book.POI, f Filter) []book.POI {
	query := fold(strings.TrimSpace(f.Query))
	out := make([]book.POI, 0, len(pois))
	for _, p := range pois {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if query != "" && !strings.Contains(fold(p.Name), query) && !strings.Contains(fold(p.Notes), query) {
			continue
		}
		out = append(out, p)
	}
	sortPOIs(out, f.Sort)
	return out
}

// CategoryCounts tallies every category over the whole list. The result
// always has an entry per known category so badges can show zeros.
func CategoryCounts(pois []book.POI) map[book.Category]int {
	counts := make(map[book.Category]int, len(book.Categories))
	for _, c := range book.Categories {
		counts[c] = 0
	}
	for _, p := range pois {
		counts[p.Category]++
	}
	return counts
}

// Roots returns POIs without a parent, plus those whose parent is missing.
func Roots(pois []book.POI) []book.POI {
	ids := make(map[string]bool, len(pois))
	for _, p := range pois {
		ids[p.ID] = true
	}
	var out []book.POI
	for _, p := range pois {
		if p.ParentID == "" || !ids[p.ParentID] {
			out = append(out, p)
		}
	}
	return out
}

// Children returns the direct children of parentID in list order.
func Children(pois []book.POI, parentID string) []book.POI {
	var out []book.POI
	for _, p := range pois {
		if parentID != "" && p.ParentID == parentID {
			out = append(out, p)
		}
	}
	return out
}

func sortPOIs(pois []book.POI, order SortOrder) {
	sort.SliceStable(pois, func(i, j int) bool {
		a, b := pois[i], pois[j]
		switch order {
		case SortNameDesc:
			return fold(a.Name) > fold(b.Name)
		case SortCreatedAsc:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortCreatedDesc:
			return a.CreatedAt.After(b.CreatedAt)
		default:
			return fold(a.Name) < fold(b.Name)
		}
	})
}

// fold strips accents and applies Unicode case folding.
func fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	// A Caser keeps state, so each call builds its own.
	return cases.Fold().String(stripped)
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
