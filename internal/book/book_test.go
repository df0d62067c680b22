package book

import (
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBook() *Book {
	end := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)
	dep := time.Date(2025, 5, 1, 8, 30, 0, 0, time.UTC)
	return &Book{
		ID:         "b1",
		Title:      "Kyoto",
		StartDate:  time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    &end,
		Companions: []string{"Ana"},
		POIs:       []POI{{ID: "p1", Name: "Fushimi Inari", Category: CategorySightseeing}},
		CanvasPOIs: []CanvasPOI{{ID: "c1", Name: "Fushimi Inari", Position: r2.Point{X: 1, Y: 2}}},
		Itineraries: []DailyItinerary{{
			Day:            1,
			SelectedPOIIDs: []string{"p1"},
			OrderedPOIs:    []OrderedPOI{{POIID: "p1", Order: 1}},
			Routes:         []Route{{ID: "r1", FromPOIID: "p1", ToPOIID: "p2", Mode: ModeWalk}},
		}},
		Memos:   []Memo{{ID: "m1", Title: "Cash"}},
		Tickets: []Ticket{{ID: "t1", Mode: ModeTrain, Departure: &dep}},
		Scenes:  []Scene{{ID: "s1", POIIDs: []string{"p1"}, Location: &LatLng{Lat: 35, Lng: 135}}},
	}
}

func TestClone_SharesNothing(t *testing.T) {
	orig := sampleBook()
	dup := orig.Clone()
	require.Equal(t, orig, dup)

	dup.Companions[0] = "Ben"
	dup.POIs[0].Name = "changed"
	dup.CanvasPOIs[0].Position.X = 99
	dup.Itineraries[0].SelectedPOIIDs[0] = "x"
	dup.Itineraries[0].OrderedPOIs[0].Order = 7
	dup.Itineraries[0].Routes[0].Duration = "1h"
	dup.Memos[0].Pinned = true
	*dup.EndDate = dup.EndDate.AddDate(1, 0, 0)
	*dup.Tickets[0].Departure = time.Time{}
	dup.Scenes[0].POIIDs[0] = "x"
	dup.Scenes[0].Location.Lat = 0

	assert.Equal(t, "Ana", orig.Companions[0])
	assert.Equal(t, "Fushimi Inari", orig.POIs[0].Name)
	assert.Equal(t, 1.0, orig.CanvasPOIs[0].Position.X)
	assert.Equal(t, "p1", orig.Itineraries[0].SelectedPOIIDs[0])
	assert.Equal(t, 1, orig.Itineraries[0].OrderedPOIs[0].Order)
	assert.Empty(t, orig.Itineraries[0].Routes[0].Duration)
	assert.False(t, orig.Memos[0].Pinned)
	assert.Equal(t, 2025, orig.EndDate.Year())
	assert.False(t, orig.Tickets[0].Departure.IsZero())
	assert.Equal(t, "p1", orig.Scenes[0].POIIDs[0])
	assert.Equal(t, 35.0, orig.Scenes[0].Location.Lat)
}

func TestClone_Nil(t *testing.T) {
	var b *Book
	assert.Nil(t, b.Clone())
	assert.Nil(t, CloneAll(nil))
}

func TestDayCount(t *testing.T) {
	start := time.Date(2025, 3, 29, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  *time.Time
		want int
	}{
		{"no end", nil, 1},
		{"same day", ptr(time.Date(2025, 3, 29, 1, 0, 0, 0, time.UTC)), 1},
		{"three days", ptr(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)), 3},
		{"end before start", ptr(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Book{StartDate: start, EndDate: tt.end}
			assert.Equal(t, tt.want, b.DayCount())
		})
	}
}

func TestValidate(t *testing.T) {
	errs := ValidatePOI(POI{Category: "museum"})
	require.NotNil(t, errs)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "category")
	assert.Contains(t, errs.Error(), "category: Must be one of")

	assert.Nil(t, ValidatePOI(POI{Name: "Gion", Category: CategoryFood}))
	assert.Contains(t, ValidatePOI(POI{ID: "a", ParentID: "a", Name: "x", Category: CategoryFood}), "parentId")

	assert.Contains(t, ValidateBook(Book{}), "title")
	assert.Contains(t, ValidateMemo(Memo{Title: "  "}), "title")
	assert.Len(t, ValidateTicket(Ticket{Mode: "plane"}), 3)
	assert.Nil(t, FieldErrors{}.OrNil())
}

func TestParseEnums(t *testing.T) {
	c, ok := ParseCategory("  Food ")
	assert.True(t, ok)
	assert.Equal(t, CategoryFood, c)

	_, ok = ParseTransportMode("plane")
	assert.False(t, ok)
	m, ok := ParseTransportMode("TRAIN")
	assert.True(t, ok)
	assert.Equal(t, ModeTrain, m)
}

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func ptr[T any](v T) *T { return &v }
