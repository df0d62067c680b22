// Package summary computes read-only statistics for a book.
package summary

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"

	"github.com/five82/tripbook/internal/book"
)

// earthRadiusMeters is the mean Earth radius used for scene distances.
const earthRadiusMeters = 6371008.8

// Stats aggregates a book for the overview screen.
type Stats struct {
	POIs         int
	ByCategory   map[book.Category]int
	Days         int
	PlannedDays  int
	OrderedDays  int
	Routes       int
	RoutesByMode map[book.TransportMode]int
	Memos        int
	PinnedMemos  int
	Tickets      int

	CanvasPOIs   int
	CanvasBounds r2.Rect

	Scenes           int
	InterSceneRoutes int
	// SceneDistanceMeters sums great-circle lengths of inter-scene routes
	// whose endpoints both have a location.
	SceneDistanceMeters float64
	// UnmeasuredRoutes counts inter-scene routes missing a location.
	UnmeasuredRoutes int
}

// Compute walks b once. A nil book yields zero Stats with empty maps.
func Compute(b *book.Book) Stats {
	st := Stats{
		ByCategory:   make(map[book.Category]int, len(book.Categories)),
		RoutesByMode: make(map[book.TransportMode]int),
		CanvasBounds: r2.EmptyRect(),
	}
	if b == nil {
		return st
	}

	st.POIs = len(b.POIs)
	for _, p := range b.POIs {
		st.ByCategory[p.Category]++
	}

	st.Days = b.DayCount()
	for _, it := range b.Itineraries {
		if len(it.SelectedPOIIDs) > 0 {
			st.PlannedDays++
		}
		if len(it.OrderedPOIs) > 0 {
			st.OrderedDays++
		}
		for _, r := range it.Routes {
			st.Routes++
			st.RoutesByMode[r.Mode]++
		}
	}

	st.Memos = len(b.Memos)
	for _, m := range b.Memos {
		if m.Pinned {
			st.PinnedMemos++
		}
	}
	st.Tickets = len(b.Tickets)

	st.CanvasPOIs = len(b.CanvasPOIs)
	for _, c := range b.CanvasPOIs {
		st.CanvasBounds = st.CanvasBounds.AddPoint(c.Position)
	}

	st.Scenes = len(b.Scenes)
	st.InterSceneRoutes = len(b.InterSceneRoutes)
	locations := make(map[string]s2.LatLng, len(b.Scenes))
	for _, sc := range b.Scenes {
		if sc.Location != nil {
			locations[sc.ID] = s2.LatLngFromDegrees(sc.Location.Lat, sc.Location.Lng)
		}
	}
	for _, r := range b.InterSceneRoutes {
		from, okFrom := locations[r.FromSceneID]
		to, okTo := locations[r.ToSceneID]
		if !okFrom || !okTo {
			st.UnmeasuredRoutes++
			continue
		}
		st.SceneDistanceMeters += from.Distance(to).Radians() * earthRadiusMeters
	}
	return st
}

// Progress is the share of trip days with an ordered plan, in [0, 1].
func (s Stats) Progress() float64 {
	if s.Days == 0 {
		return 0
	}
	p := float64(s.OrderedDays) / float64(s.Days)
	if p > 1 {
		return 1
	}
	return p
}
