package state

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/five82/tripbook/internal/book"
)

// ErrInvalidOrder is returned by Reorder when the supplied order is not a
// contiguous 1..N permutation of the day's selection.
var ErrInvalidOrder = errors.New("invalid itinerary order")

// minOrderingSelection is the smallest selection that can be ordered.
const minOrderingSelection = 2

// validDay reports whether day lies within the current book's trip.
func validDay(b *book.Book, day int) bool {
	return day >= 1 && day <= b.DayCount()
}

// setPhaseLocked records the phase of day; the caller holds s.mu.
func (s *Store) setPhaseLocked(day int, p Phase) {
	if s.phases == nil {
		s.phases = make(map[int]Phase)
	}
	if p == PhaseSelection {
		delete(s.phases, day)
		return
	}
	s.phases[day] = p
}

// ToggleSelection adds poiID to the day's selection or removes it. Removing
// a POI also drops it from the order, renumbers the survivors 1..N in their
// existing relative order and deletes routes touching it. Adding a POI to a
// day in the ordering phase appends it at the end of the order, even when
// every earlier stop was removed.
func (s *Store) ToggleSelection(day int, poiID string) {
	s.mutate(func(b *book.Book) bool {
		if !validDay(b, day) {
			return false
		}
		ordering := s.phases[day] == PhaseOrdering
		_, idx := b.Itinerary(day)
		if idx < 0 {
			if _, ok := b.POI(poiID); !ok {
				return false
			}
			it := book.DailyItinerary{Day: day, SelectedPOIIDs: []string{poiID}}
			if ordering {
				it.OrderedPOIs = []book.OrderedPOI{{POIID: poiID, Order: 1}}
			}
			b.Itineraries = append(b.Itineraries, it)
			sortItineraries(b.Itineraries)
			return true
		}

		it := &b.Itineraries[idx]
		if it.IsSelected(poiID) {
			removeFromItinerary(it, poiID)
			return true
		}
		if _, ok := b.POI(poiID); !ok {
			return false
		}
		it.SelectedPOIIDs = append(it.SelectedPOIIDs, poiID)
		if ordering {
			it.OrderedPOIs = append(it.OrderedPOIs, book.OrderedPOI{POIID: poiID, Order: len(it.OrderedPOIs) + 1})
		}
		return true
	})
}

// ConfirmOrdering moves the day from selection to ordering, numbering the
// selected POIs by selection position. It refuses, changing nothing, when
// fewer than two POIs are selected or the day is already ordered.
func (s *Store) ConfirmOrdering(day int) bool {
	return s.mutateThen(func(b *book.Book) bool {
		if !validDay(b, day) || s.phases[day] == PhaseOrdering {
			return false
		}
		_, idx := b.Itinerary(day)
		if idx < 0 || len(b.Itineraries[idx].SelectedPOIIDs) < minOrderingSelection {
			return false
		}
		it := &b.Itineraries[idx]
		it.OrderedPOIs = make([]book.OrderedPOI, len(it.SelectedPOIIDs))
		for i, id := range it.SelectedPOIIDs {
			it.OrderedPOIs[i] = book.OrderedPOI{POIID: id, Order: i + 1}
		}
		return true
	}, func() { s.setPhaseLocked(day, PhaseOrdering) })
}

// BackToSelection abandons the day's ordering. The selection is kept; the
// order and every route of the day are cleared.
func (s *Store) BackToSelection(day int) {
	s.mutateThen(func(b *book.Book) bool {
		if s.phases[day] != PhaseOrdering {
			return false
		}
		_, idx := b.Itinerary(day)
		if idx < 0 {
			return true
		}
		b.Itineraries[idx].OrderedPOIs = nil
		b.Itineraries[idx].Routes = nil
		return true
	}, func() { s.setPhaseLocked(day, PhaseSelection) })
}

// Reorder replaces the day's order wholesale. The order must name every
// selected POI exactly once with positions 1..N.
func (s *Store) Reorder(day int, ordered []book.OrderedPOI) error {
	var verr error
	s.mutate(func(b *book.Book) bool {
		if !validDay(b, day) {
			return false
		}
		_, idx := b.Itinerary(day)
		if idx < 0 || s.phases[day] != PhaseOrdering {
			verr = fmt.Errorf("%w: day %d is not being ordered", ErrInvalidOrder, day)
			return false
		}
		normalized, err := normalizeOrder(b.Itineraries[idx].SelectedPOIIDs, ordered)
		if err != nil {
			verr = err
			return false
		}
		b.Itineraries[idx].OrderedPOIs = normalized
		return true
	})
	return verr
}

// MoveOrdered shifts poiID by delta positions within the day's order.
func (s *Store) MoveOrdered(day int, poiID string, delta int) error {
	snap := s.Snapshot()
	if snap.Current == nil {
		return nil
	}
	it, idx := snap.Current.Itinerary(day)
	if idx < 0 || len(it.OrderedPOIs) == 0 {
		return nil
	}
	list := sortedOrder(it.OrderedPOIs)
	from := -1
	for i, o := range list {
		if o.POIID == poiID {
			from = i
			break
		}
	}
	if from < 0 {
		return nil
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to > len(list)-1 {
		to = len(list) - 1
	}
	if to == from {
		return nil
	}
	moved := list[from]
	list = append(list[:from], list[from+1:]...)
	list = append(list[:to], append([]book.OrderedPOI{moved}, list[to:]...)...)
	for i := range list {
		list[i].Order = i + 1
	}
	return s.Reorder(day, list)
}

// AddRoute appends a route between two ordered POIs of the day and returns
// its id. The endpoints must differ, both be ordered on that day, and not
// already be joined in the same direction; the mode must be known and the
// duration non-empty.
func (s *Store) AddRoute(day int, from, to string, mode book.TransportMode, duration string) (string, error) {
	var (
		id   string
		verr error
	)
	s.mutate(func(b *book.Book) bool {
		if !validDay(b, day) {
			return false
		}
		it, idx := b.Itinerary(day)
		if errs := validateRoute(it, idx, from, to, mode, duration); errs != nil {
			verr = errs
			return false
		}
		id = s.newID()
		b.Itineraries[idx].Routes = append(b.Itineraries[idx].Routes, book.Route{
			ID:        id,
			FromPOIID: from,
			ToPOIID:   to,
			Mode:      mode,
			Duration:  strings.TrimSpace(duration),
		})
		return true
	})
	return id, verr
}

// DeleteRoute removes a route by id. Unknown ids leave the routes as they
// are.
func (s *Store) DeleteRoute(day int, routeID string) {
	s.mutate(func(b *book.Book) bool {
		_, idx := b.Itinerary(day)
		if idx < 0 {
			return true
		}
		it := &b.Itineraries[idx]
		kept := it.Routes[:0:0]
		for _, r := range it.Routes {
			if r.ID != routeID {
				kept = append(kept, r)
			}
		}
		it.Routes = kept
		return true
	})
}

// ChangeDay makes day the active day. The day's existing plan is kept and
// its phase restored: ordering when it has an order or was already being
// ordered, selection otherwise.
func (s *Store) ChangeDay(day int) {
	s.mu.Lock()
	if s.current == nil || !validDay(s.current, day) {
		s.mu.Unlock()
		return
	}
	s.activeDay = day
	if it, idx := s.current.Itinerary(day); idx >= 0 && len(it.OrderedPOIs) > 0 {
		s.setPhaseLocked(day, PhaseOrdering)
	}
	s.mu.Unlock()
	s.notify()
}

// ResetDay wipes the day's selection, order and routes and returns it to
// the selection phase.
func (s *Store) ResetDay(day int) {
	s.mutateThen(func(b *book.Book) bool {
		if !validDay(b, day) {
			return false
		}
		_, idx := b.Itinerary(day)
		if idx >= 0 {
			b.Itineraries = append(b.Itineraries[:idx], b.Itineraries[idx+1:]...)
		}
		return true
	}, func() { s.setPhaseLocked(day, PhaseSelection) })
}

func validateRoute(it book.DailyItinerary, idx int, from, to string, mode book.TransportMode, duration string) book.FieldErrors {
	errs := book.FieldErrors{}
	if idx < 0 || len(it.OrderedPOIs) == 0 {
		errs.Add("day", "The day has no ordered POIs")
		return errs
	}
	if from == to {
		errs.Add("to", "Destination must differ from origin")
	}
	if !it.IsOrdered(from) {
		errs.Add("from", "Origin is not part of the day's order")
	}
	if !it.IsOrdered(to) {
		errs.Add("to", "Destination is not part of the day's order")
	}
	if !mode.Valid() {
		errs.Add("mode", "Unknown transportation mode")
	}
	if strings.TrimSpace(duration) == "" {
		errs.Add("duration", "This field is required")
	}
	for _, r := range it.Routes {
		if r.FromPOIID == from && r.ToPOIID == to {
			errs.Add("route", "A route between these POIs already exists")
			break
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func normalizeOrder(selected []string, ordered []book.OrderedPOI) ([]book.OrderedPOI, error) {
	if len(ordered) != len(selected) {
		return nil, fmt.Errorf("%w: %d entries for %d selected POIs", ErrInvalidOrder, len(ordered), len(selected))
	}
	want := make(map[string]bool, len(selected))
	for _, id := range selected {
		want[id] = true
	}
	seenIDs := make(map[string]bool, len(ordered))
	seenOrders := make(map[int]bool, len(ordered))
	for _, o := range ordered {
		if !want[o.POIID] {
			return nil, fmt.Errorf("%w: %s is not selected", ErrInvalidOrder, o.POIID)
		}
		if seenIDs[o.POIID] {
			return nil, fmt.Errorf("%w: %s listed twice", ErrInvalidOrder, o.POIID)
		}
		if o.Order < 1 || o.Order > len(ordered) || seenOrders[o.Order] {
			return nil, fmt.Errorf("%w: position %d is not contiguous", ErrInvalidOrder, o.Order)
		}
		seenIDs[o.POIID] = true
		seenOrders[o.Order] = true
	}
	return sortedOrder(ordered), nil
}

func sortedOrder(ordered []book.OrderedPOI) []book.OrderedPOI {
	out := make([]book.OrderedPOI, len(ordered))
	copy(out, ordered)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// removeFromItinerary drops poiID from selection, order and routes and
// renumbers the remaining order contiguously.
func removeFromItinerary(it *book.DailyItinerary, poiID string) {
	selected := it.SelectedPOIIDs[:0:0]
	for _, id := range it.SelectedPOIIDs {
		if id != poiID {
			selected = append(selected, id)
		}
	}
	it.SelectedPOIIDs = selected

	if len(it.OrderedPOIs) > 0 {
		ordered := make([]book.OrderedPOI, 0, len(it.OrderedPOIs))
		for _, o := range sortedOrder(it.OrderedPOIs) {
			if o.POIID != poiID {
				o.Order = len(ordered) + 1
				ordered = append(ordered, o)
			}
		}
		it.OrderedPOIs = ordered
	}

	if len(it.Routes) > 0 {
		routes := it.Routes[:0:0]
		for _, r := range it.Routes {
			if r.FromPOIID != poiID && r.ToPOIID != poiID {
				routes = append(routes, r)
			}
		}
		it.Routes = routes
	}
}

func sortItineraries(its []book.DailyItinerary) {
	sort.SliceStable(its, func(i, j int) bool { return its[i].Day < its[j].Day })
}
