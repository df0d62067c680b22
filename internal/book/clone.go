package book

import "time"

// Clone returns a deep copy of b. The copy shares no slices or pointers with
// the original, so either may be mutated freely.
func (b *Book) Clone() *Book {
	if b == nil {
		return nil
	}
	dup := *b
	dup.EndDate = cloneTime(b.EndDate)
	dup.Companions = cloneStrings(b.Companions)
	dup.POIs = cloneSlice(b.POIs)
	dup.CanvasPOIs = cloneSlice(b.CanvasPOIs)
	dup.Memos = cloneSlice(b.Memos)
	dup.InterSceneRoutes = cloneSlice(b.InterSceneRoutes)

	if b.Itineraries != nil {
		dup.Itineraries = make([]DailyItinerary, len(b.Itineraries))
		for i, it := range b.Itineraries {
			dup.Itineraries[i] = it.Clone()
		}
	}
	if b.Tickets != nil {
		dup.Tickets = make([]Ticket, len(b.Tickets))
		for i, t := range b.Tickets {
			t.Departure = cloneTime(t.Departure)
			dup.Tickets[i] = t
		}
	}
	if b.Scenes != nil {
		dup.Scenes = make([]Scene, len(b.Scenes))
		for i, sc := range b.Scenes {
			sc.POIIDs = cloneStrings(sc.POIIDs)
			if sc.Location != nil {
				loc := *sc.Location
				sc.Location = &loc
			}
			dup.Scenes[i] = sc
		}
	}
	return &dup
}

// Clone returns a deep copy of the itinerary.
func (it DailyItinerary) Clone() DailyItinerary {
	it.SelectedPOIIDs = cloneStrings(it.SelectedPOIIDs)
	it.OrderedPOIs = cloneSlice(it.OrderedPOIs)
	it.Routes = cloneSlice(it.Routes)
	return it
}

// CloneAll deep-copies a list of books.
func CloneAll(books []Book) []Book {
	if books == nil {
		return nil
	}
	out := make([]Book, len(books))
	for i := range books {
		out[i] = *books[i].Clone()
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	return cloneSlice(in)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
