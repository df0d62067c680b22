package book

import (
	"strings"
	"time"

	"github.com/golang/geo/r2"
)

// Category classifies a point of interest.
type Category string

const (
	CategoryAccommodation  Category = "accommodation"
	CategorySightseeing    Category = "sightseeing"
	CategoryFood           Category = "food"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryTransportation Category = "transportation"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryAccommodation,
	CategorySightseeing,
	CategoryFood,
	CategoryEntertainment,
	CategoryShopping,
	CategoryTransportation,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes a free-form category name.
func ParseCategory(value string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	return c, c.Valid()
}

// TransportMode is the way a traveller gets between two places.
type TransportMode string

const (
	ModeWalk  TransportMode = "walk"
	ModeBus   TransportMode = "bus"
	ModeTaxi  TransportMode = "taxi"
	ModeTrain TransportMode = "train"
	ModeCar   TransportMode = "car"
	ModeBike  TransportMode = "bike"
)

// TransportModes lists every mode in display order.
var TransportModes = []TransportMode{ModeWalk, ModeBus, ModeTaxi, ModeTrain, ModeCar, ModeBike}

// Valid reports whether m is one of the known modes.
func (m TransportMode) Valid() bool {
	for _, known := range TransportModes {
		if m == known {
			return true
		}
	}
	return false
}

// ParseTransportMode normalizes a free-form mode name.
func ParseTransportMode(value string) (TransportMode, bool) {
	m := TransportMode(strings.ToLower(strings.TrimSpace(value)))
	return m, m.Valid()
}

// Book is the root aggregate of a single trip.
type Book struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Description      string            `json:"description"`
	StartDate        time.Time         `json:"startDate"`
	EndDate          *time.Time        `json:"endDate,omitempty"`
	Destination      string            `json:"destination"`
	Companions       []string          `json:"companions,omitempty"`
	CoverImage       string            `json:"coverImage,omitempty"`
	POIs             []POI             `json:"pois"`
	CanvasPOIs       []CanvasPOI       `json:"canvasPois"`
	Itineraries      []DailyItinerary  `json:"itineraries"`
	Memos            []Memo            `json:"memos"`
	Tickets          []Ticket          `json:"tickets"`
	Scenes           []Scene           `json:"scenes,omitempty"`
	InterSceneRoutes []InterSceneRoute `json:"interSceneRoutes,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// POI is a place the traveller may visit.
type POI struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	VisitTime string    `json:"visitTime"`
	Notes     string    `json:"notes,omitempty"`
	ParentID  string    `json:"parentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CanvasPOI is a copy of a POI pinned to the free-form board. It has its own
// identifier; SourcePOIID only records where it was copied from.
type CanvasPOI struct {
	ID          string   `json:"id"`
	SourcePOIID string   `json:"sourcePoiId,omitempty"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Position    r2.Point `json:"position"`
}

// DailyItinerary holds the plan for one 1-based trip day.
type DailyItinerary struct {
	Day            int          `json:"day"`
	SelectedPOIIDs []string     `json:"selectedPoiIds"`
	OrderedPOIs    []OrderedPOI `json:"orderedPois"`
	Routes         []Route      `json:"routes"`
}

// OrderedPOI places a POI at a 1-based position within a day.
type OrderedPOI struct {
	POIID string `json:"poiId"`
	Order int    `json:"order"`
}

// Route is a directed, mode-tagged edge between two ordered POIs.
type Route struct {
	ID        string        `json:"id"`
	FromPOIID string        `json:"fromPoiId"`
	ToPOIID   string        `json:"toPoiId"`
	Mode      TransportMode `json:"transportation"`
	Duration  string        `json:"duration"`
}

// Memo is a trip-level free-text note.
type Memo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Pinned    bool      `json:"pinned"`
}

// Ticket records a booked transportation leg.
type Ticket struct {
	ID        string        `json:"id"`
	Mode      TransportMode `json:"mode"`
	From      string        `json:"from"`
	To        string        `json:"to"`
	Departure *time.Time    `json:"departure,omitempty"`
	Reference string        `json:"reference,omitempty"`
	Notes     string        `json:"notes,omitempty"`
}

// Scene is a named sub-destination with its own POI set.
type Scene struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	POIIDs   []string `json:"poiIds"`
	Position r2.Point `json:"position"`
	Location *LatLng  `json:"location,omitempty"`
}

// LatLng is a geographic coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// InterSceneRoute connects two scenes.
type InterSceneRoute struct {
	ID          string        `json:"id"`
	FromSceneID string        `json:"fromSceneId"`
	ToSceneID   string        `json:"toSceneId"`
	Mode        TransportMode `json:"mode"`
}

// DayCount returns the number of itinerary days in the trip. A missing or
// inverted end date yields a single day.
func (b *Book) DayCount() int {
	if b == nil || b.EndDate == nil {
		return 1
	}
	start := civilDay(b.StartDate)
	end := civilDay(*b.EndDate)
	if end.Before(start) {
		return 1
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// DayDate returns the calendar date of a 1-based day.
func (b *Book) DayDate(day int) time.Time {
	return civilDay(b.StartDate).AddDate(0, 0, day-1)
}

// POI returns the POI with the given id.
func (b *Book) POI(id string) (POI, bool) {
	for _, p := range b.POIs {
		if p.ID == id {
			return p, true
		}
	}
	return POI{}, false
}

// Itinerary returns the itinerary for day and its index, or -1.
func (b *Book) Itinerary(day int) (DailyItinerary, int) {
	for i, it := range b.Itineraries {
		if it.Day == day {
			return it, i
		}
	}
	return DailyItinerary{}, -1
}

// IsSelected reports whether poiID is part of the day's selection.
func (it DailyItinerary) IsSelected(poiID string) bool {
	for _, id := range it.SelectedPOIIDs {
		if id == poiID {
			return true
		}
	}
	return false
}

// IsOrdered reports whether poiID has a position in the day's order.
func (it DailyItinerary) IsOrdered(poiID string) bool {
	for _, o := range it.OrderedPOIs {
		if o.POIID == poiID {
			return true
		}
	}
	return false
}

// civilDay drops the clock and zone so day arithmetic ignores DST shifts.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
