package state

import (
	"strings"
	"time"

	"github.com/golang/geo/r2"

	"github.com/five82/tripbook/internal/book"
)

// BookPatch carries the book-level fields to change. Nil fields are left
// alone; ClearEndDate removes the end date.
type BookPatch struct {
	Title        *string
	Description  *string
	Destination  *string
	CoverImage   *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Companions   []string
}

// UpdateBook applies patch to the current book after validating the result.
func (s *Store) UpdateBook(patch BookPatch) error {
	var verr error
	s.mutateThen(func(b *book.Book) bool {
		if patch.Title != nil {
			b.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			b.Description = *patch.Description
		}
		if patch.Destination != nil {
			b.Destination = strings.TrimSpace(*patch.Destination)
		}
		if patch.CoverImage != nil {
			b.CoverImage = strings.TrimSpace(*patch.CoverImage)
		}
		if patch.StartDate != nil {
			b.StartDate = *patch.StartDate
		}
		if patch.EndDate != nil {
			end := *patch.EndDate
			b.EndDate = &end
		}
		if patch.ClearEndDate {
			b.EndDate = nil
		}
		if patch.Companions != nil {
			b.Companions = append([]string(nil), patch.Companions...)
		}
		if errs := book.ValidateBook(*b); errs != nil {
			verr = errs
			return false
		}
		dropDaysAfter(b, b.DayCount())
		return true
	}, func() {
		n := s.current.DayCount()
		if s.activeDay > n {
			s.activeDay = n
		}
		for day := range s.phases {
			if day > n {
				delete(s.phases, day)
			}
		}
	})
	return verr
}

// dropDaysAfter removes itineraries for days past the end of a shortened
// trip.
func dropDaysAfter(b *book.Book, n int) {
	kept := b.Itineraries[:0:0]
	for _, it := range b.Itineraries {
		if it.Day <= n {
			kept = append(kept, it)
		}
	}
	if len(kept) != len(b.Itineraries) {
		b.Itineraries = kept
	}
}

// AddPOI validates p, gives it an id and creation time and appends it.
func (s *Store) AddPOI(p book.POI) (string, error) {
	var (
		id   string
		verr error
	)
	s.mutate(func(b *book.Book) bool {
		p.ID = s.newID()
		if p.CreatedAt.IsZero() {
			p.CreatedAt = s.now()
		}
		p.Name = strings.TrimSpace(p.Name)
		errs := book.ValidatePOI(p)
		if p.ParentID != "" {
			if _, ok := b.POI(p.ParentID); !ok {
				if errs == nil {
					errs = book.FieldErrors{}
				}
				errs.Add("parentId", "Parent POI does not exist")
			}
		}
		if errs != nil {
			verr = errs
			return false
		}
		id = p.ID
		b.POIs = append(b.POIs, p)
		return true
	})
	return id, verr
}

// POIPatch carries the POI fields to change. ParentID set to a pointer to ""
// detaches the POI from its parent.
type POIPatch struct {
	Name      *string
	Category  *book.Category
	VisitTime *string
	Notes     *string
	ParentID  *string
}

// UpdatePOI edits a POI in place. A parent that would create a cycle is
// rejected. Unknown ids are ignored.
func (s *Store) UpdatePOI(id string, patch POIPatch) error {
	var verr error
	s.mutate(func(b *book.Book) bool {
		idx := poiIndex(b, id)
		if idx < 0 {
			return true
		}
		p := b.POIs[idx]
		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.VisitTime != nil {
			p.VisitTime = *patch.VisitTime
		}
		if patch.Notes != nil {
			p.Notes = *patch.Notes
		}
		if patch.ParentID != nil {
			p.ParentID = *patch.ParentID
		}
		errs := book.ValidatePOI(p)
		if errs == nil {
			errs = book.FieldErrors{}
		}
		if p.ParentID != "" && p.ParentID != p.ID {
			if _, ok := b.POI(p.ParentID); !ok {
				errs.Add("parentId", "Parent POI does not exist")
			} else if createsCycle(b, p.ID, p.ParentID) {
				errs.Add("parentId", "Parent would create a cycle")
			}
		}
		if verr = errs.OrNil(); verr != nil {
			return false
		}
		b.POIs[idx] = p
		return true
	})
	return verr
}

// DeletePOI removes a POI, detaches its children and takes it out of every
// itinerary and scene.
func (s *Store) DeletePOI(id string) {
	s.mutate(func(b *book.Book) bool {
		kept := b.POIs[:0:0]
		for _, p := range b.POIs {
			if p.ID == id {
				continue
			}
			if p.ParentID == id {
				p.ParentID = ""
			}
			kept = append(kept, p)
		}
		b.POIs = kept
		for i := range b.Itineraries {
			it := &b.Itineraries[i]
			if it.IsSelected(id) || it.IsOrdered(id) {
				removeFromItinerary(it, id)
			}
		}
		for i := range b.Scenes {
			b.Scenes[i].POIIDs = without(b.Scenes[i].POIIDs, id)
		}
		return true
	})
}

// PlaceOnCanvas copies a POI onto the board at pos. The copy gets its own id
// and later edits to the source POI do not reach it.
func (s *Store) PlaceOnCanvas(poiID string, pos r2.Point) string {
	var id string
	s.mutate(func(b *book.Book) bool {
		p, ok := b.POI(poiID)
		if !ok {
			return false
		}
		id = s.newID()
		b.CanvasPOIs = append(b.CanvasPOIs, book.CanvasPOI{
			ID:          id,
			SourcePOIID: p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Position:    pos,
		})
		return true
	})
	return id
}

// MoveCanvasPOI sets the board position of a canvas entry.
func (s *Store) MoveCanvasPOI(id string, pos r2.Point) {
	s.mutate(func(b *book.Book) bool {
		for i := range b.CanvasPOIs {
			if b.CanvasPOIs[i].ID == id {
				b.CanvasPOIs[i].Position = pos
			}
		}
		return true
	})
}

// RemoveCanvasPOI takes an entry off the board.
func (s *Store) RemoveCanvasPOI(id string) {
	s.mutate(func(b *book.Book) bool {
		kept := b.CanvasPOIs[:0:0]
		for _, c := range b.CanvasPOIs {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		b.CanvasPOIs = kept
		return true
	})
}

// AddMemo validates and appends a memo. New memos start unpinned.
func (s *Store) AddMemo(title, content string) (string, error) {
	var (
		id   string
		verr error
	)
	s.mutate(func(b *book.Book) bool {
		m := book.Memo{Title: strings.TrimSpace(title), Content: content}
		if errs := book.ValidateMemo(m); errs != nil {
			verr = errs
			return false
		}
		m.ID = s.newID()
		m.CreatedAt = s.now()
		id = m.ID
		b.Memos = append(b.Memos, m)
		return true
	})
	return id, verr
}

// UpdateMemo replaces a memo's title and content.
func (s *Store) UpdateMemo(id, title, content string) error {
	var verr error
	s.mutate(func(b *book.Book) bool {
		for i := range b.Memos {
			if b.Memos[i].ID != id {
				continue
			}
			m := b.Memos[i]
			m.Title = strings.TrimSpace(title)
			m.Content = content
			if errs := book.ValidateMemo(m); errs != nil {
				verr = errs
				return false
			}
			b.Memos[i] = m
		}
		return true
	})
	return verr
}

// TogglePin flips a memo's pinned flag.
func (s *Store) TogglePin(id string) {
	s.mutate(func(b *book.Book) bool {
		for i := range b.Memos {
			if b.Memos[i].ID == id {
				b.Memos[i].Pinned = !b.Memos[i].Pinned
			}
		}
		return true
	})
}

// DeleteMemo removes a memo.
func (s *Store) DeleteMemo(id string) {
	s.mutate(func(b *book.Book) bool {
		kept := b.Memos[:0:0]
		for _, m := range b.Memos {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		b.Memos = kept
		return true
	})
}

// AddTicket validates and appends a transportation ticket.
func (s *Store) AddTicket(t book.Ticket) (string, error) {
	var (
		id   string
		verr error
	)
	s.mutate(func(b *book.Book) bool {
		t.From = strings.TrimSpace(t.From)
		t.To = strings.TrimSpace(t.To)
		if errs := book.ValidateTicket(t); errs != nil {
			verr = errs
			return false
		}
		t.ID = s.newID()
		id = t.ID
		b.Tickets = append(b.Tickets, t)
		return true
	})
	return id, verr
}

// DeleteTicket removes a ticket.
func (s *Store) DeleteTicket(id string) {
	s.mutate(func(b *book.Book) bool {
		kept := b.Tickets[:0:0]
		for _, t := range b.Tickets {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		b.Tickets = kept
		return true
	})
}

// AddScene appends a named scene at a world map position.
func (s *Store) AddScene(name string, pos r2.Point, loc *book.LatLng) (string, error) {
	var (
		id   string
		verr error
	)
	s.mutate(func(b *book.Book) bool {
		name = strings.TrimSpace(name)
		if name == "" {
			verr = book.FieldErrors{"name": "This field is required"}
			return false
		}
		sc := book.Scene{ID: s.newID(), Name: name, Position: pos}
		if loc != nil {
			l := *loc
			sc.Location = &l
		}
		id = sc.ID
		b.Scenes = append(b.Scenes, sc)
		return true
	})
	return id, verr
}

// AssignToScene moves a POI into a scene, taking it out of any other scene.
// An empty sceneID only unassigns it.
func (s *Store) AssignToScene(poiID, sceneID string) {
	s.mutate(func(b *book.Book) bool {
		if _, ok := b.POI(poiID); !ok {
			return false
		}
		for i := range b.Scenes {
			sc := &b.Scenes[i]
			sc.POIIDs = without(sc.POIIDs, poiID)
			if sc.ID == sceneID {
				sc.POIIDs = append(sc.POIIDs, poiID)
			}
		}
		return true
	})
}

// DeleteScene removes a scene and every inter-scene route touching it.
func (s *Store) DeleteScene(id string) {
	s.mutate(func(b *book.Book) bool {
		scenes := b.Scenes[:0:0]
		for _, sc := range b.Scenes {
			if sc.ID != id {
				scenes = append(scenes, sc)
			}
		}
		b.Scenes = scenes
		routes := b.InterSceneRoutes[:0:0]
		for _, r := range b.InterSceneRoutes {
			if r.FromSceneID != id && r.ToSceneID != id {
				routes = append(routes, r)
			}
		}
		b.InterSceneRoutes = routes
		return true
	})
}

// AddInterSceneRoute connects two distinct existing scenes.
func (s *Store) AddInterSceneRoute(from, to string, mode book.TransportMode) (string, error) {
	var (
		id   string
		verr error
	)
	s.mutate(func(b *book.Book) bool {
		errs := book.FieldErrors{}
		if from == to {
			errs.Add("to", "Destination must differ from origin")
		}
		if sceneIndex(b, from) < 0 {
			errs.Add("from", "Unknown scene")
		}
		if sceneIndex(b, to) < 0 {
			errs.Add("to", "Unknown scene")
		}
		if !mode.Valid() {
			errs.Add("mode", "Unknown transportation mode")
		}
		if verr = errs.OrNil(); verr != nil {
			return false
		}
		id = s.newID()
		b.InterSceneRoutes = append(b.InterSceneRoutes, book.InterSceneRoute{
			ID:          id,
			FromSceneID: from,
			ToSceneID:   to,
			Mode:        mode,
		})
		return true
	})
	return id, verr
}

// DeleteInterSceneRoute removes an inter-scene route. Unknown ids change
// nothing.
func (s *Store) DeleteInterSceneRoute(id string) {
	s.mutate(func(b *book.Book) bool {
		kept := b.InterSceneRoutes[:0:0]
		for _, r := range b.InterSceneRoutes {
			if r.ID != id {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(b.InterSceneRoutes) {
			return false
		}
		b.InterSceneRoutes = kept
		return true
	})
}

func poiIndex(b *book.Book, id string) int {
	for i := range b.POIs {
		if b.POIs[i].ID == id {
			return i
		}
	}
	return -1
}

func sceneIndex(b *book.Book, id string) int {
	for i := range b.Scenes {
		if b.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// createsCycle reports whether making parentID the parent of id would loop
// back to id.
func createsCycle(b *book.Book, id, parentID string) bool {
	seen := map[string]bool{id: true}
	for cur := parentID; cur != ""; {
		if seen[cur] {
			return true
		}
		seen[cur] = true
		p, ok := b.POI(cur)
		if !ok {
			return false
		}
		cur = p.ParentID
	}
	return false
}

func without(ids []string, id string) []string {
	kept := ids[:0:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
