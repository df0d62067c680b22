package state

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r2"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/summary"
)

// memStore is an in-memory objectstore.Store that records calls.
type memStore struct {
	mu      sync.Mutex
	books   []book.Book
	saves   int
	puts    int
	deletes []string
	failErr error
}

func (m *memStore) LoadAll(context.Context) ([]book.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return book.CloneAll(m.books), nil
}

func (m *memStore) SaveAll(_ context.Context, books []book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failErr != nil {
		return m.failErr
	}
	m.books = book.CloneAll(books)
	return nil
}

func (m *memStore) Put(_ context.Context, b book.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failErr != nil {
		return m.failErr
	}
	m.books = append(m.books, *b.Clone())
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	return m.failErr
}

func (m *memStore) Close() error { return nil }

func (m *memStore) stored() []book.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	return book.CloneAll(m.books)
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func r2Point(x, y float64) r2.Point { return r2.Point{X: x, Y: y} }

var testNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

// threeDayTrip returns a book with POIs A, B and C spanning three days.
func threeDayTrip() book.Book {
	start := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)
	return book.Book{
		ID:        "trip",
		Title:     "Kyoto",
		StartDate: start,
		EndDate:   &end,
		POIs: []book.POI{
			{ID: "A", Name: "Fushimi Inari", Category: book.CategorySightseeing},
			{ID: "B", Name: "Nishiki Market", Category: book.CategoryFood},
			{ID: "C", Name: "Gion", Category: book.CategoryEntertainment},
		},
	}
}

// newTestStore returns a store with threeDayTrip loaded and selected.
func newTestStore(t *testing.T) (*Store, *memStore) {
	t.Helper()
	mem := &memStore{books: []book.Book{threeDayTrip()}}
	s := New(Options{
		Persistence: mem,
		Now:         func() time.Time { return testNow },
		NewID:       sequentialIDs(),
	})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Select("trip")
	return s, mem
}

func day(t *testing.T, s *Store, d int) book.DailyItinerary {
	t.Helper()
	snap := s.Snapshot()
	if snap.Current == nil {
		t.Fatalf("no current book")
	}
	it, _ := snap.Current.Itinerary(d)
	return it
}

func TestStore_SelectClearsDirty(t *testing.T) {
	s, _ := newTestStore(t)
	snap := s.Snapshot()
	if !snap.HasCurrent || snap.Current.ID != "trip" {
		t.Fatalf("current = %#v, want trip", snap.Current)
	}
	if snap.Dirty {
		t.Fatal("Dirty = true after Select, want false")
	}
	if snap.ActiveDay != 1 {
		t.Fatalf("ActiveDay = %d, want 1", snap.ActiveDay)
	}

	s.Select("missing")
	if got := s.Snapshot().Current.ID; got != "trip" {
		t.Fatalf("Select of unknown id changed current to %q", got)
	}
}

func TestStore_MutatorMarksDirtyUnconditionally(t *testing.T) {
	s, _ := newTestStore(t)
	title := "Kyoto"
	if err := s.UpdateBook(BookPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if !s.Snapshot().Dirty {
		t.Fatal("identical update should still mark dirty")
	}
}

func TestStore_MutatorWithoutCurrentIsNoop(t *testing.T) {
	s := New(Options{})
	s.ToggleSelection(1, "A")
	s.DeleteRoute(1, "r")
	if _, err := s.AddMemo("x", ""); err != nil {
		t.Fatalf("AddMemo without book: %v", err)
	}
	snap := s.Snapshot()
	if snap.Dirty || snap.HasCurrent {
		t.Fatalf("snapshot = %#v, want untouched", snap)
	}
	if res := s.Save(context.Background()); !res.Skipped {
		t.Fatal("Save without current book should be skipped")
	}
}

func TestStore_SaveCommitsAndIsolatesSnapshot(t *testing.T) {
	s, mem := newTestStore(t)
	title := "Kyoto & Nara"
	if err := s.UpdateBook(BookPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if err := s.Save(context.Background()).Wait(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap := s.Snapshot()
	if snap.Dirty {
		t.Fatal("Dirty = true after Save")
	}
	if snap.LastSaved.IsZero() || snap.LastSaveError != nil {
		t.Fatalf("LastSaved = %v LastSaveError = %v", snap.LastSaved, snap.LastSaveError)
	}
	if got := mem.stored(); len(got) != 1 || got[0].Title != title {
		t.Fatalf("stored = %#v, want one book titled %q", got, title)
	}

	// Mutating current after the save must not reach the pristine copy.
	s.ToggleSelection(1, "A")
	s.Discard()
	if it := day(t, s, 1); len(it.SelectedPOIIDs) != 0 {
		t.Fatalf("pristine copy shares state with current: %#v", it)
	}
	if s.Snapshot().Current.Title != title {
		t.Fatal("Discard lost the saved title")
	}

	// Snapshots handed out are deep copies too.
	snap = s.Snapshot()
	snap.Current.POIs[0].Name = "changed"
	snap.Books[0].Title = "changed"
	again := s.Snapshot()
	if again.Current.POIs[0].Name == "changed" || again.Books[0].Title == "changed" {
		t.Fatal("Snapshot should clone books")
	}
}

func TestStore_DiscardThenSaveMatchesSave(t *testing.T) {
	s, mem := newTestStore(t)
	if err := s.Save(context.Background()).Wait(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first := mem.stored()

	s.Discard()
	if err := s.Save(context.Background()).Wait(); err != nil {
		t.Fatalf("Save after Discard: %v", err)
	}
	second := mem.stored()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("discard+save changed stored list:\nfirst  %#v\nsecond %#v", first, second)
	}
}

func TestStore_DiscardWithoutPristine(t *testing.T) {
	s := New(Options{})
	s.Discard()
	if snap := s.Snapshot(); snap.HasCurrent || snap.Dirty {
		t.Fatalf("snapshot = %#v, want no current", snap)
	}
}

func TestStore_SaveFailureIsRecorded(t *testing.T) {
	s, mem := newTestStore(t)
	mem.failErr = errors.New("disk full")
	s.ToggleSelection(1, "A")

	err := s.Save(context.Background()).Wait()
	if err == nil || !errors.Is(err, mem.failErr) {
		t.Fatalf("Save error = %v, want wrapping disk full", err)
	}
	snap := s.Snapshot()
	if snap.LastSaveError == nil {
		t.Fatal("LastSaveError = nil, want the failure")
	}
	if snap.Dirty {
		t.Fatal("failed persistence must not restore the dirty flag")
	}
	if it := day(t, s, 1); len(it.SelectedPOIIDs) != 1 {
		t.Fatalf("in-memory edit rolled back: %#v", it)
	}
	if snap.Books[0].Itineraries[0].SelectedPOIIDs[0] != "A" {
		t.Fatal("book list should hold the committed book")
	}
}

func TestStore_SavesPersistInOrder(t *testing.T) {
	s, mem := newTestStore(t)
	var results []*SaveResult
	for i := 0; i < 5; i++ {
		title := fmt.Sprintf("Trip %d", i)
		if err := s.UpdateBook(BookPatch{Title: &title}); err != nil {
			t.Fatalf("UpdateBook: %v", err)
		}
		results = append(results, s.Save(context.Background()))
	}
	for _, r := range results {
		if err := r.Wait(); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if got := mem.stored()[0].Title; got != "Trip 4" {
		t.Fatalf("stored title = %q, want the last save to win", got)
	}
}

func TestStore_CreateAndDeleteBook(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	if _, res, err := s.CreateBook(ctx, book.Book{}); err == nil || !res.Skipped {
		t.Fatalf("CreateBook without title: err = %v skipped = %v", err, res.Skipped)
	}

	id, res, err := s.CreateBook(ctx, book.Book{Title: "Lisbon", StartDate: testNow})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if err := res.Wait(); err != nil {
		t.Fatalf("CreateBook persist: %v", err)
	}
	if mem.puts != 1 {
		t.Fatalf("puts = %d, want 1", mem.puts)
	}
	if n := len(s.Snapshot().Books); n != 2 {
		t.Fatalf("books = %d, want 2", n)
	}

	if err := s.DeleteBook(ctx, "trip").Wait(); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	snap := s.Snapshot()
	if snap.HasCurrent {
		t.Fatal("deleting the current book should close it")
	}
	if len(snap.Books) != 1 || snap.Books[0].ID != id {
		t.Fatalf("books = %#v, want only %s", snap.Books, id)
	}
	if !s.DeleteBook(ctx, "missing").Skipped {
		t.Fatal("deleting an unknown book should be skipped")
	}
}

func TestStore_SubscribeReceivesSnapshots(t *testing.T) {
	s, _ := newTestStore(t)
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	s.ToggleSelection(1, "A")
	if len(got) != 1 || !got[0].Dirty {
		t.Fatalf("notifications = %d, want 1 dirty snapshot", len(got))
	}

	unsubscribe()
	s.ToggleSelection(1, "B")
	if len(got) != 1 {
		t.Fatalf("notifications after unsubscribe = %d, want 1", len(got))
	}
}

func TestStore_POILifecycle(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddPOI(book.POI{Name: " ", Category: "museum"}); err == nil {
		t.Fatal("AddPOI accepted an invalid POI")
	} else {
		var fe book.FieldErrors
		if !errors.As(err, &fe) || fe["name"] == "" || fe["category"] == "" {
			t.Fatalf("AddPOI error = %v, want name and category messages", err)
		}
	}

	child, err := s.AddPOI(book.POI{Name: "Honden", Category: book.CategorySightseeing, ParentID: "A"})
	if err != nil {
		t.Fatalf("AddPOI: %v", err)
	}
	parent := child
	var cycle book.FieldErrors
	if err := s.UpdatePOI("A", POIPatch{ParentID: &parent}); !errors.As(err, &cycle) || cycle["parentId"] == "" {
		t.Fatalf("UpdatePOI error = %v, want a parentId field error for the cycle", err)
	}
	blank := "  "
	if err := s.UpdatePOI("A", POIPatch{Name: &blank}); err == nil {
		t.Fatal("UpdatePOI accepted a blank name")
	}

	s.ToggleSelection(1, "A")
	s.ToggleSelection(1, "B")
	s.ConfirmOrdering(1)
	if _, err := s.AddRoute(1, "A", "B", book.ModeWalk, "10 minutes"); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}

	s.DeletePOI("A")
	cur := s.Snapshot().Current
	if _, ok := cur.POI("A"); ok {
		t.Fatal("POI A still present")
	}
	c, _ := cur.POI(child)
	if c.ParentID != "" {
		t.Fatalf("child ParentID = %q, want detached", c.ParentID)
	}
	it, _ := cur.Itinerary(1)
	if it.IsSelected("A") || len(it.Routes) != 0 {
		t.Fatalf("itinerary still references A: %#v", it)
	}
	if len(it.OrderedPOIs) != 1 || it.OrderedPOIs[0] != (book.OrderedPOI{POIID: "B", Order: 1}) {
		t.Fatalf("ordered = %#v, want [B:1]", it.OrderedPOIs)
	}
}

func TestStore_MemosAndCanvas(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddMemo("", "body"); err == nil {
		t.Fatal("AddMemo accepted empty title")
	}
	id, err := s.AddMemo("Packing", "passport")
	if err != nil {
		t.Fatalf("AddMemo: %v", err)
	}
	s.TogglePin(id)
	if m := s.Snapshot().Current.Memos[0]; !m.Pinned || !m.CreatedAt.Equal(testNow) {
		t.Fatalf("memo = %#v, want pinned with creation time", m)
	}
	s.DeleteMemo(id)
	if n := len(s.Snapshot().Current.Memos); n != 0 {
		t.Fatalf("memos = %d, want 0", n)
	}

	canvasID := s.PlaceOnCanvas("B", r2Point(3, 4))
	name := "Renamed"
	if err := s.UpdatePOI("B", POIPatch{Name: &name}); err != nil {
		t.Fatalf("UpdatePOI: %v", err)
	}
	cp := s.Snapshot().Current.CanvasPOIs[0]
	if cp.ID != canvasID || cp.SourcePOIID != "B" || cp.Name != "Nishiki Market" {
		t.Fatalf("canvas POI = %#v, want an independent copy of B", cp)
	}
	s.MoveCanvasPOI(canvasID, r2Point(5, 6))
	if got := s.Snapshot().Current.CanvasPOIs[0].Position; got.X != 5 || got.Y != 6 {
		t.Fatalf("position = %v, want (5,6)", got)
	}
	s.RemoveCanvasPOI(canvasID)
	if n := len(s.Snapshot().Current.CanvasPOIs); n != 0 {
		t.Fatalf("canvas = %d, want 0", n)
	}
}

func TestStore_ScenesAndTickets(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.AddTicket(book.Ticket{Mode: "rocket"}); err == nil {
		t.Fatal("AddTicket accepted an unknown mode")
	}
	ticketID, err := s.AddTicket(book.Ticket{Mode: book.ModeTrain, From: "Tokyo", To: "Kyoto"})
	if err != nil {
		t.Fatalf("AddTicket: %v", err)
	}

	kyoto, _ := s.AddScene("Kyoto", r2Point(0, 0), &book.LatLng{Lat: 35.01, Lng: 135.77})
	nara, _ := s.AddScene("Nara", r2Point(1, 0), nil)
	s.AssignToScene("A", kyoto)
	s.AssignToScene("A", nara)
	cur := s.Snapshot().Current
	if len(cur.Scenes[0].POIIDs) != 0 || len(cur.Scenes[1].POIIDs) != 1 {
		t.Fatalf("scenes = %#v, want A only in Nara", cur.Scenes)
	}

	if _, err := s.AddInterSceneRoute(kyoto, kyoto, book.ModeTrain); err == nil {
		t.Fatal("AddInterSceneRoute allowed a self loop")
	}
	var fe book.FieldErrors
	if _, err := s.AddInterSceneRoute(kyoto, "nowhere", "rocket"); !errors.As(err, &fe) || fe["to"] == "" || fe["mode"] == "" {
		t.Fatalf("AddInterSceneRoute error = %v, want to and mode field errors", err)
	}
	legID, err := s.AddInterSceneRoute(kyoto, nara, book.ModeBus)
	if err != nil {
		t.Fatalf("AddInterSceneRoute: %v", err)
	}
	s.DeleteInterSceneRoute("no-such-leg")
	if n := len(s.Snapshot().Current.InterSceneRoutes); n != 1 {
		t.Fatalf("deleting an unknown leg left %d routes, want 1", n)
	}
	s.DeleteInterSceneRoute(legID)
	if n := len(s.Snapshot().Current.InterSceneRoutes); n != 0 {
		t.Fatalf("routes after DeleteInterSceneRoute = %d, want 0", n)
	}

	if _, err := s.AddInterSceneRoute(kyoto, nara, book.ModeTrain); err != nil {
		t.Fatalf("AddInterSceneRoute: %v", err)
	}
	s.DeleteScene(nara)
	cur = s.Snapshot().Current
	if len(cur.Scenes) != 1 || len(cur.InterSceneRoutes) != 0 {
		t.Fatalf("scenes = %d routes = %d, want 1 and 0", len(cur.Scenes), len(cur.InterSceneRoutes))
	}

	s.DeleteTicket(ticketID)
	if n := len(s.Snapshot().Current.Tickets); n != 0 {
		t.Fatalf("tickets = %d, want 0", n)
	}
}

func TestStore_UpdateBookValidates(t *testing.T) {
	s, _ := newTestStore(t)
	s.ChangeDay(3)

	early := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	if err := s.UpdateBook(BookPatch{EndDate: &early}); err == nil {
		t.Fatal("UpdateBook accepted an end date before the start")
	}
	if s.Snapshot().Dirty {
		t.Fatal("rejected update marked the session dirty")
	}

	if err := s.UpdateBook(BookPatch{ClearEndDate: true}); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}
	if got := s.Snapshot().ActiveDay; got != 1 {
		t.Fatalf("ActiveDay = %d, want clamped to 1", got)
	}
}

func TestStore_UpdateBookShorteningDropsLaterDays(t *testing.T) {
	s, _ := newTestStore(t)
	s.ToggleSelection(1, "C")
	s.ToggleSelection(3, "A")
	s.ToggleSelection(3, "B")
	if !s.ConfirmOrdering(3) {
		t.Fatal("ConfirmOrdering refused day 3")
	}
	if _, err := s.AddRoute(3, "A", "B", book.ModeWalk, "10 minutes"); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}

	start := s.Snapshot().Current.StartDate
	if err := s.UpdateBook(BookPatch{EndDate: &start}); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	snap := s.Snapshot()
	if n := snap.Current.DayCount(); n != 1 {
		t.Fatalf("DayCount = %d, want 1", n)
	}
	if _, idx := snap.Current.Itinerary(3); idx >= 0 {
		t.Fatal("itinerary for day 3 survived shortening the trip")
	}
	if _, idx := snap.Current.Itinerary(1); idx < 0 {
		t.Fatal("itinerary for day 1 was dropped")
	}
	if _, ok := snap.Phases[3]; ok {
		t.Fatalf("phases = %v, want no entry for day 3", snap.Phases)
	}
	st := summary.Compute(snap.Current)
	if st.OrderedDays != 0 || st.Routes != 0 {
		t.Fatalf("summary = %+v, want no ordered days or routes", st)
	}
}
