package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/objectstore"
)

// Phase is the planning step of a single itinerary day.
type Phase int

const (
	PhaseSelection Phase = iota
	PhaseOrdering
)

func (p Phase) String() string {
	if p == PhaseOrdering {
		return "ordering"
	}
	return "selection"
}

// Snapshot is a deep copy of the session state handed to readers and
// observers.
type Snapshot struct {
	Books         []book.Book
	Current       *book.Book
	HasCurrent    bool
	Dirty         bool
	ActiveDay     int
	Phases        map[int]Phase
	LastSaved     time.Time
	LastSaveError error
	// Revision counts successful mutations. It does not move on select,
	// save or discard.
	Revision uint64
}

// Phase returns the phase of day, defaulting to selection.
func (s Snapshot) Phase(day int) Phase {
	return s.Phases[day]
}

// Options configure a Store.
type Options struct {
	Persistence objectstore.Store
	Logger      *slog.Logger
	Now         func() time.Time
	NewID       func() string
}

// Store holds the full book list, the book being edited ("current") and the
// pristine copy it was loaded or last saved from ("snapshot").
//
// Every mutator marks the session dirty unconditionally, without comparing
// the new value to the old one. Only Select, Save and Discard clear it. The
// flag is therefore true by construction whenever an edit has happened
// since the last commit or rollback, even an edit that changed nothing.
type Store struct {
	mu          sync.RWMutex
	books       []book.Book
	current     *book.Book
	pristine    *book.Book
	dirty       bool
	activeDay   int
	phases      map[int]Phase
	lastSaved   time.Time
	lastSaveErr error
	revision    uint64

	persist objectstore.Store
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	writes  writer

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds a Store. A nil Persistence keeps everything in memory.
func New(opts Options) *Store {
	s := &Store{
		persist: opts.Persistence,
		logger:  opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = book.NewID
	}
	return s
}

// Load replaces the book list with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	books, err := s.persist.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load books: %w", err)
	}
	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	s.logger.Info("books loaded", "count", len(books))
	s.notify()
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Books:         book.CloneAll(s.books),
		Current:       s.current.Clone(),
		HasCurrent:    s.current != nil,
		Dirty:         s.dirty,
		ActiveDay:     s.activeDay,
		Phases:        make(map[int]Phase, len(s.phases)),
		LastSaved:     s.lastSaved,
		LastSaveError: s.lastSaveErr,
		Revision:      s.revision,
	}
	for day, phase := range s.phases {
		snap.Phases[day] = phase
	}
	if s.lastSaveErr != nil {
		snap.LastSaveError = fmt.Errorf("%w", s.lastSaveErr)
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every state change. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func(Snapshot))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(s.Snapshot())
	}
}

// Select makes the book with id current and takes a pristine copy of it.
// Unknown ids are ignored.
func (s *Store) Select(id string) {
	s.mu.Lock()
	var found *book.Book
	for i := range s.books {
		if s.books[i].ID == id {
			found = s.books[i].Clone()
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return
	}
	s.current = found
	s.pristine = found.Clone()
	s.dirty = false
	s.activeDay = 1
	s.phases = derivePhases(found)
	s.mu.Unlock()

	s.logger.Debug("book selected", "book", id)
	s.notify()
}

// Save commits the current book into the book list, refreshes the pristine
// copy, clears the dirty flag and persists the whole list in the
// background. The in-memory commit is never rolled back; persistence
// failures are logged, recorded in the snapshot and reported through the
// returned result.
func (s *Store) Save(ctx context.Context) *SaveResult {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return skipped()
	}
	committed := s.current.Clone()
	replaced := false
	for i := range s.books {
		if s.books[i].ID == committed.ID {
			s.books[i] = *committed.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.books = append(s.books, *committed.Clone())
	}
	s.pristine = committed
	s.dirty = false
	all := book.CloneAll(s.books)
	s.mu.Unlock()

	s.notify()
	return s.persistAsync(ctx, "save books", func(ctx context.Context) error {
		return s.persist.SaveAll(ctx, all)
	})
}

// Discard restores the current book from the pristine copy.
func (s *Store) Discard() {
	s.mu.Lock()
	s.current = s.pristine.Clone()
	s.dirty = false
	s.phases = derivePhases(s.current)
	s.mu.Unlock()
	s.notify()
}

// CreateBook validates b, assigns it an id and adds it to the list. The
// book is persisted with Put in the background.
func (s *Store) CreateBook(ctx context.Context, b book.Book) (string, *SaveResult, error) {
	if errs := book.ValidateBook(b); errs != nil {
		return "", skipped(), errs
	}
	now := s.now()
	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	s.mu.Lock()
	for _, existing := range s.books {
		if existing.ID == b.ID {
			s.mu.Unlock()
			return "", skipped(), book.FieldErrors{"id": "A book with this id already exists"}
		}
	}
	s.books = append(s.books, *b.Clone())
	s.mu.Unlock()

	s.logger.Info("book created", "book", b.ID, "title", b.Title)
	s.notify()
	stored := *b.Clone()
	res := s.persistAsync(ctx, "put book", func(ctx context.Context) error {
		return s.persist.Put(ctx, stored)
	})
	return b.ID, res, nil
}

// DeleteBook removes a book from the list. Deleting the current book closes
// it without saving.
func (s *Store) DeleteBook(ctx context.Context, id string) *SaveResult {
	s.mu.Lock()
	kept := s.books[:0:0]
	for _, b := range s.books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(s.books) {
		s.mu.Unlock()
		return skipped()
	}
	s.books = kept
	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.pristine = nil
		s.dirty = false
		s.phases = nil
		s.activeDay = 0
	}
	s.mu.Unlock()

	s.logger.Info("book deleted", "book", id)
	s.notify()
	return s.persistAsync(ctx, "delete book", func(ctx context.Context) error {
		return s.persist.Delete(ctx, id)
	})
}

// mutate applies fn to a copy of the current book and installs the copy.
// fn reports whether it changed anything worth recording; guard failures
// return false and leave the session untouched.
// fn runs with the write lock held and may read s.phases directly.
func (s *Store) mutate(fn func(b *book.Book) bool) bool {
	return s.mutateThen(fn, nil)
}

// mutateThen is mutate with a follow-up that runs under the same lock after
// a successful change, so observers never see the book and the phase map
// out of step.
func (s *Store) mutateThen(fn func(b *book.Book) bool, then func()) bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}
	next := s.current.Clone()
	if !fn(next) {
		s.mu.Unlock()
		return false
	}
	next.UpdatedAt = s.now()
	s.current = next
	s.dirty = true
	s.revision++
	if then != nil {
		then()
	}
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *Store) persistAsync(ctx context.Context, op string, fn func(context.Context) error) *SaveResult {
	res := newSaveResult()
	if s.persist == nil {
		res.finish(nil)
		return res
	}
	// The caller's context may end (e.g. a keypress handler returning)
	// before the write runs.
	ctx = context.WithoutCancel(ctx)
	s.writes.enqueue(func() {
		err := fn(ctx)
		if err != nil {
			err = fmt.Errorf("%s: %w", op, err)
			s.logger.Error("persist failed", "op", op, "error", err)
		}
		s.mu.Lock()
		s.lastSaveErr = err
		if err == nil {
			s.lastSaved = s.now()
		}
		s.mu.Unlock()
		res.finish(err)
		s.notify()
	})
	return res
}

// SaveResult reports the outcome of a background write.
type SaveResult struct {
	done    chan struct{}
	err     error
	Skipped bool
}

func newSaveResult() *SaveResult {
	return &SaveResult{done: make(chan struct{})}
}

func skipped() *SaveResult {
	res := newSaveResult()
	res.Skipped = true
	res.finish(nil)
	return res
}

func (r *SaveResult) finish(err error) {
	r.err = err
	close(r.done)
}

// Done is closed once the write has finished.
func (r *SaveResult) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the write finishes and returns its error.
func (r *SaveResult) Wait() error {
	<-r.done
	return r.err
}

// WaitContext is Wait bounded by ctx.
func (r *SaveResult) WaitContext(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return errors.Join(ctx.Err(), errors.New("save still pending"))
	}
}

// writer runs persistence jobs one at a time in submission order so an
// older list can never overwrite a newer one.
type writer struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (w *writer) enqueue(job func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queue = append(w.queue, job)
	if !w.running {
		w.running = true
		go w.drain()
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.mu.Unlock()
			return
		}
		job := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()
		job()
	}
}

func derivePhases(b *book.Book) map[int]Phase {
	phases := make(map[int]Phase)
	if b == nil {
		return phases
	}
	for _, it := range b.Itineraries {
		if len(it.OrderedPOIs) > 0 {
			phases[it.Day] = PhaseOrdering
		}
	}
	return phases
}
