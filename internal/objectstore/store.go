// Package objectstore persists travel books keyed by id.
//
// Every backend has replace-all semantics for SaveAll: the namespace is
// cleared and every record is re-inserted. Backends differ in performance
// and durability, not in contract. Callers should wrap a backend with
// Serialized so overlapping saves cannot interleave their clear and insert
// phases.
package objectstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/five82/tripbook/internal/book"
)

// ErrUnavailable reports that a backend could not be opened in this runtime.
var ErrUnavailable = errors.New("object store unavailable")

// Store is the persistence contract for the book list.
type Store interface {
	LoadAll(ctx context.Context) ([]book.Book, error)
	SaveAll(ctx context.Context, books []book.Book) error
	Put(ctx context.Context, b book.Book) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Serialized wraps s so every call holds one mutex for its duration.
func Serialized(s Store) Store {
	if already, ok := s.(*serialized); ok {
		return already
	}
	return &serialized{inner: s}
}

type serialized struct {
	mu    sync.Mutex
	inner Store
}

func (s *serialized) LoadAll(ctx context.Context) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.LoadAll(ctx)
}

func (s *serialized) SaveAll(ctx context.Context, books []book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.SaveAll(ctx, books)
}

func (s *serialized) Put(ctx context.Context, b book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Put(ctx, b)
}

func (s *serialized) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Delete(ctx, id)
}

func (s *serialized) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}

// Mirror writes to primary and then, best effort, to secondary. Reads come
// from primary only. Secondary failures are logged and never returned.
type Mirror struct {
	Primary   Store
	Secondary Store
	Logger    *slog.Logger
}

// LoadAll reads from the primary store.
func (m *Mirror) LoadAll(ctx context.Context) ([]book.Book, error) {
	return m.Primary.LoadAll(ctx)
}

// SaveAll replaces the primary contents, then mirrors them.
func (m *Mirror) SaveAll(ctx context.Context, books []book.Book) error {
	if err := m.Primary.SaveAll(ctx, books); err != nil {
		return err
	}
	m.mirror("save all", m.Secondary.SaveAll(ctx, books))
	return nil
}

// Put stores one book in both stores.
func (m *Mirror) Put(ctx context.Context, b book.Book) error {
	if err := m.Primary.Put(ctx, b); err != nil {
		return err
	}
	m.mirror("put", m.Secondary.Put(ctx, b))
	return nil
}

// Delete removes one book from both stores.
func (m *Mirror) Delete(ctx context.Context, id string) error {
	if err := m.Primary.Delete(ctx, id); err != nil {
		return err
	}
	m.mirror("delete", m.Secondary.Delete(ctx, id))
	return nil
}

// Close closes both stores and joins their errors.
func (m *Mirror) Close() error {
	return errors.Join(m.Primary.Close(), m.Secondary.Close())
}

func (m *Mirror) mirror(op string, err error) {
	if err == nil {
		return
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("mirror write failed", "op", op, "error", err)
}
