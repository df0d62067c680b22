package objectstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/tripbook/internal/book"
)

func newBook(id, title string) book.Book {
	return book.Book{
		ID:        id,
		Title:     title,
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		POIs:      []book.POI{{ID: id + "-p", Name: "Spot", Category: book.CategoryFood}},
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(ctx, filepath.Join(dir, "books.db"), "travel_books")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	file, err := OpenFile(filepath.Join(dir, "flat"), "travel-books")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"file":   file,
		"redis":  NewRedis(client, "travel-books"),
	}
}

func TestBackends_Contract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			books, err := s.LoadAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, books)

			require.NoError(t, s.SaveAll(ctx, []book.Book{newBook("a", "Alps"), newBook("b", "Baltics")}))
			books, err = s.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, books, 2)
			assert.Equal(t, "Alps", books[0].Title)
			assert.Equal(t, "a-p", books[0].POIs[0].ID)

			// Replace-all drops records missing from the new list.
			require.NoError(t, s.SaveAll(ctx, []book.Book{newBook("c", "Crete")}))
			books, err = s.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, books, 1)
			assert.Equal(t, "c", books[0].ID)

			updated := newBook("c", "Crete again")
			require.NoError(t, s.Put(ctx, updated))
			require.NoError(t, s.Put(ctx, newBook("d", "Denmark")))
			books, err = s.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, books, 2)
			titles := []string{books[0].Title, books[1].Title}
			assert.ElementsMatch(t, []string{"Crete again", "Denmark"}, titles)

			require.NoError(t, s.Delete(ctx, "c"))
			require.NoError(t, s.Delete(ctx, "missing"))
			books, err = s.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, books, 1)
			assert.Equal(t, "d", books[0].ID)

			require.NoError(t, s.SaveAll(ctx, nil))
			books, err = s.LoadAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, books)
		})
	}
}

func TestSQLite_RecordsSchemaVersion(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "v.db"), "books")
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)
}

func TestSQLite_RejectsBadNamespace(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "v.db"), "1; DROP TABLE x")
	require.Error(t, err)
}

func TestFile_CorruptBlob(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFile(dir, "books")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.Path(), []byte("{not json"), 0o644))

	_, err = f.LoadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode store")
}

func TestOpen_FallsBackToFile(t *testing.T) {
	dir := t.TempDir()
	// A leading digit is not a valid sqlite table name but is a fine file name.
	s, err := Open(context.Background(), Options{Backend: "sqlite", DataDir: dir, Namespace: "2025"}, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveAll(context.Background(), []book.Book{newBook("a", "Alps")}))
	_, err = os.Stat(filepath.Join(dir, "2025.json"))
	assert.NoError(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "tape", DataDir: t.TempDir(), Namespace: "b"}, nil)
	require.Error(t, err)
}

func TestOpen_RedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Open(ctx, Options{Backend: "redis", Namespace: "b", Redis: RedisOptions{Addr: "127.0.0.1:1"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

// overlapStore fails if two calls run at the same time.
type overlapStore struct {
	mu      sync.Mutex
	active  int
	overlap bool
}

func (o *overlapStore) enter() {
	o.mu.Lock()
	o.active++
	if o.active > 1 {
		o.overlap = true
	}
	o.mu.Unlock()
	time.Sleep(2 * time.Millisecond)
	o.mu.Lock()
	o.active--
	o.mu.Unlock()
}

func (o *overlapStore) LoadAll(context.Context) ([]book.Book, error) { o.enter(); return nil, nil }
func (o *overlapStore) SaveAll(context.Context, []book.Book) error   { o.enter(); return nil }
func (o *overlapStore) Put(context.Context, book.Book) error         { o.enter(); return nil }
func (o *overlapStore) Delete(context.Context, string) error         { o.enter(); return nil }
func (o *overlapStore) Close() error                                 { return nil }

func TestSerialized_NoOverlap(t *testing.T) {
	inner := &overlapStore{}
	s := Serialized(inner)
	assert.Same(t, s, Serialized(s))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SaveAll(context.Background(), nil)
		}()
	}
	wg.Wait()
	assert.False(t, inner.overlap)
}

type failingStore struct{ overlapStore }

func (f *failingStore) SaveAll(context.Context, []book.Book) error { return errors.New("offline") }
func (f *failingStore) Put(context.Context, book.Book) error       { return errors.New("offline") }

func TestMirror_SecondaryFailureIsSwallowed(t *testing.T) {
	primary, err := OpenFile(t.TempDir(), "books")
	require.NoError(t, err)
	m := &Mirror{Primary: primary, Secondary: &failingStore{}}

	ctx := context.Background()
	require.NoError(t, m.SaveAll(ctx, []book.Book{newBook("a", "Alps")}))
	require.NoError(t, m.Put(ctx, newBook("b", "Bali")))

	books, err := m.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestMirror_PrimaryFailureIsReturned(t *testing.T) {
	m := &Mirror{Primary: &failingStore{}, Secondary: &overlapStore{}}
	require.Error(t, m.SaveAll(context.Background(), nil))
}
