package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/tripbook/internal/book"
	"github.com/five82/tripbook/internal/objectstore"
)

func TestParseBaseURL_Normalizes(t *testing.T) {
	if _, err := parseBaseURL("  "); err == nil {
		t.Fatal("parseBaseURL accepted an empty url")
	}

	u, err := parseBaseURL("sync.example.com:8080/ignored?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != "sync.example.com:8080" {
		t.Fatalf("url = %q, want http://sync.example.com:8080", u.String())
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

// fakeService is a tiny in-memory implementation of the sync API.
type fakeService struct {
	mu        sync.Mutex
	books     map[string]book.Book
	userAgent string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userAgent = r.Header.Get("User-Agent")

	switch {
	case r.URL.Path == "/api/books" && r.Method == http.MethodGet:
		payload := booksPayload{Books: []book.Book{}}
		for _, b := range f.books {
			payload.Books = append(payload.Books, b)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	case r.URL.Path == "/api/books" && r.Method == http.MethodPut:
		var payload booksPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.books = make(map[string]book.Book)
		for _, b := range payload.Books {
			f.books[b.ID] = b
		}
		w.WriteHeader(http.StatusNoContent)
	case strings.HasPrefix(r.URL.Path, "/api/books/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/books/")
		switch r.Method {
		case http.MethodPut:
			var b book.Book
			if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.ID != id {
				http.Error(w, "bad book", http.StatusBadRequest)
				return
			}
			f.books[id] = b
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if _, ok := f.books[id]; !ok {
				http.NotFound(w, r)
				return
			}
			delete(f.books, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		http.NotFound(w, r)
	}
}

func TestClient_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := &fakeService{books: map[string]book.Book{}}
	server := httptest.NewServer(svc)
	t.Cleanup(server.Close)

	c, err := NewClient(Options{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	if err := c.SaveAll(ctx, []book.Book{{ID: "a", Title: "Alps"}, {ID: "b", Title: "Bali"}}); err != nil {
		t.Fatalf("SaveAll returned error: %v", err)
	}
	if err := c.Put(ctx, book.Book{ID: "c", Title: "Crete"}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete of a missing book returned error: %v", err)
	}

	books, err := c.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("LoadAll = %d books, want 2", len(books))
	}

	if err := c.SaveAll(ctx, nil); err != nil {
		t.Fatalf("SaveAll(nil) returned error: %v", err)
	}
	if books, _ := c.LoadAll(ctx); len(books) != 0 {
		t.Fatalf("LoadAll after clearing = %d books, want 0", len(books))
	}

	if !strings.HasPrefix(svc.userAgent, "tripbook/") {
		t.Fatalf("User-Agent = %q, want tripbook/*", svc.userAgent)
	}
}

func TestClient_PutRequiresID(t *testing.T) {
	c, err := NewClient(Options{URL: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Put(context.Background(), book.Book{}); err == nil {
		t.Fatal("Put returned nil error, want error")
	}
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
			return
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	if _, err := c.LoadAll(context.Background()); err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("LoadAll error = %v, want decode response error", err)
	}

	err = c.SaveAll(context.Background(), nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("SaveAll error = %v, want status 500", err)
	}
}

func TestClient_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(Options{URL: addr})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.SaveAll(context.Background(), nil); !errors.Is(err, objectstore.ErrUnavailable) {
		t.Fatalf("SaveAll error = %v, want ErrUnavailable", err)
	}
}

func TestClient_RateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(&fakeService{books: map[string]book.Book{}})
	t.Cleanup(server.Close)

	c, err := NewClient(Options{URL: server.URL, RequestsPerSecond: 20})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	// The bucket holds 20 tokens; the 41st request must wait about a second.
	start := time.Now()
	for i := 0; i < 41; i++ {
		if err := c.Put(context.Background(), book.Book{ID: "x"}); err != nil {
			t.Fatalf("Put returned error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond {
		t.Fatalf("41 requests took %v, want throttling to about 1s", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Put(ctx, book.Book{ID: "x"}); err == nil {
		t.Fatal("Put with a cancelled context returned nil error")
	}
}
