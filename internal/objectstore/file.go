package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/five82/tripbook/internal/book"
)

// File is the flat fallback backend: the whole book list is one JSON blob
// under <dir>/<namespace>.json. Every Put and Delete rewrites the blob.
type File struct {
	path string
}

// OpenFile prepares a file store inside dir.
func OpenFile(dir, namespace string) (*File, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data dir: %v", ErrUnavailable, err)
	}
	return &File{path: filepath.Join(dir, namespace+".json")}, nil
}

// Path returns the blob location.
func (f *File) Path() string {
	return f.path
}

// LoadAll decodes the blob; a missing blob is an empty list.
func (f *File) LoadAll(ctx context.Context) ([]book.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var books []book.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}
	return books, nil
}

// SaveAll replaces the blob atomically.
func (f *File) SaveAll(ctx context.Context, books []book.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if books == nil {
		books = []book.Book{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".books-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Put loads the blob, replaces or appends b, and writes it back.
func (f *File) Put(ctx context.Context, b book.Book) error {
	books, err := f.LoadAll(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range books {
		if books[i].ID == b.ID {
			books[i] = b
			replaced = true
			break
		}
	}
	if !replaced {
		books = append(books, b)
	}
	return f.SaveAll(ctx, books)
}

// Delete removes id from the blob if present.
func (f *File) Delete(ctx context.Context, id string) error {
	books, err := f.LoadAll(ctx)
	if err != nil {
		return err
	}
	kept := books[:0]
	for _, b := range books {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(books) {
		return nil
	}
	return f.SaveAll(ctx, kept)
}

// Close is a no-op for the file backend.
func (f *File) Close() error {
	return nil
}
