package objectstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/tripbook/internal/book"
)

// schemaVersion is recorded in PRAGMA user_version. There is a single
// version so far and therefore no migration steps.
const schemaVersion = 1

var namespacePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// SQLite keeps one row per book in a namespaced table of a local database
// file. Book payloads are stored as JSON.
type SQLite struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (creating if needed) the database at path and prepares the
// namespace table.
func OpenSQLite(ctx context.Context, path, namespace string) (*SQLite, error) {
	table := sqlNamespace(namespace)
	if !namespacePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid namespace %q", namespace)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable wal: %v", ErrUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", ErrUnavailable, err)
	}

	s := &SQLite{db: db, table: table}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		return fmt.Errorf("schema version %d is newer than supported %d", version, schemaVersion)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// LoadAll returns every stored book ordered by id.
func (s *SQLite) LoadAll(ctx context.Context) ([]book.Book, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT data FROM %s ORDER BY id", s.table))
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		var b book.Book
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, fmt.Errorf("decode book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

// SaveAll clears the table and inserts every book inside one transaction.
func (s *SQLite) SaveAll(ctx context.Context, books []book.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("clear books: %w", err)
	}
	for _, b := range books {
		if err := s.upsert(ctx, tx, b); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit books: %w", err)
	}
	return nil
}

// Put inserts or replaces one book.
func (s *SQLite) Put(ctx context.Context, b book.Book) error {
	return s.upsert(ctx, s.db, b)
}

// Delete removes one book; deleting a missing id is not an error.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.table), id); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) upsert(ctx context.Context, db execer, b book.Book) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode book %s: %w", b.ID, err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, s.table)
	if _, err := db.ExecContext(ctx, query, b.ID, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("store book %s: %w", b.ID, err)
	}
	return nil
}

func sqlNamespace(namespace string) string {
	out := make([]rune, 0, len(namespace))
	for _, r := range namespace {
		if r == '-' || r == '.' || r == ' ' {
			r = '_'
		}
		out = append(out, r)
	}
	return string(out)
}
