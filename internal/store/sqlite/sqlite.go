package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/birthdaywall/internal/store"
)

// Schema creates the documents table. Each row holds one whole JSON document.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore keeps named JSON documents in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to seed rows or apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single connection: SQLite serializes writers anyway, and :memory: needs it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Row returns the medium for the named document.
func (s *SQLiteStore) Row(name string) *Row {
	return &Row{db: s.db, name: name}
}

// Row implements store.Medium over one documents row.
type Row struct {
	db   *sql.DB
	name string
}

// Read returns the row body.
func (r *Row) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := r.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, r.name).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %q: %w", r.name, store.ErrMissing)
		}
		return nil, fmt.Errorf("query document %q: %w", r.name, err)
	}
	return body, nil
}

// Write upserts the row body.
func (r *Row) Write(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO documents (name, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.ExecContext(ctx, query, r.name, data); err != nil {
		return fmt.Errorf("write document %q: %w", r.name, err)
	}
	return nil
}

// Exists reports whether the row is present.
func (r *Row) Exists(ctx context.Context) bool {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM documents WHERE name = ?`, r.name).Scan(&n)
	return err == nil && n > 0
}

func (r *Row) String() string {
	return "sqlite:" + r.name
}

// Document returns a durable document stored in row name, with its backup in row name+suffix.
func Document[T any](s *SQLiteStore, name, suffix string, count func(T) int, logger *zerolog.Logger) *store.Durable[T] {
	return store.NewDurable(s.Row(name), s.Row(name+suffix), count, logger)
}
