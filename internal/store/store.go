package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/treeq/internal/dialect"
)

//go:embed schema.sql
var schemaSQL string

// Store holds a nodes table in a SQLite database.
type Store struct {
	db *sql.DB
}

// pragma is a connection setting applied on open.
type pragma struct {
	name  string
	value string
}

// filePragmas apply to databases on disk. In-memory databases keep their
// own journal, so only the timeout applies to them.
var filePragmas = []pragma{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
}

var memoryPragmas = []pragma{
	{"busy_timeout", "5000"},
}

// Open opens the database at path, creating it and the nodes table when
// missing. path may be a file name or a SQLite URI; mode=memory URIs are
// opened as in-memory databases.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One connection: SQLite has a single writer, and a shared-cache memory
	// database disappears with its last connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := filePragmas
	if isMemory(path) {
		pragmas = memoryPragmas
	}
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", p.name, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create nodes table: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenMemory opens a private in-memory database. Each call gets its own
// database, named with a fresh UUID.
func OpenMemory() (*Store, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate database name: %w", err)
	}
	return Open(MemoryDSN(id))
}

// MemoryDSN returns the shared-cache in-memory DSN for id.
func MemoryDSN(id uuid.UUID) string {
	return fmt.Sprintf("file:treeq-%s?mode=memory&cache=shared", id)
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database, for query.Executor.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect reports the SQL dialect of the store.
func (s *Store) Dialect() dialect.Dialect {
	return dialect.SQLite
}

// Pragma reads the current value of a connection setting.
func (s *Store) Pragma(ctx context.Context, name string) (string, error) {
	var value string
	if err := s.db.QueryRowContext(ctx, "PRAGMA "+name).Scan(&value); err != nil {
		return "", fmt.Errorf("read pragma %s: %w", name, err)
	}
	return value, nil
}

// Query executes a query and returns the resulting rows.
// Callers are responsible for closing the returned rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query expected to return at most one row.
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}
