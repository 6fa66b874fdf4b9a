package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/midolearning/village/internal/village"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed village repository.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

var _ village.Repository = (*Store)(nil)

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection: transactions serialize and pragmas stick.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Update runs fn in a read-write transaction, committing when fn returns nil.
func (s *Store) Update(ctx context.Context, fn func(village.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(s.newTx(sqlTx)); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// View runs fn in a transaction that is always rolled back.
func (s *Store) View(ctx context.Context, fn func(village.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()
	return fn(s.newTx(sqlTx))
}

// tx implements village.Tx over one SQL transaction.
type tx struct {
	tx  *sql.Tx
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

var _ village.Tx = (*tx)(nil)

func (s *Store) newTx(sqlTx *sql.Tx) *tx {
	return &tx{tx: sqlTx, b: entsql.Dialect(dialect.SQLite), seq: s.seq}
}

type querier interface {
	Query() (string, []any)
}

func (t *tx) exec(ctx context.Context, q querier) (sql.Result, error) {
	query, args := q.Query()
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *tx) query(ctx context.Context, q querier) (*sql.Rows, error) {
	query, args := q.Query()
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *tx) queryRow(ctx context.Context, q querier) *sql.Row {
	query, args := q.Query()
	return t.tx.QueryRowContext(ctx, query, args...)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Times are stored as UTC unix nanoseconds so range filters compare numbers.
func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// DefaultDBPath resolves the database file path in priority order:
// 1. VILLAGE_DB environment variable
// 2. $XDG_DATA_HOME/village/village.db
// 3. ~/.local/share/village/village.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("VILLAGE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "village", "village.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
