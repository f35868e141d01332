package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	// Pure-Go driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// DefaultMaxRows bounds each audit table when Config.MaxRows is zero.
const DefaultMaxRows = 10000

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("audit store closed")

const schema = `
CREATE TABLE IF NOT EXISTS running_lock_audit (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	lock_id     INTEGER NOT NULL,
	pid         INTEGER NOT NULL,
	uid         INTEGER NOT NULL,
	lock_type   INTEGER NOT NULL,
	name        TEXT NOT NULL,
	bundle_name TEXT NOT NULL,
	tag         TEXT NOT NULL,
	at          TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS power_state_audit (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	state  INTEGER NOT NULL,
	reason INTEGER NOT NULL,
	at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_running_lock_audit_lock_id ON running_lock_audit(lock_id);
`

// Config configures a Store.
type Config struct {
	// Path is the database file. Use ":memory:" for a private in-memory
	// database.
	Path string

	// MaxRows bounds each table. Zero uses DefaultMaxRows, negative keeps
	// every row.
	MaxRows int

	// Logger for operational messages (optional).
	Logger *slog.Logger
}

// Store is a SQLite-backed audit log. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	maxRows int
	logger  *slog.Logger
}

// Open opens or creates the database at cfg.Path and creates the schema.
func Open(cfg Config) (*Store, error) {
	dsn := cfg.Path + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	maxRows := cfg.MaxRows
	if maxRows == 0 {
		maxRows = DefaultMaxRows
	}
	s := &Store{db: db, maxRows: maxRows, logger: cfg.Logger}
	s.debugLog("audit store ready", "path", cfg.Path, "maxRows", maxRows)
	return s, nil
}

// Close releases the database. Calling it again has no effect.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// insert runs query and prunes table to maxRows in one transaction.
func (s *Store) insert(table, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	if s.maxRows > 0 {
		prune := `DELETE FROM ` + table + ` WHERE id NOT IN (SELECT id FROM ` + table + ` ORDER BY id DESC LIMIT ?)`
		if _, err := tx.Exec(prune, s.maxRows); err != nil {
			return fmt.Errorf("prune %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", table, err)
	}
	return nil
}

// query runs a newest-first select with an optional limit.
func (s *Store) query(base string, limit int, scan func(*sql.Rows) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}

	q := base + ` ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *Store) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) warnLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
