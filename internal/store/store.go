// Package store provides SQLite-based persistence for record versions.
// The version table is append-only: rows are never updated or deleted by
// normal operation, and the highest version per thread is "current".
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the append-only version store.
type Store struct {
	db *sql.DB

	// Version assignment for a thread is a read-modify-write; the striped
	// lock serializes writers per thread without blocking other threads.
	mu      sync.Mutex
	threads map[string]*sync.Mutex
}

// New opens (or creates) the database at dbPath. Transactions begin as
// write transactions: Save does a read-modify-write inside one transaction,
// and a deferred read-to-write lock upgrade would return SQLITE_BUSY without
// honoring busy_timeout, failing concurrent writers on distinct threads.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db, threads: make(map[string]*sync.Mutex)}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	schema := `
	-- Record versions (append-only)
	CREATE TABLE IF NOT EXISTS record_versions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id TEXT NOT NULL,
		version INTEGER NOT NULL,
		inci_name TEXT,
		data JSON NOT NULL,
		summary TEXT NOT NULL,
		instruction TEXT,
		patch_ops JSON,
		batch_id TEXT,
		is_batch_item BOOLEAN DEFAULT FALSE,
		fallback_used BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL,
		UNIQUE(thread_id, version)
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_versions_thread ON record_versions(thread_id, version);
	CREATE INDEX IF NOT EXISTS idx_versions_batch ON record_versions(batch_id);
	CREATE INDEX IF NOT EXISTS idx_versions_inci ON record_versions(inci_name);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// threadLock returns the mutex serializing writes for one thread.
func (s *Store) threadLock(threadID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.threads[threadID]
	if !ok {
		m = &sync.Mutex{}
		s.threads[threadID] = m
	}
	return m
}

// parseTimestamp parses a stored timestamp in the formats SQLite may return.
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
