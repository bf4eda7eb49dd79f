package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout = 5 * time.Second
	cacheDirPermission = 0o755
)

const schema = `CREATE TABLE IF NOT EXISTS responses (
    key        TEXT PRIMARY KEY,
    body       BLOB NOT NULL,
    fetched_at TEXT NOT NULL
)`

// SQLiteStore is a Store backed by a single SQLite file. A lock file next to
// the database keeps a second process from writing to it concurrently.
type SQLiteStore struct {
	db          *sql.DB
	lock        *flock.Flock
	now         func() time.Time
	busyTimeout time.Duration
}

// OpenSQLite opens or creates the cache database at path.
// Returns ErrLocked when another process holds the cache.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		now:         func() time.Time { return time.Now().UTC() },
		busyTimeout: defaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), cacheDirPermission); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	s.lock = flock.New(path + ".lock")
	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock cache: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = s.lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s.db = db

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = s.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Get returns the cached entry for key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, error) {
	var (
		body      []byte
		fetchedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM responses WHERE key = ?`, key,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query cache: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse fetched_at %q: %w", fetchedAt, err)
	}
	return Entry{Key: key, Body: body, FetchedAt: ts}, nil
}

// Put stores body under key.
func (s *SQLiteStore) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, body, fetched_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET body = excluded.body, fetched_at = excluded.fetched_at`,
		key, body, s.now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Close closes the database and releases the lock.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}
