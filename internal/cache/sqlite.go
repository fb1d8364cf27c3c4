package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jonathan/networkiq/internal/types"
)

// SQLiteStore persists cache entries in an embedded SQLite database. This is
// the default backend: it needs no external service and survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		cache_key        TEXT PRIMARY KEY,
		profile_identity TEXT NOT NULL,
		profile_url      TEXT NOT NULL,
		fingerprint      TEXT NOT NULL,
		timestamp_ms     INTEGER NOT NULL,
		result           TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_fingerprint ON analyses(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_analyses_timestamp ON analyses(timestamp_ms);
	CREATE INDEX IF NOT EXISTS idx_analyses_profile ON analyses(profile_identity);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the entry for a cache key, or nil on miss.
func (s *SQLiteStore) Get(ctx context.Context, cacheKey string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT cache_key, profile_identity, profile_url, fingerprint, timestamp_ms, result
		 FROM analyses WHERE cache_key = ?`, cacheKey)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Set upserts an entry.
func (s *SQLiteStore) Set(ctx context.Context, entry *Entry) error {
	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (cache_key, profile_identity, profile_url, fingerprint, timestamp_ms, result)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET
		   profile_identity = excluded.profile_identity,
		   profile_url      = excluded.profile_url,
		   fingerprint      = excluded.fingerprint,
		   timestamp_ms     = excluded.timestamp_ms,
		   result           = excluded.result`,
		entry.CacheKey, entry.ProfileIdentity, entry.ProfileURL,
		entry.Fingerprint, entry.Timestamp, string(resultJSON))
	return err
}

// Delete removes a single entry.
func (s *SQLiteStore) Delete(ctx context.Context, cacheKey string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE cache_key = ?`, cacheKey)
	return err
}

// DeleteAll removes every entry.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyses`)
	return err
}

// DeleteByFingerprint removes all entries with the given fingerprint.
func (s *SQLiteStore) DeleteByFingerprint(ctx context.Context, fp string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE fingerprint = ?`, fp)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

// DeleteOlderThan removes all entries older than the cutoff.
func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE timestamp_ms < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return affected(res)
}

// FindByProfileIdentity returns all entries for a profile, newest first.
func (s *SQLiteStore) FindByProfileIdentity(ctx context.Context, identity string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cache_key, profile_identity, profile_url, fingerprint, timestamp_ms, result
		 FROM analyses WHERE profile_identity = ? ORDER BY timestamp_ms DESC`, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analyses`).Scan(&count)
	return count, err
}

// CountOlderThan returns how many entries are older than the cutoff.
func (s *SQLiteStore) CountOlderThan(ctx context.Context, cutoff int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analyses WHERE timestamp_ms < ?`, cutoff).Scan(&count)
	return count, err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var resultJSON string

	err := row.Scan(&entry.CacheKey, &entry.ProfileIdentity, &entry.ProfileURL,
		&entry.Fingerprint, &entry.Timestamp, &resultJSON)
	if err != nil {
		return nil, err
	}

	var result types.ScoreResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	entry.Result = &result

	return &entry, nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
