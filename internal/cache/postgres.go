package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/networkiq/internal/types"
)

// PostgresStore persists cache entries in PostgreSQL, for hosted-backend
// deployments where analyses are shared across devices.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore establishes a connection pool and ensures the analyses
// table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS profile_analyses (
			cache_key        TEXT PRIMARY KEY,
			profile_identity TEXT NOT NULL,
			profile_url      TEXT NOT NULL,
			fingerprint      TEXT NOT NULL,
			timestamp_ms     BIGINT NOT NULL,
			result           JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_profile_analyses_fingerprint ON profile_analyses(fingerprint);
		CREATE INDEX IF NOT EXISTS idx_profile_analyses_timestamp ON profile_analyses(timestamp_ms);
		CREATE INDEX IF NOT EXISTS idx_profile_analyses_profile ON profile_analyses(profile_identity);
	`)
	return err
}

// Get returns the entry for a cache key, or nil on miss.
func (s *PostgresStore) Get(ctx context.Context, cacheKey string) (*Entry, error) {
	var entry Entry
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT cache_key, profile_identity, profile_url, fingerprint, timestamp_ms, result
		 FROM profile_analyses WHERE cache_key = $1`, cacheKey).
		Scan(&entry.CacheKey, &entry.ProfileIdentity, &entry.ProfileURL,
			&entry.Fingerprint, &entry.Timestamp, &resultJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result types.ScoreResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("unmarshal cached result: %w", err)
	}
	entry.Result = &result

	return &entry, nil
}

// Set upserts an entry.
func (s *PostgresStore) Set(ctx context.Context, entry *Entry) error {
	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO profile_analyses (cache_key, profile_identity, profile_url, fingerprint, timestamp_ms, result)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (cache_key) DO UPDATE SET
		   profile_identity = EXCLUDED.profile_identity,
		   profile_url      = EXCLUDED.profile_url,
		   fingerprint      = EXCLUDED.fingerprint,
		   timestamp_ms     = EXCLUDED.timestamp_ms,
		   result           = EXCLUDED.result`,
		entry.CacheKey, entry.ProfileIdentity, entry.ProfileURL,
		entry.Fingerprint, entry.Timestamp, resultJSON)
	return err
}

// Delete removes a single entry.
func (s *PostgresStore) Delete(ctx context.Context, cacheKey string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM profile_analyses WHERE cache_key = $1`, cacheKey)
	return err
}

// DeleteAll removes every entry.
func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM profile_analyses`)
	return err
}

// DeleteByFingerprint removes all entries with the given fingerprint.
func (s *PostgresStore) DeleteByFingerprint(ctx context.Context, fp string) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profile_analyses WHERE fingerprint = $1`, fp)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// DeleteOlderThan removes all entries older than the cutoff.
func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM profile_analyses WHERE timestamp_ms < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// FindByProfileIdentity returns all entries for a profile, newest first.
func (s *PostgresStore) FindByProfileIdentity(ctx context.Context, identity string) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cache_key, profile_identity, profile_url, fingerprint, timestamp_ms, result
		 FROM profile_analyses WHERE profile_identity = $1 ORDER BY timestamp_ms DESC`, identity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var resultJSON []byte
		if err := rows.Scan(&entry.CacheKey, &entry.ProfileIdentity, &entry.ProfileURL,
			&entry.Fingerprint, &entry.Timestamp, &resultJSON); err != nil {
			return nil, err
		}
		var result types.ScoreResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("unmarshal cached result: %w", err)
		}
		entry.Result = &result
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profile_analyses`).Scan(&count)
	return count, err
}

// CountOlderThan returns how many entries are older than the cutoff.
func (s *PostgresStore) CountOlderThan(ctx context.Context, cutoff int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM profile_analyses WHERE timestamp_ms < $1`, cutoff).Scan(&count)
	return count, err
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
