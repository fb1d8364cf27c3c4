// Package cache persists analysis results keyed jointly by profile identity
// and criteria fingerprint, with lazy TTL expiry and bulk invalidation by
// fingerprint. Every operation degrades to a miss or no-op on storage
// failure; nothing in this package is ever fatal to scoring.
package cache

import (
	"context"

	"github.com/jonathan/networkiq/internal/types"
)

// Entry is the persisted cache record. The cache owns Entry lifetime
// exclusively; no other component mutates cache storage directly.
type Entry struct {
	CacheKey        string             `json:"cache_key"`
	ProfileIdentity string             `json:"profile_identity"`
	ProfileURL      string             `json:"profile_url"`
	Fingerprint     string             `json:"fingerprint"`
	Timestamp       int64              `json:"timestamp"` // epoch milliseconds
	Result          *types.ScoreResult `json:"result"`
}

// Store is the key/value contract the cache runs on. Each individual
// operation is atomic; the cache never requires cross-operation locking.
// A miss is (nil, nil), never an error.
type Store interface {
	// Get returns the entry for a cache key, or nil on miss.
	Get(ctx context.Context, cacheKey string) (*Entry, error)
	// Set upserts an entry under its CacheKey.
	Set(ctx context.Context, entry *Entry) error
	// Delete removes a single entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, cacheKey string) error
	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) error
	// DeleteByFingerprint removes all entries with the given criteria
	// fingerprint and returns how many were removed.
	DeleteByFingerprint(ctx context.Context, fp string) (int, error)
	// DeleteOlderThan removes all entries with Timestamp < cutoff (epoch ms)
	// and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff int64) (int, error)
	// FindByProfileIdentity returns all entries for a profile, any
	// fingerprint, newest first.
	FindByProfileIdentity(ctx context.Context, identity string) ([]*Entry, error)
	// Count returns the total number of stored entries.
	Count(ctx context.Context) (int, error)
	// CountOlderThan returns how many entries have Timestamp < cutoff.
	CountOlderThan(ctx context.Context, cutoff int64) (int, error)
	// Close releases any resources held by the store.
	Close() error
}
