package cache

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a process-local Store. It backs tests and serves as the
// degraded fallback when no persistent store can be opened: the cache keeps
// working, it just forgets on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get returns the entry for a cache key, or nil on miss.
func (s *MemoryStore) Get(_ context.Context, cacheKey string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[cacheKey]
	if !ok {
		return nil, nil
	}
	copied := *entry
	return &copied, nil
}

// Set upserts an entry.
func (s *MemoryStore) Set(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *entry
	s.entries[entry.CacheKey] = &copied
	return nil
}

// Delete removes a single entry.
func (s *MemoryStore) Delete(_ context.Context, cacheKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, cacheKey)
	return nil
}

// DeleteAll removes every entry.
func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	return nil
}

// DeleteByFingerprint removes all entries with the given fingerprint.
func (s *MemoryStore) DeleteByFingerprint(_ context.Context, fp string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		if entry.Fingerprint == fp {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

// DeleteOlderThan removes all entries older than the cutoff.
func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, entry := range s.entries {
		if entry.Timestamp < cutoff {
			delete(s.entries, key)
			count++
		}
	}
	return count, nil
}

// FindByProfileIdentity returns all entries for a profile, newest first.
func (s *MemoryStore) FindByProfileIdentity(_ context.Context, identity string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []*Entry
	for _, entry := range s.entries {
		if entry.ProfileIdentity == identity {
			copied := *entry
			found = append(found, &copied)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].Timestamp > found[j].Timestamp
	})
	return found, nil
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries), nil
}

// CountOlderThan returns how many entries are older than the cutoff.
func (s *MemoryStore) CountOlderThan(_ context.Context, cutoff int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, entry := range s.entries {
		if entry.Timestamp < cutoff {
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
