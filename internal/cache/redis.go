package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "networkiq:analysis:"

// RedisStore persists cache entries in Redis, for deployments where several
// extension users share one backend. Entries carry no Redis-side TTL; the
// cache enforces expiry lazily the same way it does for every other store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func redisKey(cacheKey string) string {
	return redisKeyPrefix + cacheKey
}

// Get returns the entry for a cache key, or nil on miss.
func (s *RedisStore) Get(ctx context.Context, cacheKey string) (*Entry, error) {
	data, err := s.client.Get(ctx, redisKey(cacheKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cached entry: %w", err)
	}
	return &entry, nil
}

// Set upserts an entry.
func (s *RedisStore) Set(ctx context.Context, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return s.client.Set(ctx, redisKey(entry.CacheKey), data, 0).Err()
}

// Delete removes a single entry.
func (s *RedisStore) Delete(ctx context.Context, cacheKey string) error {
	return s.client.Del(ctx, redisKey(cacheKey)).Err()
}

// DeleteAll removes every entry under the cache prefix.
func (s *RedisStore) DeleteAll(ctx context.Context) error {
	_, err := s.deleteMatching(ctx, redisKeyPrefix+"*", func(*Entry) bool { return true })
	return err
}

// DeleteByFingerprint removes all entries with the given fingerprint. Cache
// keys end in "_<fingerprint>", so the match narrows the scan before any
// payload is parsed.
func (s *RedisStore) DeleteByFingerprint(ctx context.Context, fp string) (int, error) {
	return s.deleteMatching(ctx, redisKeyPrefix+"*_"+fp, func(entry *Entry) bool {
		return entry.Fingerprint == fp
	})
}

// DeleteOlderThan removes all entries older than the cutoff.
func (s *RedisStore) DeleteOlderThan(ctx context.Context, cutoff int64) (int, error) {
	return s.deleteMatching(ctx, redisKeyPrefix+"*", func(entry *Entry) bool {
		return entry.Timestamp < cutoff
	})
}

// FindByProfileIdentity returns all entries for a profile, newest first.
func (s *RedisStore) FindByProfileIdentity(ctx context.Context, identity string) ([]*Entry, error) {
	var entries []*Entry
	err := s.scan(ctx, redisKeyPrefix+identity+"_*", func(entry *Entry) error {
		if entry.ProfileIdentity == identity {
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// Count returns the number of stored entries.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.scan(ctx, redisKeyPrefix+"*", func(*Entry) error {
		count++
		return nil
	})
	return count, err
}

// CountOlderThan returns how many entries are older than the cutoff.
func (s *RedisStore) CountOlderThan(ctx context.Context, cutoff int64) (int, error) {
	count := 0
	err := s.scan(ctx, redisKeyPrefix+"*", func(entry *Entry) error {
		if entry.Timestamp < cutoff {
			count++
		}
		return nil
	})
	return count, err
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) scan(ctx context.Context, pattern string, fn func(*Entry) error) error {
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return err
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if err := fn(&entry); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) deleteMatching(ctx context.Context, pattern string, match func(*Entry) bool) (int, error) {
	count := 0
	err := s.scan(ctx, pattern, func(entry *Entry) error {
		if !match(entry) {
			return nil
		}
		if err := s.client.Del(ctx, redisKey(entry.CacheKey)).Err(); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
