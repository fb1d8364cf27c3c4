package cache

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/networkiq/internal/fingerprint"
	"github.com/jonathan/networkiq/internal/types"
)

// DefaultTTL is the analysis validity window. Expiry is enforced lazily on
// read: an expired entry is deleted as a side effect of being observed.
const DefaultTTL = 24 * time.Hour

// AnalysisCache caches ScoreResults per (profile, criteria) pair. All
// methods swallow storage errors: reads degrade to misses, writes to no-ops,
// with the failure logged.
type AnalysisCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger

	// now is injectable for TTL tests.
	now func() time.Time
}

// Option configures an AnalysisCache.
type Option func(*AnalysisCache)

// WithTTL overrides the default 24h entry validity window.
func WithTTL(ttl time.Duration) Option {
	return func(c *AnalysisCache) { c.ttl = ttl }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *AnalysisCache) { c.now = now }
}

// New creates an AnalysisCache on top of a Store. A nil logger is replaced
// with a no-op logger.
func New(store Store, logger *zap.Logger, opts ...Option) *AnalysisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &AnalysisCache{
		store:  store,
		ttl:    DefaultTTL,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key for a (profile, criteria) pair.
func Key(profileURL string, elements []types.CriterionElement) string {
	return ProfileIdentity(profileURL) + "_" + fingerprint.Fingerprint(elements)
}

var profilePathPattern = regexp.MustCompile(`/in/([^/?#]+)`)
var identitySanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// ProfileIdentity extracts the canonical path segment from a profile URL
// ("/in/<slug>"), falling back to a sanitized form of the full URL when no
// recognizable pattern exists.
func ProfileIdentity(profileURL string) string {
	url := strings.ToLower(strings.TrimSpace(profileURL))
	if m := profilePathPattern.FindStringSubmatch(url); m != nil {
		return identitySanitizer.ReplaceAllString(m[1], "-")
	}
	return strings.Trim(identitySanitizer.ReplaceAllString(url, "-"), "-")
}

// Get returns the cached result for a (profile, criteria) pair, or nil on
// miss. Entries older than the TTL are deleted and reported as misses;
// storage failures are logged and reported as misses.
func (c *AnalysisCache) Get(ctx context.Context, profileURL string, elements []types.CriterionElement) *types.ScoreResult {
	key := Key(profileURL, elements)

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, treating as miss", zap.String("key", key), zap.Error(err))
		return nil
	}
	if entry == nil || entry.Result == nil {
		return nil
	}

	age := c.now().UnixMilli() - entry.Timestamp
	if age > c.ttl.Milliseconds() {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to delete expired entry", zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	// Deep copy so callers mutating the result cannot corrupt stores that
	// hand back shared structures (the in-memory backend).
	result := entry.Result.Clone()
	result.Cached = true
	return result
}

// Set upserts a cache entry for a (profile, criteria) pair. Returns false,
// never an error, on storage failure.
func (c *AnalysisCache) Set(ctx context.Context, profileURL string, elements []types.CriterionElement, result *types.ScoreResult) bool {
	if result == nil {
		return false
	}

	stored := result.Clone()
	stored.Cached = false

	entry := &Entry{
		CacheKey:        Key(profileURL, elements),
		ProfileIdentity: ProfileIdentity(profileURL),
		ProfileURL:      profileURL,
		Fingerprint:     fingerprint.Fingerprint(elements),
		Timestamp:       c.now().UnixMilli(),
		Result:          stored,
	}

	if err := c.store.Set(ctx, entry); err != nil {
		c.logger.Warn("cache write failed", zap.String("key", entry.CacheKey), zap.Error(err))
		return false
	}
	return true
}

// Delete removes a single entry by cache key.
func (c *AnalysisCache) Delete(ctx context.Context, cacheKey string) bool {
	if err := c.store.Delete(ctx, cacheKey); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", cacheKey), zap.Error(err))
		return false
	}
	return true
}

// ClearAll removes every cached analysis.
func (c *AnalysisCache) ClearAll(ctx context.Context) bool {
	if err := c.store.DeleteAll(ctx); err != nil {
		c.logger.Warn("cache clear failed", zap.Error(err))
		return false
	}
	return true
}

// ClearExpired sweeps entries past the TTL and returns how many were
// removed.
func (c *AnalysisCache) ClearExpired(ctx context.Context) int {
	cutoff := c.now().Add(-c.ttl).UnixMilli()
	count, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.logger.Warn("expired sweep failed", zap.Error(err))
		return 0
	}
	return count
}

// ClearForFingerprint removes every entry scored under the given criteria
// fingerprint. Used when a new résumé upload invalidates old analyses.
func (c *AnalysisCache) ClearForFingerprint(ctx context.Context, fp string) int {
	count, err := c.store.DeleteByFingerprint(ctx, fp)
	if err != nil {
		c.logger.Warn("fingerprint sweep failed", zap.String("fingerprint", fp), zap.Error(err))
		return 0
	}
	return count
}

// HasAnalysis reports whether any non-expired analysis exists for a profile,
// under any criteria fingerprint.
func (c *AnalysisCache) HasAnalysis(ctx context.Context, profileURL string) bool {
	entries, err := c.store.FindByProfileIdentity(ctx, ProfileIdentity(profileURL))
	if err != nil {
		c.logger.Warn("profile lookup failed", zap.String("url", profileURL), zap.Error(err))
		return false
	}

	cutoff := c.now().Add(-c.ttl).UnixMilli()
	for _, entry := range entries {
		if entry.Timestamp >= cutoff {
			return true
		}
	}
	return false
}

// Stats reports the total entry count and how many of those are already
// past the TTL.
func (c *AnalysisCache) Stats(ctx context.Context) (total int, expired int) {
	total, err := c.store.Count(ctx)
	if err != nil {
		c.logger.Warn("cache stats failed", zap.Error(err))
		return 0, 0
	}

	cutoff := c.now().Add(-c.ttl).UnixMilli()
	expired, err = c.store.CountOlderThan(ctx, cutoff)
	if err != nil {
		c.logger.Warn("cache stats failed", zap.Error(err))
		return total, 0
	}

	return total, expired
}
