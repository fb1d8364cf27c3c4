package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/networkiq/internal/fingerprint"
	"github.com/jonathan/networkiq/internal/types"
)

func testElements() []types.CriterionElement {
	return []types.CriterionElement{
		{Category: "education", Value: "stanford university", Weight: 30},
		{Category: "military", Value: "navy", Weight: 30},
	}
}

func testResult() *types.ScoreResult {
	return &types.ScoreResult{
		Score:      60,
		Tier:       types.TierMedium,
		Breakdown:  map[string]int{"education": 30, "military": 30},
		MatchCount: 2,
		Matches: []types.CanonicalMatch{
			{Category: "education", MatchedElement: "Stanford University", Points: 30, Confidence: 1.0},
			{Category: "military", MatchedElement: "Military Connection", Points: 30, Confidence: 1.0},
		},
	}
}

// fixedClock returns a settable time source.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T) (*AnalysisCache, *fixedClock) {
	t.Helper()
	clock := &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	c := New(NewMemoryStore(), zap.NewNop(), WithClock(clock.now))
	return c, clock
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	ok := c.Set(ctx, "https://x/in/alice", testElements(), testResult())
	require.True(t, ok)

	got := c.Get(ctx, "https://x/in/alice", testElements())
	require.NotNil(t, got)
	assert.True(t, got.Cached)

	want := testResult()
	want.Cached = true
	assert.Equal(t, want, got)
}

func TestCache_HitIsIsolatedFromStore(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.True(t, c.Set(ctx, "https://x/in/alice", testElements(), testResult()))

	first := c.Get(ctx, "https://x/in/alice", testElements())
	require.NotNil(t, first)
	first.Breakdown["education"] = 99
	first.Matches[0].MatchedElement = "mutated"

	second := c.Get(ctx, "https://x/in/alice", testElements())
	require.NotNil(t, second)
	assert.Equal(t, 30, second.Breakdown["education"])
	assert.Equal(t, "Stanford University", second.Matches[0].MatchedElement)
}

func TestCache_SetIsIsolatedFromCaller(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	input := testResult()
	require.True(t, c.Set(ctx, "https://x/in/alice", testElements(), input))

	input.Breakdown["education"] = 99
	input.Matches[0].MatchedElement = "mutated"

	got := c.Get(ctx, "https://x/in/alice", testElements())
	require.NotNil(t, got)
	assert.Equal(t, 30, got.Breakdown["education"])
	assert.Equal(t, "Stanford University", got.Matches[0].MatchedElement)
}

func TestCache_MissOnUnknownProfile(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	assert.Nil(t, c.Get(ctx, "https://x/in/nobody", testElements()))
}

func TestCache_MissOnDifferentCriteria(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())

	other := testElements()
	other[0].Value = "mit"
	assert.Nil(t, c.Get(ctx, "https://x/in/alice", other))
}

func TestCache_LazyTTLExpiry(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t)

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())

	clock.advance(24*time.Hour + time.Minute)

	assert.Nil(t, c.Get(ctx, "https://x/in/alice", testElements()))

	// The expired entry was deleted as a side effect of being observed.
	total, _ := c.Stats(ctx)
	assert.Equal(t, 0, total)
}

func TestCache_EntryJustInsideTTLStillServed(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t)

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())

	clock.advance(24*time.Hour - time.Minute)

	assert.NotNil(t, c.Get(ctx, "https://x/in/alice", testElements()))
}

func TestCache_ClearForFingerprint(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	oldElements := testElements()
	newElements := testElements()
	newElements[0].Value = "mit"

	c.Set(ctx, "https://x/in/alice", oldElements, testResult())
	c.Set(ctx, "https://x/in/bob", oldElements, testResult())
	c.Set(ctx, "https://x/in/carol", newElements, testResult())

	removed := c.ClearForFingerprint(ctx, fingerprint.Fingerprint(oldElements))

	assert.Equal(t, 2, removed)
	assert.Nil(t, c.Get(ctx, "https://x/in/alice", oldElements))
	assert.Nil(t, c.Get(ctx, "https://x/in/bob", oldElements))
	assert.NotNil(t, c.Get(ctx, "https://x/in/carol", newElements))
}

func TestCache_ClearExpired(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t)

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())
	clock.advance(25 * time.Hour)
	c.Set(ctx, "https://x/in/bob", testElements(), testResult())

	removed := c.ClearExpired(ctx)

	assert.Equal(t, 1, removed)
	assert.NotNil(t, c.Get(ctx, "https://x/in/bob", testElements()))
}

func TestCache_ClearAll(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())
	c.Set(ctx, "https://x/in/bob", testElements(), testResult())

	require.True(t, c.ClearAll(ctx))

	total, _ := c.Stats(ctx)
	assert.Equal(t, 0, total)
}

func TestCache_DeleteSingleKey(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())

	require.True(t, c.Delete(ctx, Key("https://x/in/alice", testElements())))
	assert.Nil(t, c.Get(ctx, "https://x/in/alice", testElements()))
}

func TestCache_HasAnalysis(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(t)

	assert.False(t, c.HasAnalysis(ctx, "https://x/in/alice"))

	c.Set(ctx, "https://x/in/alice", testElements(), testResult())
	assert.True(t, c.HasAnalysis(ctx, "https://x/in/alice"))

	clock.advance(25 * time.Hour)
	assert.False(t, c.HasAnalysis(ctx, "https://x/in/alice"))
}

func TestCache_CachedFlagNotPersisted(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	result := testResult()
	result.Cached = true // a previously-cached result being re-stored
	c.Set(ctx, "https://x/in/alice", testElements(), result)

	got := c.Get(ctx, "https://x/in/alice", testElements())
	require.NotNil(t, got)
	assert.True(t, got.Cached)
	assert.Equal(t, 60, got.Score)
}

func TestProfileIdentity(t *testing.T) {
	cases := map[string]string{
		"https://www.linkedin.com/in/alice-johnson-123/": "alice-johnson-123",
		"https://x/in/alice":                             "alice",
		"https://www.linkedin.com/in/Bob?trk=nav":        "bob",
		"https://example.com/people/carol":               "https-example-com-people-carol",
	}

	for url, want := range cases {
		assert.Equal(t, want, ProfileIdentity(url), "url %s", url)
	}
}

func TestKey_JoinsIdentityAndFingerprint(t *testing.T) {
	key := Key("https://x/in/alice", testElements())

	assert.Equal(t, "alice_"+fingerprint.Fingerprint(testElements()), key)
}

// failingStore simulates an unavailable storage layer.
type failingStore struct{}

var errStorage = errors.New("storage unavailable")

func (failingStore) Get(context.Context, string) (*Entry, error) { return nil, errStorage }
func (failingStore) Set(context.Context, *Entry) error           { return errStorage }
func (failingStore) Delete(context.Context, string) error        { return errStorage }
func (failingStore) DeleteAll(context.Context) error             { return errStorage }
func (failingStore) DeleteByFingerprint(context.Context, string) (int, error) {
	return 0, errStorage
}
func (failingStore) DeleteOlderThan(context.Context, int64) (int, error) { return 0, errStorage }
func (failingStore) FindByProfileIdentity(context.Context, string) ([]*Entry, error) {
	return nil, errStorage
}
func (failingStore) Count(context.Context) (int, error)                 { return 0, errStorage }
func (failingStore) CountOlderThan(context.Context, int64) (int, error) { return 0, errStorage }
func (failingStore) Close() error                                       { return nil }

func TestCache_StorageFailuresDegradeNeverThrow(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{}, zap.NewNop())

	assert.Nil(t, c.Get(ctx, "https://x/in/alice", testElements()))
	assert.False(t, c.Set(ctx, "https://x/in/alice", testElements(), testResult()))
	assert.False(t, c.Delete(ctx, "any"))
	assert.False(t, c.ClearAll(ctx))
	assert.Equal(t, 0, c.ClearExpired(ctx))
	assert.Equal(t, 0, c.ClearForFingerprint(ctx, "abc"))
	assert.False(t, c.HasAnalysis(ctx, "https://x/in/alice"))

	total, expired := c.Stats(ctx)
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, expired)
}
