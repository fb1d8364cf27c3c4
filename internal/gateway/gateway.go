// Package gateway orchestrates the scoring path: cache lookup, remote LLM
// analysis, payload normalization, and the local-scorer fallback. It is the
// one place that decides which result a caller sees.
package gateway

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/networkiq/internal/normalize"
	"github.com/jonathan/networkiq/internal/scoring"
	"github.com/jonathan/networkiq/internal/types"
)

// RemoteAnalyzer is the remote analysis dependency. The concrete
// implementation lives in the analyzer package.
type RemoteAnalyzer interface {
	AnalyzeProfile(ctx context.Context, profile *types.Profile, elements []types.CriterionElement) (map[string]any, error)
}

// ResultCache is the cache dependency, keyed by (profile URL, criteria).
type ResultCache interface {
	Get(ctx context.Context, profileURL string, elements []types.CriterionElement) *types.ScoreResult
	Set(ctx context.Context, profileURL string, elements []types.CriterionElement, result *types.ScoreResult) bool
}

// Gateway resolves a score for a profile. Both the cache and the remote
// analyzer are optional; with neither, every call runs the local scorer.
type Gateway struct {
	cache  ResultCache
	remote RemoteAnalyzer
	scorer *scoring.Scorer
	logger *zap.Logger
}

// New creates a Gateway. cache and remote may be nil; a nil logger is
// replaced with a no-op logger.
func New(cache ResultCache, remote RemoteAnalyzer, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		cache:  cache,
		remote: remote,
		scorer: scoring.NewScorer(logger),
		logger: logger,
	}
}

// AnalyzeProfile resolves a score for the profile. The sequence is: cache
// hit wins; otherwise remote analysis is attempted and its normalized result
// cached; on any remote failure or degenerate payload the local scorer takes
// over. Fallback results are NOT cached, so the next call retries the remote
// path. This method never returns an error: the worst case is a local score.
func (g *Gateway) AnalyzeProfile(ctx context.Context, profile *types.Profile, elements []types.CriterionElement) *types.ScoreResult {
	if g.cache != nil {
		if cached := g.cache.Get(ctx, profile.URL, elements); cached != nil {
			g.logger.Debug("cache hit", zap.String("url", profile.URL))
			return cached
		}
	}

	if g.remote != nil {
		raw, err := g.remote.AnalyzeProfile(ctx, profile, elements)
		if err == nil && normalize.Usable(raw) {
			result := normalize.Normalize(raw)
			if g.cache != nil {
				g.cache.Set(ctx, profile.URL, elements, result)
			}
			return result
		}
		if err != nil {
			g.logger.Warn("remote analysis unavailable, falling back to local scoring",
				zap.String("url", profile.URL), zap.Error(err))
		} else {
			g.logger.Warn("remote analysis returned degenerate payload, falling back to local scoring",
				zap.String("url", profile.URL))
		}
	}

	return g.scorer.CalculateScore(profile.Corpus(), elements)
}

// AnalyzeProfiles scores a batch of profiles with bounded concurrency,
// preserving input order. Individual profiles never fail; ctx cancellation
// stops scheduling and the cancelled slots fall back to local scores.
func (g *Gateway) AnalyzeProfiles(ctx context.Context, profiles []*types.Profile, elements []types.CriterionElement, concurrency int) []*types.ScoreResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*types.ScoreResult, len(profiles))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, profile := range profiles {
		i, profile := i, profile
		group.Go(func() error {
			results[i] = g.AnalyzeProfile(ctx, profile, elements)
			return nil
		})
	}
	group.Wait()

	return results
}
