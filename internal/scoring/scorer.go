// Package scoring implements the deterministic local profile scorer: a
// keyword/phrase matcher producing score, tier, per-category breakdown, and
// a match list from a profile corpus and a weighted criteria set.
package scoring

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/networkiq/internal/types"
)

// Local matches come from a deterministic heuristic, not a probabilistic
// model, so they carry full confidence.
const localConfidence = 1.0

// Scorer computes local fit scores. It holds no per-call state; a single
// instance may score any number of profiles concurrently.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a Scorer. A nil logger is replaced with a no-op logger.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// CalculateScore scores a profile corpus against a criteria set. It is pure,
// deterministic, and synchronous: identical inputs always yield identical
// results. Malformed elements are skipped, never fatal.
//
// Each military-category element is awarded independently once the corpus
// shows any military indicator. A user who lists several military criteria
// has chosen to weight that dimension more heavily; the scorer does not
// collapse them into a single capped bonus.
func (s *Scorer) CalculateScore(corpus string, elements []types.CriterionElement) *types.ScoreResult {
	result := types.EmptyScoreResult()
	if len(elements) == 0 {
		return result
	}

	total := 0
	for _, element := range elements {
		if !element.Usable() {
			s.logger.Warn("skipping malformed criterion",
				zap.String("category", element.Category),
				zap.String("value", element.Value),
				zap.Int("weight", element.Weight))
			continue
		}

		matched, display := matchElement(corpus, &element)
		if !matched {
			continue
		}

		total += element.Weight
		result.Breakdown[element.Category] += element.Weight
		result.Matches = append(result.Matches, types.CanonicalMatch{
			Category:       element.Category,
			MatchedElement: display,
			Points:         element.Weight,
			Confidence:     localConfidence,
		})
	}

	result.Score = types.CapScore(total)
	result.Tier = types.TierForScore(result.Score)
	result.MatchCount = len(result.Matches)

	return result
}

// matchElement applies the category-specific matching rule and returns
// whether the element matched along with the display text to record. The
// value is trimmed first so padding never turns into a bare-space substring
// match.
func matchElement(corpus string, element *types.CriterionElement) (bool, string) {
	value := strings.ToLower(strings.TrimSpace(element.Value))
	if value == "" {
		return false, ""
	}

	if isMilitaryCriterion(element.Category, value) {
		if hasMilitaryIndicator(corpus) {
			return true, MilitaryConnectionDisplay
		}
		return false, ""
	}

	if matchesPhraseOrAllWords(corpus, value) {
		return true, displayFor(element)
	}
	return false, ""
}

// matchesPhraseOrAllWords succeeds when the exact phrase is a substring of
// the corpus, or when every constituent word independently occurs somewhere
// in it. The all-words requirement tolerates punctuation and reordering
// ("Stanford, CA — Stanford University grad") while rejecting partial
// matches ("stanford" alone does not satisfy "stanford university").
func matchesPhraseOrAllWords(corpus, value string) bool {
	if strings.Contains(corpus, value) {
		return true
	}

	words := strings.Fields(value)
	if len(words) == 0 {
		return false
	}
	for _, word := range words {
		if !strings.Contains(corpus, word) {
			return false
		}
	}
	return true
}

func displayFor(element *types.CriterionElement) string {
	if element.Display != "" {
		return element.Display
	}
	return element.Value
}
