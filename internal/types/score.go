// Package types provides type definitions for structured data used throughout the networkiq system.
package types

// Score tiers derived purely from the numeric score.
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)

// Tier boundaries.
const (
	tierHighThreshold   = 70
	tierMediumThreshold = 40
)

// MaxScore caps the total matched weight.
const MaxScore = 100

// CanonicalMatch is the single normalized match representation all
// downstream consumers operate on. It is never constructed with an empty
// MatchedElement; matches that cannot resolve a usable display string are
// dropped during normalization instead.
type CanonicalMatch struct {
	Category       string  `json:"category"`
	MatchedElement string  `json:"matched_element"`
	Points         int     `json:"points"`
	Confidence     float64 `json:"confidence"`
	SourceText     string  `json:"source_text,omitempty"`
}

// ScoreResult is the canonical output of every scoring path: local, remote,
// and cached. Score == min(100, sum of matched weights); Tier is a pure
// function of Score.
type ScoreResult struct {
	Score      int              `json:"score"`
	Tier       string           `json:"tier"`
	Breakdown  map[string]int   `json:"breakdown"`
	Matches    []CanonicalMatch `json:"matches"`
	MatchCount int              `json:"match_count"`

	// Cached marks results served from the analysis cache, for observability.
	Cached bool `json:"cached,omitempty"`

	// Advisory fields produced only by the remote analysis path, passed
	// through to the UI unmodified.
	Insights          []string `json:"insights,omitempty"`
	HiddenConnections []string `json:"hidden_connections,omitempty"`
	Recommendation    string   `json:"recommendation,omitempty"`
	Message           string   `json:"message,omitempty"`
}

// Clone returns a deep copy. Breakdown and the slices are copied so the
// caller can mutate the result without reaching whatever storage it came
// from. Nil and empty slices are preserved as-is.
func (r *ScoreResult) Clone() *ScoreResult {
	if r == nil {
		return nil
	}
	copied := *r
	if r.Breakdown != nil {
		copied.Breakdown = make(map[string]int, len(r.Breakdown))
		for category, points := range r.Breakdown {
			copied.Breakdown[category] = points
		}
	}
	if r.Matches != nil {
		copied.Matches = make([]CanonicalMatch, len(r.Matches))
		copy(copied.Matches, r.Matches)
	}
	if r.Insights != nil {
		copied.Insights = make([]string, len(r.Insights))
		copy(copied.Insights, r.Insights)
	}
	if r.HiddenConnections != nil {
		copied.HiddenConnections = make([]string, len(r.HiddenConnections))
		copy(copied.HiddenConnections, r.HiddenConnections)
	}
	return &copied
}

// TierForScore maps a numeric score to its tier bucket.
func TierForScore(score int) string {
	switch {
	case score >= tierHighThreshold:
		return TierHigh
	case score >= tierMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// CapScore clamps a raw summed score into the valid [0, MaxScore] range.
func CapScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// EmptyScoreResult returns the well-formed zero result used when no criteria
// match (or no criteria exist at all).
func EmptyScoreResult() *ScoreResult {
	return &ScoreResult{
		Score:     0,
		Tier:      TierLow,
		Breakdown: map[string]int{},
		Matches:   []CanonicalMatch{},
	}
}
