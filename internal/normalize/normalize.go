// Package normalize reconciles heterogeneous analysis payloads (remote LLM
// responses, cached entries, legacy-shaped records) into the canonical
// ScoreResult. All duck-typed field-name variants are handled here and only
// here; the rest of the system sees CanonicalMatch exclusively.
package normalize

import (
	"encoding/json"

	"github.com/jonathan/networkiq/internal/types"
)

// ConfidenceThreshold is the minimum confidence for a match to count toward
// the score display and match list.
const ConfidenceThreshold = 0.3

// Display text field variants, in priority order. The first present wins.
var displayKeys = []string{"matches_element", "text", "display", "value", "found_in_profile"}

// Keys tried when a display value is itself an object (one level only).
var unwrapKeys = []string{"display", "text", "name"}

// Points field variants, in priority order.
var pointsKeys = []string{"points", "weight", "score"}

// Normalize converts a raw analysis payload into a canonical ScoreResult.
// It never fails: every missing or malformed field degrades to its
// documented default, and a payload with no usable matches yields an empty
// match list. Callers that need to distinguish "degenerate payload" from
// "valid payload" should check Usable first.
func Normalize(raw map[string]any) *types.ScoreResult {
	result := types.EmptyScoreResult()
	if raw == nil {
		return result
	}

	matches := normalizeMatches(raw["matches"])
	result.Matches = matches
	result.MatchCount = len(matches)

	if breakdown, ok := asBreakdown(raw["breakdown"]); ok {
		result.Breakdown = breakdown
	} else {
		for _, m := range matches {
			result.Breakdown[m.Category] += m.Points
		}
	}

	if score, ok := asInt(raw["score"]); ok {
		// The remote analyzer's score is trusted as-is, clamped to range.
		result.Score = types.CapScore(score)
	} else {
		total := 0
		for _, m := range matches {
			total += m.Points
		}
		result.Score = types.CapScore(total)
	}
	result.Tier = types.TierForScore(result.Score)

	result.Insights = asStringSlice(raw["insights"])
	result.HiddenConnections = asStringSlice(raw["hidden_connections"])
	result.Recommendation, _ = asString(raw["recommendation"])
	result.Message, _ = asString(raw["message"])

	return result
}

// NormalizeJSON parses a raw JSON payload and normalizes it. The error is
// non-nil only when the payload is not a JSON object at all; the gateway
// treats that the same as a failed remote call.
func NormalizeJSON(payload []byte) (*types.ScoreResult, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// Usable reports whether the payload carries any field worth normalizing.
// A response with neither a score nor a match list is treated as if the
// remote call had failed.
func Usable(raw map[string]any) bool {
	if raw == nil {
		return false
	}
	if _, ok := asInt(raw["score"]); ok {
		return true
	}
	if items, ok := raw["matches"].([]any); ok && len(items) > 0 {
		return true
	}
	return false
}

// normalizeMatches reconciles the raw match list, dropping entries without a
// usable display string and entries below the confidence threshold.
func normalizeMatches(value any) []types.CanonicalMatch {
	items, ok := value.([]any)
	if !ok {
		return []types.CanonicalMatch{}
	}

	matches := make([]types.CanonicalMatch, 0, len(items))
	for _, item := range items {
		rawMatch, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if match, ok := normalizeMatch(rawMatch); ok {
			matches = append(matches, match)
		}
	}
	return matches
}

func normalizeMatch(raw map[string]any) (types.CanonicalMatch, bool) {
	display, displayKey := resolveDisplay(raw)
	if display == "" {
		// No usable display text: the match is dropped, never rendered
		// with empty or "undefined" text.
		return types.CanonicalMatch{}, false
	}

	confidence := 1.0
	if c, ok := asFloat(raw["confidence"]); ok {
		confidence = c
	}
	if confidence < ConfidenceThreshold {
		return types.CanonicalMatch{}, false
	}

	points := 0
	for _, key := range pointsKeys {
		if p, ok := asInt(raw[key]); ok {
			points = p
			break
		}
	}
	if points < 0 {
		points = 0
	}

	category, ok := asString(raw["category"])
	if !ok || category == "" {
		category = types.CategoryKeyword
	}

	match := types.CanonicalMatch{
		Category:       category,
		MatchedElement: display,
		Points:         points,
		Confidence:     confidence,
	}

	// found_in_profile carries the source excerpt when it was not already
	// consumed as the display text.
	if displayKey != "found_in_profile" {
		match.SourceText, _ = asString(raw["found_in_profile"])
	}

	return match, true
}

// resolveDisplay walks the display-key priority chain, unwrapping one level
// of object indirection, and returns the resolved string plus the key that
// produced it.
func resolveDisplay(raw map[string]any) (string, string) {
	for _, key := range displayKeys {
		value, present := raw[key]
		if !present || value == nil {
			continue
		}

		if s, ok := asString(value); ok {
			if usableDisplay(s) {
				return s, key
			}
			continue
		}

		if obj, ok := value.(map[string]any); ok {
			for _, inner := range unwrapKeys {
				if s, ok := asString(obj[inner]); ok && usableDisplay(s) {
					return s, key
				}
			}
		}
	}
	return "", ""
}

// usableDisplay rejects empty strings and the literal "undefined" that
// legacy records serialized when a field was missing upstream.
func usableDisplay(s string) bool {
	return s != "" && s != "undefined"
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(value any) (int, bool) {
	f, ok := asFloat(value)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func asStringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := asString(item); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asBreakdown(value any) (map[string]int, bool) {
	raw, ok := value.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, false
	}
	breakdown := make(map[string]int, len(raw))
	for category, v := range raw {
		if points, ok := asInt(v); ok {
			breakdown[category] = points
		}
	}
	if len(breakdown) == 0 {
		return nil, false
	}
	return breakdown, true
}
