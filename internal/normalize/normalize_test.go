package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/networkiq/internal/types"
)

func TestNormalize_ConfidenceFilteringBoundary(t *testing.T) {
	raw := map[string]any{
		"matches": []any{
			map[string]any{"category": "skill", "matches_element": "X", "points": 10.0, "confidence": 0.29},
			map[string]any{"category": "skill", "matches_element": "Y", "points": 5.0, "confidence": 0.3},
		},
	}

	result := Normalize(raw)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Y", result.Matches[0].MatchedElement)
	assert.Equal(t, map[string]int{"skill": 5}, result.Breakdown)
	assert.Equal(t, 5, result.Score)
}

func TestNormalize_DisplayPriorityChain(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"matches_element wins", map[string]any{"matches_element": "a", "text": "b", "display": "c"}, "a"},
		{"text next", map[string]any{"text": "b", "display": "c", "value": "d"}, "b"},
		{"display next", map[string]any{"display": "c", "value": "d"}, "c"},
		{"value next", map[string]any{"value": "d", "found_in_profile": "e"}, "d"},
		{"found_in_profile last", map[string]any{"found_in_profile": "e"}, "e"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Normalize(map[string]any{"matches": []any{tc.raw}})
			require.Len(t, result.Matches, 1)
			assert.Equal(t, tc.want, result.Matches[0].MatchedElement)
		})
	}
}

func TestNormalize_UnwrapsObjectDisplay(t *testing.T) {
	raw := map[string]any{
		"matches": []any{
			map[string]any{
				"matches_element": map[string]any{"display": "Stanford University"},
				"points":          30.0,
			},
		},
	}

	result := Normalize(raw)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "Stanford University", result.Matches[0].MatchedElement)
}

func TestNormalize_DropsMatchesWithoutUsableDisplay(t *testing.T) {
	raw := map[string]any{
		"matches": []any{
			map[string]any{"points": 10.0},
			map[string]any{"matches_element": "", "points": 10.0},
			map[string]any{"matches_element": "undefined", "points": 10.0},
			map[string]any{"matches_element": map[string]any{"id": 7.0}, "points": 10.0},
		},
	}

	result := Normalize(raw)

	assert.Empty(t, result.Matches)
	assert.Equal(t, 0, result.Score)
}

func TestNormalize_PointsFallbackChain(t *testing.T) {
	raw := map[string]any{
		"matches": []any{
			map[string]any{"text": "a", "points": 10.0, "weight": 99.0},
			map[string]any{"text": "b", "weight": 7.0, "score": 99.0},
			map[string]any{"text": "c", "score": 3.0},
			map[string]any{"text": "d"},
		},
	}

	result := Normalize(raw)

	require.Len(t, result.Matches, 4)
	assert.Equal(t, 10, result.Matches[0].Points)
	assert.Equal(t, 7, result.Matches[1].Points)
	assert.Equal(t, 3, result.Matches[2].Points)
	assert.Equal(t, 0, result.Matches[3].Points)
}

func TestNormalize_ConfidenceDefaultsToFull(t *testing.T) {
	raw := map[string]any{
		"matches": []any{map[string]any{"text": "a", "points": 5.0}},
	}

	result := Normalize(raw)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, 1.0, result.Matches[0].Confidence)
}

func TestNormalize_RemoteScoreTrustedAndTierRecomputed(t *testing.T) {
	raw := map[string]any{
		"score": 72.0,
		"tier":  "medium", // remote tier label is ignored
		"matches": []any{
			map[string]any{"text": "a", "points": 5.0},
		},
	}

	result := Normalize(raw)

	assert.Equal(t, 72, result.Score)
	assert.Equal(t, types.TierHigh, result.Tier)
}

func TestNormalize_ScoreClampedToRange(t *testing.T) {
	result := Normalize(map[string]any{"score": 250.0})
	assert.Equal(t, 100, result.Score)

	result = Normalize(map[string]any{"score": -10.0})
	assert.Equal(t, 0, result.Score)
}

func TestNormalize_BreakdownRebuiltFromFilteredMatches(t *testing.T) {
	raw := map[string]any{
		"matches": []any{
			map[string]any{"category": "company", "text": "a", "points": 25.0},
			map[string]any{"category": "company", "text": "b", "points": 10.0},
			map[string]any{"category": "skill", "text": "c", "points": 10.0, "confidence": 0.1},
		},
	}

	result := Normalize(raw)

	assert.Equal(t, map[string]int{"company": 35}, result.Breakdown)
}

func TestNormalize_ExplicitBreakdownPreserved(t *testing.T) {
	raw := map[string]any{
		"breakdown": map[string]any{"military": 30.0, "education": 25.0},
		"matches":   []any{map[string]any{"category": "skill", "text": "a", "points": 5.0}},
	}

	result := Normalize(raw)

	assert.Equal(t, map[string]int{"military": 30, "education": 25}, result.Breakdown)
}

func TestNormalize_AdvisoryFieldsPassThrough(t *testing.T) {
	raw := map[string]any{
		"score":              40.0,
		"insights":           []any{"Shared service background"},
		"hidden_connections": []any{"Fellow veteran", "Same university"},
		"recommendation":     "Mention the academy.",
		"message":            "Hi there!",
	}

	result := Normalize(raw)

	assert.Equal(t, []string{"Shared service background"}, result.Insights)
	assert.Equal(t, []string{"Fellow veteran", "Same university"}, result.HiddenConnections)
	assert.Equal(t, "Mention the academy.", result.Recommendation)
	assert.Equal(t, "Hi there!", result.Message)
}

func TestNormalize_SourceTextFromFoundInProfile(t *testing.T) {
	raw := map[string]any{
		"matches": []any{
			map[string]any{"matches_element": "navy", "found_in_profile": "served in the navy", "points": 30.0},
		},
	}

	result := Normalize(raw)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, "served in the navy", result.Matches[0].SourceText)
}

func TestNormalize_NeverPanicsOnGarbage(t *testing.T) {
	payloads := []map[string]any{
		nil,
		{},
		{"matches": "not a list"},
		{"matches": []any{"not a map", 42.0, nil}},
		{"score": "not a number", "breakdown": []any{1.0}},
		{"insights": map[string]any{"a": "b"}},
	}

	for _, raw := range payloads {
		result := Normalize(raw)
		assert.NotNil(t, result)
		assert.NotNil(t, result.Matches)
		assert.NotNil(t, result.Breakdown)
		assert.Equal(t, types.TierLow, result.Tier)
	}
}

func TestNormalizeJSON_InvalidPayload(t *testing.T) {
	_, err := NormalizeJSON([]byte("not json at all"))
	assert.Error(t, err)
}

func TestNormalizeJSON_ValidPayload(t *testing.T) {
	result, err := NormalizeJSON([]byte(`{"score": 55, "matches": [{"matches_element": "Acme", "points": 25}]}`))

	require.NoError(t, err)
	assert.Equal(t, 55, result.Score)
	assert.Equal(t, types.TierMedium, result.Tier)
	assert.Equal(t, 1, result.MatchCount)
}

func TestUsable(t *testing.T) {
	assert.False(t, Usable(nil))
	assert.False(t, Usable(map[string]any{}))
	assert.False(t, Usable(map[string]any{"matches": []any{}}))
	assert.False(t, Usable(map[string]any{"recommendation": "connect"}))
	assert.True(t, Usable(map[string]any{"score": 10.0}))
	assert.True(t, Usable(map[string]any{"matches": []any{map[string]any{"text": "a"}}}))
}
