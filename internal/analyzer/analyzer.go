package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/jonathan/networkiq/internal/types"
)

// DefaultTimeout bounds a single remote analysis call. A call that exceeds
// it fails fast so the gateway can fall back to local scoring; any late
// response is discarded with the cancelled context.
const DefaultTimeout = 30 * time.Second

// Truncation limits for the sanitized profile summary sent to the model.
const (
	aboutLimit  = 500
	corpusLimit = 1000
)

// Analyzer performs remote LLM profile analysis. A circuit breaker stops
// hammering the API while it is failing; during the open state every call
// errors immediately and the caller's local fallback takes over.
type Analyzer struct {
	client  Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

// NewAnalyzer creates an Analyzer around an LLM client. A nil logger is
// replaced with a no-op logger.
func NewAnalyzer(client Client, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:     "profile-analyzer",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Analyzer{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		timeout: DefaultTimeout,
		logger:  logger,
	}
}

// WithTimeout overrides the per-call timeout.
func (a *Analyzer) WithTimeout(timeout time.Duration) *Analyzer {
	a.timeout = timeout
	return a
}

// AnalyzeProfile sends a sanitized profile summary plus the criteria list to
// the model and returns the raw response payload. Callers normalize the
// payload; this method only guarantees it parsed as a JSON object.
func (a *Analyzer) AnalyzeProfile(ctx context.Context, profile *types.Profile, elements []types.CriterionElement) (map[string]any, error) {
	requestID := uuid.New()
	prompt := buildAnalysisPrompt(profile, elements)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	response, err := a.breaker.Execute(func() (any, error) {
		return a.client.GenerateJSON(ctx, prompt)
	})
	if err != nil {
		a.logger.Warn("remote analysis failed",
			zap.String("request_id", requestID.String()),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err))
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(response.(string)), &raw); err != nil {
		a.logger.Warn("remote analysis returned unparseable payload",
			zap.String("request_id", requestID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}

	a.logger.Debug("remote analysis completed",
		zap.String("request_id", requestID.String()),
		zap.Duration("elapsed", time.Since(started)))

	return raw, nil
}

// buildAnalysisPrompt assembles the analysis prompt: a truncated,
// category-reduced profile summary and the criteria grouped by category.
// Only text the user already sees on the profile page is included.
func buildAnalysisPrompt(profile *types.Profile, elements []types.CriterionElement) string {
	grouped := make(map[string][]map[string]any)
	for _, e := range elements {
		if !e.Usable() {
			continue
		}
		grouped[e.Category] = append(grouped[e.Category], map[string]any{
			"value":   e.Value,
			"display": e.Display,
			"weight":  e.Weight,
		})
	}
	criteriaJSON, _ := json.MarshalIndent(grouped, "", "  ")

	var sb strings.Builder
	sb.WriteString("Analyze this LinkedIn profile and find connections to the user's background.\n\n")
	sb.WriteString("PROFILE DATA:\n")
	fmt.Fprintf(&sb, "Name: %s\n", valueOr(profile.Name, "Unknown"))
	fmt.Fprintf(&sb, "Headline: %s\n", profile.Headline)
	fmt.Fprintf(&sb, "About: %s\n", truncate(profile.About, aboutLimit))
	fmt.Fprintf(&sb, "Full Text: %s\n\n", truncate(profile.Corpus(), corpusLimit))
	sb.WriteString("USER'S BACKGROUND TO MATCH AGAINST:\n")
	sb.Write(criteriaJSON)
	sb.WriteString("\n\nINSTRUCTIONS:\n")
	sb.WriteString("1. Find ALL connections between the profile and user's background\n")
	sb.WriteString("2. Look for direct mentions AND indirect/implied connections\n")
	sb.WriteString("3. Recognize variations, abbreviations, and informal references\n")
	sb.WriteString("4. For military connections, recognize service academies, units, bases, ranks\n")
	sb.WriteString("5. For companies, recognize subsidiaries, divisions, and former names\n")
	sb.WriteString("6. For education, recognize abbreviations (USAFA, MIT, etc.) and informal references\n\n")
	sb.WriteString("Award the FULL weight for any match; partial matches still get full points.\n\n")
	sb.WriteString("Return ONLY valid JSON in this format:\n")
	sb.WriteString(`{
  "matches": [
    {
      "category": "education|company|military|skill|certification|keyword",
      "found_in_profile": "exact text or description found",
      "matches_element": "which user element this matches",
      "points": <weight from user element>,
      "confidence": 0.0-1.0,
      "reasoning": "brief explanation"
    }
  ],
  "hidden_connections": ["short category labels like 'Same university', 'Fellow veteran'"],
  "insights": ["one strategic insight about this connection (max 2 sentences)"],
  "recommendation": "one sentence on why to connect"
}`)
	sb.WriteString("\n\nBe generous with matching - if there's any reasonable connection, include it.")

	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
