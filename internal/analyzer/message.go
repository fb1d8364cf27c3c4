package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/networkiq/internal/types"
)

// Message error codes surfaced to the UI.
const (
	CodeNoClient         = "llm_unavailable"
	CodeGenerationFailed = "generation_failed"
)

// MessageError is the structured error shape the message-generation path is
// allowed to surface. The scoring path never returns errors; this one does.
type MessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *MessageError) Error() string {
	return fmt.Sprintf("message generation failed (%s): %s", e.Code, e.Message)
}

// GenerateMessage produces a personalized connection-request message from an
// analysis result. On LLM failure it degrades to a deterministic template
// built from the strongest match; a *MessageError is returned only when the
// analyzer has no client configured at all.
func (a *Analyzer) GenerateMessage(ctx context.Context, profile *types.Profile, result *types.ScoreResult, elements []types.CriterionElement) (string, error) {
	if a.client == nil {
		return "", &MessageError{Code: CodeNoClient, Message: "no LLM client configured"}
	}

	prompt := buildMessagePrompt(profile, result, elements)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	response, err := a.breaker.Execute(func() (any, error) {
		return a.client.GenerateText(ctx, prompt)
	})
	if err == nil {
		if message := strings.TrimSpace(response.(string)); message != "" {
			return message, nil
		}
	}

	return fallbackMessage(profile, result, elements), nil
}

// buildMessagePrompt assembles the message prompt from the profile, the
// matches found, and the user's own background elements.
func buildMessagePrompt(profile *types.Profile, result *types.ScoreResult, elements []types.CriterionElement) string {
	var connections []string
	for _, m := range result.Matches {
		connections = append(connections, fmt.Sprintf("%s (%s)", m.MatchedElement, m.Category))
	}

	var sb strings.Builder
	sb.WriteString("Generate a personalized LinkedIn connection request message.\n\n")
	sb.WriteString("THEIR PROFILE:\n")
	fmt.Fprintf(&sb, "Name: %s\n", valueOr(profile.Name, "there"))
	fmt.Fprintf(&sb, "Headline: %s\n", profile.Headline)
	fmt.Fprintf(&sb, "Company: %s\n\n", profile.Company)
	sb.WriteString("MY BACKGROUND:\n")
	sb.WriteString(userBackgroundSummary(elements))
	sb.WriteString("\nCONNECTIONS FOUND:\n")
	sb.WriteString(strings.Join(connections, "\n"))
	if result.Recommendation != "" {
		fmt.Fprintf(&sb, "\n\nINSIGHT: %s", result.Recommendation)
	}
	sb.WriteString("\n\nCreate a brief, genuine connection request that:\n")
	sb.WriteString("1. Mentions MY specific company/school/experience, no placeholders\n")
	sb.WriteString("2. References the strongest connection point between us\n")
	sb.WriteString("3. Shows authentic interest in THEIR work\n")
	sb.WriteString("4. Keeps it under 300 characters\n")
	sb.WriteString("5. Does NOT assume we work at the same company unless a direct company match exists\n\n")
	sb.WriteString("Return only the message text, no quotes or explanation.")

	return sb.String()
}

// userBackgroundSummary lists the user's top companies, schools, and skills
// so the model references real background instead of placeholders.
func userBackgroundSummary(elements []types.CriterionElement) string {
	byCategory := func(category string, limit int) []string {
		var out []string
		for _, e := range elements {
			if e.Category == category && e.Display != "" {
				out = append(out, e.Display)
				if len(out) == limit {
					break
				}
			}
		}
		return out
	}

	var sb strings.Builder
	if companies := byCategory(types.CategoryCompany, 3); len(companies) > 0 {
		fmt.Fprintf(&sb, "My companies: %s\n", strings.Join(companies, ", "))
	}
	if education := byCategory(types.CategoryEducation, 2); len(education) > 0 {
		fmt.Fprintf(&sb, "My education: %s\n", strings.Join(education, ", "))
	}
	if skills := byCategory(types.CategorySkill, 3); len(skills) > 0 {
		fmt.Fprintf(&sb, "My expertise: %s\n", strings.Join(skills, ", "))
	}
	if sb.Len() == 0 {
		return "Professional with diverse experience\n"
	}
	return sb.String()
}

// fallbackMessage builds a deterministic message when the LLM is
// unavailable, referencing the top match and the user's first company.
func fallbackMessage(profile *types.Profile, result *types.ScoreResult, elements []types.CriterionElement) string {
	name := "there"
	if fields := strings.Fields(profile.Name); len(fields) > 0 {
		name = fields[0]
	}

	myCompany := "my work"
	for _, e := range elements {
		if e.Category == types.CategoryCompany && e.Display != "" {
			myCompany = "my experience at " + e.Display
			break
		}
	}

	if len(result.Matches) > 0 {
		connection := result.Matches[0].MatchedElement
		return fmt.Sprintf("Hi %s! I noticed we share %s. Given %s, I'd love to connect and exchange insights!",
			name, connection, myCompany)
	}

	company := valueOr(profile.Company, "your company")
	return fmt.Sprintf("Hi %s! Your background at %s is impressive. With %s, I'd value connecting!",
		name, company, myCompany)
}
