// Package types provides type definitions for structured data used throughout the networkiq system.
package types

import (
	"strings"
)

// Profile holds the textual fields the DOM-parsing subsystem extracts from a
// LinkedIn profile page. All fields are optional; missing fields simply
// contribute nothing to the corpus.
type Profile struct {
	URL               string `json:"url,omitempty"`
	Name              string `json:"name,omitempty"`
	Headline          string `json:"headline,omitempty"`
	About             string `json:"about,omitempty"`
	Company           string `json:"company,omitempty"`
	Location          string `json:"location,omitempty"`
	Experience        string `json:"experience,omitempty"`
	Education         string `json:"education,omitempty"`
	MutualConnections string `json:"mutual_connections,omitempty"`
}

// Corpus builds the normalized, lowercased, whitespace-collapsed
// concatenation of all profile text fields used for matching. It is derived
// fresh per scoring call and never persisted.
func (p *Profile) Corpus() string {
	parts := []string{
		p.Name,
		p.Headline,
		p.About,
		p.Company,
		p.Location,
		p.Experience,
		p.Education,
		p.MutualConnections,
	}

	var sb strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(part)
	}

	return NormalizeCorpus(sb.String())
}

// NormalizeCorpus lowercases text and collapses all runs of whitespace to a
// single space, producing the canonical searchable form.
func NormalizeCorpus(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
