package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorpus_LowercasesAndCollapsesWhitespace(t *testing.T) {
	profile := &Profile{
		Name:     "Alice Johnson",
		Headline: "Staff  Engineer\n at Acme",
		About:    "  Building distributed systems.  ",
	}

	corpus := profile.Corpus()

	assert.Equal(t, "alice johnson staff engineer at acme building distributed systems.", corpus)
}

func TestCorpus_SkipsEmptyFields(t *testing.T) {
	profile := &Profile{
		Name:    "Bob",
		Company: "Initech",
	}

	assert.Equal(t, "bob initech", profile.Corpus())
}

func TestCorpus_EmptyProfile(t *testing.T) {
	profile := &Profile{}

	assert.Equal(t, "", profile.Corpus())
}

func TestCorpus_IncludesAllFields(t *testing.T) {
	profile := &Profile{
		Name:              "a",
		Headline:          "b",
		About:             "c",
		Company:           "d",
		Location:          "e",
		Experience:        "f",
		Education:         "g",
		MutualConnections: "h",
	}

	assert.Equal(t, "a b c d e f g h", profile.Corpus())
}
