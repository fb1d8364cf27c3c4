// Package types provides type definitions for structured data used throughout the networkiq system.
package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Criterion categories produced by résumé extraction.
const (
	CategoryEducation     = "education"
	CategoryCompany       = "company"
	CategoryMilitary      = "military"
	CategorySkill         = "skill"
	CategoryCertification = "certification"
	CategoryKeyword       = "keyword"
)

// CriterionElement is a single weighted résumé-derived matching rule.
// Value is the lowercase matching key; Display is user-facing text.
// Elements are owned by the résumé subsystem and passed by value into
// scoring; they are replaced wholesale on résumé re-upload, never mutated.
type CriterionElement struct {
	Category string `json:"category" validate:"required,min=1"`
	Value    string `json:"value" validate:"required,min=1"`
	Weight   int    `json:"weight" validate:"gte=0"`
	Display  string `json:"display,omitempty"`
}

// Validate validates the CriterionElement using the validator. A
// whitespace-only value is rejected too: it satisfies the min-length tag but
// can never participate in matching.
func (e *CriterionElement) Validate() error {
	validate := validator.New()
	if err := validate.Struct(e); err != nil {
		return err
	}
	if strings.TrimSpace(e.Value) == "" {
		return fmt.Errorf("value must not be blank")
	}
	return nil
}

// Usable reports whether an element can participate in scoring.
// Malformed elements (blank value, negative weight) are skipped by the
// scorer rather than aborting the run.
func (e *CriterionElement) Usable() bool {
	return strings.TrimSpace(e.Value) != "" && e.Weight >= 0
}

// DefaultElements returns the built-in criteria set used before any résumé
// has been uploaded. Weights mirror what the résumé extractor assigns per
// category.
func DefaultElements() []CriterionElement {
	return []CriterionElement{
		{Category: CategoryEducation, Value: "university", Weight: 30, Display: "University Alumni"},
		{Category: CategoryCompany, Value: "startup", Weight: 25, Display: "Startup Experience"},
		{Category: CategoryMilitary, Value: "veteran", Weight: 30, Display: "Military Veteran"},
		{Category: CategorySkill, Value: "engineering", Weight: 10, Display: "Shared skill: engineering"},
		{Category: CategoryKeyword, Value: "founder", Weight: 5, Display: "Founder"},
	}
}
