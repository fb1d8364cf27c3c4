package scoring

import "strings"

// MilitaryConnectionDisplay is the generalized label recorded for any
// military match. A specific term is deliberately not echoed back because
// the brotherhood rule matches across branches and units.
const MilitaryConnectionDisplay = "Military Connection"

// militaryCriterionTerms identifies criterion values that should be treated
// as military even when their category says otherwise.
var militaryCriterionTerms = []string{
	"military",
	"air force",
	"army",
	"navy",
	"marine",
	"coast guard",
	"space force",
	"veteran",
	"usafa",
	"west point",
	"usma",
	"naval academy",
	"usna",
	"uscga",
	"usmma",
}

// militaryIndicators is the broader profile-side list: the presence of any
// of these terms in the corpus satisfies any military criterion, regardless
// of branch or unit alignment.
var militaryIndicators = []string{
	"military",
	"air force",
	"army",
	"navy",
	"marine",
	"coast guard",
	"space force",
	"national guard",
	"veteran",
	"active duty",
	"reserve",
	"usafa",
	"west point",
	"usma",
	"naval academy",
	"usna",
	"uscga",
	"usmma",
	"service academy",
	"officer",
	"enlisted",
	"sergeant",
	"lieutenant",
	"captain",
	"major",
	"colonel",
	"commander",
	"admiral",
	"general",
}

// isMilitaryCriterion reports whether an element should use brotherhood
// matching: either its category is "military" or its value names a military
// term.
func isMilitaryCriterion(category, value string) bool {
	if category == "military" {
		return true
	}
	for _, term := range militaryCriterionTerms {
		if strings.Contains(value, term) {
			return true
		}
	}
	return false
}

// hasMilitaryIndicator reports whether the corpus contains any military
// indicator term.
func hasMilitaryIndicator(corpus string) bool {
	for _, term := range militaryIndicators {
		if strings.Contains(corpus, term) {
			return true
		}
	}
	return false
}
