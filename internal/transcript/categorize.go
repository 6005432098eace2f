package transcript

import (
	"regexp"

	"github.com/uninav/advisor-api/internal/models"
)

var deptPrefixRe = regexp.MustCompile(`^[A-Z]+`)

// categorize assigns a requirement category to one course line. The nearest
// preceding section header wins when the ruleset recognizes it; otherwise
// the department fallback table applies, and unmapped codes land in the
// explicit Uncategorized bucket so assignment stays total. The returned
// flag reports that the category was not taken from a recognized header.
func categorize(line courseLine, rules *Ruleset) (models.RequirementCategory, bool) {
	if line.Header != "" {
		if cat, ok := rules.CategoryForHeader(line.Header); ok {
			return cat, false
		}
	}

	if dept := deptPrefixRe.FindString(line.Code); dept != "" {
		if cat, ok := rules.CategoryForDepartment(dept); ok {
			return cat, true
		}
	}

	return models.CategoryUncategorized, true
}
