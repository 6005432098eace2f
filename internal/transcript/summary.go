package transcript

import (
	"fmt"
	"math"

	"github.com/uninav/advisor-api/internal/models"
)

// Classification credit thresholds, applied to completed credits only.
const (
	sophomoreCredits = 30
	juniorCredits    = 60
	seniorCredits    = 90
)

// classifyTier derives the standing tier from completed credits alone, so
// the tier can never decrease while completed credits grow.
func classifyTier(creditsCompleted float64) models.ClassificationTier {
	switch {
	case creditsCompleted >= seniorCredits:
		return models.TierSenior
	case creditsCompleted >= juniorCredits:
		return models.TierJunior
	case creditsCompleted >= sophomoreCredits:
		return models.TierSophomore
	default:
		return models.TierFreshman
	}
}

// buildSummary derives the academic summary from the classified courses and
// the parsed summary block. GPA is taken from the document or left
// unavailable, never recomputed from individual grades. Validation problems
// come back as warnings; they never fail the parse.
func buildSummary(courses []models.CourseRecord, parsed summaryFields, rules *Ruleset) (models.AcademicSummary, []string) {
	var summary models.AcademicSummary
	var warnings []string

	for _, course := range courses {
		switch course.Status {
		case models.CourseStatusCompleted:
			summary.CreditsCompleted += course.Credits
		case models.CourseStatusInProgress:
			summary.CreditsInProgress += course.Credits
		default:
			summary.CreditsRemaining += course.Credits
		}
	}

	summary.GPA = parsed.GPA
	if parsed.GPA != nil && (*parsed.GPA < 0 || *parsed.GPA > 4) {
		warnings = append(warnings, fmt.Sprintf("summary validation: GPA %.2f outside the valid range [0, 4]", *parsed.GPA))
	}

	summary.CreditsRequired = rules.CreditsRequired
	if parsed.CreditsRequired != nil && *parsed.CreditsRequired > 0 {
		summary.CreditsRequired = *parsed.CreditsRequired
	}

	summary.Classification = classifyTier(summary.CreditsCompleted)

	if parsed.CreditsEarned != nil {
		if diff := math.Abs(*parsed.CreditsEarned - summary.CreditsCompleted); diff > rules.CreditTolerance {
			warnings = append(warnings, fmt.Sprintf(
				"summary validation: document reports %.1f earned credits but completed courses sum to %.1f",
				*parsed.CreditsEarned, summary.CreditsCompleted))
		}
	}

	// Credit reconciliation: itemized credits above the requirement are
	// suspicious at any time; a shortfall only matters when the document
	// itemized remaining courses, since a plain grade transcript leaves
	// remaining electives unlisted.
	total := summary.CreditsCompleted + summary.CreditsInProgress + summary.CreditsRemaining
	if total > summary.CreditsRequired+rules.CreditTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"summary validation: itemized credits %.1f exceed the %.1f required beyond the %.1f tolerance",
			total, summary.CreditsRequired, rules.CreditTolerance))
	} else if summary.CreditsRemaining > 0 && total < summary.CreditsRequired-rules.CreditTolerance {
		warnings = append(warnings, fmt.Sprintf(
			"summary validation: itemized credits %.1f fall short of the %.1f required beyond the %.1f tolerance",
			total, summary.CreditsRequired, rules.CreditTolerance))
	}

	return summary, warnings
}
