package transcript

import (
	"fmt"
	"strings"

	"github.com/uninav/advisor-api/internal/models"
)

// FormatDigest renders a record as a plain-text digest grouped by status
// bucket. The output is deterministic for identical input: it depends only
// on the record's own fields, in their stored order, so it can be handed
// to a conversational layer as stable grounding context.
func FormatDigest(record *models.StudentAcademicRecord) string {
	var sb strings.Builder

	name := record.StudentName
	if name == "" {
		name = "Unknown student"
	}
	sb.WriteString("Academic record for " + name)
	if record.StudentInfo.StudentID != "" {
		sb.WriteString(" (ID " + record.StudentInfo.StudentID + ")")
	}
	sb.WriteString(".\n")
	if record.Major != "" {
		sb.WriteString("Major: " + record.Major + ".\n")
	}
	if record.Advisor != nil && *record.Advisor != "" {
		sb.WriteString("Advisor: " + *record.Advisor + ".\n")
	}

	sb.WriteString("Classification: " + tierLabel(record.Classification) + ".")
	if record.GPA != nil {
		sb.WriteString(fmt.Sprintf(" GPA: %.2f.", *record.GPA))
	} else {
		sb.WriteString(" GPA: unavailable.")
	}
	sb.WriteString(fmt.Sprintf(
		" Credits: %.1f completed, %.1f in progress, %.1f remaining, %.1f required.\n",
		record.CreditsCompleted, record.CreditsInProgress, record.CreditsRemaining, record.CreditsRequired))
	if record.CurrentTerm != nil && *record.CurrentTerm != "" {
		sb.WriteString("Current term: " + *record.CurrentTerm + ".\n")
	}

	writeSection(&sb, "Completed courses", record.Courses, models.CourseStatusCompleted)
	writeSection(&sb, "In-progress courses", record.Courses, models.CourseStatusInProgress)
	writeSection(&sb, "Remaining courses", record.Courses, models.CourseStatusRemaining)

	if record.LowConfidence || len(record.Warnings) > 0 {
		sb.WriteString("\nCaveats:\n")
		if record.LowConfidence {
			sb.WriteString("- No course lines were recognized in the source document; details may be incomplete.\n")
		}
		for _, w := range record.Warnings {
			sb.WriteString("- " + w + "\n")
		}
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, heading string, courses []models.CourseRecord, status models.CourseStatus) {
	var matched []models.CourseRecord
	for _, c := range courses {
		if c.Status == status {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return
	}

	sb.WriteString(fmt.Sprintf("\n%s (%d):\n", heading, len(matched)))
	for _, c := range matched {
		sb.WriteString("- " + c.Code)
		if c.Title != "" {
			sb.WriteString(" " + c.Title)
		}
		details := []string{fmt.Sprintf("%.1f cr", c.Credits)}
		if c.Grade != nil && *c.Grade != "" {
			details = append(details, "grade "+*c.Grade)
		}
		if c.Term != nil && *c.Term != "" {
			details = append(details, *c.Term)
		}
		sb.WriteString(" (" + strings.Join(details, ", ") + ")")
		sb.WriteString(" [" + c.Category.Label() + "]\n")
	}
}

func tierLabel(tier models.ClassificationTier) string {
	switch tier {
	case models.TierFreshman:
		return "Freshman"
	case models.TierSophomore:
		return "Sophomore"
	case models.TierJunior:
		return "Junior"
	case models.TierSenior:
		return "Senior"
	default:
		return string(tier)
	}
}
