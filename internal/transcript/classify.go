package transcript

import "github.com/uninav/advisor-api/internal/models"

// classifyStatus resolves the lifecycle status of one course line by tiered
// precedence, first match wins:
//
//  1. a completing grade token or an explicit completion marker,
//  2. an explicit in-progress marker, or the line's term equalling the
//     document's current term with no grade token present,
//  3. everything else is Remaining.
//
// A completing grade therefore always beats a current-term inference. The
// returned flag reports a conservative default: the line carried no status
// signal at all.
func classifyStatus(line courseLine, current *Term, rules *Ruleset) (models.CourseStatus, bool) {
	if rules.IsCompletedGrade(line.Grade) || line.HasCompletionMarker {
		return models.CourseStatusCompleted, false
	}

	if line.HasInProgressMarker {
		return models.CourseStatusInProgress, false
	}
	if line.Grade == "" && current != nil && line.Term != "" {
		if t, ok := ParseTerm(line.Term); ok && t.Compare(*current) == 0 {
			return models.CourseStatusInProgress, false
		}
	}

	// A recorded but non-completing outcome (F, W, I, ...) is a real
	// signal: the course still has to be taken again.
	if rules.IsRecordedGrade(line.Grade) {
		return models.CourseStatusRemaining, false
	}

	assumed := line.Grade == "" && !line.HasCompletionMarker && !line.HasInProgressMarker
	return models.CourseStatusRemaining, assumed
}
