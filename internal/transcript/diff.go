package transcript

import "github.com/uninav/advisor-api/internal/models"

// Diff compares two records of the same student, older first, and reports
// added courses, removed courses and per-course status transitions.
// Completed state is treated as monotonic ground truth: a course that
// leaves the Completed bucket, or disappears while Completed, is reported
// as an anomaly. The diff never mutates either record; the newer record
// stands as uploaded and anomalies travel with the result.
func Diff(older, newer *models.StudentAcademicRecord) *models.VersionDiff {
	diff := &models.VersionDiff{
		StudentKey:   newer.StudentKey,
		FromRecordID: older.ID,
		ToRecordID:   newer.ID,
	}

	olderByCode := indexByCode(older.Courses)
	newerByCode := indexByCode(newer.Courses)

	for _, course := range newer.Courses {
		if _, ok := olderByCode[course.Code]; !ok {
			diff.Added = append(diff.Added, course)
		}
	}

	for _, course := range older.Courses {
		after, ok := newerByCode[course.Code]
		if !ok {
			diff.Removed = append(diff.Removed, course)
			if course.Status == models.CourseStatusCompleted {
				diff.Anomalies = append(diff.Anomalies, models.Anomaly{
					Kind: models.AnomalyCompletedRemoved,
					Code: course.Code,
					From: models.CourseStatusCompleted,
				})
			}
			continue
		}
		if after.Status == course.Status {
			continue
		}
		diff.Transitions = append(diff.Transitions, models.StatusTransition{
			Code: course.Code,
			From: course.Status,
			To:   after.Status,
		})
		if course.Status == models.CourseStatusCompleted {
			diff.Anomalies = append(diff.Anomalies, models.Anomaly{
				Kind: models.AnomalyCompletedDemoted,
				Code: course.Code,
				From: course.Status,
				To:   after.Status,
			})
		}
	}

	return diff
}

func indexByCode(courses []models.CourseRecord) map[string]models.CourseRecord {
	byCode := make(map[string]models.CourseRecord, len(courses))
	for _, course := range courses {
		if _, ok := byCode[course.Code]; !ok {
			byCode[course.Code] = course
		}
	}
	return byCode
}
