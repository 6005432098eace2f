package models

// AnomalyKind names a detected regression between two records.
type AnomalyKind string

const (
	// AnomalyCompletedDemoted marks a course that was Completed in the
	// earlier record but carries a lesser status in the later one.
	AnomalyCompletedDemoted AnomalyKind = "COMPLETED_DEMOTED"
	// AnomalyCompletedRemoved marks a course that was Completed in the
	// earlier record and is absent from the later one.
	AnomalyCompletedRemoved AnomalyKind = "COMPLETED_REMOVED"
)

// StatusTransition records a per-course status change between two records.
type StatusTransition struct {
	Code string       `json:"code"`
	From CourseStatus `json:"from"`
	To   CourseStatus `json:"to"`
}

// Anomaly is a transition the diff engine reports instead of applying.
// Completed-course state is monotonic ground truth once observed.
type Anomaly struct {
	Kind AnomalyKind  `json:"kind"`
	Code string       `json:"code"`
	From CourseStatus `json:"from"`
	To   CourseStatus `json:"to,omitempty"`
}

// VersionDiff compares two academic records of the same student ordered by
// upload time.
type VersionDiff struct {
	StudentKey   string             `json:"student_key"`
	FromRecordID string             `json:"from_record_id"`
	ToRecordID   string             `json:"to_record_id"`
	Added        []CourseRecord     `json:"added,omitempty"`
	Removed      []CourseRecord     `json:"removed,omitempty"`
	Transitions  []StatusTransition `json:"transitions,omitempty"`
	Anomalies    []Anomaly          `json:"anomalies,omitempty"`
}

// HasAnomalies reports whether the diff carries at least one anomaly.
func (d *VersionDiff) HasAnomalies() bool {
	return d != nil && len(d.Anomalies) > 0
}
