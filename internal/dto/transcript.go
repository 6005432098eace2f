package dto

import "github.com/uninav/advisor-api/internal/models"

// IngestResponse is returned after a transcript upload. Diff is present
// only when an earlier version of the same student existed, Duplicate is
// set when the upload matched the stored fingerprint and was skipped.
type IngestResponse struct {
	Record    *models.StudentAcademicRecord `json:"record"`
	Diff      *models.VersionDiff           `json:"diff,omitempty"`
	Duplicate bool                          `json:"duplicate"`
}

// DigestResponse wraps the human-readable record summary.
type DigestResponse struct {
	StudentKey string `json:"studentKey"`
	Digest     string `json:"digest"`
}
