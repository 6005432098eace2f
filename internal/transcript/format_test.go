package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uninav/advisor-api/internal/models"
)

func digestFixture() *models.StudentAcademicRecord {
	gpa := 3.45
	advisor := "Dr. Patel"
	gradeA := "A"
	fall := "Fall 2023"
	spring := "Spring 2024"

	record := &models.StudentAcademicRecord{
		ID:         "rec-1",
		StudentKey: "a1234567",
		Courses: []models.CourseRecord{
			{Code: "COSC111", Title: "Introduction to Programming", Credits: 3, Grade: &gradeA, Term: &fall, Status: models.CourseStatusCompleted, Category: models.CategoryMajorCore},
			{Code: "COSC211", Title: "Computer Organization", Credits: 3, Term: &spring, Status: models.CourseStatusInProgress, Category: models.CategoryMajorCore},
			{Code: "MATH220", Title: "Linear Algebra", Credits: 4, Status: models.CourseStatusRemaining, Category: models.CategoryRequiredMath},
		},
		CurrentTerm: &spring,
		Warnings:    []string{"summary validation: sample warning"},
	}
	record.StudentName = "Alex Johnson"
	record.StudentInfo.StudentID = "A1234567"
	record.Major = "Computer Science"
	record.Advisor = &advisor
	record.GPA = &gpa
	record.CreditsCompleted = 58
	record.CreditsInProgress = 3
	record.CreditsRemaining = 4
	record.CreditsRequired = 120
	record.Classification = models.TierSophomore
	return record
}

func TestFormatDigestContents(t *testing.T) {
	digest := FormatDigest(digestFixture())

	assert.Contains(t, digest, "Academic record for Alex Johnson (ID A1234567).")
	assert.Contains(t, digest, "Major: Computer Science.")
	assert.Contains(t, digest, "Advisor: Dr. Patel.")
	assert.Contains(t, digest, "Classification: Sophomore. GPA: 3.45.")
	assert.Contains(t, digest, "Credits: 58.0 completed, 3.0 in progress, 4.0 remaining, 120.0 required.")
	assert.Contains(t, digest, "Current term: Spring 2024.")
	assert.Contains(t, digest, "Completed courses (1):")
	assert.Contains(t, digest, "- COSC111 Introduction to Programming (3.0 cr, grade A, Fall 2023) [Major Core]")
	assert.Contains(t, digest, "In-progress courses (1):")
	assert.Contains(t, digest, "Remaining courses (1):")
	assert.Contains(t, digest, "- MATH220 Linear Algebra (4.0 cr) [Required Math]")
	assert.Contains(t, digest, "Caveats:")
	assert.Contains(t, digest, "- summary validation: sample warning")
}

func TestFormatDigestDeterministic(t *testing.T) {
	record := digestFixture()
	first := FormatDigest(record)
	second := FormatDigest(record)
	assert.Equal(t, first, second)
}

func TestFormatDigestMissingIdentity(t *testing.T) {
	record := &models.StudentAcademicRecord{LowConfidence: true}
	record.CreditsRequired = 120

	digest := FormatDigest(record)

	assert.True(t, strings.HasPrefix(digest, "Academic record for Unknown student."), digest)
	assert.Contains(t, digest, "GPA: unavailable.")
	assert.Contains(t, digest, "No course lines were recognized")
	assert.NotContains(t, digest, "Completed courses")
}

func TestFormatDigestOmitsEmptySections(t *testing.T) {
	gradeA := "A"
	record := &models.StudentAcademicRecord{
		Courses: []models.CourseRecord{
			{Code: "COSC111", Credits: 3, Grade: &gradeA, Status: models.CourseStatusCompleted, Category: models.CategoryMajorCore},
		},
	}
	record.StudentName = "Sam"

	digest := FormatDigest(record)

	require.Contains(t, digest, "Completed courses (1):")
	assert.NotContains(t, digest, "In-progress courses")
	assert.NotContains(t, digest, "Remaining courses")
}
