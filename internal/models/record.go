package models

import "time"

// CourseStatus is the lifecycle bucket of a course within one academic record.
// Every course code belongs to exactly one bucket per record.
type CourseStatus string

const (
	CourseStatusCompleted  CourseStatus = "COMPLETED"
	CourseStatusInProgress CourseStatus = "IN_PROGRESS"
	CourseStatusRemaining  CourseStatus = "REMAINING"
)

// RequirementCategory groups a course toward a specific degree requirement.
type RequirementCategory string

const (
	CategoryMajorCore        RequirementCategory = "MAJOR_CORE"
	CategoryMajorElective    RequirementCategory = "MAJOR_ELECTIVE"
	CategoryRequiredMath     RequirementCategory = "REQUIRED_MATH"
	CategoryRequiredScience  RequirementCategory = "REQUIRED_SCIENCE"
	CategoryGeneralEducation RequirementCategory = "GENERAL_EDUCATION"
	CategorySupporting       RequirementCategory = "SUPPORTING"
	CategoryFreeElective     RequirementCategory = "FREE_ELECTIVE"
	CategoryUncategorized    RequirementCategory = "UNCATEGORIZED"
)

// Label returns the human-readable form used in rendered digests.
func (c RequirementCategory) Label() string {
	switch c {
	case CategoryMajorCore:
		return "Major Core"
	case CategoryMajorElective:
		return "Major Elective"
	case CategoryRequiredMath:
		return "Required Math"
	case CategoryRequiredScience:
		return "Required Science"
	case CategoryGeneralEducation:
		return "General Education"
	case CategorySupporting:
		return "Supporting Courses"
	case CategoryFreeElective:
		return "Free Elective"
	default:
		return "Uncategorized"
	}
}

// ClassificationTier is the student standing derived from completed credits.
type ClassificationTier string

const (
	TierFreshman  ClassificationTier = "FRESHMAN"
	TierSophomore ClassificationTier = "SOPHOMORE"
	TierJunior    ClassificationTier = "JUNIOR"
	TierSenior    ClassificationTier = "SENIOR"
)

// Rank orders tiers Freshman < Sophomore < Junior < Senior.
func (t ClassificationTier) Rank() int {
	switch t {
	case TierFreshman:
		return 0
	case TierSophomore:
		return 1
	case TierJunior:
		return 2
	case TierSenior:
		return 3
	default:
		return -1
	}
}

// DocumentFormat identifies the source document type a record was parsed from.
type DocumentFormat string

const (
	FormatPDF  DocumentFormat = "pdf"
	FormatDOCX DocumentFormat = "docx"
	FormatXLSX DocumentFormat = "xlsx"
	FormatHTML DocumentFormat = "html"
	FormatText DocumentFormat = "text"
)

// StudentInfo holds the identifying fields extracted from a transcript.
// Immutable once extracted for a given upload.
type StudentInfo struct {
	StudentName string  `db:"student_name" json:"student_name"`
	StudentID   string  `db:"student_external_id" json:"student_id"`
	Major       string  `db:"major" json:"major"`
	Advisor     *string `db:"advisor" json:"advisor,omitempty"`
}

// AcademicSummary carries the derived totals for one record. GPA is parsed
// from the document when present and never recomputed; nil means unavailable.
type AcademicSummary struct {
	GPA               *float64           `db:"gpa" json:"gpa,omitempty"`
	CreditsCompleted  float64            `db:"credits_completed" json:"credits_completed"`
	CreditsInProgress float64            `db:"credits_in_progress" json:"credits_in_progress"`
	CreditsRemaining  float64            `db:"credits_remaining" json:"credits_remaining"`
	CreditsRequired   float64            `db:"credits_required" json:"credits_required"`
	Classification    ClassificationTier `db:"classification" json:"classification"`
}

// CourseRecord is one normalized course line within an academic record.
type CourseRecord struct {
	ID              string              `db:"id" json:"-"`
	RecordID        string              `db:"record_id" json:"-"`
	Position        int                 `db:"position" json:"-"`
	Code            string              `db:"code" json:"code"`
	Title           string              `db:"title" json:"title"`
	Credits         float64             `db:"credits" json:"credits"`
	Grade           *string             `db:"grade" json:"grade,omitempty"`
	Term            *string             `db:"term" json:"term,omitempty"`
	Status          CourseStatus        `db:"status" json:"status"`
	Category        RequirementCategory `db:"category" json:"category"`
	StatusAssumed   bool                `db:"status_assumed" json:"status_assumed,omitempty"`
	CategoryAssumed bool                `db:"category_assumed" json:"category_assumed,omitempty"`
}

// StudentAcademicRecord is the aggregate produced by one transcript upload.
// Records are immutable once created; a later upload for the same student
// supersedes rather than mutates.
type StudentAcademicRecord struct {
	ID         string `db:"id" json:"id"`
	StudentKey string `db:"student_key" json:"student_key"`
	StudentInfo
	AcademicSummary
	Courses       []CourseRecord `db:"-" json:"courses"`
	CurrentTerm   *string        `db:"current_term" json:"current_term,omitempty"`
	LowConfidence bool           `db:"low_confidence" json:"low_confidence"`
	Warnings      []string       `db:"-" json:"warnings,omitempty"`
	Fingerprint   string         `db:"fingerprint" json:"fingerprint"`
	SourceFormat  DocumentFormat `db:"source_format" json:"source_format"`
	UploadedBy    *string        `db:"uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt    time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

// CoursesByStatus partitions the record's courses into their status buckets.
func (r *StudentAcademicRecord) CoursesByStatus() map[CourseStatus][]CourseRecord {
	buckets := make(map[CourseStatus][]CourseRecord, 3)
	for _, course := range r.Courses {
		buckets[course.Status] = append(buckets[course.Status], course)
	}
	return buckets
}

// CourseCodes returns the set of codes currently in the given statuses.
func (r *StudentAcademicRecord) CourseCodes(statuses ...CourseStatus) map[string]struct{} {
	include := make(map[CourseStatus]struct{}, len(statuses))
	for _, s := range statuses {
		include[s] = struct{}{}
	}

	codes := make(map[string]struct{}, len(r.Courses))
	for _, course := range r.Courses {
		if _, ok := include[course.Status]; ok || len(statuses) == 0 {
			codes[course.Code] = struct{}{}
		}
	}
	return codes
}

// RecordVersion summarises one stored record for history listings.
type RecordVersion struct {
	ID            string         `db:"id" json:"id"`
	StudentKey    string         `db:"student_key" json:"student_key"`
	Fingerprint   string         `db:"fingerprint" json:"fingerprint"`
	SourceFormat  DocumentFormat `db:"source_format" json:"source_format"`
	CourseCount   int            `db:"course_count" json:"course_count"`
	LowConfidence bool           `db:"low_confidence" json:"low_confidence"`
	UploadedAt    time.Time      `db:"uploaded_at" json:"uploaded_at"`
}
