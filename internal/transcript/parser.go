package transcript

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/models"
)

// ParseOptions carries per-upload inputs that are not part of the document.
type ParseOptions struct {
	// StudentKey overrides the key derived from the document's student
	// fields. Uploads for the same student must resolve to the same key.
	StudentKey string
	// CurrentTerm overrides the current-term inference, e.g. "Fall 2025".
	CurrentTerm string
	// UploadedBy records the authenticated uploader, when known.
	UploadedBy string
}

// Parser runs the full extraction pipeline over one uploaded document:
// text extraction, line recognition, status classification, requirement
// categorization and summary derivation. A Parser is safe for concurrent
// use; all mutable state lives per call.
type Parser struct {
	rules  *Ruleset
	logger *zap.Logger
}

// NewParser constructs a Parser over the given rule set.
func NewParser(rules *Ruleset, logger *zap.Logger) *Parser {
	if rules == nil {
		rules = DefaultRuleset()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{rules: rules, logger: logger}
}

// Rules exposes the parser's active rule set.
func (p *Parser) Rules() *Ruleset { return p.rules }

// Parse turns raw document bytes into a student academic record. Parsing is
// lenient past extraction: a document with no recognizable course lines
// still produces a record, flagged low confidence, so the caller can show
// what was found. Only a document with no text at all fails.
func (p *Parser) Parse(data []byte, opts ParseOptions) (*models.StudentAcademicRecord, error) {
	format, text, err := ExtractText(data)
	if err != nil {
		return nil, err
	}

	doc := newRecognizer(p.rules).Recognize(text)
	current := doc.CurrentTerm(opts.CurrentTerm)

	courses := p.assembleCourses(doc, current)
	summary, warnings := buildSummary(courses, doc.Summary, p.rules)

	record := &models.StudentAcademicRecord{
		ID:              uuid.NewString(),
		AcademicSummary: summary,
		Courses:         courses,
		LowConfidence:   len(courses) == 0,
		Warnings:        warnings,
		Fingerprint:     Fingerprint(data),
		SourceFormat:    format,
		UploadedAt:      time.Now().UTC(),
	}
	record.StudentName = doc.Student.Name
	record.StudentInfo.StudentID = doc.Student.ID
	record.Major = doc.Student.Major
	if doc.Student.Advisor != "" {
		advisor := doc.Student.Advisor
		record.Advisor = &advisor
	}
	if current != nil {
		label := current.String()
		record.CurrentTerm = &label
	}
	if opts.UploadedBy != "" {
		by := opts.UploadedBy
		record.UploadedBy = &by
	}
	record.StudentKey = deriveStudentKey(opts.StudentKey, doc.Student)

	p.logger.Debug("parsed transcript document",
		zap.String("format", string(format)),
		zap.String("student_key", record.StudentKey),
		zap.Int("courses", len(courses)),
		zap.Int("warnings", len(warnings)),
		zap.Bool("low_confidence", record.LowConfidence))

	return record, nil
}

var statusRank = map[models.CourseStatus]int{
	models.CourseStatusRemaining:  0,
	models.CourseStatusInProgress: 1,
	models.CourseStatusCompleted:  2,
}

// assembleCourses classifies and categorizes every recognized line, then
// collapses repeated codes so each code lands in exactly one status bucket.
// A retake line with a stronger status replaces the earlier occurrence in
// place; otherwise the first occurrence wins, keeping output deterministic
// for identical input.
func (p *Parser) assembleCourses(doc *recognizedDocument, current *Term) []models.CourseRecord {
	courses := make([]models.CourseRecord, 0, len(doc.Courses))
	byCode := make(map[string]int, len(doc.Courses))

	for _, line := range doc.Courses {
		status, statusAssumed := classifyStatus(line, current, p.rules)
		category, categoryAssumed := categorize(line, p.rules)

		course := models.CourseRecord{
			Code:            line.Code,
			Title:           line.Title,
			Credits:         line.Credits,
			Status:          status,
			Category:        category,
			StatusAssumed:   statusAssumed,
			CategoryAssumed: categoryAssumed,
		}
		if line.Grade != "" {
			grade := line.Grade
			course.Grade = &grade
		}
		if line.Term != "" {
			term := line.Term
			course.Term = &term
		}

		if at, seen := byCode[course.Code]; seen {
			if statusRank[course.Status] > statusRank[courses[at].Status] {
				course.Position = courses[at].Position
				courses[at] = course
			}
			continue
		}
		course.Position = len(courses)
		byCode[course.Code] = len(courses)
		courses = append(courses, course)
	}

	return courses
}

// Fingerprint returns the hex SHA-256 of the raw document bytes. Identical
// uploads always produce identical fingerprints.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var keyCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// deriveStudentKey resolves the stable per-student key: an explicit caller
// key wins, then the document's student ID, then a slug of the student
// name. A document with no identity at all keys under "unknown".
func deriveStudentKey(override string, student studentFields) string {
	for _, candidate := range []string{override, student.ID, student.Name} {
		slug := keyCleanRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(candidate)), "-")
		slug = strings.Trim(slug, "-")
		if slug != "" {
			return slug
		}
	}
	return "unknown"
}
