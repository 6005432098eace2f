package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/uninav/advisor-api/internal/models"
)

const recordColumns = `id, student_key, student_name, student_external_id, major, advisor, gpa, credits_completed, credits_in_progress, credits_remaining, credits_required, classification, current_term, low_confidence, warnings, fingerprint, source_format, uploaded_by, uploaded_at`

const courseColumns = `id, record_id, position, code, title, credits, grade, term, status, category, status_assumed, category_assumed`

// recordRow mirrors one academic_records row. Warnings live in a TEXT[]
// column, so the model slice passes through pq.StringArray here.
type recordRow struct {
	models.StudentAcademicRecord
	WarningList pq.StringArray `db:"warnings"`
}

// RecordRepository stores academic records and their course lines. Rows are
// append-only: every upload inserts a new record and the newest row per
// student_key supersedes the rest.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts the record and its courses in one transaction.
func (r *RecordRepository) Create(ctx context.Context, record *models.StudentAcademicRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UploadedAt.IsZero() {
		record.UploadedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record insert: %w", err)
	}

	const insertRecord = `INSERT INTO academic_records (` + recordColumns + `)
VALUES (:id, :student_key, :student_name, :student_external_id, :major, :advisor, :gpa, :credits_completed, :credits_in_progress, :credits_remaining, :credits_required, :classification, :current_term, :low_confidence, :warnings, :fingerprint, :source_format, :uploaded_by, :uploaded_at)`
	row := recordRow{StudentAcademicRecord: *record, WarningList: pq.StringArray(record.Warnings)}
	if _, err := tx.NamedExecContext(ctx, insertRecord, row); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert academic record: %w", err)
	}

	const insertCourse = `INSERT INTO record_courses (` + courseColumns + `)
VALUES (:id, :record_id, :position, :code, :title, :credits, :grade, :term, :status, :category, :status_assumed, :category_assumed)`
	for i := range record.Courses {
		course := &record.Courses[i]
		if course.ID == "" {
			course.ID = uuid.NewString()
		}
		course.RecordID = record.ID
		if _, err := tx.NamedExecContext(ctx, insertCourse, course); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert record course %s: %w", course.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record insert: %w", err)
	}
	return nil
}

// FindByID returns one record including its course lines.
func (r *RecordRepository) FindByID(ctx context.Context, id string) (*models.StudentAcademicRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM academic_records WHERE id = $1 LIMIT 1`
	var row recordRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find record by id: %w", err)
	}
	return r.hydrate(ctx, &row)
}

// FindLatestByStudentKey returns the newest record for a student.
func (r *RecordRepository) FindLatestByStudentKey(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error) {
	const query = `SELECT ` + recordColumns + ` FROM academic_records WHERE student_key = $1 ORDER BY uploaded_at DESC LIMIT 1`
	var row recordRow
	if err := r.db.GetContext(ctx, &row, query, studentKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest record: %w", err)
	}
	return r.hydrate(ctx, &row)
}

// ListVersions summarises every stored record for a student, newest first.
func (r *RecordRepository) ListVersions(ctx context.Context, studentKey string) ([]models.RecordVersion, error) {
	const query = `SELECT r.id, r.student_key, r.fingerprint, r.source_format, r.low_confidence, r.uploaded_at,
(SELECT COUNT(*) FROM record_courses c WHERE c.record_id = r.id) AS course_count
FROM academic_records r WHERE r.student_key = $1 ORDER BY r.uploaded_at DESC`
	var versions []models.RecordVersion
	if err := r.db.SelectContext(ctx, &versions, query, studentKey); err != nil {
		return nil, fmt.Errorf("list record versions: %w", err)
	}
	return versions, nil
}

func (r *RecordRepository) hydrate(ctx context.Context, row *recordRow) (*models.StudentAcademicRecord, error) {
	record := row.StudentAcademicRecord
	record.Warnings = []string(row.WarningList)

	const query = `SELECT ` + courseColumns + ` FROM record_courses WHERE record_id = $1 ORDER BY position ASC`
	if err := r.db.SelectContext(ctx, &record.Courses, query, record.ID); err != nil {
		return nil, fmt.Errorf("load record courses: %w", err)
	}
	return &record, nil
}
