package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/transcript"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
)

type recordStore interface {
	Create(ctx context.Context, record *models.StudentAcademicRecord) error
	FindByID(ctx context.Context, id string) (*models.StudentAcademicRecord, error)
	FindLatestByStudentKey(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error)
	ListVersions(ctx context.Context, studentKey string) ([]models.RecordVersion, error)
}

// IngestOptions carries request-scoped inputs for one document upload.
type IngestOptions struct {
	StudentKey  string
	CurrentTerm string
	UploadedBy  string
	Filename    string
	IP          string
}

// IngestResult is the outcome of one upload: the stored (or matching
// existing) record plus the diff against the previously latest version.
type IngestResult struct {
	Record    *models.StudentAcademicRecord
	Diff      *models.VersionDiff
	Duplicate bool
}

// TranscriptService orchestrates document ingestion and record retrieval.
type TranscriptService struct {
	parser  *transcript.Parser
	records recordStore
	audit   auditTrail
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewTranscriptService constructs the service.
func NewTranscriptService(parser *transcript.Parser, records recordStore, audit auditTrail, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = transcript.NewParser(nil, logger)
	}
	return &TranscriptService{
		parser:  parser,
		records: records,
		audit:   audit,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// IngestDocument parses the uploaded bytes into a new immutable record,
// persists it, and reports the diff against the student's previous record.
// A re-upload of a byte-identical document returns the stored record
// without inserting a new version.
func (s *TranscriptService) IngestDocument(ctx context.Context, data []byte, opts IngestOptions) (*IngestResult, error) {
	record, err := s.parser.Parse(data, transcript.ParseOptions{
		StudentKey:  opts.StudentKey,
		CurrentTerm: opts.CurrentTerm,
		UploadedBy:  opts.UploadedBy,
	})
	if err != nil {
		if transcript.IsEmptyDocument(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrUnreadableDocument.Code, appErrors.ErrUnreadableDocument.Status, "document is empty or could not be read")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to parse document")
	}

	previous, err := s.records.FindLatestByStudentKey(ctx, record.StudentKey)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load previous record")
		}
		previous = nil
	}

	if previous != nil && previous.Fingerprint == record.Fingerprint {
		s.logger.Debug("duplicate upload ignored",
			zap.String("student_key", record.StudentKey),
			zap.String("fingerprint", record.Fingerprint))
		return &IngestResult{Record: previous, Duplicate: true}, nil
	}

	start := time.Now()
	if err := s.records.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store record")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("record_insert", time.Since(start))
		s.metrics.RecordIngest(record.SourceFormat)
	}

	var diff *models.VersionDiff
	if previous != nil {
		diff = transcript.Diff(previous, record)
	}

	s.auditIngest(ctx, record, diff, opts)

	if s.cache != nil {
		if err := s.cache.InvalidateStudent(ctx, record.StudentKey); err != nil {
			s.logger.Warn("failed to invalidate student cache", zap.String("student_key", record.StudentKey), zap.Error(err))
		}
	}

	return &IngestResult{Record: record, Diff: diff}, nil
}

// GetLatestRecord returns the newest record for a student.
func (s *TranscriptService) GetLatestRecord(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error) {
	start := time.Now()
	record, err := s.records.FindLatestByStudentKey(ctx, studentKey)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("record_latest", time.Since(start))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no record found for student")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}

// GetRecord returns one stored record by identifier.
func (s *TranscriptService) GetRecord(ctx context.Context, id string) (*models.StudentAcademicRecord, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load record")
	}
	return record, nil
}

// ListVersions returns the stored upload history for a student, newest first.
func (s *TranscriptService) ListVersions(ctx context.Context, studentKey string) ([]models.RecordVersion, error) {
	versions, err := s.records.ListVersions(ctx, studentKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list record versions")
	}
	return versions, nil
}

// GetDigest renders the plain-text digest for the student's latest record,
// serving from cache when possible.
func (s *TranscriptService) GetDigest(ctx context.Context, studentKey string) (string, error) {
	record, err := s.GetLatestRecord(ctx, studentKey)
	if err != nil {
		return "", err
	}

	key := digestCacheKey(studentKey, record.ID)
	var digest string
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, key, &digest); err == nil && hit {
			return digest, nil
		}
	}

	digest = transcript.FormatDigest(record)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, digest, 0); err != nil {
			s.logger.Warn("failed to cache digest", zap.String("key", key), zap.Error(err))
		}
	}
	return digest, nil
}

// DiffVersions compares two stored records of one student. Empty IDs
// default to the two most recent uploads.
func (s *TranscriptService) DiffVersions(ctx context.Context, studentKey, fromID, toID string) (*models.VersionDiff, error) {
	if fromID == "" || toID == "" {
		versions, err := s.ListVersions(ctx, studentKey)
		if err != nil {
			return nil, err
		}
		if len(versions) < 2 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student has fewer than two record versions")
		}
		toID = versions[0].ID
		fromID = versions[1].ID
	}

	older, err := s.GetRecord(ctx, fromID)
	if err != nil {
		return nil, err
	}
	newer, err := s.GetRecord(ctx, toID)
	if err != nil {
		return nil, err
	}
	if older.StudentKey != studentKey || newer.StudentKey != studentKey {
		return nil, appErrors.Clone(appErrors.ErrValidation, "record does not belong to student")
	}
	if older.UploadedAt.After(newer.UploadedAt) {
		older, newer = newer, older
	}

	return transcript.Diff(older, newer), nil
}

func (s *TranscriptService) auditIngest(ctx context.Context, record *models.StudentAcademicRecord, diff *models.VersionDiff, opts IngestOptions) {
	if s.audit == nil {
		return
	}

	detail := fmt.Sprintf("%d courses, source %s", len(record.Courses), record.SourceFormat)
	if opts.Filename != "" {
		detail = fmt.Sprintf("%s, file %s", detail, opts.Filename)
	}
	if record.LowConfidence {
		detail += ", low confidence"
	}
	event := &models.AuditEvent{
		Action:     models.AuditActionRecordIngest,
		StudentKey: &record.StudentKey,
		Resource:   "academic_record",
		ResourceID: &record.ID,
		Detail:     detail,
		IPAddress:  opts.IP,
	}
	if record.UploadedBy != nil {
		event.UserID = record.UploadedBy
	}
	if err := s.audit.Create(ctx, event); err != nil {
		s.logger.Warn("failed to record ingest audit event", zap.Error(err))
	}

	if diff == nil {
		return
	}
	for _, anomaly := range diff.Anomalies {
		detail := fmt.Sprintf("%s %s: was %s", anomaly.Kind, anomaly.Code, anomaly.From)
		if anomaly.To != "" {
			detail = fmt.Sprintf("%s, now %s", detail, anomaly.To)
		}
		event := &models.AuditEvent{
			Action:     models.AuditActionRecordAnomaly,
			StudentKey: &record.StudentKey,
			Resource:   "academic_record",
			ResourceID: &record.ID,
			Detail:     detail,
			IPAddress:  opts.IP,
		}
		if record.UploadedBy != nil {
			event.UserID = record.UploadedBy
		}
		if err := s.audit.Create(ctx, event); err != nil {
			s.logger.Warn("failed to record anomaly audit event", zap.String("code", anomaly.Code), zap.Error(err))
		}
	}
}
