package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/transcript"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
)

const uploadedTranscript = `Student Name: Jordan Reyes
Student ID: S9912345
Major: Computer Science
Current Term: Spring 2024

Fall 2023
COSC 111 Introduction to Programming 3.0 A
MATH 120 Calculus I 4.0 B
Spring 2024
COSC 211 Computer Organization 3.0`

type mockRecordStore struct {
	latest    *models.StudentAcademicRecord
	byID      map[string]*models.StudentAcademicRecord
	versions  []models.RecordVersion
	created   []*models.StudentAcademicRecord
	createErr error
}

func (m *mockRecordStore) Create(ctx context.Context, record *models.StudentAcademicRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, record)
	return nil
}

func (m *mockRecordStore) FindByID(ctx context.Context, id string) (*models.StudentAcademicRecord, error) {
	if record, ok := m.byID[id]; ok {
		return record, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRecordStore) FindLatestByStudentKey(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error) {
	if m.latest == nil {
		return nil, sql.ErrNoRows
	}
	return m.latest, nil
}

func (m *mockRecordStore) ListVersions(ctx context.Context, studentKey string) ([]models.RecordVersion, error) {
	return m.versions, nil
}

type memoryCacheRepo struct {
	data    map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
		}
	}
	return nil
}

func newTestCache(repo CacheRepository) *CacheService {
	return NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
}

func TestTranscriptServiceIngestFirstUpload(t *testing.T) {
	store := &mockRecordStore{}
	audit := &mockAudit{}
	svc := NewTranscriptService(nil, store, audit, nil, nil, zap.NewNop())

	result, err := svc.IngestDocument(context.Background(), []byte(uploadedTranscript), IngestOptions{
		UploadedBy: "advisor-1",
		Filename:   "reyes.txt",
		IP:         "10.0.0.1",
	})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Nil(t, result.Diff)
	require.Len(t, store.created, 1)
	assert.Equal(t, "s9912345", result.Record.StudentKey)
	assert.Len(t, result.Record.Courses, 3)
	assert.Contains(t, audit.actions(), models.AuditActionRecordIngest)
}

func TestTranscriptServiceIngestDuplicate(t *testing.T) {
	data := []byte(uploadedTranscript)
	store := &mockRecordStore{latest: &models.StudentAcademicRecord{
		ID:          "rec-1",
		StudentKey:  "s9912345",
		Fingerprint: transcript.Fingerprint(data),
	}}
	audit := &mockAudit{}
	svc := NewTranscriptService(nil, store, audit, nil, nil, zap.NewNop())

	result, err := svc.IngestDocument(context.Background(), data, IngestOptions{})
	require.NoError(t, err)
	assert.True(t, result.Duplicate)
	assert.Equal(t, "rec-1", result.Record.ID)
	assert.Empty(t, store.created, "identical upload must not insert a new version")
	assert.Empty(t, audit.events)
}

func TestTranscriptServiceIngestReportsAnomalies(t *testing.T) {
	store := &mockRecordStore{latest: &models.StudentAcademicRecord{
		ID:          "rec-1",
		StudentKey:  "s9912345",
		Fingerprint: "previous-upload",
		Courses: []models.CourseRecord{
			{Code: "COSC111", Title: "Introduction to Programming", Credits: 3, Status: models.CourseStatusCompleted},
		},
	}}
	audit := &mockAudit{}
	cacheRepo := newMemoryCacheRepo()
	svc := NewTranscriptService(nil, store, audit, newTestCache(cacheRepo), nil, zap.NewNop())

	demoted := `Student ID: S9912345
Current Term: Spring 2024

Spring 2024
COSC 111 Introduction to Programming 3.0`

	result, err := svc.IngestDocument(context.Background(), []byte(demoted), IngestOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Diff)
	require.True(t, result.Diff.HasAnomalies())
	assert.Equal(t, models.AnomalyCompletedDemoted, result.Diff.Anomalies[0].Kind)
	assert.Contains(t, audit.actions(), models.AuditActionRecordAnomaly)
	assert.Contains(t, cacheRepo.deleted, "advisor:s9912345:*")
}

func TestTranscriptServiceIngestEmptyDocument(t *testing.T) {
	svc := NewTranscriptService(nil, &mockRecordStore{}, nil, nil, nil, zap.NewNop())

	_, err := svc.IngestDocument(context.Background(), nil, IngestOptions{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnreadableDocument.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrUnreadableDocument.Status, appErr.Status)
}

func TestTranscriptServiceGetLatestRecordNotFound(t *testing.T) {
	svc := NewTranscriptService(nil, &mockRecordStore{}, nil, nil, nil, zap.NewNop())

	_, err := svc.GetLatestRecord(context.Background(), "nobody")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTranscriptServiceGetDigestCaches(t *testing.T) {
	record := &models.StudentAcademicRecord{ID: "rec-1", StudentKey: "s9912345"}
	record.StudentName = "Jordan Reyes"
	store := &mockRecordStore{latest: record}
	cacheRepo := newMemoryCacheRepo()
	svc := NewTranscriptService(nil, store, nil, newTestCache(cacheRepo), nil, zap.NewNop())

	digest, err := svc.GetDigest(context.Background(), "s9912345")
	require.NoError(t, err)
	assert.Equal(t, transcript.FormatDigest(record), digest)
	assert.Contains(t, cacheRepo.data, "advisor:s9912345:digest:rec-1")

	// Second call must come back from the cache unchanged.
	again, err := svc.GetDigest(context.Background(), "s9912345")
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}

func TestTranscriptServiceDiffVersionsDefaultsToLatestPair(t *testing.T) {
	older := &models.StudentAcademicRecord{ID: "rec-1", StudentKey: "s9912345", UploadedAt: time.Now().Add(-time.Hour)}
	older.Courses = []models.CourseRecord{{Code: "COSC111", Status: models.CourseStatusInProgress}}
	newer := &models.StudentAcademicRecord{ID: "rec-2", StudentKey: "s9912345", UploadedAt: time.Now()}
	newer.Courses = []models.CourseRecord{
		{Code: "COSC111", Status: models.CourseStatusCompleted},
		{Code: "MATH120", Status: models.CourseStatusInProgress},
	}
	store := &mockRecordStore{
		byID: map[string]*models.StudentAcademicRecord{"rec-1": older, "rec-2": newer},
		versions: []models.RecordVersion{
			{ID: "rec-2", StudentKey: "s9912345"},
			{ID: "rec-1", StudentKey: "s9912345"},
		},
	}
	svc := NewTranscriptService(nil, store, nil, nil, nil, zap.NewNop())

	diff, err := svc.DiffVersions(context.Background(), "s9912345", "", "")
	require.NoError(t, err)
	assert.Equal(t, "rec-1", diff.FromRecordID)
	assert.Equal(t, "rec-2", diff.ToRecordID)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "MATH120", diff.Added[0].Code)
	require.Len(t, diff.Transitions, 1)
	assert.Equal(t, models.CourseStatusCompleted, diff.Transitions[0].To)
	assert.False(t, diff.HasAnomalies())
}

func TestTranscriptServiceDiffVersionsSinglePair(t *testing.T) {
	store := &mockRecordStore{versions: []models.RecordVersion{{ID: "rec-1"}}}
	svc := NewTranscriptService(nil, store, nil, nil, nil, zap.NewNop())

	_, err := svc.DiffVersions(context.Background(), "s9912345", "", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTranscriptServiceDiffVersionsForeignRecord(t *testing.T) {
	mine := &models.StudentAcademicRecord{ID: "rec-1", StudentKey: "s9912345"}
	other := &models.StudentAcademicRecord{ID: "rec-9", StudentKey: "someone-else"}
	store := &mockRecordStore{byID: map[string]*models.StudentAcademicRecord{"rec-1": mine, "rec-9": other}}
	svc := NewTranscriptService(nil, store, nil, nil, nil, zap.NewNop())

	_, err := svc.DiffVersions(context.Background(), "s9912345", "rec-1", "rec-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
