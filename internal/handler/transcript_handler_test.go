package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/uninav/advisor-api/internal/middleware"
	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/service"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
)

type transcriptServiceMock struct {
	ingestResult *service.IngestResult
	ingestErr    error
	ingestOpts   service.IngestOptions
	ingestData   []byte
	record       *models.StudentAcademicRecord
	recordErr    error
	versions     []models.RecordVersion
	digest       string
	digestErr    error
	diff         *models.VersionDiff
	diffErr      error
}

func (m *transcriptServiceMock) IngestDocument(ctx context.Context, data []byte, opts service.IngestOptions) (*service.IngestResult, error) {
	m.ingestData = data
	m.ingestOpts = opts
	return m.ingestResult, m.ingestErr
}

func (m *transcriptServiceMock) GetLatestRecord(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error) {
	return m.record, m.recordErr
}

func (m *transcriptServiceMock) GetRecord(ctx context.Context, id string) (*models.StudentAcademicRecord, error) {
	return m.record, m.recordErr
}

func (m *transcriptServiceMock) ListVersions(ctx context.Context, studentKey string) ([]models.RecordVersion, error) {
	return m.versions, nil
}

func (m *transcriptServiceMock) GetDigest(ctx context.Context, studentKey string) (string, error) {
	return m.digest, m.digestErr
}

func (m *transcriptServiceMock) DiffVersions(ctx context.Context, studentKey, fromID, toID string) (*models.VersionDiff, error) {
	return m.diff, m.diffErr
}

func newUploadContext(t *testing.T, fields map[string]string, filename string, content []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/transcripts", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	return c, w
}

func TestTranscriptHandlerIngest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &transcriptServiceMock{
		ingestResult: &service.IngestResult{
			Record: &models.StudentAcademicRecord{ID: "rec-1", StudentKey: "s9912345"},
		},
	}
	handler := NewTranscriptHandler(mockSvc)

	c, w := newUploadContext(t, map[string]string{"studentKey": "s9912345", "currentTerm": "Spring 2024"}, "transcript.txt", []byte("Student: Jordan Reyes"))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "advisor-1", Role: models.RoleAdvisor})

	handler.Ingest(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "s9912345", mockSvc.ingestOpts.StudentKey)
	require.Equal(t, "Spring 2024", mockSvc.ingestOpts.CurrentTerm)
	require.Equal(t, "advisor-1", mockSvc.ingestOpts.UploadedBy)
	require.Equal(t, "transcript.txt", mockSvc.ingestOpts.Filename)
	require.Equal(t, []byte("Student: Jordan Reyes"), mockSvc.ingestData)
}

func TestTranscriptHandlerIngestDuplicate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &transcriptServiceMock{
		ingestResult: &service.IngestResult{
			Record:    &models.StudentAcademicRecord{ID: "rec-1", StudentKey: "s9912345"},
			Duplicate: true,
		},
	}
	handler := NewTranscriptHandler(mockSvc)

	c, w := newUploadContext(t, nil, "transcript.txt", []byte("Student: Jordan Reyes"))

	handler.Ingest(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"duplicate":true`)
}

func TestTranscriptHandlerIngestMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewTranscriptHandler(&transcriptServiceMock{})

	c, w := newUploadContext(t, map[string]string{"studentKey": "s9912345"}, "", nil)

	handler.Ingest(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscriptHandlerIngestUnreadable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &transcriptServiceMock{ingestErr: appErrors.ErrUnreadableDocument}
	handler := NewTranscriptHandler(mockSvc)

	c, w := newUploadContext(t, nil, "empty.txt", []byte("  "))

	handler.Ingest(c)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTranscriptHandlerLatestRecordNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &transcriptServiceMock{recordErr: appErrors.ErrNotFound}
	handler := NewTranscriptHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/students/s9912345/record", nil)
	c.Params = gin.Params{{Key: "studentKey", Value: "s9912345"}}

	handler.LatestRecord(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTranscriptHandlerDigest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &transcriptServiceMock{digest: "Jordan Reyes (s9912345)"}
	handler := NewTranscriptHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/students/s9912345/digest", nil)
	c.Params = gin.Params{{Key: "studentKey", Value: "s9912345"}}

	handler.Digest(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Jordan Reyes")
}

func TestTranscriptHandlerDiff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &transcriptServiceMock{
		diff: &models.VersionDiff{StudentKey: "s9912345", FromRecordID: "rec-1", ToRecordID: "rec-2"},
	}
	handler := NewTranscriptHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/students/s9912345/diff?from=rec-1&to=rec-2", nil)
	c.Params = gin.Params{{Key: "studentKey", Value: "s9912345"}}

	handler.Diff(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "rec-2")
}
