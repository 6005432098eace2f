package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/uninav/advisor-api/internal/dto"
	"github.com/uninav/advisor-api/internal/middleware"
	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/service"
)

type exportServiceMock struct {
	createResp  *dto.ExportJobResponse
	createErr   error
	statusResp  *dto.ExportStatusResponse
	statusErr   error
	download    *service.ExportDownload
	downloadErr error

	createdReq dto.ExportRequest
}

func (m *exportServiceMock) CreateJob(ctx context.Context, req dto.ExportRequest, actorID, actorIP string) (*dto.ExportJobResponse, error) {
	m.createdReq = req
	return m.createResp, m.createErr
}

func (m *exportServiceMock) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *exportServiceMock) ResolveDownload(ctx context.Context, jobID, token string) (*service.ExportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestExportHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		createResp: &dto.ExportJobResponse{ID: "job-1", Status: models.ExportStatusQueued, Progress: 0},
	}
	handler := NewExportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ExportRequest{
		Kind:       models.ExportKindRecordDigest,
		StudentKey: "s9912345",
		Format:     models.ExportFormatCSV,
	})
	c, w := newGinContext(http.MethodPost, "/exports", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "advisor-1", Role: models.RoleAdvisor})

	handler.Create(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, "s9912345", mockSvc.createdReq.StudentKey)
}

func TestExportHandlerCreateUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodPost, "/exports", []byte(`{}`))

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExportHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &exportServiceMock{
		statusResp: &dto.ExportStatusResponse{ID: "job-1", Status: models.ExportStatusFinished, Progress: 100},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "advisor-1", Role: models.RoleAdvisor})

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "export*.csv")
	require.NoError(t, err)
	_, _ = file.WriteString("code,title\n")
	_, _ = file.Seek(0, 0)

	mockSvc := &exportServiceMock{
		download: &service.ExportDownload{
			File:      file,
			Filename:  "export.csv",
			Format:    models.ExportFormatCSV,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewExportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/exports/job-1/download?token=tok", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), "export.csv")
	require.Contains(t, w.Body.String(), "code,title")
}

func TestExportHandlerDownloadMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewExportHandler(&exportServiceMock{})

	c, w := newGinContext(http.MethodGet, "/exports/job-1/download", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.Download(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
