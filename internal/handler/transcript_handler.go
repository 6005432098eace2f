package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uninav/advisor-api/internal/dto"
	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/service"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
	"github.com/uninav/advisor-api/pkg/response"
)

type transcriptService interface {
	IngestDocument(ctx context.Context, data []byte, opts service.IngestOptions) (*service.IngestResult, error)
	GetLatestRecord(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error)
	GetRecord(ctx context.Context, id string) (*models.StudentAcademicRecord, error)
	ListVersions(ctx context.Context, studentKey string) ([]models.RecordVersion, error)
	GetDigest(ctx context.Context, studentKey string) (string, error)
	DiffVersions(ctx context.Context, studentKey, fromID, toID string) (*models.VersionDiff, error)
}

// TranscriptHandler manages transcript ingestion and record lookups.
type TranscriptHandler struct {
	service transcriptService
}

// NewTranscriptHandler constructs the handler.
func NewTranscriptHandler(service transcriptService) *TranscriptHandler {
	return &TranscriptHandler{service: service}
}

// Ingest godoc
// @Summary Upload a transcript document
// @Description Parse an uploaded transcript and store it as a new record version
// @Tags Transcripts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Transcript document"
// @Param studentKey formData string false "Override for the derived student key"
// @Param currentTerm formData string false "Term to treat as in progress"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /transcripts [post]
func (h *TranscriptHandler) Ingest(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file"))
		return
	}

	opts := service.IngestOptions{
		StudentKey:  strings.TrimSpace(c.PostForm("studentKey")),
		CurrentTerm: strings.TrimSpace(c.PostForm("currentTerm")),
		Filename:    fileHeader.Filename,
		IP:          c.ClientIP(),
	}
	if claims := claimsFromContext(c); claims != nil {
		opts.UploadedBy = claims.UserID
	}

	result, err := h.service.IngestDocument(c.Request.Context(), data, opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.IngestResponse{
		Record:    result.Record,
		Diff:      result.Diff,
		Duplicate: result.Duplicate,
	}
	if result.Duplicate {
		response.JSON(c, http.StatusOK, resp, nil)
		return
	}
	response.JSON(c, http.StatusCreated, resp, nil)
}

// LatestRecord godoc
// @Summary Get the latest record for a student
// @Tags Transcripts
// @Produce json
// @Param studentKey path string true "Student key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentKey}/record [get]
func (h *TranscriptHandler) LatestRecord(c *gin.Context) {
	record, err := h.service.GetLatestRecord(c.Request.Context(), c.Param("studentKey"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Record godoc
// @Summary Get a specific record version by ID
// @Tags Transcripts
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id} [get]
func (h *TranscriptHandler) Record(c *gin.Context) {
	record, err := h.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Versions godoc
// @Summary List stored record versions for a student
// @Tags Transcripts
// @Produce json
// @Param studentKey path string true "Student key"
// @Success 200 {object} response.Envelope
// @Router /students/{studentKey}/versions [get]
func (h *TranscriptHandler) Versions(c *gin.Context) {
	versions, err := h.service.ListVersions(c.Request.Context(), c.Param("studentKey"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// Digest godoc
// @Summary Get the advising digest for a student's latest record
// @Tags Transcripts
// @Produce json
// @Param studentKey path string true "Student key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentKey}/digest [get]
func (h *TranscriptHandler) Digest(c *gin.Context) {
	studentKey := c.Param("studentKey")
	digest, err := h.service.GetDigest(c.Request.Context(), studentKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DigestResponse{StudentKey: studentKey, Digest: digest}, nil)
}

// Diff godoc
// @Summary Compare two record versions of a student
// @Description Defaults to the two most recent versions when from and to are omitted
// @Tags Transcripts
// @Produce json
// @Param studentKey path string true "Student key"
// @Param from query string false "Older record ID"
// @Param to query string false "Newer record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{studentKey}/diff [get]
func (h *TranscriptHandler) Diff(c *gin.Context) {
	diff, err := h.service.DiffVersions(c.Request.Context(), c.Param("studentKey"), c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diff, nil)
}
