package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/dto"
	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/repository"
	appErrors "github.com/uninav/advisor-api/pkg/errors"
	"github.com/uninav/advisor-api/pkg/jobs"
)

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListUnfinished(ctx context.Context, limit int) ([]models.ExportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// ExportService orchestrates export job lifecycle management.
type ExportService struct {
	repo      exportJobStore
	queue     jobDispatcher
	generator *ExportGenerator
	audit     auditTrail
	logger    *zap.Logger
	cfg       ExportServiceConfig
}

// ExportServiceConfig governs queue recovery and cleanup.
type ExportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	MaxRetries      int
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File      *os.File
	Filename  string
	Format    models.ExportFormat
	ExpiresAt time.Time
}

// NewExportService constructs the export service.
func NewExportService(repo exportJobStore, queue jobDispatcher, generator *ExportGenerator, audit auditTrail, logger *zap.Logger, cfg ExportServiceConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &ExportService{
		repo:      repo,
		queue:     queue,
		generator: generator,
		audit:     audit,
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, persists the job, and enqueues processing.
func (s *ExportService) CreateJob(ctx context.Context, req dto.ExportRequest, actorID, actorIP string) (*dto.ExportJobResponse, error) {
	if err := validateExportRequest(req); err != nil {
		return nil, err
	}
	job := &models.ExportJob{
		Kind: req.Kind,
		Params: models.ExportJobParams{
			StudentKey: req.StudentKey,
			RecordID:   req.RecordID,
			Format:     req.Format,
			Semesters:  req.Semesters,
			MaxCredits: req.MaxCredits,
			Velocity:   req.Velocity,
		},
		Status:    models.ExportStatusQueued,
		Progress:  0,
		CreatedBy: actorID,
	}
	if job.Kind == models.ExportKindPlan && job.Params.Semesters <= 0 {
		job.Params.Semesters = 2
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Kind)}); err != nil {
		status := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export job")
	}
	s.recordAudit(ctx, job, actorID, actorIP)
	return &dto.ExportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata to clients, enforcing ownership for advisors.
func (s *ExportService) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if role == models.RoleAdvisor && job.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}
	resp := &dto.ExportStatusResponse{
		ID:       job.ID,
		Kind:     job.Kind,
		Status:   job.Status,
		Progress: job.Progress,
	}
	if job.ResultURL != nil {
		resp.ResultURL = job.ResultURL
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates the token against the job and opens the stored
// export file. The download URL is the only path that needs no session, so
// every check hangs off the signed token.
func (s *ExportService) ResolveDownload(ctx context.Context, jobID, token string) (*ExportDownload, error) {
	tokenJobID, relPath, expiresAt, err := s.generator.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	if tokenJobID != jobID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export job")
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.generator.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export file")
	}
	return &ExportDownload{
		File:      file,
		Filename:  filepath.Base(relPath),
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// RecoverPendingJobs replays queued and mid-flight jobs after a restart.
func (s *ExportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListUnfinished(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover pending export jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Kind)}); err != nil {
			s.logger.Sugar().Warnw("failed to requeue pending job", "job_id", job.ID, "error", err)
		}
	}
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ExportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		if len(expired) == 0 {
			break
		}
		for _, job := range expired {
			if job.ResultURL == nil {
				continue
			}
			token := extractToken(*job.ResultURL)
			if token == "" {
				continue
			}
			_, relPath, _, err := s.generator.ParseToken(token, true)
			if err != nil {
				continue
			}
			if err := s.generator.Delete(relPath); err != nil {
				s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "error", err)
			}
		}
		if len(expired) < 100 {
			break
		}
	}
	if _, err := s.generator.Cleanup(s.cfg.ResultTTL); err != nil {
		s.logger.Sugar().Warnw("filesystem cleanup failed", "error", err)
	}
}

func (s *ExportService) recordAudit(ctx context.Context, job *models.ExportJob, actorID, actorIP string) {
	if s.audit == nil {
		return
	}
	event := &models.AuditEvent{
		Action:     models.AuditActionExportRequested,
		Resource:   "export_job",
		ResourceID: &job.ID,
		Detail:     fmt.Sprintf("%s as %s", job.Kind, job.Params.Format),
		IPAddress:  actorIP,
	}
	if actorID != "" {
		event.UserID = &actorID
	}
	if job.Params.StudentKey != "" {
		key := job.Params.StudentKey
		event.StudentKey = &key
	}
	if err := s.audit.Create(ctx, event); err != nil {
		s.logger.Sugar().Warnw("failed to record export audit event", "job_id", job.ID, "error", err)
	}
}

func validateExportRequest(req dto.ExportRequest) error {
	if req.StudentKey == "" {
		return appErrors.Clone(appErrors.ErrValidation, "studentKey is required")
	}
	switch req.Kind {
	case models.ExportKindRecordDigest, models.ExportKindPlan:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unsupported export kind")
	}
	switch req.Format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return nil
}

// extractToken pulls the signed token out of a stored result URL of the
// form .../exports/{id}/download?token={token}.
func extractToken(url string) string {
	_, query, ok := strings.Cut(url, "?")
	if !ok {
		return ""
	}
	for _, param := range strings.Split(query, "&") {
		if value, found := strings.CutPrefix(param, "token="); found {
			return value
		}
	}
	return ""
}

// ExportWorker bridges queue jobs to the generator.
type ExportWorker struct {
	repo       exportJobStore
	generator  exportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
}

// NewExportWorker constructs a worker.
func NewExportWorker(repo exportJobStore, generator exportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ExportWorker{
		repo:       repo,
		generator:  generator,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes a queue job.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}
	result, err := w.generator.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job failed", "job_id", job.ID, "error", updateErr)
			}
			if w.metrics != nil {
				w.metrics.RecordExport(false)
			}
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
			}
		}
		return err
	}
	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	url := result.URL
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultURL:    &url,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	if w.metrics != nil {
		w.metrics.RecordExport(true)
	}
	return nil
}
