package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uninav/advisor-api/internal/models"
	"github.com/uninav/advisor-api/internal/planner"
	"github.com/uninav/advisor-api/pkg/export"
	"github.com/uninav/advisor-api/pkg/storage"
)

type exportRecordSource interface {
	FindByID(ctx context.Context, id string) (*models.StudentAcademicRecord, error)
	FindLatestByStudentKey(ctx context.Context, studentKey string) (*models.StudentAcademicRecord, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export generation behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportGenerator builds export datasets from stored records and persists
// the rendered files behind signed download tokens.
type ExportGenerator struct {
	records exportRecordSource
	planner *planner.Planner
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportGenerator constructs an ExportGenerator.
func NewExportGenerator(records exportRecordSource, p *planner.Planner, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if p == nil {
		p = planner.NewPlanner(nil, nil, planner.Config{}, logger)
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportGenerator{
		records: records,
		planner: p,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the dataset for one job and stores the rendered export.
func (g *ExportGenerator) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	record, err := g.resolveRecord(ctx, job.Params)
	if err != nil {
		return nil, err
	}

	var (
		dataset export.Dataset
		title   string
	)
	switch job.Kind {
	case models.ExportKindRecordDigest:
		dataset, title = buildDigestDataset(record)
	case models.ExportKindPlan:
		dataset, title, err = g.buildPlanDataset(record, job.Params)
	default:
		err = fmt.Errorf("unsupported export kind %s", job.Kind)
	}
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = g.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = g.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported export format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := g.buildFilename(job)
	relPath, err := g.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := g.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(g.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/exports/%s/download?token=%s", prefix, job.ID, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (g *ExportGenerator) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return g.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (g *ExportGenerator) Open(relPath string) (*os.File, error) {
	return g.storage.Open(relPath)
}

// Delete removes a stored export file.
func (g *ExportGenerator) Delete(relPath string) error {
	return g.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, defaulting to the configured
// ResultTTL when ttl <= 0.
func (g *ExportGenerator) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = g.cfg.ResultTTL
	}
	return g.storage.CleanupOlderThan(ttl)
}

// resolveRecord picks the record the export runs over: the explicitly
// requested version, otherwise the student's latest.
func (g *ExportGenerator) resolveRecord(ctx context.Context, params models.ExportJobParams) (*models.StudentAcademicRecord, error) {
	if params.RecordID != nil && *params.RecordID != "" {
		record, err := g.records.FindByID(ctx, *params.RecordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("record %s not found", *params.RecordID)
			}
			return nil, err
		}
		if params.StudentKey != "" && record.StudentKey != params.StudentKey {
			return nil, fmt.Errorf("record %s does not belong to student %s", *params.RecordID, params.StudentKey)
		}
		return record, nil
	}
	record, err := g.records.FindLatestByStudentKey(ctx, params.StudentKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no record found for student %s", params.StudentKey)
		}
		return nil, err
	}
	return record, nil
}

func buildDigestDataset(record *models.StudentAcademicRecord) (export.Dataset, string) {
	rows := make([]map[string]string, 0, len(record.Courses))
	for _, course := range record.Courses {
		rows = append(rows, map[string]string{
			"Code":     course.Code,
			"Title":    course.Title,
			"Credits":  fmt.Sprintf("%g", course.Credits),
			"Grade":    deref(course.Grade),
			"Term":     deref(course.Term),
			"Status":   string(course.Status),
			"Category": course.Category.Label(),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Code", "Title", "Credits", "Grade", "Term", "Status", "Category"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Academic Record %s", displayName(record))
	return dataset, title
}

func (g *ExportGenerator) buildPlanDataset(record *models.StudentAcademicRecord, params models.ExportJobParams) (export.Dataset, string, error) {
	req := planner.Request{
		Semesters:  params.Semesters,
		MaxCredits: params.MaxCredits,
		Velocity:   params.Velocity,
	}
	if req.Semesters <= 0 {
		req.Semesters = 2
	}
	plan, err := g.planner.Generate(record, req)
	if err != nil {
		return export.Dataset{}, "", err
	}

	var rows []map[string]string
	for _, semester := range plan.Semesters {
		label := fmt.Sprintf("%d", semester.Index)
		if semester.Term != "" {
			label = fmt.Sprintf("%d (%s)", semester.Index, semester.Term)
		}
		for _, course := range semester.Courses {
			rows = append(rows, map[string]string{
				"Semester":  label,
				"Code":      course.Code,
				"Title":     course.Title,
				"Credits":   fmt.Sprintf("%g", course.Credits),
				"Priority":  string(course.Priority),
				"Rationale": course.Rationale,
			})
		}
	}
	for _, blocked := range plan.Blocked {
		rows = append(rows, map[string]string{
			"Semester":  "blocked",
			"Code":      blocked.Code,
			"Title":     "",
			"Credits":   "",
			"Priority":  "",
			"Rationale": fmt.Sprintf("missing prerequisites: %s", strings.Join(blocked.MissingPrereqs, ", ")),
		})
	}

	dataset := export.Dataset{
		Headers: []string{"Semester", "Code", "Title", "Credits", "Priority", "Rationale"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Recommendation Plan %s", displayName(record))
	return dataset, title, nil
}

func displayName(record *models.StudentAcademicRecord) string {
	if record.StudentName != "" {
		return record.StudentName
	}
	return record.StudentKey
}

func (g *ExportGenerator) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	student := sanitizeFilename(job.Params.StudentKey)
	return fmt.Sprintf("%s_%s_%s.%s", job.Kind, student, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
