package dto

import "github.com/uninav/advisor-api/internal/models"

// ExportRequest captures POST /exports payload.
type ExportRequest struct {
	Kind       models.ExportKind   `json:"kind"`
	StudentKey string              `json:"studentKey"`
	RecordID   *string             `json:"recordId,omitempty"`
	Format     models.ExportFormat `json:"format"`
	Semesters  int                 `json:"semesters,omitempty"`
	MaxCredits float64             `json:"maxCredits,omitempty"`
	Velocity   float64             `json:"velocity,omitempty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	Kind      models.ExportKind   `json:"kind"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
