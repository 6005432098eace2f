package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uninav/advisor-api/internal/models"
)

// AuditRepository appends entries to the audit trail. The table is insert
// only; anomaly events stay on file after the record that raised them is
// superseded.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores one audit event.
func (r *AuditRepository) Create(ctx context.Context, event *models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_events (id, user_id, action, student_key, resource, resource_id, detail, ip_address, created_at)
VALUES (:id, :user_id, :action, :student_key, :resource, :resource_id, :detail, :ip_address, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}
