package models

import "time"

// AuditAction constants represent actions recorded in the audit trail.
const (
	AuditActionLogin           = "LOGIN"
	AuditActionLogout          = "LOGOUT"
	AuditActionPasswordChange  = "PASSWORD_CHANGE"
	AuditActionUserCreate      = "USER_CREATE"
	AuditActionUserDeactivate  = "USER_DEACTIVATE"
	AuditActionRecordIngest    = "RECORD_INGEST"
	AuditActionRecordAnomaly   = "RECORD_ANOMALY"
	AuditActionExportRequested = "EXPORT_REQUESTED"
)

// AuditEvent represents one audit trail entry. Record ingests and diff
// anomalies are written here so regressions stay visible after the
// superseding record lands.
type AuditEvent struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	StudentKey *string   `db:"student_key" json:"student_key,omitempty"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
