package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// AuditFilter narrows List results.
type AuditFilter struct {
	OrgID      *uuid.UUID
	Action     string
	EntityName string
	Limit      int
}

// AuditStore defines the interface for append-only audit log storage.
// There is no update or delete: rows are write-once.
type AuditStore interface {
	// Append records an audit log entry.
	Append(ctx context.Context, entry *models.AuditLog) error

	// List returns audit entries matching the filter, newest first.
	List(ctx context.Context, filter AuditFilter) ([]*models.AuditLog, error)
}
