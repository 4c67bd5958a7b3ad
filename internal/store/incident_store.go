package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for incident store operations
var (
	ErrIncidentNotFound      = errors.New("incident not found")
	ErrIncidentAlreadyExists = errors.New("incident already exists")
)

// IncidentFilter narrows List results.
type IncidentFilter struct {
	OrgID    *uuid.UUID
	Severity string
	Status   string
	Search   string // matches title or description
	Limit    int
	Since    *time.Time
}

// IncidentStats summarizes incidents for an organization.
type IncidentStats struct {
	Total      int            `json:"total_incidents"`
	Active     int            `json:"active_incidents"` // open or investigating
	BySeverity map[string]int `json:"incidents_by_severity"`
	Recent     int            `json:"recent_incidents"` // created in the last 30 days
}

// TrendPoint is a per-day incident count for dashboard trends.
type TrendPoint struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// IncidentStore defines the interface for security incident storage.
type IncidentStore interface {
	Create(ctx context.Context, incident *models.SecurityIncident) error
	Get(ctx context.Context, incidentID uuid.UUID) (*models.SecurityIncident, error)
	Update(ctx context.Context, incident *models.SecurityIncident) error
	Delete(ctx context.Context, incidentID uuid.UUID) error

	// List returns incidents matching the filter, newest first.
	List(ctx context.Context, filter IncidentFilter) ([]*models.SecurityIncident, error)

	// BulkUpdateStatus sets the status on every incident in ids that exists.
	// Missing IDs are silently skipped; no error and no matched count is
	// reported.
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string) error

	// StatsByOrg returns aggregate counts for an organization.
	StatsByOrg(ctx context.Context, orgID uuid.UUID) (*IncidentStats, error)

	// TrendByOrg returns per-day incident counts since the given time.
	TrendByOrg(ctx context.Context, orgID uuid.UUID, since time.Time) ([]TrendPoint, error)

	// CountByStatus returns counts grouped by status for an organization.
	CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int, error)

	// DeleteByOrg removes all incidents of an organization. Used for
	// tenant-delete cascade.
	DeleteByOrg(ctx context.Context, orgID uuid.UUID) error
}
