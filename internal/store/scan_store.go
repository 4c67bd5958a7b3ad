package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for scan store operations
var (
	ErrScanNotFound      = errors.New("scan not found")
	ErrScanAlreadyExists = errors.New("scan already exists")
)

// ScanFilter narrows List results.
type ScanFilter struct {
	ScanType      string
	Status        string
	TargetModelID *uuid.UUID
}

// ScanStats summarizes scans for the statistics collection action.
type ScanStats struct {
	Total    int            `json:"total_scans"`
	ByStatus map[string]int `json:"scans_by_status"`
}

// ScanStore defines the interface for security scan storage.
type ScanStore interface {
	Create(ctx context.Context, scan *models.SecurityScan) error
	Get(ctx context.Context, scanID uuid.UUID) (*models.SecurityScan, error)
	Update(ctx context.Context, scan *models.SecurityScan) error
	Delete(ctx context.Context, scanID uuid.UUID) error

	// List returns scans matching the filter, newest first.
	List(ctx context.Context, filter ScanFilter) ([]*models.SecurityScan, error)

	// CountRunningByModels returns the number of running scans whose target
	// is one of the given models.
	CountRunningByModels(ctx context.Context, modelIDs []uuid.UUID) (int, error)

	// Stats returns aggregate counts across all scans.
	Stats(ctx context.Context) (*ScanStats, error)
}
