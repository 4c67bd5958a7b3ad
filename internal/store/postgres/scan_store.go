package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

const scanColumns = `
	scan_id, scan_type, target_model_id, status, findings, started_at,
	completed_at, created_by, created_at, updated_at
`

// ScanStore implements store.ScanStore using PostgreSQL. Findings are kept
// as JSONB.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new PostgreSQL-backed security scan store.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{
		pool: pool,
	}
}

// Create creates a new scan in the database.
func (s *ScanStore) Create(ctx context.Context, scan *models.SecurityScan) error {
	now := time.Now()
	scan.CreatedAt = now
	scan.UpdatedAt = now

	if scan.Findings == nil {
		scan.Findings = map[string]any{}
	}

	query := `
		INSERT INTO security_scans (` + scanColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := s.pool.Exec(ctx, query,
		scan.ScanID,
		scan.ScanType,
		scan.TargetModelID,
		scan.Status,
		scan.Findings,
		scan.StartedAt,
		scan.CompletedAt,
		scan.CreatedBy,
		scan.CreatedAt,
		scan.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrScanAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return store.ErrModelNotFound
		}
		return fmt.Errorf("failed to create scan: %w", err)
	}

	return nil
}

// Get retrieves a scan by ID.
func (s *ScanStore) Get(ctx context.Context, scanID uuid.UUID) (*models.SecurityScan, error) {
	query := `SELECT ` + scanColumns + ` FROM security_scans WHERE scan_id = $1`

	scan, err := scanSecurityScan(s.pool.QueryRow(ctx, query, scanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrScanNotFound
		}
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}

	return scan, nil
}

// Update updates an existing scan.
func (s *ScanStore) Update(ctx context.Context, scan *models.SecurityScan) error {
	scan.UpdatedAt = time.Now()

	query := `
		UPDATE security_scans SET
			scan_type = $2,
			status = $3,
			findings = $4,
			started_at = $5,
			completed_at = $6,
			updated_at = $7
		WHERE scan_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		scan.ScanID,
		scan.ScanType,
		scan.Status,
		scan.Findings,
		scan.StartedAt,
		scan.CompletedAt,
		scan.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update scan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrScanNotFound
	}

	return nil
}

// Delete removes a scan.
func (s *ScanStore) Delete(ctx context.Context, scanID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM security_scans WHERE scan_id = $1`, scanID)
	if err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrScanNotFound
	}

	return nil
}

// List returns scans matching the filter, newest first.
func (s *ScanStore) List(ctx context.Context, filter store.ScanFilter) ([]*models.SecurityScan, error) {
	query := `
		SELECT ` + scanColumns + `
		FROM security_scans
		WHERE ($1 = '' OR scan_type = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3::uuid IS NULL OR target_model_id = $3)
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, filter.ScanType, filter.Status, filter.TargetModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	result := []*models.SecurityScan{}
	for rows.Next() {
		scan, err := scanSecurityScan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security scan row: %w", err)
		}
		result = append(result, scan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scans: %w", err)
	}

	return result, nil
}

// CountRunningByModels returns the number of running scans targeting one of
// the given models.
func (s *ScanStore) CountRunningByModels(ctx context.Context, modelIDs []uuid.UUID) (int, error) {
	if len(modelIDs) == 0 {
		return 0, nil
	}

	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM security_scans
		WHERE status = 'running' AND target_model_id = ANY($1)
	`, modelIDs).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count running scans: %w", err)
	}

	return count, nil
}

// Stats returns aggregate counts across all scans.
func (s *ScanStore) Stats(ctx context.Context) (*store.ScanStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, count(*) FROM security_scans GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan stats: %w", err)
	}
	defer rows.Close()

	stats := &store.ScanStats{ByStatus: make(map[string]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan stats: %w", err)
	}

	return stats, nil
}

func scanSecurityScan(row pgx.Row) (*models.SecurityScan, error) {
	var scan models.SecurityScan
	err := row.Scan(
		&scan.ScanID,
		&scan.ScanType,
		&scan.TargetModelID,
		&scan.Status,
		&scan.Findings,
		&scan.StartedAt,
		&scan.CompletedAt,
		&scan.CreatedBy,
		&scan.CreatedAt,
		&scan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}
