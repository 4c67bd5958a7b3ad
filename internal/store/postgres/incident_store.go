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

const incidentColumns = `
	incident_id, title, description, severity, status, org_id,
	affected_model_id, reported_by, assigned_to, created_at, updated_at,
	resolved_at
`

// IncidentStore implements store.IncidentStore using PostgreSQL.
type IncidentStore struct {
	pool *pgxpool.Pool
}

// NewIncidentStore creates a new PostgreSQL-backed incident store.
func NewIncidentStore(pool *pgxpool.Pool) *IncidentStore {
	return &IncidentStore{
		pool: pool,
	}
}

// Create creates a new incident in the database.
func (s *IncidentStore) Create(ctx context.Context, incident *models.SecurityIncident) error {
	now := time.Now()
	incident.CreatedAt = now
	incident.UpdatedAt = now

	query := `
		INSERT INTO security_incidents (` + incidentColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := s.pool.Exec(ctx, query,
		incident.IncidentID,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.OrgID,
		incident.AffectedModelID,
		incident.ReportedBy,
		incident.AssignedTo,
		incident.CreatedAt,
		incident.UpdatedAt,
		incident.ResolvedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrIncidentAlreadyExists
		}
		return fmt.Errorf("failed to create incident: %w", err)
	}

	return nil
}

// Get retrieves an incident by ID.
func (s *IncidentStore) Get(ctx context.Context, incidentID uuid.UUID) (*models.SecurityIncident, error) {
	query := `SELECT ` + incidentColumns + ` FROM security_incidents WHERE incident_id = $1`

	incident, err := scanIncident(s.pool.QueryRow(ctx, query, incidentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}

	return incident, nil
}

// Update updates an existing incident.
func (s *IncidentStore) Update(ctx context.Context, incident *models.SecurityIncident) error {
	incident.UpdatedAt = time.Now()

	query := `
		UPDATE security_incidents SET
			title = $2,
			description = $3,
			severity = $4,
			status = $5,
			affected_model_id = $6,
			assigned_to = $7,
			updated_at = $8,
			resolved_at = $9
		WHERE incident_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		incident.IncidentID,
		incident.Title,
		incident.Description,
		incident.Severity,
		incident.Status,
		incident.AffectedModelID,
		incident.AssignedTo,
		incident.UpdatedAt,
		incident.ResolvedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrIncidentNotFound
	}

	return nil
}

// Delete removes an incident.
func (s *IncidentStore) Delete(ctx context.Context, incidentID uuid.UUID) error {
	result, err := s.pool.Exec(ctx,
		`DELETE FROM security_incidents WHERE incident_id = $1`, incidentID)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrIncidentNotFound
	}

	return nil
}

// List returns incidents matching the filter, newest first.
func (s *IncidentStore) List(ctx context.Context, filter store.IncidentFilter) ([]*models.SecurityIncident, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT ` + incidentColumns + `
		FROM security_incidents
		WHERE ($1::uuid IS NULL OR org_id = $1)
		  AND ($2 = '' OR severity = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR title ILIKE '%' || $4 || '%' OR description ILIKE '%' || $4 || '%')
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		ORDER BY created_at DESC
		LIMIT $6
	`

	rows, err := s.pool.Query(ctx, query,
		filter.OrgID, filter.Severity, filter.Status, filter.Search, filter.Since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	result := []*models.SecurityIncident{}
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		result = append(result, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}

	return result, nil
}

// BulkUpdateStatus sets the status on every incident in ids that exists.
// Missing IDs are silently skipped.
func (s *IncidentStore) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE security_incidents
		SET status = $2, updated_at = $3
		WHERE incident_id = ANY($1)
	`, ids, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to bulk update incidents: %w", err)
	}

	return nil
}

// StatsByOrg returns aggregate counts for an organization.
func (s *IncidentStore) StatsByOrg(ctx context.Context, orgID uuid.UUID) (*store.IncidentStats, error) {
	stats := &store.IncidentStats{BySeverity: make(map[string]int)}
	recentCutoff := time.Now().AddDate(0, 0, -30)

	rows, err := s.pool.Query(ctx, `
		SELECT severity, status, created_at
		FROM security_incidents
		WHERE org_id = $1
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incident stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var severity, status string
		var createdAt time.Time
		if err := rows.Scan(&severity, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.Total++
		stats.BySeverity[severity]++
		if status == models.IncidentStatusOpen || status == models.IncidentStatusInvestigating {
			stats.Active++
		}
		if !createdAt.Before(recentCutoff) {
			stats.Recent++
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incident stats: %w", err)
	}

	return stats, nil
}

// TrendByOrg returns per-day incident counts since the given time, oldest
// day first.
func (s *IncidentStore) TrendByOrg(ctx context.Context, orgID uuid.UUID, since time.Time) ([]store.TrendPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, count(*)
		FROM security_incidents
		WHERE org_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day
	`, orgID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query incident trend: %w", err)
	}
	defer rows.Close()

	trend := []store.TrendPoint{}
	for rows.Next() {
		var point store.TrendPoint
		if err := rows.Scan(&point.Day, &point.Count); err != nil {
			return nil, fmt.Errorf("failed to scan trend row: %w", err)
		}
		trend = append(trend, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incident trend: %w", err)
	}

	return trend, nil
}

// CountByStatus returns counts grouped by status for an organization.
func (s *IncidentStore) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status, count(*)
		FROM security_incidents
		WHERE org_id = $1
		GROUP BY status
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incident status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count row: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// DeleteByOrg removes all incidents of an organization.
func (s *IncidentStore) DeleteByOrg(ctx context.Context, orgID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM security_incidents WHERE org_id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete incidents by org: %w", err)
	}

	return nil
}

func scanIncident(row pgx.Row) (*models.SecurityIncident, error) {
	var incident models.SecurityIncident
	err := row.Scan(
		&incident.IncidentID,
		&incident.Title,
		&incident.Description,
		&incident.Severity,
		&incident.Status,
		&incident.OrgID,
		&incident.AffectedModelID,
		&incident.ReportedBy,
		&incident.AssignedTo,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &incident, nil
}
