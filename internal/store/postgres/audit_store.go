package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// AuditStore implements store.AuditStore using PostgreSQL. The table is
// append-only; no update or delete statements exist.
type AuditStore struct {
	pool *pgxpool.Pool
}

// NewAuditStore creates a new PostgreSQL-backed audit log store.
func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{
		pool: pool,
	}
}

// Append records an audit log entry.
func (s *AuditStore) Append(ctx context.Context, entry *models.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	query := `
		INSERT INTO audit_logs (
			log_id, principal_id, org_id, action, entity_name, entity_id,
			details, ip_address, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		entry.LogID,
		entry.PrincipalID,
		entry.OrgID,
		entry.Action,
		entry.EntityName,
		entry.EntityID,
		entry.Details,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}

	return nil
}

// List returns audit entries matching the filter, newest first.
func (s *AuditStore) List(ctx context.Context, filter store.AuditFilter) ([]*models.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}

	query := `
		SELECT log_id, principal_id, org_id, action, entity_name, entity_id,
		       details, ip_address, created_at
		FROM audit_logs
		WHERE ($1::uuid IS NULL OR org_id = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR entity_name = $3)
		ORDER BY created_at DESC
		LIMIT $4
	`

	rows, err := s.pool.Query(ctx, query, filter.OrgID, filter.Action, filter.EntityName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	result := []*models.AuditLog{}
	for rows.Next() {
		var entry models.AuditLog
		err := rows.Scan(
			&entry.LogID,
			&entry.PrincipalID,
			&entry.OrgID,
			&entry.Action,
			&entry.EntityName,
			&entry.EntityID,
			&entry.Details,
			&entry.IPAddress,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		result = append(result, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit logs: %w", err)
	}

	return result, nil
}
