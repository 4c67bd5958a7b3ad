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

const modelColumns = `
	model_id, name, model_type, version, description, org_id, status,
	created_at, updated_at
`

// ModelStore implements store.ModelStore using PostgreSQL.
type ModelStore struct {
	pool *pgxpool.Pool
}

// NewModelStore creates a new PostgreSQL-backed AI model store.
func NewModelStore(pool *pgxpool.Pool) *ModelStore {
	return &ModelStore{
		pool: pool,
	}
}

// Create creates a new AI model in the database.
func (s *ModelStore) Create(ctx context.Context, model *models.AIModel) error {
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	query := `
		INSERT INTO ai_models (` + modelColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		model.ModelID,
		model.Name,
		model.ModelType,
		model.Version,
		model.Description,
		model.OrgID,
		model.Status,
		model.CreatedAt,
		model.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrModelAlreadyExists
		}
		return fmt.Errorf("failed to create model: %w", err)
	}

	return nil
}

// Get retrieves an AI model by ID.
func (s *ModelStore) Get(ctx context.Context, modelID uuid.UUID) (*models.AIModel, error) {
	query := `SELECT ` + modelColumns + ` FROM ai_models WHERE model_id = $1`

	model, err := scanModel(s.pool.QueryRow(ctx, query, modelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to get model: %w", err)
	}

	return model, nil
}

// Update updates an existing AI model.
func (s *ModelStore) Update(ctx context.Context, model *models.AIModel) error {
	model.UpdatedAt = time.Now()

	query := `
		UPDATE ai_models SET
			name = $2,
			model_type = $3,
			version = $4,
			description = $5,
			status = $6,
			updated_at = $7
		WHERE model_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		model.ModelID,
		model.Name,
		model.ModelType,
		model.Version,
		model.Description,
		model.Status,
		model.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update model: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrModelNotFound
	}

	return nil
}

// Delete removes an AI model. Scans targeting it cascade-delete via FK.
func (s *ModelStore) Delete(ctx context.Context, modelID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM ai_models WHERE model_id = $1`, modelID)
	if err != nil {
		return fmt.Errorf("failed to delete model: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrModelNotFound
	}

	return nil
}

// List returns models matching the filter, newest first.
func (s *ModelStore) List(ctx context.Context, filter store.ModelFilter) ([]*models.AIModel, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM ai_models
		WHERE ($1::uuid IS NULL OR org_id = $1)
		  AND ($2 = '' OR model_type = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4 = '' OR name ILIKE '%' || $4 || '%'
		       OR description ILIKE '%' || $4 || '%'
		       OR version ILIKE '%' || $4 || '%')
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, filter.OrgID, filter.ModelType, filter.Status, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	result := []*models.AIModel{}
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		result = append(result, model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating models: %w", err)
	}

	return result, nil
}

// CountByOrg returns the number of models owned by an organization.
func (s *ModelStore) CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM ai_models WHERE org_id = $1`, orgID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count models: %w", err)
	}

	return count, nil
}

// DeleteByOrg removes all models owned by an organization.
func (s *ModelStore) DeleteByOrg(ctx context.Context, orgID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM ai_models WHERE org_id = $1`, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete models by org: %w", err)
	}

	return nil
}

func scanModel(row pgx.Row) (*models.AIModel, error) {
	var model models.AIModel
	err := row.Scan(
		&model.ModelID,
		&model.Name,
		&model.ModelType,
		&model.Version,
		&model.Description,
		&model.OrgID,
		&model.Status,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &model, nil
}
