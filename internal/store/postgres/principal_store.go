package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

const principalColumns = `
	principal_id, username, email, first_name, last_name, password_hash,
	org_id, role, phone_number, department, is_staff, is_superuser,
	created_at, updated_at
`

// PrincipalStore implements store.PrincipalStore using PostgreSQL.
type PrincipalStore struct {
	pool *pgxpool.Pool
}

// NewPrincipalStore creates a new PostgreSQL-backed principal store.
func NewPrincipalStore(pool *pgxpool.Pool) *PrincipalStore {
	return &PrincipalStore{
		pool: pool,
	}
}

// Create creates a new principal in the database.
func (s *PrincipalStore) Create(ctx context.Context, principal *models.Principal) error {
	now := time.Now()
	principal.CreatedAt = now
	principal.UpdatedAt = now

	query := `
		INSERT INTO principals (` + principalColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := s.pool.Exec(ctx, query,
		principal.PrincipalID,
		principal.Username,
		principal.Email,
		principal.FirstName,
		principal.LastName,
		principal.PasswordHash,
		principal.OrgID,
		principal.Role,
		principal.PhoneNumber,
		principal.Department,
		principal.IsStaff,
		principal.IsSuperuser,
		principal.CreatedAt,
		principal.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrPrincipalAlreadyExists
		}
		return fmt.Errorf("failed to create principal: %w", err)
	}

	log.Debug().
		Str("principal_id", principal.PrincipalID.String()).
		Str("username", principal.Username).
		Msg("Created principal")

	return nil
}

// Get retrieves a principal by ID.
func (s *PrincipalStore) Get(ctx context.Context, principalID uuid.UUID) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE principal_id = $1`

	return s.scanOne(s.pool.QueryRow(ctx, query, principalID))
}

// GetByUsername retrieves a principal by username.
func (s *PrincipalStore) GetByUsername(ctx context.Context, username string) (*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE username = $1`

	return s.scanOne(s.pool.QueryRow(ctx, query, username))
}

// Update updates an existing principal.
func (s *PrincipalStore) Update(ctx context.Context, principal *models.Principal) error {
	principal.UpdatedAt = time.Now()

	query := `
		UPDATE principals SET
			username = $2,
			email = $3,
			first_name = $4,
			last_name = $5,
			password_hash = $6,
			org_id = $7,
			role = $8,
			phone_number = $9,
			department = $10,
			is_staff = $11,
			is_superuser = $12,
			updated_at = $13
		WHERE principal_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		principal.PrincipalID,
		principal.Username,
		principal.Email,
		principal.FirstName,
		principal.LastName,
		principal.PasswordHash,
		principal.OrgID,
		principal.Role,
		principal.PhoneNumber,
		principal.Department,
		principal.IsStaff,
		principal.IsSuperuser,
		principal.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrPrincipalAlreadyExists
		}
		return fmt.Errorf("failed to update principal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPrincipalNotFound
	}

	return nil
}

// Delete removes a principal.
func (s *PrincipalStore) Delete(ctx context.Context, principalID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM principals WHERE principal_id = $1`, principalID)
	if err != nil {
		return fmt.Errorf("failed to delete principal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPrincipalNotFound
	}

	return nil
}

// ListByOrg returns all principals belonging to an organization.
func (s *PrincipalStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Principal, error) {
	query := `SELECT ` + principalColumns + ` FROM principals WHERE org_id = $1 ORDER BY username`

	rows, err := s.pool.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	defer rows.Close()

	principals := []*models.Principal{}
	for rows.Next() {
		principal, err := s.scanPrincipalRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan principal: %w", err)
		}
		principals = append(principals, principal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating principals: %w", err)
	}

	return principals, nil
}

// DetachOrg clears the organization reference on all members of the given
// organization.
func (s *PrincipalStore) DetachOrg(ctx context.Context, orgID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE principals SET org_id = NULL, updated_at = $2 WHERE org_id = $1`,
		orgID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to detach principals: %w", err)
	}

	return nil
}

func (s *PrincipalStore) scanOne(row pgx.Row) (*models.Principal, error) {
	principal, err := s.scanPrincipalRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}
	return principal, nil
}

func (s *PrincipalStore) scanPrincipalRow(row pgx.Row) (*models.Principal, error) {
	var principal models.Principal
	err := row.Scan(
		&principal.PrincipalID,
		&principal.Username,
		&principal.Email,
		&principal.FirstName,
		&principal.LastName,
		&principal.PasswordHash,
		&principal.OrgID,
		&principal.Role,
		&principal.PhoneNumber,
		&principal.Department,
		&principal.IsStaff,
		&principal.IsSuperuser,
		&principal.CreatedAt,
		&principal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &principal, nil
}
