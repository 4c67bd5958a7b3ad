package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for principal store operations
var (
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrPrincipalAlreadyExists = errors.New("principal already exists")
)

// PrincipalStore defines the interface for principal storage.
type PrincipalStore interface {
	// Create creates a new principal.
	// Returns ErrPrincipalAlreadyExists on duplicate ID, username or email.
	Create(ctx context.Context, principal *models.Principal) error

	// Get retrieves a principal by ID.
	Get(ctx context.Context, principalID uuid.UUID) (*models.Principal, error)

	// GetByUsername retrieves a principal by username.
	GetByUsername(ctx context.Context, username string) (*models.Principal, error)

	// Update updates an existing principal.
	Update(ctx context.Context, principal *models.Principal) error

	// Delete removes a principal.
	Delete(ctx context.Context, principalID uuid.UUID) error

	// ListByOrg returns all principals belonging to an organization.
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Principal, error)

	// DetachOrg clears the organization reference on all members of the
	// given organization. Used when a tenant is deleted: profiles survive.
	DetachOrg(ctx context.Context, orgID uuid.UUID) error
}
