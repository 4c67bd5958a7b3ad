package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationFilter narrows List results.
type OrganizationFilter struct {
	Industry string
	Size     string
	Search   string // matches name or description
}

// OrganizationStore defines the interface for organization storage.
type OrganizationStore interface {
	// Create creates a new organization.
	// Returns ErrOrganizationAlreadyExists on duplicate ID.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if it doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// Update updates an existing organization.
	// Returns ErrOrganizationNotFound if it doesn't exist.
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization by ID. Owned models and incidents are
	// deleted with it; member principals are detached, not deleted.
	Delete(ctx context.Context, orgID uuid.UUID) error

	// List returns organizations matching the filter, newest first.
	List(ctx context.Context, filter OrganizationFilter) ([]*models.Organization, error)
}
