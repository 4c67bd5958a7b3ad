package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for model store operations
var (
	ErrModelNotFound      = errors.New("model not found")
	ErrModelAlreadyExists = errors.New("model already exists")
)

// ModelFilter narrows List results.
type ModelFilter struct {
	OrgID     *uuid.UUID
	ModelType string
	Status    string
	Search    string // matches name, description or version
}

// ModelStore defines the interface for AI model storage.
type ModelStore interface {
	Create(ctx context.Context, model *models.AIModel) error
	Get(ctx context.Context, modelID uuid.UUID) (*models.AIModel, error)
	Update(ctx context.Context, model *models.AIModel) error
	Delete(ctx context.Context, modelID uuid.UUID) error

	// List returns models matching the filter, newest first.
	List(ctx context.Context, filter ModelFilter) ([]*models.AIModel, error)

	// CountByOrg returns the number of models owned by an organization.
	CountByOrg(ctx context.Context, orgID uuid.UUID) (int, error)

	// DeleteByOrg removes all models owned by an organization. Used for
	// tenant-delete cascade.
	DeleteByOrg(ctx context.Context, orgID uuid.UUID) error
}
