package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// ModelStore is an in-memory implementation of store.ModelStore for
// development and testing.
type ModelStore struct {
	mu       sync.RWMutex
	aiModels map[uuid.UUID]*models.AIModel
}

// NewModelStore creates a new in-memory AI model store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		aiModels: make(map[uuid.UUID]*models.AIModel),
	}
}

// Create creates a new AI model.
func (s *ModelStore) Create(_ context.Context, model *models.AIModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.aiModels[model.ModelID]; exists {
		return store.ErrModelAlreadyExists
	}

	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now

	s.aiModels[model.ModelID] = copyModel(model)

	return nil
}

// Get retrieves an AI model by ID.
func (s *ModelStore) Get(_ context.Context, modelID uuid.UUID) (*models.AIModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	model, exists := s.aiModels[modelID]
	if !exists {
		return nil, store.ErrModelNotFound
	}

	return copyModel(model), nil
}

// Update updates an existing AI model.
func (s *ModelStore) Update(_ context.Context, model *models.AIModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.aiModels[model.ModelID]
	if !exists {
		return store.ErrModelNotFound
	}

	model.CreatedAt = existing.CreatedAt
	model.UpdatedAt = time.Now()

	s.aiModels[model.ModelID] = copyModel(model)

	return nil
}

// Delete removes an AI model.
func (s *ModelStore) Delete(_ context.Context, modelID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.aiModels[modelID]; !exists {
		return store.ErrModelNotFound
	}

	delete(s.aiModels, modelID)

	return nil
}

// List returns models matching the filter, newest first.
func (s *ModelStore) List(_ context.Context, filter store.ModelFilter) ([]*models.AIModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.AIModel{}
	for _, model := range s.aiModels {
		if filter.OrgID != nil && model.OrgID != *filter.OrgID {
			continue
		}
		if filter.ModelType != "" && model.ModelType != filter.ModelType {
			continue
		}
		if filter.Status != "" && model.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, model.Name, model.Description, model.Version) {
			continue
		}
		result = append(result, copyModel(model))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// CountByOrg returns the number of models owned by an organization.
func (s *ModelStore) CountByOrg(_ context.Context, orgID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, model := range s.aiModels {
		if model.OrgID == orgID {
			count++
		}
	}

	return count, nil
}

// DeleteByOrg removes all models owned by an organization.
func (s *ModelStore) DeleteByOrg(_ context.Context, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, model := range s.aiModels {
		if model.OrgID == orgID {
			delete(s.aiModels, id)
		}
	}

	return nil
}

func copyModel(model *models.AIModel) *models.AIModel {
	c := *model
	return &c
}
