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

// CategoryStore is an in-memory implementation of store.CategoryStore for
// development and testing. Categories are keyed by slug.
type CategoryStore struct {
	mu         sync.RWMutex
	categories map[string]*models.Category
}

// NewCategoryStore creates a new in-memory category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{
		categories: make(map[string]*models.Category),
	}
}

// Create creates a new category. Slugs are unique.
func (s *CategoryStore) Create(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[c.Slug]; exists {
		return store.ErrSlugTaken
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.categories[c.Slug] = copyCategory(c)

	return nil
}

// GetBySlug retrieves a category by slug.
func (s *CategoryStore) GetBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.categories[slug]
	if !exists {
		return nil, store.ErrCategoryNotFound
	}

	return copyCategory(c), nil
}

// Update updates an existing category, reindexing on slug change.
func (s *CategoryStore) Update(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, oldSlug := s.findCategoryByID(c.CategoryID)
	if existing == nil {
		return store.ErrCategoryNotFound
	}

	if c.Slug != oldSlug {
		if _, taken := s.categories[c.Slug]; taken {
			return store.ErrSlugTaken
		}
		delete(s.categories, oldSlug)
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	s.categories[c.Slug] = copyCategory(c)

	return nil
}

// Delete removes a category by slug.
func (s *CategoryStore) Delete(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.categories[slug]; !exists {
		return store.ErrCategoryNotFound
	}

	delete(s.categories, slug)

	return nil
}

// List returns active categories ordered by order then name.
func (s *CategoryStore) List(_ context.Context, search string) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Category{}
	for _, c := range s.categories {
		if !c.IsActive {
			continue
		}
		if search != "" && !matchesSearch(search, c.Name, c.Description) {
			continue
		}
		result = append(result, copyCategory(c))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (s *CategoryStore) findCategoryByID(id uuid.UUID) (*models.Category, string) {
	for slug, c := range s.categories {
		if c.CategoryID == id {
			return c, slug
		}
	}
	return nil, ""
}

func copyCategory(c *models.Category) *models.Category {
	d := *c
	return &d
}
