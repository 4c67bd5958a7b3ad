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

// TagStore is an in-memory implementation of store.TagStore for development
// and testing. Tags are keyed by slug.
type TagStore struct {
	mu   sync.RWMutex
	tags map[string]*models.Tag
}

// NewTagStore creates a new in-memory tag store.
func NewTagStore() *TagStore {
	return &TagStore{
		tags: make(map[string]*models.Tag),
	}
}

// Create creates a new tag. Slugs are unique.
func (s *TagStore) Create(_ context.Context, t *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tags[t.Slug]; exists {
		return store.ErrSlugTaken
	}

	t.CreatedAt = time.Now()

	s.tags[t.Slug] = copyTag(t)

	return nil
}

// GetBySlug retrieves a tag by slug.
func (s *TagStore) GetBySlug(_ context.Context, slug string) (*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tags[slug]
	if !exists {
		return nil, store.ErrTagNotFound
	}

	return copyTag(t), nil
}

// Update updates an existing tag, reindexing on slug change.
func (s *TagStore) Update(_ context.Context, t *models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, oldSlug := s.findTagByID(t.TagID)
	if existing == nil {
		return store.ErrTagNotFound
	}

	if t.Slug != oldSlug {
		if _, taken := s.tags[t.Slug]; taken {
			return store.ErrSlugTaken
		}
		delete(s.tags, oldSlug)
	}

	t.CreatedAt = existing.CreatedAt

	s.tags[t.Slug] = copyTag(t)

	return nil
}

// Delete removes a tag by slug.
func (s *TagStore) Delete(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tags[slug]; !exists {
		return store.ErrTagNotFound
	}

	delete(s.tags, slug)

	return nil
}

// List returns tags ordered by name.
func (s *TagStore) List(_ context.Context, search string) ([]*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Tag{}
	for _, t := range s.tags {
		if search != "" && !matchesSearch(search, t.Name, t.Description) {
			continue
		}
		result = append(result, copyTag(t))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (s *TagStore) findTagByID(id uuid.UUID) (*models.Tag, string) {
	for slug, t := range s.tags {
		if t.TagID == id {
			return t, slug
		}
	}
	return nil, ""
}

func copyTag(t *models.Tag) *models.Tag {
	d := *t
	return &d
}
