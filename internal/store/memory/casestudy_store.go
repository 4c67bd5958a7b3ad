package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// CaseStudyStore is an in-memory implementation of store.CaseStudyStore for
// development and testing. Studies are keyed by ID with a slug index.
type CaseStudyStore struct {
	mu      sync.RWMutex
	studies map[uuid.UUID]*models.CaseStudy
	bySlug  map[string]uuid.UUID
}

// NewCaseStudyStore creates a new in-memory case study store.
func NewCaseStudyStore() *CaseStudyStore {
	return &CaseStudyStore{
		studies: make(map[uuid.UUID]*models.CaseStudy),
		bySlug:  make(map[string]uuid.UUID),
	}
}

// Create creates a new case study. Slugs are unique.
func (s *CaseStudyStore) Create(_ context.Context, c *models.CaseStudy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[c.Slug]; exists {
		return store.ErrSlugTaken
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.studies[c.StudyID] = copyCaseStudy(c)
	s.bySlug[c.Slug] = c.StudyID

	return nil
}

// Get retrieves a case study by ID.
func (s *CaseStudyStore) Get(_ context.Context, studyID uuid.UUID) (*models.CaseStudy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.studies[studyID]
	if !exists {
		return nil, store.ErrCaseStudyNotFound
	}

	return copyCaseStudy(c), nil
}

// GetBySlug retrieves a case study by slug.
func (s *CaseStudyStore) GetBySlug(_ context.Context, slug string) (*models.CaseStudy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.bySlug[slug]
	if !exists {
		return nil, store.ErrCaseStudyNotFound
	}

	return copyCaseStudy(s.studies[id]), nil
}

// Update updates an existing case study, reindexing on slug change.
func (s *CaseStudyStore) Update(_ context.Context, c *models.CaseStudy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.studies[c.StudyID]
	if !exists {
		return store.ErrCaseStudyNotFound
	}

	if c.Slug != existing.Slug {
		if _, taken := s.bySlug[c.Slug]; taken {
			return store.ErrSlugTaken
		}
		delete(s.bySlug, existing.Slug)
		s.bySlug[c.Slug] = c.StudyID
	}

	c.CreatedAt = existing.CreatedAt
	c.Views = existing.Views
	c.UpdatedAt = time.Now()

	s.studies[c.StudyID] = copyCaseStudy(c)

	return nil
}

// Delete removes a case study by slug.
func (s *CaseStudyStore) Delete(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.bySlug[slug]
	if !exists {
		return store.ErrCaseStudyNotFound
	}

	delete(s.studies, id)
	delete(s.bySlug, slug)

	return nil
}

// List returns case studies matching the filter, most recently published
// first.
func (s *CaseStudyStore) List(_ context.Context, filter store.PostFilter) ([]*models.CaseStudy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.CaseStudy{}
	for _, c := range s.studies {
		if filter.PublishedOnly && !c.VisibleAt(filter.Now) {
			continue
		}
		if filter.Featured != nil && c.Featured != *filter.Featured {
			continue
		}
		if filter.CategoryID != nil && !slices.Contains(c.CategoryIDs, *filter.CategoryID) {
			continue
		}
		if filter.IndustryID != nil && (c.IndustryID == nil || *c.IndustryID != *filter.IndustryID) {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, c.Title, c.Excerpt, c.Content) {
			continue
		}
		result = append(result, copyCaseStudy(c))
	}

	sort.Slice(result, func(i, j int) bool {
		return publishSortKey(result[i].PublishedAt, result[i].CreatedAt).
			After(publishSortKey(result[j].PublishedAt, result[j].CreatedAt))
	})

	return result, nil
}

// IncrementViews atomically bumps the view counter by one.
func (s *CaseStudyStore) IncrementViews(_ context.Context, studyID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.studies[studyID]
	if !exists {
		return store.ErrCaseStudyNotFound
	}

	c.Views++

	return nil
}

func copyCaseStudy(c *models.CaseStudy) *models.CaseStudy {
	d := *c
	d.CategoryIDs = slices.Clone(c.CategoryIDs)
	d.TagIDs = slices.Clone(c.TagIDs)
	d.Technologies = slices.Clone(c.Technologies)
	if c.KeyResults != nil {
		d.KeyResults = make(map[string]any, len(c.KeyResults))
		maps.Copy(d.KeyResults, c.KeyResults)
	}
	if c.IndustryID != nil {
		id := *c.IndustryID
		d.IndustryID = &id
	}
	if c.PublishedAt != nil {
		t := *c.PublishedAt
		d.PublishedAt = &t
	}
	return &d
}
