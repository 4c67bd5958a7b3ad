package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// BlogPostStore is an in-memory implementation of store.BlogPostStore for
// development and testing. Posts are keyed by ID with a slug index.
type BlogPostStore struct {
	mu     sync.RWMutex
	posts  map[uuid.UUID]*models.BlogPost
	bySlug map[string]uuid.UUID
}

// NewBlogPostStore creates a new in-memory blog post store.
func NewBlogPostStore() *BlogPostStore {
	return &BlogPostStore{
		posts:  make(map[uuid.UUID]*models.BlogPost),
		bySlug: make(map[string]uuid.UUID),
	}
}

// Create creates a new post. Slugs are unique.
func (s *BlogPostStore) Create(_ context.Context, p *models.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[p.Slug]; exists {
		return store.ErrSlugTaken
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.posts[p.PostID] = copyBlogPost(p)
	s.bySlug[p.Slug] = p.PostID

	return nil
}

// Get retrieves a post by ID.
func (s *BlogPostStore) Get(_ context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.posts[postID]
	if !exists {
		return nil, store.ErrPostNotFound
	}

	return copyBlogPost(p), nil
}

// GetBySlug retrieves a post by slug.
func (s *BlogPostStore) GetBySlug(_ context.Context, slug string) (*models.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.bySlug[slug]
	if !exists {
		return nil, store.ErrPostNotFound
	}

	return copyBlogPost(s.posts[id]), nil
}

// Update updates an existing post, reindexing on slug change.
func (s *BlogPostStore) Update(_ context.Context, p *models.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.posts[p.PostID]
	if !exists {
		return store.ErrPostNotFound
	}

	if p.Slug != existing.Slug {
		if _, taken := s.bySlug[p.Slug]; taken {
			return store.ErrSlugTaken
		}
		delete(s.bySlug, existing.Slug)
		s.bySlug[p.Slug] = p.PostID
	}

	p.CreatedAt = existing.CreatedAt
	p.Views = existing.Views
	p.UpdatedAt = time.Now()

	s.posts[p.PostID] = copyBlogPost(p)

	return nil
}

// Delete removes a post by slug.
func (s *BlogPostStore) Delete(_ context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.bySlug[slug]
	if !exists {
		return store.ErrPostNotFound
	}

	delete(s.posts, id)
	delete(s.bySlug, slug)

	return nil
}

// List returns posts matching the filter, most recently published first.
// Unpublished posts sort after published ones, newest created first.
func (s *BlogPostStore) List(_ context.Context, filter store.PostFilter) ([]*models.BlogPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.BlogPost{}
	for _, p := range s.posts {
		if filter.PublishedOnly && !p.VisibleAt(filter.Now) {
			continue
		}
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if filter.CategoryID != nil && !slices.Contains(p.CategoryIDs, *filter.CategoryID) {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, p.Title, p.Excerpt, p.Content) {
			continue
		}
		result = append(result, copyBlogPost(p))
	}

	sort.Slice(result, func(i, j int) bool {
		return publishSortKey(result[i].PublishedAt, result[i].CreatedAt).
			After(publishSortKey(result[j].PublishedAt, result[j].CreatedAt))
	})

	return result, nil
}

// IncrementViews atomically bumps the view counter by one.
func (s *BlogPostStore) IncrementViews(_ context.Context, postID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.posts[postID]
	if !exists {
		return store.ErrPostNotFound
	}

	p.Views++

	return nil
}

func publishSortKey(publishedAt *time.Time, createdAt time.Time) time.Time {
	if publishedAt != nil {
		return *publishedAt
	}
	return createdAt
}

func copyBlogPost(p *models.BlogPost) *models.BlogPost {
	c := *p
	c.CategoryIDs = slices.Clone(p.CategoryIDs)
	c.TagIDs = slices.Clone(p.TagIDs)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		c.PublishedAt = &t
	}
	return &c
}
