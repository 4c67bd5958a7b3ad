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

// CommentStore is an in-memory implementation of store.CommentStore for
// development and testing.
type CommentStore struct {
	mu       sync.RWMutex
	comments map[uuid.UUID]*models.Comment
}

// NewCommentStore creates a new in-memory comment store.
func NewCommentStore() *CommentStore {
	return &CommentStore{
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

// Create creates a new comment.
func (s *CommentStore) Create(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.comments[c.CommentID] = copyComment(c)

	return nil
}

// Get retrieves a comment by ID.
func (s *CommentStore) Get(_ context.Context, commentID uuid.UUID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.comments[commentID]
	if !exists {
		return nil, store.ErrCommentNotFound
	}

	return copyComment(c), nil
}

// Update updates an existing comment.
func (s *CommentStore) Update(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.comments[c.CommentID]
	if !exists {
		return store.ErrCommentNotFound
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	s.comments[c.CommentID] = copyComment(c)

	return nil
}

// Delete removes a comment.
func (s *CommentStore) Delete(_ context.Context, commentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[commentID]; !exists {
		return store.ErrCommentNotFound
	}

	delete(s.comments, commentID)

	return nil
}

// List returns comments matching the filter, oldest first so threads read
// in posting order.
func (s *CommentStore) List(_ context.Context, filter store.CommentFilter) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Comment{}
	for _, c := range s.comments {
		if filter.ApprovedOnly && !c.IsApproved {
			continue
		}
		if filter.BlogPostID != nil && (c.BlogPostID == nil || *c.BlogPostID != *filter.BlogPostID) {
			continue
		}
		if filter.CaseStudyID != nil && (c.CaseStudyID == nil || *c.CaseStudyID != *filter.CaseStudyID) {
			continue
		}
		result = append(result, copyComment(c))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func copyComment(c *models.Comment) *models.Comment {
	d := *c
	if c.BlogPostID != nil {
		id := *c.BlogPostID
		d.BlogPostID = &id
	}
	if c.CaseStudyID != nil {
		id := *c.CaseStudyID
		d.CaseStudyID = &id
	}
	if c.ParentID != nil {
		id := *c.ParentID
		d.ParentID = &id
	}
	return &d
}
