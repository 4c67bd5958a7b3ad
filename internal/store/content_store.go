package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for content store operations
var (
	ErrCategoryNotFound  = errors.New("category not found")
	ErrTagNotFound       = errors.New("tag not found")
	ErrClientNotFound    = errors.New("client not found")
	ErrPostNotFound      = errors.New("post not found")
	ErrCaseStudyNotFound = errors.New("case study not found")
	ErrCommentNotFound   = errors.New("comment not found")
	ErrSlugTaken         = errors.New("slug already in use")
)

// CategoryStore stores content categories, keyed by slug for lookups.
type CategoryStore interface {
	Create(ctx context.Context, c *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, slug string) error
	// List returns active categories ordered by order then name.
	List(ctx context.Context, search string) ([]*models.Category, error)
}

// TagStore stores content tags, keyed by slug for lookups.
type TagStore interface {
	Create(ctx context.Context, t *models.Tag) error
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	Update(ctx context.Context, t *models.Tag) error
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, search string) ([]*models.Tag, error)
}

// ClientStore stores case-study clients.
type ClientStore interface {
	Create(ctx context.Context, c *models.Client) error
	Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, c *models.Client) error
	Delete(ctx context.Context, clientID uuid.UUID) error
	// List returns active clients ordered by name.
	List(ctx context.Context, search string) ([]*models.Client, error)
}

// PostFilter narrows blog post and case study listings.
type PostFilter struct {
	// PublishedOnly restricts the listing to entries visible at Now:
	// is_published set and published_at <= Now.
	PublishedOnly bool
	Now           time.Time

	Featured   *bool
	CategoryID *uuid.UUID
	IndustryID *uuid.UUID
	Search     string
}

// BlogPostStore stores blog posts, keyed by slug for lookups.
type BlogPostStore interface {
	Create(ctx context.Context, p *models.BlogPost) error
	Get(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Update(ctx context.Context, p *models.BlogPost) error
	Delete(ctx context.Context, slug string) error

	// List returns posts matching the filter, most recently published first.
	List(ctx context.Context, filter PostFilter) ([]*models.BlogPost, error)

	// IncrementViews atomically bumps the view counter by one.
	IncrementViews(ctx context.Context, postID uuid.UUID) error
}

// CaseStudyStore stores case studies, keyed by slug for lookups.
type CaseStudyStore interface {
	Create(ctx context.Context, c *models.CaseStudy) error
	Get(ctx context.Context, studyID uuid.UUID) (*models.CaseStudy, error)
	GetBySlug(ctx context.Context, slug string) (*models.CaseStudy, error)
	Update(ctx context.Context, c *models.CaseStudy) error
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, filter PostFilter) ([]*models.CaseStudy, error)
	IncrementViews(ctx context.Context, studyID uuid.UUID) error
}

// CommentFilter narrows comment listings.
type CommentFilter struct {
	ApprovedOnly bool
	BlogPostID   *uuid.UUID
	CaseStudyID  *uuid.UUID
}

// CommentStore stores reader comments.
type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	Get(ctx context.Context, commentID uuid.UUID) (*models.Comment, error)
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, commentID uuid.UUID) error
	List(ctx context.Context, filter CommentFilter) ([]*models.Comment, error)
}
