package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

const blogPostColumns = `
	post_id, title, slug, content, excerpt, author_id, category_ids, tag_ids,
	read_time, views, featured, allow_comments, meta_title, meta_description,
	is_published, published_at, created_at, updated_at
`

// BlogPostStore implements store.BlogPostStore using PostgreSQL. Category
// and tag references are stored as uuid arrays.
type BlogPostStore struct {
	pool *pgxpool.Pool
}

// NewBlogPostStore creates a new PostgreSQL-backed blog post store.
func NewBlogPostStore(pool *pgxpool.Pool) *BlogPostStore {
	return &BlogPostStore{pool: pool}
}

// Create creates a new post.
func (s *BlogPostStore) Create(ctx context.Context, p *models.BlogPost) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO blog_posts (` + blogPostColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)
	`

	_, err := s.pool.Exec(ctx, query,
		p.PostID, p.Title, p.Slug, p.Content, p.Excerpt, p.AuthorID,
		p.CategoryIDs, p.TagIDs, p.ReadTime, p.Views, p.Featured,
		p.AllowComments, p.MetaTitle, p.MetaDescription, p.IsPublished,
		p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to create blog post: %w", err)
	}

	return nil
}

// Get retrieves a post by ID.
func (s *BlogPostStore) Get(ctx context.Context, postID uuid.UUID) (*models.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE post_id = $1`

	post, err := scanBlogPost(s.pool.QueryRow(ctx, query, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}

	return post, nil
}

// GetBySlug retrieves a post by slug.
func (s *BlogPostStore) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := `SELECT ` + blogPostColumns + ` FROM blog_posts WHERE slug = $1`

	post, err := scanBlogPost(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}

	return post, nil
}

// Update updates an existing post. The view counter is owned by
// IncrementViews and deliberately not written here.
func (s *BlogPostStore) Update(ctx context.Context, p *models.BlogPost) error {
	p.UpdatedAt = time.Now()

	query := `
		UPDATE blog_posts SET
			title = $2, slug = $3, content = $4, excerpt = $5,
			category_ids = $6, tag_ids = $7, read_time = $8, featured = $9,
			allow_comments = $10, meta_title = $11, meta_description = $12,
			is_published = $13, published_at = $14, updated_at = $15
		WHERE post_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		p.PostID, p.Title, p.Slug, p.Content, p.Excerpt, p.CategoryIDs,
		p.TagIDs, p.ReadTime, p.Featured, p.AllowComments, p.MetaTitle,
		p.MetaDescription, p.IsPublished, p.PublishedAt, p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to update blog post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPostNotFound
	}

	return nil
}

// Delete removes a post by slug.
func (s *BlogPostStore) Delete(ctx context.Context, slug string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM blog_posts WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPostNotFound
	}

	return nil
}

// List returns posts matching the filter, most recently published first.
func (s *BlogPostStore) List(ctx context.Context, filter store.PostFilter) ([]*models.BlogPost, error) {
	query := `
		SELECT ` + blogPostColumns + `
		FROM blog_posts
		WHERE (NOT $1::bool OR (is_published AND published_at IS NOT NULL AND published_at <= $2))
		  AND ($3::bool IS NULL OR featured = $3)
		  AND ($4::uuid IS NULL OR $4 = ANY(category_ids))
		  AND ($5 = '' OR title ILIKE '%' || $5 || '%'
		       OR excerpt ILIKE '%' || $5 || '%'
		       OR content ILIKE '%' || $5 || '%')
		ORDER BY COALESCE(published_at, created_at) DESC
	`

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	rows, err := s.pool.Query(ctx, query,
		filter.PublishedOnly, now, filter.Featured, filter.CategoryID, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	result := []*models.BlogPost{}
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		result = append(result, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blog posts: %w", err)
	}

	return result, nil
}

// IncrementViews atomically bumps the view counter by one.
func (s *BlogPostStore) IncrementViews(ctx context.Context, postID uuid.UUID) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE blog_posts SET views = views + 1 WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrPostNotFound
	}

	return nil
}

func scanBlogPost(row pgx.Row) (*models.BlogPost, error) {
	var p models.BlogPost
	err := row.Scan(
		&p.PostID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.AuthorID,
		&p.CategoryIDs, &p.TagIDs, &p.ReadTime, &p.Views, &p.Featured,
		&p.AllowComments, &p.MetaTitle, &p.MetaDescription, &p.IsPublished,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
