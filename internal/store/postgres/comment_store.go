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

const commentColumns = `
	comment_id, content, author_id, blog_post_id, case_study_id, parent_id,
	is_approved, is_spam, ip_address, user_agent, created_at, updated_at
`

// CommentStore implements store.CommentStore using PostgreSQL.
type CommentStore struct {
	pool *pgxpool.Pool
}

// NewCommentStore creates a new PostgreSQL-backed comment store.
func NewCommentStore(pool *pgxpool.Pool) *CommentStore {
	return &CommentStore{pool: pool}
}

// Create creates a new comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO comments (` + commentColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := s.pool.Exec(ctx, query,
		c.CommentID, c.Content, c.AuthorID, c.BlogPostID, c.CaseStudyID,
		c.ParentID, c.IsApproved, c.IsSpam, c.IPAddress, c.UserAgent,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// Get retrieves a comment by ID.
func (s *CommentStore) Get(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE comment_id = $1`

	comment, err := scanComment(s.pool.QueryRow(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// Update updates an existing comment.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE comments SET
			content = $2, is_approved = $3, is_spam = $4, updated_at = $5
		WHERE comment_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		c.CommentID, c.Content, c.IsApproved, c.IsSpam, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCommentNotFound
	}

	return nil
}

// Delete removes a comment. Replies cascade-delete via FK.
func (s *CommentStore) Delete(ctx context.Context, commentID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE comment_id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCommentNotFound
	}

	return nil
}

// List returns comments matching the filter, oldest first so threads read
// in posting order.
func (s *CommentStore) List(ctx context.Context, filter store.CommentFilter) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE (NOT $1::bool OR is_approved)
		  AND ($2::uuid IS NULL OR blog_post_id = $2)
		  AND ($3::uuid IS NULL OR case_study_id = $3)
		ORDER BY created_at
	`

	rows, err := s.pool.Query(ctx, query,
		filter.ApprovedOnly, filter.BlogPostID, filter.CaseStudyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	result := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		result = append(result, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return result, nil
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.CommentID, &c.Content, &c.AuthorID, &c.BlogPostID, &c.CaseStudyID,
		&c.ParentID, &c.IsApproved, &c.IsSpam, &c.IPAddress, &c.UserAgent,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
