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

const caseStudyColumns = `
	study_id, title, slug, content, excerpt, client_id, industry_id,
	category_ids, tag_ids, key_results, technologies, testimonial,
	read_time, views, featured, allow_comments, meta_title,
	meta_description, is_published, published_at, created_at, updated_at
`

// CaseStudyStore implements store.CaseStudyStore using PostgreSQL.
type CaseStudyStore struct {
	pool *pgxpool.Pool
}

// NewCaseStudyStore creates a new PostgreSQL-backed case study store.
func NewCaseStudyStore(pool *pgxpool.Pool) *CaseStudyStore {
	return &CaseStudyStore{pool: pool}
}

// Create creates a new case study.
func (s *CaseStudyStore) Create(ctx context.Context, c *models.CaseStudy) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if c.KeyResults == nil {
		c.KeyResults = map[string]any{}
	}

	query := `
		INSERT INTO case_studies (` + caseStudyColumns + `
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)
	`

	_, err := s.pool.Exec(ctx, query,
		c.StudyID, c.Title, c.Slug, c.Content, c.Excerpt, c.ClientID,
		c.IndustryID, c.CategoryIDs, c.TagIDs, c.KeyResults, c.Technologies,
		c.Testimonial, c.ReadTime, c.Views, c.Featured, c.AllowComments,
		c.MetaTitle, c.MetaDescription, c.IsPublished, c.PublishedAt,
		c.CreatedAt, c.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		if isForeignKeyViolation(err) {
			return store.ErrClientNotFound
		}
		return fmt.Errorf("failed to create case study: %w", err)
	}

	return nil
}

// Get retrieves a case study by ID.
func (s *CaseStudyStore) Get(ctx context.Context, studyID uuid.UUID) (*models.CaseStudy, error) {
	query := `SELECT ` + caseStudyColumns + ` FROM case_studies WHERE study_id = $1`

	study, err := scanCaseStudy(s.pool.QueryRow(ctx, query, studyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCaseStudyNotFound
		}
		return nil, fmt.Errorf("failed to get case study: %w", err)
	}

	return study, nil
}

// GetBySlug retrieves a case study by slug.
func (s *CaseStudyStore) GetBySlug(ctx context.Context, slug string) (*models.CaseStudy, error) {
	query := `SELECT ` + caseStudyColumns + ` FROM case_studies WHERE slug = $1`

	study, err := scanCaseStudy(s.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCaseStudyNotFound
		}
		return nil, fmt.Errorf("failed to get case study: %w", err)
	}

	return study, nil
}

// Update updates an existing case study. The view counter is owned by
// IncrementViews.
func (s *CaseStudyStore) Update(ctx context.Context, c *models.CaseStudy) error {
	c.UpdatedAt = time.Now()

	query := `
		UPDATE case_studies SET
			title = $2, slug = $3, content = $4, excerpt = $5, client_id = $6,
			industry_id = $7, category_ids = $8, tag_ids = $9, key_results = $10,
			technologies = $11, testimonial = $12, read_time = $13,
			featured = $14, allow_comments = $15, meta_title = $16,
			meta_description = $17, is_published = $18, published_at = $19,
			updated_at = $20
		WHERE study_id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		c.StudyID, c.Title, c.Slug, c.Content, c.Excerpt, c.ClientID,
		c.IndustryID, c.CategoryIDs, c.TagIDs, c.KeyResults, c.Technologies,
		c.Testimonial, c.ReadTime, c.Featured, c.AllowComments, c.MetaTitle,
		c.MetaDescription, c.IsPublished, c.PublishedAt, c.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to update case study: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCaseStudyNotFound
	}

	return nil
}

// Delete removes a case study by slug.
func (s *CaseStudyStore) Delete(ctx context.Context, slug string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM case_studies WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete case study: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCaseStudyNotFound
	}

	return nil
}

// List returns case studies matching the filter, most recently published
// first.
func (s *CaseStudyStore) List(ctx context.Context, filter store.PostFilter) ([]*models.CaseStudy, error) {
	query := `
		SELECT ` + caseStudyColumns + `
		FROM case_studies
		WHERE (NOT $1::bool OR (is_published AND published_at IS NOT NULL AND published_at <= $2))
		  AND ($3::bool IS NULL OR featured = $3)
		  AND ($4::uuid IS NULL OR $4 = ANY(category_ids))
		  AND ($5::uuid IS NULL OR industry_id = $5)
		  AND ($6 = '' OR title ILIKE '%' || $6 || '%'
		       OR excerpt ILIKE '%' || $6 || '%'
		       OR content ILIKE '%' || $6 || '%')
		ORDER BY COALESCE(published_at, created_at) DESC
	`

	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}

	rows, err := s.pool.Query(ctx, query,
		filter.PublishedOnly, now, filter.Featured, filter.CategoryID,
		filter.IndustryID, filter.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to list case studies: %w", err)
	}
	defer rows.Close()

	result := []*models.CaseStudy{}
	for rows.Next() {
		study, err := scanCaseStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan case study: %w", err)
		}
		result = append(result, study)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating case studies: %w", err)
	}

	return result, nil
}

// IncrementViews atomically bumps the view counter by one.
func (s *CaseStudyStore) IncrementViews(ctx context.Context, studyID uuid.UUID) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE case_studies SET views = views + 1 WHERE study_id = $1`, studyID)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCaseStudyNotFound
	}

	return nil
}

func scanCaseStudy(row pgx.Row) (*models.CaseStudy, error) {
	var c models.CaseStudy
	err := row.Scan(
		&c.StudyID, &c.Title, &c.Slug, &c.Content, &c.Excerpt, &c.ClientID,
		&c.IndustryID, &c.CategoryIDs, &c.TagIDs, &c.KeyResults,
		&c.Technologies, &c.Testimonial, &c.ReadTime, &c.Views, &c.Featured,
		&c.AllowComments, &c.MetaTitle, &c.MetaDescription, &c.IsPublished,
		&c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
