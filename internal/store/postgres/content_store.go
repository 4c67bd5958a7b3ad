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

// CategoryStore implements store.CategoryStore using PostgreSQL.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore creates a new PostgreSQL-backed category store.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

// Create creates a new category.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (
			category_id, name, slug, description, ord, is_active,
			meta_title, meta_description, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.CategoryID, c.Name, c.Slug, c.Description, c.Order, c.IsActive,
		c.MetaTitle, c.MetaDescription, c.CreatedAt, c.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetBySlug retrieves a category by slug.
func (s *CategoryStore) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := s.pool.QueryRow(ctx, `
		SELECT category_id, name, slug, description, ord, is_active,
		       meta_title, meta_description, created_at, updated_at
		FROM categories WHERE slug = $1
	`, slug).Scan(&c.CategoryID, &c.Name, &c.Slug, &c.Description, &c.Order,
		&c.IsActive, &c.MetaTitle, &c.MetaDescription, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &c, nil
}

// Update updates an existing category.
func (s *CategoryStore) Update(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now()

	result, err := s.pool.Exec(ctx, `
		UPDATE categories SET
			name = $2, slug = $3, description = $4, ord = $5, is_active = $6,
			meta_title = $7, meta_description = $8, updated_at = $9
		WHERE category_id = $1
	`, c.CategoryID, c.Name, c.Slug, c.Description, c.Order, c.IsActive,
		c.MetaTitle, c.MetaDescription, c.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category by slug.
func (s *CategoryStore) Delete(ctx context.Context, slug string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrCategoryNotFound
	}

	return nil
}

// List returns active categories ordered by order then name.
func (s *CategoryStore) List(ctx context.Context, search string) ([]*models.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category_id, name, slug, description, ord, is_active,
		       meta_title, meta_description, created_at, updated_at
		FROM categories
		WHERE is_active
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY ord, name
	`, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	result := []*models.Category{}
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.CategoryID, &c.Name, &c.Slug, &c.Description, &c.Order,
			&c.IsActive, &c.MetaTitle, &c.MetaDescription, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return result, nil
}

// TagStore implements store.TagStore using PostgreSQL.
type TagStore struct {
	pool *pgxpool.Pool
}

// NewTagStore creates a new PostgreSQL-backed tag store.
func NewTagStore(pool *pgxpool.Pool) *TagStore {
	return &TagStore{pool: pool}
}

// Create creates a new tag.
func (s *TagStore) Create(ctx context.Context, t *models.Tag) error {
	t.CreatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tags (tag_id, name, slug, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.TagID, t.Name, t.Slug, t.Description, t.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// GetBySlug retrieves a tag by slug.
func (s *TagStore) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var t models.Tag
	err := s.pool.QueryRow(ctx, `
		SELECT tag_id, name, slug, description, created_at
		FROM tags WHERE slug = $1
	`, slug).Scan(&t.TagID, &t.Name, &t.Slug, &t.Description, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &t, nil
}

// Update updates an existing tag.
func (s *TagStore) Update(ctx context.Context, t *models.Tag) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE tags SET name = $2, slug = $3, description = $4
		WHERE tag_id = $1
	`, t.TagID, t.Name, t.Slug, t.Description)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return fmt.Errorf("failed to update tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrTagNotFound
	}

	return nil
}

// Delete removes a tag by slug.
func (s *TagStore) Delete(ctx context.Context, slug string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM tags WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrTagNotFound
	}

	return nil
}

// List returns tags ordered by name.
func (s *TagStore) List(ctx context.Context, search string) ([]*models.Tag, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tag_id, name, slug, description, created_at
		FROM tags
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY name
	`, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	result := []*models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.TagID, &t.Name, &t.Slug, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		result = append(result, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return result, nil
}

// ClientStore implements store.ClientStore using PostgreSQL.
type ClientStore struct {
	pool *pgxpool.Pool
}

// NewClientStore creates a new PostgreSQL-backed client store.
func NewClientStore(pool *pgxpool.Pool) *ClientStore {
	return &ClientStore{pool: pool}
}

// Create creates a new client.
func (s *ClientStore) Create(ctx context.Context, c *models.Client) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO clients (
			client_id, name, description, website, industry, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ClientID, c.Name, c.Description, c.Website, c.Industry, c.IsActive,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// Get retrieves a client by ID.
func (s *ClientStore) Get(ctx context.Context, clientID uuid.UUID) (*models.Client, error) {
	var c models.Client
	err := s.pool.QueryRow(ctx, `
		SELECT client_id, name, description, website, industry, is_active,
		       created_at, updated_at
		FROM clients WHERE client_id = $1
	`, clientID).Scan(&c.ClientID, &c.Name, &c.Description, &c.Website,
		&c.Industry, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &c, nil
}

// Update updates an existing client.
func (s *ClientStore) Update(ctx context.Context, c *models.Client) error {
	c.UpdatedAt = time.Now()

	result, err := s.pool.Exec(ctx, `
		UPDATE clients SET
			name = $2, description = $3, website = $4, industry = $5,
			is_active = $6, updated_at = $7
		WHERE client_id = $1
	`, c.ClientID, c.Name, c.Description, c.Website, c.Industry, c.IsActive, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrClientNotFound
	}

	return nil
}

// Delete removes a client.
func (s *ClientStore) Delete(ctx context.Context, clientID uuid.UUID) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrClientNotFound
	}

	return nil
}

// List returns active clients ordered by name.
func (s *ClientStore) List(ctx context.Context, search string) ([]*models.Client, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT client_id, name, description, website, industry, is_active,
		       created_at, updated_at
		FROM clients
		WHERE is_active
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%'
		       OR description ILIKE '%' || $1 || '%'
		       OR industry ILIKE '%' || $1 || '%')
		ORDER BY name
	`, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	result := []*models.Client{}
	for rows.Next() {
		var c models.Client
		err := rows.Scan(&c.ClientID, &c.Name, &c.Description, &c.Website,
			&c.Industry, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		result = append(result, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return result, nil
}
