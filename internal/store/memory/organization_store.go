package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// OrganizationStore is an in-memory implementation of store.OrganizationStore
// for development and testing.
type OrganizationStore struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]*models.Organization
}

// NewOrganizationStore creates a new in-memory organization store.
func NewOrganizationStore() *OrganizationStore {
	return &OrganizationStore{
		orgs: make(map[uuid.UUID]*models.Organization),
	}
}

// Create creates a new organization.
func (s *OrganizationStore) Create(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orgs[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	s.orgs[org.OrgID] = copyOrg(org)

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(_ context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, exists := s.orgs[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return copyOrg(org), nil
}

// Update updates an existing organization.
func (s *OrganizationStore) Update(_ context.Context, org *models.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.orgs[org.OrgID]
	if !exists {
		return store.ErrOrganizationNotFound
	}

	org.CreatedAt = existing.CreatedAt
	org.UpdatedAt = time.Now()

	s.orgs[org.OrgID] = copyOrg(org)

	return nil
}

// Delete deletes an organization by ID. Cascading deletes of owned entities
// are the caller's responsibility; this store only knows organizations.
func (s *OrganizationStore) Delete(_ context.Context, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orgs[orgID]; !exists {
		return store.ErrOrganizationNotFound
	}

	delete(s.orgs, orgID)

	return nil
}

// List returns organizations matching the filter, newest first.
func (s *OrganizationStore) List(_ context.Context, filter store.OrganizationFilter) ([]*models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Organization, 0, len(s.orgs))
	for _, org := range s.orgs {
		if filter.Industry != "" && org.Industry != filter.Industry {
			continue
		}
		if filter.Size != "" && org.Size != filter.Size {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, org.Name, org.Description) {
			continue
		}
		result = append(result, copyOrg(org))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func copyOrg(org *models.Organization) *models.Organization {
	c := *org
	return &c
}

// matchesSearch reports whether any of the fields contains the term,
// case-insensitively.
func matchesSearch(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
