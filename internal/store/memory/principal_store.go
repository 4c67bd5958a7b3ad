package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// PrincipalStore is an in-memory implementation of store.PrincipalStore for
// development and testing.
type PrincipalStore struct {
	mu         sync.RWMutex
	principals map[uuid.UUID]*models.Principal
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

// NewPrincipalStore creates a new in-memory principal store.
func NewPrincipalStore() *PrincipalStore {
	return &PrincipalStore{
		principals: make(map[uuid.UUID]*models.Principal),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

// Create creates a new principal. Username and email are unique.
func (s *PrincipalStore) Create(_ context.Context, principal *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.principals[principal.PrincipalID]; exists {
		return store.ErrPrincipalAlreadyExists
	}
	if _, exists := s.byUsername[principal.Username]; exists {
		return store.ErrPrincipalAlreadyExists
	}
	if _, exists := s.byEmail[principal.Email]; exists {
		return store.ErrPrincipalAlreadyExists
	}

	now := time.Now()
	principal.CreatedAt = now
	principal.UpdatedAt = now

	s.principals[principal.PrincipalID] = copyPrincipal(principal)
	s.byUsername[principal.Username] = principal.PrincipalID
	s.byEmail[principal.Email] = principal.PrincipalID

	return nil
}

// Get retrieves a principal by ID.
func (s *PrincipalStore) Get(_ context.Context, principalID uuid.UUID) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principal, exists := s.principals[principalID]
	if !exists {
		return nil, store.ErrPrincipalNotFound
	}

	return copyPrincipal(principal), nil
}

// GetByUsername retrieves a principal by username.
func (s *PrincipalStore) GetByUsername(_ context.Context, username string) (*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byUsername[username]
	if !exists {
		return nil, store.ErrPrincipalNotFound
	}

	return copyPrincipal(s.principals[id]), nil
}

// Update updates an existing principal, reindexing username and email.
func (s *PrincipalStore) Update(_ context.Context, principal *models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.principals[principal.PrincipalID]
	if !exists {
		return store.ErrPrincipalNotFound
	}

	if principal.Username != existing.Username {
		if _, taken := s.byUsername[principal.Username]; taken {
			return store.ErrPrincipalAlreadyExists
		}
		delete(s.byUsername, existing.Username)
		s.byUsername[principal.Username] = principal.PrincipalID
	}
	if principal.Email != existing.Email {
		if _, taken := s.byEmail[principal.Email]; taken {
			return store.ErrPrincipalAlreadyExists
		}
		delete(s.byEmail, existing.Email)
		s.byEmail[principal.Email] = principal.PrincipalID
	}

	principal.CreatedAt = existing.CreatedAt
	principal.UpdatedAt = time.Now()

	s.principals[principal.PrincipalID] = copyPrincipal(principal)

	return nil
}

// Delete removes a principal.
func (s *PrincipalStore) Delete(_ context.Context, principalID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	principal, exists := s.principals[principalID]
	if !exists {
		return store.ErrPrincipalNotFound
	}

	delete(s.byUsername, principal.Username)
	delete(s.byEmail, principal.Email)
	delete(s.principals, principalID)

	return nil
}

// ListByOrg returns all principals belonging to an organization.
func (s *PrincipalStore) ListByOrg(_ context.Context, orgID uuid.UUID) ([]*models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Principal{}
	for _, principal := range s.principals {
		if principal.OrgID != nil && *principal.OrgID == orgID {
			result = append(result, copyPrincipal(principal))
		}
	}

	return result, nil
}

// DetachOrg clears the organization reference on all members of the given
// organization.
func (s *PrincipalStore) DetachOrg(_ context.Context, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, principal := range s.principals {
		if principal.OrgID != nil && *principal.OrgID == orgID {
			principal.OrgID = nil
			principal.UpdatedAt = now
		}
	}

	return nil
}

func copyPrincipal(principal *models.Principal) *models.Principal {
	c := *principal
	if principal.OrgID != nil {
		orgID := *principal.OrgID
		c.OrgID = &orgID
	}
	return &c
}
