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

// ClientStore is an in-memory implementation of store.ClientStore for
// development and testing.
type ClientStore struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*models.Client
}

// NewClientStore creates a new in-memory client store.
func NewClientStore() *ClientStore {
	return &ClientStore{
		clients: make(map[uuid.UUID]*models.Client),
	}
}

// Create creates a new client.
func (s *ClientStore) Create(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.clients[c.ClientID] = copyClient(c)

	return nil
}

// Get retrieves a client by ID.
func (s *ClientStore) Get(_ context.Context, clientID uuid.UUID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.clients[clientID]
	if !exists {
		return nil, store.ErrClientNotFound
	}

	return copyClient(c), nil
}

// Update updates an existing client.
func (s *ClientStore) Update(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.clients[c.ClientID]
	if !exists {
		return store.ErrClientNotFound
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()

	s.clients[c.ClientID] = copyClient(c)

	return nil
}

// Delete removes a client.
func (s *ClientStore) Delete(_ context.Context, clientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[clientID]; !exists {
		return store.ErrClientNotFound
	}

	delete(s.clients, clientID)

	return nil
}

// List returns active clients ordered by name.
func (s *ClientStore) List(_ context.Context, search string) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Client{}
	for _, c := range s.clients {
		if !c.IsActive {
			continue
		}
		if search != "" && !matchesSearch(search, c.Name, c.Description, c.Industry) {
			continue
		}
		result = append(result, copyClient(c))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func copyClient(c *models.Client) *models.Client {
	d := *c
	return &d
}
