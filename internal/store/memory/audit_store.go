package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// AuditStore is an in-memory implementation of store.AuditStore for
// development and testing. Entries are append-only.
type AuditStore struct {
	mu      sync.RWMutex
	entries []*models.AuditLog
}

// NewAuditStore creates a new in-memory audit log store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append records an audit log entry.
func (s *AuditStore) Append(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	s.entries = append(s.entries, copyAuditLog(entry))

	return nil
}

// List returns audit entries matching the filter, newest first.
func (s *AuditStore) List(_ context.Context, filter store.AuditFilter) ([]*models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.AuditLog{}
	// Entries are appended in time order, so walk backwards for newest first.
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if filter.OrgID != nil && (entry.OrgID == nil || *entry.OrgID != *filter.OrgID) {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.EntityName != "" && entry.EntityName != filter.EntityName {
			continue
		}
		result = append(result, copyAuditLog(entry))
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}

	return result, nil
}

func copyAuditLog(entry *models.AuditLog) *models.AuditLog {
	c := *entry
	if entry.PrincipalID != nil {
		id := *entry.PrincipalID
		c.PrincipalID = &id
	}
	if entry.OrgID != nil {
		id := *entry.OrgID
		c.OrgID = &id
	}
	if entry.Details != nil {
		c.Details = make(map[string]any, len(entry.Details))
		maps.Copy(c.Details, entry.Details)
	}
	return &c
}
