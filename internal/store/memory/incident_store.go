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

// IncidentStore is an in-memory implementation of store.IncidentStore for
// development and testing.
type IncidentStore struct {
	mu        sync.RWMutex
	incidents map[uuid.UUID]*models.SecurityIncident
}

// NewIncidentStore creates a new in-memory security incident store.
func NewIncidentStore() *IncidentStore {
	return &IncidentStore{
		incidents: make(map[uuid.UUID]*models.SecurityIncident),
	}
}

// Create creates a new incident.
func (s *IncidentStore) Create(_ context.Context, incident *models.SecurityIncident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.incidents[incident.IncidentID]; exists {
		return store.ErrIncidentAlreadyExists
	}

	now := time.Now()
	incident.CreatedAt = now
	incident.UpdatedAt = now

	s.incidents[incident.IncidentID] = copyIncident(incident)

	return nil
}

// Get retrieves an incident by ID.
func (s *IncidentStore) Get(_ context.Context, incidentID uuid.UUID) (*models.SecurityIncident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	incident, exists := s.incidents[incidentID]
	if !exists {
		return nil, store.ErrIncidentNotFound
	}

	return copyIncident(incident), nil
}

// Update updates an existing incident.
func (s *IncidentStore) Update(_ context.Context, incident *models.SecurityIncident) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.incidents[incident.IncidentID]
	if !exists {
		return store.ErrIncidentNotFound
	}

	incident.CreatedAt = existing.CreatedAt
	incident.UpdatedAt = time.Now()

	s.incidents[incident.IncidentID] = copyIncident(incident)

	return nil
}

// Delete removes an incident.
func (s *IncidentStore) Delete(_ context.Context, incidentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.incidents[incidentID]; !exists {
		return store.ErrIncidentNotFound
	}

	delete(s.incidents, incidentID)

	return nil
}

// List returns incidents matching the filter, newest first.
func (s *IncidentStore) List(_ context.Context, filter store.IncidentFilter) ([]*models.SecurityIncident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.SecurityIncident{}
	for _, incident := range s.incidents {
		if filter.OrgID != nil && incident.OrgID != *filter.OrgID {
			continue
		}
		if filter.Severity != "" && incident.Severity != filter.Severity {
			continue
		}
		if filter.Status != "" && incident.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(filter.Search, incident.Title, incident.Description) {
			continue
		}
		if filter.Since != nil && incident.CreatedAt.Before(*filter.Since) {
			continue
		}
		result = append(result, copyIncident(incident))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

// BulkUpdateStatus sets the status on every incident in ids that exists.
// Missing IDs are silently skipped.
func (s *IncidentStore) BulkUpdateStatus(_ context.Context, ids []uuid.UUID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, id := range ids {
		incident, exists := s.incidents[id]
		if !exists {
			continue
		}
		incident.Status = status
		incident.UpdatedAt = now
	}

	return nil
}

// StatsByOrg returns aggregate counts for an organization.
func (s *IncidentStore) StatsByOrg(_ context.Context, orgID uuid.UUID) (*store.IncidentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &store.IncidentStats{
		BySeverity: make(map[string]int),
	}
	recentCutoff := time.Now().AddDate(0, 0, -30)

	for _, incident := range s.incidents {
		if incident.OrgID != orgID {
			continue
		}
		stats.Total++
		stats.BySeverity[incident.Severity]++
		if incident.Status == models.IncidentStatusOpen || incident.Status == models.IncidentStatusInvestigating {
			stats.Active++
		}
		if !incident.CreatedAt.Before(recentCutoff) {
			stats.Recent++
		}
	}

	return stats, nil
}

// TrendByOrg returns per-day incident counts since the given time, oldest
// day first.
func (s *IncidentStore) TrendByOrg(_ context.Context, orgID uuid.UUID, since time.Time) ([]store.TrendPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDay := make(map[string]int)
	for _, incident := range s.incidents {
		if incident.OrgID != orgID || incident.CreatedAt.Before(since) {
			continue
		}
		byDay[incident.CreatedAt.Format("2006-01-02")]++
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	trend := make([]store.TrendPoint, 0, len(days))
	for _, day := range days {
		trend = append(trend, store.TrendPoint{Day: day, Count: byDay[day]})
	}

	return trend, nil
}

// CountByStatus returns counts grouped by status for an organization.
func (s *IncidentStore) CountByStatus(_ context.Context, orgID uuid.UUID) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, incident := range s.incidents {
		if incident.OrgID == orgID {
			counts[incident.Status]++
		}
	}

	return counts, nil
}

// DeleteByOrg removes all incidents of an organization.
func (s *IncidentStore) DeleteByOrg(_ context.Context, orgID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, incident := range s.incidents {
		if incident.OrgID == orgID {
			delete(s.incidents, id)
		}
	}

	return nil
}

func copyIncident(incident *models.SecurityIncident) *models.SecurityIncident {
	c := *incident
	if incident.AffectedModelID != nil {
		id := *incident.AffectedModelID
		c.AffectedModelID = &id
	}
	if incident.ReportedBy != nil {
		id := *incident.ReportedBy
		c.ReportedBy = &id
	}
	if incident.AssignedTo != nil {
		id := *incident.AssignedTo
		c.AssignedTo = &id
	}
	if incident.ResolvedAt != nil {
		t := *incident.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}
