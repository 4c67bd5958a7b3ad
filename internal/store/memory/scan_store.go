package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// ScanStore is an in-memory implementation of store.ScanStore for
// development and testing.
type ScanStore struct {
	mu    sync.RWMutex
	scans map[uuid.UUID]*models.SecurityScan
}

// NewScanStore creates a new in-memory security scan store.
func NewScanStore() *ScanStore {
	return &ScanStore{
		scans: make(map[uuid.UUID]*models.SecurityScan),
	}
}

// Create creates a new scan.
func (s *ScanStore) Create(_ context.Context, scan *models.SecurityScan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scans[scan.ScanID]; exists {
		return store.ErrScanAlreadyExists
	}

	now := time.Now()
	scan.CreatedAt = now
	scan.UpdatedAt = now

	s.scans[scan.ScanID] = copyScan(scan)

	return nil
}

// Get retrieves a scan by ID.
func (s *ScanStore) Get(_ context.Context, scanID uuid.UUID) (*models.SecurityScan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scan, exists := s.scans[scanID]
	if !exists {
		return nil, store.ErrScanNotFound
	}

	return copyScan(scan), nil
}

// Update updates an existing scan.
func (s *ScanStore) Update(_ context.Context, scan *models.SecurityScan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.scans[scan.ScanID]
	if !exists {
		return store.ErrScanNotFound
	}

	scan.CreatedAt = existing.CreatedAt
	scan.UpdatedAt = time.Now()

	s.scans[scan.ScanID] = copyScan(scan)

	return nil
}

// Delete removes a scan.
func (s *ScanStore) Delete(_ context.Context, scanID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.scans[scanID]; !exists {
		return store.ErrScanNotFound
	}

	delete(s.scans, scanID)

	return nil
}

// List returns scans matching the filter, newest first.
func (s *ScanStore) List(_ context.Context, filter store.ScanFilter) ([]*models.SecurityScan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.SecurityScan{}
	for _, scan := range s.scans {
		if filter.ScanType != "" && scan.ScanType != filter.ScanType {
			continue
		}
		if filter.Status != "" && scan.Status != filter.Status {
			continue
		}
		if filter.TargetModelID != nil && scan.TargetModelID != *filter.TargetModelID {
			continue
		}
		result = append(result, copyScan(scan))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// CountRunningByModels returns the number of running scans targeting one of
// the given models.
func (s *ScanStore) CountRunningByModels(_ context.Context, modelIDs []uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	targets := make(map[uuid.UUID]struct{}, len(modelIDs))
	for _, id := range modelIDs {
		targets[id] = struct{}{}
	}

	count := 0
	for _, scan := range s.scans {
		if scan.Status != models.ScanStatusRunning {
			continue
		}
		if _, ok := targets[scan.TargetModelID]; ok {
			count++
		}
	}

	return count, nil
}

// Stats returns aggregate counts across all scans.
func (s *ScanStore) Stats(_ context.Context) (*store.ScanStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &store.ScanStats{
		Total:    len(s.scans),
		ByStatus: make(map[string]int),
	}
	for _, scan := range s.scans {
		stats.ByStatus[scan.Status]++
	}

	return stats, nil
}

func copyScan(scan *models.SecurityScan) *models.SecurityScan {
	c := *scan
	if scan.Findings != nil {
		c.Findings = make(map[string]any, len(scan.Findings))
		maps.Copy(c.Findings, scan.Findings)
	}
	if scan.StartedAt != nil {
		t := *scan.StartedAt
		c.StartedAt = &t
	}
	if scan.CompletedAt != nil {
		t := *scan.CompletedAt
		c.CompletedAt = &t
	}
	if scan.CreatedBy != nil {
		id := *scan.CreatedBy
		c.CreatedBy = &id
	}
	return &c
}
