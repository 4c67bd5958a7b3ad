package models

import (
	"time"

	"github.com/google/uuid"
)

// Scan types.
const (
	ScanTypeVulnerability = "vulnerability"
	ScanTypePenetration   = "penetration"
	ScanTypeCompliance    = "compliance"
	ScanTypeCustom        = "custom"
)

// Scan statuses. The declared lifecycle is pending -> running -> completed
// or failed. ScanStatusStopped is reachable only through the stop action and
// is deliberately absent from the declared choice set.
const (
	ScanStatusPending   = "pending"
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
	ScanStatusStopped   = "stopped"
)

// SecurityScan represents a security scan against an organization's AI model.
type SecurityScan struct {
	ScanID        uuid.UUID      `json:"id"` // UUIDv7
	ScanType      string         `json:"scan_type"`
	TargetModelID uuid.UUID      `json:"target_model"`
	Status        string         `json:"status"`
	Findings      map[string]any `json:"findings"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedBy     *uuid.UUID     `json:"created_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ValidScanType reports whether t is a declared scan type.
func ValidScanType(t string) bool {
	switch t {
	case ScanTypeVulnerability, ScanTypePenetration, ScanTypeCompliance, ScanTypeCustom:
		return true
	}
	return false
}
