package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Incident statuses.
const (
	IncidentStatusOpen          = "open"
	IncidentStatusInvestigating = "investigating"
	IncidentStatusResolved      = "resolved"
	IncidentStatusClosed        = "closed"
)

// SecurityIncident represents a security incident within an organization.
// The organization is always stamped server-side from the reporting
// principal; ResolvedAt is never set automatically on status transitions.
type SecurityIncident struct {
	IncidentID      uuid.UUID  `json:"id"` // UUIDv7
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity"`
	Status          string     `json:"status"`
	OrgID           uuid.UUID  `json:"organization"`
	AffectedModelID *uuid.UUID `json:"affected_model,omitempty"`
	ReportedBy      *uuid.UUID `json:"reported_by,omitempty"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

// ValidSeverity reports whether s is a declared severity.
func ValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ValidIncidentStatus reports whether s is a declared incident status.
func ValidIncidentStatus(s string) bool {
	switch s {
	case IncidentStatusOpen, IncidentStatusInvestigating, IncidentStatusResolved, IncidentStatusClosed:
		return true
	}
	return false
}
