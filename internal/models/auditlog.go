package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	AuditActionCreate   = "create"
	AuditActionUpdate   = "update"
	AuditActionDelete   = "delete"
	AuditActionLogin    = "login"
	AuditActionLogout   = "logout"
	AuditActionScan     = "scan"
	AuditActionIncident = "incident"
)

// AuditLog is an append-only record of a principal action. Rows are never
// mutated or deleted through the API.
type AuditLog struct {
	LogID       uuid.UUID      `json:"id"` // UUIDv7
	PrincipalID *uuid.UUID     `json:"user,omitempty"`
	OrgID       *uuid.UUID     `json:"organization,omitempty"`
	Action      string         `json:"action"`
	EntityName  string         `json:"model_name"`
	EntityID    string         `json:"object_id"`
	Details     map[string]any `json:"details,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
