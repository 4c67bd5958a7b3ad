package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant in the system.
// Each organization owns AI models, security scans, incidents and member
// principals; it is the isolation boundary for all scoped reads and writes.
type Organization struct {
	OrgID       uuid.UUID `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Size        string    `json:"size,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
