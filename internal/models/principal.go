package models

import (
	"time"

	"github.com/google/uuid"
)

// Role values for principals.
const (
	RoleAdmin     = "admin"     // Administrator
	RoleSecurity  = "security"  // Security analyst
	RoleDeveloper = "developer" // Developer
	RoleManager   = "manager"   // Manager
)

// Principal represents an authenticated actor in the system.
// Principals optionally belong to an organization; a principal without an
// organization can access nothing org-scoped beyond their own profile.
type Principal struct {
	PrincipalID uuid.UUID `json:"id"` // UUIDv7
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name,omitempty"`
	LastName    string    `json:"last_name,omitempty"`

	// PasswordHash is the bcrypt hash of the principal's password.
	// Never serialized in API responses.
	PasswordHash string `json:"-"`

	OrgID       *uuid.UUID `json:"organization,omitempty"`
	Role        string     `json:"role"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	Department  string     `json:"department,omitempty"`

	IsStaff     bool `json:"is_staff"`
	IsSuperuser bool `json:"is_superuser"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasOrg reports whether the principal belongs to an organization.
func (p *Principal) HasOrg() bool {
	return p.OrgID != nil && *p.OrgID != uuid.Nil
}
