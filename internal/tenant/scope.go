// Package tenant resolves the organization boundary for a request. All
// organization-scoped reads are filtered through a Scope and all scoped
// creations are stamped with it, regardless of what the client supplied.
package tenant

import (
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
)

// Scope is the resolved tenant boundary for one authenticated principal.
// The zero value is the empty scope: scoped listings return nothing and
// scoped item lookups behave as not-found (fail safe, not fail open).
type Scope struct {
	orgID *uuid.UUID
}

// Resolve derives the scope from an authenticated principal.
func Resolve(p *models.Principal) Scope {
	if p == nil || !p.HasOrg() {
		return Scope{}
	}
	id := *p.OrgID
	return Scope{orgID: &id}
}

// Empty reports whether the principal has no organization.
func (s Scope) Empty() bool {
	return s.orgID == nil
}

// OrgID returns the scope's organization, or uuid.Nil for the empty scope.
func (s Scope) OrgID() uuid.UUID {
	if s.orgID == nil {
		return uuid.Nil
	}
	return *s.orgID
}

// OrgRef returns a pointer suitable for store filters; nil never matches.
func (s Scope) OrgRef() *uuid.UUID {
	return s.orgID
}

// Allows reports whether an entity owned by orgID is inside this scope.
// An entity outside the scope must be treated exactly like a missing one so
// existence never leaks across tenants.
func (s Scope) Allows(orgID uuid.UUID) bool {
	return s.orgID != nil && *s.orgID == orgID
}
