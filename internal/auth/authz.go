package auth

import (
	"errors"

	"github.com/victoai/platform/internal/models"
)

// ErrPermissionDenied marks a policy-denied condition. The pipeline's
// recovery step maps it to a structured 403 with no detail about which
// check failed.
var ErrPermissionDenied = errors.New("permission denied")

// IsStaff reports whether the principal may see unpublished content and
// moderate comments.
func IsStaff(p *models.Principal) bool {
	if p == nil {
		return false
	}
	return p.IsStaff || p.IsSuperuser || p.Role == models.RoleAdmin
}
