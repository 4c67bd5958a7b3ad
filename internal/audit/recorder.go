// Package audit records mutating actions to the append-only audit log.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// Recorder writes audit entries for mutating actions. Failures are logged
// and swallowed: an audit write must never fail the request that caused it.
type Recorder struct {
	store store.AuditStore
}

// NewRecorder creates a recorder backed by the given store.
func NewRecorder(s store.AuditStore) *Recorder {
	return &Recorder{store: s}
}

// Record appends one audit entry. principal may be nil for anonymous
// actions (public intake endpoints).
func (r *Recorder) Record(ctx context.Context, principal *models.Principal, action, entityName, entityID, ip string, details map[string]any) {
	entry := &models.AuditLog{
		LogID:      uuid.Must(uuid.NewV7()),
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ip,
		CreatedAt:  time.Now(),
	}
	if principal != nil {
		id := principal.PrincipalID
		entry.PrincipalID = &id
		if principal.HasOrg() {
			org := *principal.OrgID
			entry.OrgID = &org
		}
	}

	if err := r.store.Append(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("entity", entityName).
			Str("entity_id", entityID).
			Msg("failed to append audit entry")
	}
}
