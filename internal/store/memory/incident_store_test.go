package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func newIncident(orgID uuid.UUID, severity, status string) *models.SecurityIncident {
	return &models.SecurityIncident{
		IncidentID:  uuid.Must(uuid.NewV7()),
		Title:       "prompt injection detected",
		Description: "model returned system prompt contents",
		Severity:    severity,
		Status:      status,
		OrgID:       orgID,
	}
}

func TestIncidentStore_List(t *testing.T) {
	st := NewIncidentStore()
	ctx := context.Background()
	orgA := uuid.Must(uuid.NewV7())
	orgB := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newIncident(orgA, models.SeverityHigh, models.IncidentStatusOpen)))
	require.NoError(t, st.Create(ctx, newIncident(orgA, models.SeverityLow, models.IncidentStatusClosed)))
	require.NoError(t, st.Create(ctx, newIncident(orgB, models.SeverityCritical, models.IncidentStatusOpen)))

	t.Run("org filter isolates tenants", func(t *testing.T) {
		incidents, err := st.List(ctx, store.IncidentFilter{OrgID: &orgA})
		require.NoError(t, err)
		require.Len(t, incidents, 2)
		for _, inc := range incidents {
			require.Equal(t, orgA, inc.OrgID)
		}
	})

	t.Run("severity filter", func(t *testing.T) {
		incidents, err := st.List(ctx, store.IncidentFilter{OrgID: &orgA, Severity: models.SeverityHigh})
		require.NoError(t, err)
		require.Len(t, incidents, 1)
	})

	t.Run("limit caps results", func(t *testing.T) {
		incidents, err := st.List(ctx, store.IncidentFilter{OrgID: &orgA, Limit: 1})
		require.NoError(t, err)
		require.Len(t, incidents, 1)
	})

	t.Run("search matches title", func(t *testing.T) {
		incidents, err := st.List(ctx, store.IncidentFilter{OrgID: &orgA, Search: "injection"})
		require.NoError(t, err)
		require.Len(t, incidents, 2)
	})
}

func TestIncidentStore_BulkUpdateStatus(t *testing.T) {
	st := NewIncidentStore()
	ctx := context.Background()
	orgID := uuid.Must(uuid.NewV7())

	first := newIncident(orgID, models.SeverityHigh, models.IncidentStatusOpen)
	second := newIncident(orgID, models.SeverityLow, models.IncidentStatusOpen)
	require.NoError(t, st.Create(ctx, first))
	require.NoError(t, st.Create(ctx, second))

	// One real ID, one missing: the missing one is skipped without error.
	ids := []uuid.UUID{first.IncidentID, uuid.Must(uuid.NewV7())}
	require.NoError(t, st.BulkUpdateStatus(ctx, ids, models.IncidentStatusResolved))

	got, err := st.Get(ctx, first.IncidentID)
	require.NoError(t, err)
	require.Equal(t, models.IncidentStatusResolved, got.Status)
	require.Nil(t, got.ResolvedAt, "resolved_at is never set automatically")

	untouched, err := st.Get(ctx, second.IncidentID)
	require.NoError(t, err)
	require.Equal(t, models.IncidentStatusOpen, untouched.Status)
}

func TestIncidentStore_StatsByOrg(t *testing.T) {
	st := NewIncidentStore()
	ctx := context.Background()
	orgID := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newIncident(orgID, models.SeverityHigh, models.IncidentStatusOpen)))
	require.NoError(t, st.Create(ctx, newIncident(orgID, models.SeverityHigh, models.IncidentStatusInvestigating)))
	require.NoError(t, st.Create(ctx, newIncident(orgID, models.SeverityLow, models.IncidentStatusClosed)))
	require.NoError(t, st.Create(ctx, newIncident(uuid.Must(uuid.NewV7()), models.SeverityCritical, models.IncidentStatusOpen)))

	stats, err := st.StatsByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.Active)
	require.Equal(t, 2, stats.BySeverity[models.SeverityHigh])
	require.Equal(t, 1, stats.BySeverity[models.SeverityLow])
	require.Equal(t, 3, stats.Recent)
}

func TestIncidentStore_TrendByOrg(t *testing.T) {
	st := NewIncidentStore()
	ctx := context.Background()
	orgID := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newIncident(orgID, models.SeverityHigh, models.IncidentStatusOpen)))
	require.NoError(t, st.Create(ctx, newIncident(orgID, models.SeverityLow, models.IncidentStatusOpen)))

	trend, err := st.TrendByOrg(ctx, orgID, time.Now().AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Len(t, trend, 1)
	require.Equal(t, time.Now().Format("2006-01-02"), trend[0].Day)
	require.Equal(t, 2, trend[0].Count)
}

func TestIncidentStore_DeleteByOrg(t *testing.T) {
	st := NewIncidentStore()
	ctx := context.Background()
	orgID := uuid.Must(uuid.NewV7())
	otherOrg := uuid.Must(uuid.NewV7())

	require.NoError(t, st.Create(ctx, newIncident(orgID, models.SeverityHigh, models.IncidentStatusOpen)))
	kept := newIncident(otherOrg, models.SeverityLow, models.IncidentStatusOpen)
	require.NoError(t, st.Create(ctx, kept))

	require.NoError(t, st.DeleteByOrg(ctx, orgID))

	incidents, err := st.List(ctx, store.IncidentFilter{OrgID: &orgID})
	require.NoError(t, err)
	require.Empty(t, incidents)

	_, err = st.Get(ctx, kept.IncidentID)
	require.NoError(t, err)
}
