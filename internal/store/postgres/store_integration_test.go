//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// setupPool connects to the database named by TEST_DATABASE_URL and runs
// migrations. Tests are skipped when the variable is unset.
func setupPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration tests")
	}

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	t.Cleanup(pool.Close)

	return pool
}

func TestOrganizationStoreIntegration(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)
	st := NewOrganizationStore(pool)

	org := &models.Organization{
		OrgID:    uuid.Must(uuid.NewV7()),
		Name:     "Integration Test Org",
		Industry: "fintech",
	}
	require.NoError(t, st.Create(ctx, org))
	t.Cleanup(func() { _ = st.Delete(ctx, org.OrgID) })

	t.Run("duplicate id rejected", func(t *testing.T) {
		require.ErrorIs(t, st.Create(ctx, org), store.ErrOrganizationAlreadyExists)
	})

	t.Run("get round trip", func(t *testing.T) {
		got, err := st.Get(ctx, org.OrgID)
		require.NoError(t, err)
		require.Equal(t, org.Name, got.Name)
		require.Equal(t, org.Industry, got.Industry)
	})

	t.Run("list with industry filter", func(t *testing.T) {
		orgs, err := st.List(ctx, store.OrganizationFilter{Industry: "fintech"})
		require.NoError(t, err)
		require.NotEmpty(t, orgs)
	})
}

func TestIncidentStoreIntegration(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)

	orgs := NewOrganizationStore(pool)
	incidents := NewIncidentStore(pool)

	org := &models.Organization{OrgID: uuid.Must(uuid.NewV7()), Name: "Incident Org"}
	require.NoError(t, orgs.Create(ctx, org))
	t.Cleanup(func() { _ = orgs.Delete(ctx, org.OrgID) })

	incident := &models.SecurityIncident{
		IncidentID: uuid.Must(uuid.NewV7()),
		Title:      "integration incident",
		Severity:   models.SeverityHigh,
		Status:     models.IncidentStatusOpen,
		OrgID:      org.OrgID,
	}
	require.NoError(t, incidents.Create(ctx, incident))

	t.Run("bulk update skips missing ids", func(t *testing.T) {
		ids := []uuid.UUID{incident.IncidentID, uuid.Must(uuid.NewV7())}
		require.NoError(t, incidents.BulkUpdateStatus(ctx, ids, models.IncidentStatusResolved))

		got, err := incidents.Get(ctx, incident.IncidentID)
		require.NoError(t, err)
		require.Equal(t, models.IncidentStatusResolved, got.Status)
		require.Nil(t, got.ResolvedAt)
	})

	t.Run("org delete cascades incidents", func(t *testing.T) {
		require.NoError(t, orgs.Delete(ctx, org.OrgID))
		_, err := incidents.Get(ctx, incident.IncidentID)
		require.ErrorIs(t, err, store.ErrIncidentNotFound)
	})
}

func TestContactStoreIntegration(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)
	st := NewContactStore(pool)

	email := "integration-" + uuid.Must(uuid.NewV7()).String() + "@example.com"

	sub := &models.NewsletterSubscription{
		SubscriptionID:   uuid.Must(uuid.NewV7()),
		Email:            email,
		SubscriptionType: models.SubscriptionResources,
	}
	require.NoError(t, st.Subscribe(ctx, sub))

	t.Run("second active subscribe rejected", func(t *testing.T) {
		again := &models.NewsletterSubscription{
			SubscriptionID: uuid.Must(uuid.NewV7()),
			Email:          email,
		}
		require.ErrorIs(t, st.Subscribe(ctx, again), store.ErrAlreadySubscribed)
	})

	t.Run("unsubscribe then resubscribe", func(t *testing.T) {
		require.NoError(t, st.Unsubscribe(ctx, email))
		require.ErrorIs(t, st.Unsubscribe(ctx, email), store.ErrSubscriptionNotFound)

		again := &models.NewsletterSubscription{
			SubscriptionID: uuid.Must(uuid.NewV7()),
			Email:          email,
		}
		require.NoError(t, st.Subscribe(ctx, again))
		require.NoError(t, st.Unsubscribe(ctx, email))
	})
}
