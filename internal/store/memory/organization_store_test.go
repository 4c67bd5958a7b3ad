package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func newOrg(name string) *models.Organization {
	return &models.Organization{
		OrgID:    uuid.Must(uuid.NewV7()),
		Name:     name,
		Industry: "fintech",
		Size:     "51-200",
	}
}

func TestOrganizationStore_Create(t *testing.T) {
	t.Run("create new organization", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		org := newOrg("Acme Corp")
		require.NoError(t, st.Create(ctx, org))
		require.False(t, org.CreatedAt.IsZero())

		got, err := st.Get(ctx, org.OrgID)
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", got.Name)
	})

	t.Run("create duplicate returns error", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		org := newOrg("Acme Corp")
		require.NoError(t, st.Create(ctx, org))

		err := st.Create(ctx, org)
		require.ErrorIs(t, err, store.ErrOrganizationAlreadyExists)
	})
}

func TestOrganizationStore_Get(t *testing.T) {
	t.Run("missing organization returns not found", func(t *testing.T) {
		st := NewOrganizationStore()

		_, err := st.Get(context.Background(), uuid.Must(uuid.NewV7()))
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})

	t.Run("returned copy does not alias stored value", func(t *testing.T) {
		st := NewOrganizationStore()
		ctx := context.Background()

		org := newOrg("Acme Corp")
		require.NoError(t, st.Create(ctx, org))

		got, err := st.Get(ctx, org.OrgID)
		require.NoError(t, err)
		got.Name = "mutated"

		again, err := st.Get(ctx, org.OrgID)
		require.NoError(t, err)
		require.Equal(t, "Acme Corp", again.Name)
	})
}

func TestOrganizationStore_Update(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()

	org := newOrg("Acme Corp")
	require.NoError(t, st.Create(ctx, org))

	org.Name = "Acme Corporation"
	require.NoError(t, st.Update(ctx, org))

	got, err := st.Get(ctx, org.OrgID)
	require.NoError(t, err)
	require.Equal(t, "Acme Corporation", got.Name)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))

	missing := newOrg("nobody")
	require.ErrorIs(t, st.Update(ctx, missing), store.ErrOrganizationNotFound)
}

func TestOrganizationStore_Delete(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()

	org := newOrg("Acme Corp")
	require.NoError(t, st.Create(ctx, org))

	require.NoError(t, st.Delete(ctx, org.OrgID))
	_, err := st.Get(ctx, org.OrgID)
	require.ErrorIs(t, err, store.ErrOrganizationNotFound)

	require.ErrorIs(t, st.Delete(ctx, org.OrgID), store.ErrOrganizationNotFound)
}

func TestOrganizationStore_List(t *testing.T) {
	st := NewOrganizationStore()
	ctx := context.Background()

	acme := newOrg("Acme Corp")
	acme.Description = "industrial anvils"
	require.NoError(t, st.Create(ctx, acme))

	globex := newOrg("Globex")
	globex.Industry = "healthcare"
	require.NoError(t, st.Create(ctx, globex))

	t.Run("no filter returns all", func(t *testing.T) {
		orgs, err := st.List(ctx, store.OrganizationFilter{})
		require.NoError(t, err)
		require.Len(t, orgs, 2)
	})

	t.Run("industry filter", func(t *testing.T) {
		orgs, err := st.List(ctx, store.OrganizationFilter{Industry: "healthcare"})
		require.NoError(t, err)
		require.Len(t, orgs, 1)
		require.Equal(t, "Globex", orgs[0].Name)
	})

	t.Run("search matches description", func(t *testing.T) {
		orgs, err := st.List(ctx, store.OrganizationFilter{Search: "anvils"})
		require.NoError(t, err)
		require.Len(t, orgs, 1)
		require.Equal(t, "Acme Corp", orgs[0].Name)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		orgs, err := st.List(ctx, store.OrganizationFilter{Search: "ACME"})
		require.NoError(t, err)
		require.Len(t, orgs, 1)
	})
}
