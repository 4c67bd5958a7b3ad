package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func newPrincipal(username string, orgID *uuid.UUID) *models.Principal {
	return &models.Principal{
		PrincipalID: uuid.Must(uuid.NewV7()),
		Username:    username,
		Email:       username + "@example.com",
		Role:        models.RoleDeveloper,
		OrgID:       orgID,
	}
}

func TestPrincipalStore_Create(t *testing.T) {
	t.Run("create new principal", func(t *testing.T) {
		st := NewPrincipalStore()
		require.NoError(t, st.Create(context.Background(), newPrincipal("alice", nil)))
	})

	t.Run("duplicate username returns error", func(t *testing.T) {
		st := NewPrincipalStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newPrincipal("alice", nil)))

		dup := newPrincipal("alice", nil)
		dup.Email = "other@example.com"
		require.ErrorIs(t, st.Create(ctx, dup), store.ErrPrincipalAlreadyExists)
	})

	t.Run("duplicate email returns error", func(t *testing.T) {
		st := NewPrincipalStore()
		ctx := context.Background()

		require.NoError(t, st.Create(ctx, newPrincipal("alice", nil)))

		dup := newPrincipal("bob", nil)
		dup.Email = "alice@example.com"
		require.ErrorIs(t, st.Create(ctx, dup), store.ErrPrincipalAlreadyExists)
	})
}

func TestPrincipalStore_GetByUsername(t *testing.T) {
	st := NewPrincipalStore()
	ctx := context.Background()

	alice := newPrincipal("alice", nil)
	require.NoError(t, st.Create(ctx, alice))

	got, err := st.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice.PrincipalID, got.PrincipalID)

	_, err = st.GetByUsername(ctx, "ghost")
	require.ErrorIs(t, err, store.ErrPrincipalNotFound)
}

func TestPrincipalStore_UpdateReindexesUsername(t *testing.T) {
	st := NewPrincipalStore()
	ctx := context.Background()

	alice := newPrincipal("alice", nil)
	require.NoError(t, st.Create(ctx, alice))

	alice.Username = "alice2"
	require.NoError(t, st.Update(ctx, alice))

	_, err := st.GetByUsername(ctx, "alice")
	require.ErrorIs(t, err, store.ErrPrincipalNotFound)

	got, err := st.GetByUsername(ctx, "alice2")
	require.NoError(t, err)
	require.Equal(t, alice.PrincipalID, got.PrincipalID)
}

func TestPrincipalStore_DetachOrg(t *testing.T) {
	st := NewPrincipalStore()
	ctx := context.Background()
	orgID := uuid.Must(uuid.NewV7())
	otherOrg := uuid.Must(uuid.NewV7())

	member := newPrincipal("member", &orgID)
	outsider := newPrincipal("outsider", &otherOrg)
	require.NoError(t, st.Create(ctx, member))
	require.NoError(t, st.Create(ctx, outsider))

	require.NoError(t, st.DetachOrg(ctx, orgID))

	got, err := st.Get(ctx, member.PrincipalID)
	require.NoError(t, err)
	require.Nil(t, got.OrgID, "detached member keeps profile but loses org")

	kept, err := st.Get(ctx, outsider.PrincipalID)
	require.NoError(t, err)
	require.NotNil(t, kept.OrgID)

	members, err := st.ListByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Empty(t, members)
}
