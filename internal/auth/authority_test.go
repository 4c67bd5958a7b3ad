package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/cache"
)

func TestEncodePrivateKeyPEMRoundTrip(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pem, err := EncodePrivateKeyPEM(key)
	require.NoError(t, err)
	require.Contains(t, pem, "EC PRIVATE KEY")

	// A keygen-produced PEM must be accepted by the authority constructor
	// and yield working credentials.
	authority, err := NewJWTAuthority(pem, 15*time.Minute, 24*time.Hour, cache.NewMemory())
	require.NoError(t, err)

	principalID := uuid.Must(uuid.NewV7())
	pair, err := authority.IssuePair(context.Background(), principalID)
	require.NoError(t, err)

	got, err := authority.VerifyAccess(context.Background(), pair.Access)
	require.NoError(t, err)
	require.Equal(t, principalID, got)
}

func TestNewJWTAuthorityRejectsGarbagePEM(t *testing.T) {
	_, err := NewJWTAuthority("not a key", time.Minute, time.Hour, cache.NewMemory())
	require.Error(t, err)
}
