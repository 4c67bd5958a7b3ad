package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/cache"
)

const issuer = "victoai-platform"

// Token kinds carried in the typ claim.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Sentinel errors for token verification.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// TokenPair is an access/refresh credential pair issued at login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenAuthority issues, verifies, and revokes bearer credentials. Resource
// handlers never touch JWTs directly; they orchestrate calls to this
// collaborator.
type TokenAuthority interface {
	// IssuePair issues a fresh access/refresh pair for a principal.
	IssuePair(ctx context.Context, principalID uuid.UUID) (*TokenPair, error)

	// VerifyAccess validates an access token and returns the principal ID.
	VerifyAccess(ctx context.Context, token string) (uuid.UUID, error)

	// Refresh validates a refresh token and issues a new pair.
	// Returns ErrTokenRevoked if the refresh token has been blacklisted.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// Revoke blacklists a refresh token for the remainder of its lifetime.
	// Revoking a malformed or already-revoked token is an error.
	Revoke(ctx context.Context, refreshToken string) error
}

type claims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTAuthority is a TokenAuthority backed by ES256-signed JWTs. Revoked
// refresh tokens are tracked by jti in the injected cache, expiring with the
// token itself.
type JWTAuthority struct {
	signingKey *ecdsa.PrivateKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  cache.Cache
}

// NewJWTAuthority creates a token authority from a PEM-encoded ECDSA
// private key.
func NewJWTAuthority(signingKeyPEM string, accessTTL, refreshTTL time.Duration, blacklist cache.Cache) (*JWTAuthority, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(signingKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signing key: %w", err)
	}
	return &JWTAuthority{
		signingKey: key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
	}, nil
}

// NewEphemeralAuthority generates a throwaway P-256 key. Tokens do not
// survive a restart; development and tests only.
func NewEphemeralAuthority(accessTTL, refreshTTL time.Duration, blacklist cache.Cache) (*JWTAuthority, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return &JWTAuthority{
		signingKey: key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
	}, nil
}

// IssuePair issues a fresh access/refresh pair for the principal.
func (a *JWTAuthority) IssuePair(_ context.Context, principalID uuid.UUID) (*TokenPair, error) {
	access, err := a.sign(principalID, tokenTypeAccess, a.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := a.sign(principalID, tokenTypeRefresh, a.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (a *JWTAuthority) sign(principalID uuid.UUID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	c := &claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principalID.String(),
			ID:        uuid.Must(uuid.NewV7()).String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodES256, c).SignedString(a.signingKey)
}

func (a *JWTAuthority) parse(token, wantType string) (*claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, errors.New("unexpected signing method")
		}
		return &a.signingKey.PublicKey, nil
	}, jwt.WithIssuer(issuer))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return c, nil
}

// VerifyAccess validates an access token and returns the subject principal.
func (a *JWTAuthority) VerifyAccess(_ context.Context, token string) (uuid.UUID, error) {
	c, err := a.parse(token, tokenTypeAccess)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}

// Refresh validates a refresh token and issues a new pair.
func (a *JWTAuthority) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	c, err := a.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	if _, err := a.blacklist.Get(ctx, blacklistKey(c.ID)); err == nil {
		return nil, ErrTokenRevoked
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return a.IssuePair(ctx, id)
}

// Revoke blacklists a refresh token until its natural expiry.
func (a *JWTAuthority) Revoke(ctx context.Context, refreshToken string) error {
	c, err := a.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return err
	}

	if _, err := a.blacklist.Get(ctx, blacklistKey(c.ID)); err == nil {
		return ErrTokenRevoked
	}

	ttl := a.refreshTTL
	if c.ExpiresAt != nil {
		ttl = time.Until(c.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return ErrInvalidToken
	}
	return a.blacklist.SetWithTTL(ctx, blacklistKey(c.ID), "revoked", ttl)
}

func blacklistKey(jti string) string {
	return "token_blacklist:" + jti
}

// EncodePrivateKeyPEM serializes an ECDSA private key to PEM. Used by the
// keygen command.
func EncodePrivateKeyPEM(key *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})), nil
}
