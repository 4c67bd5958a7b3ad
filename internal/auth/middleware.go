package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

type contextKey int

const principalContextKey contextKey = iota

// PrincipalFromContext extracts the authenticated principal from the
// request context. Returns nil for unauthenticated requests.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	principal, _ := ctx.Value(principalContextKey).(*models.Principal)
	return principal
}

// WithPrincipal returns a context carrying the principal. Used by tests and
// the middleware below.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// Middleware returns an HTTP middleware that verifies Bearer access tokens
// and loads the principal into the request context. Requests without a
// valid token get a 401 and never reach the handler.
func Middleware(authority TokenAuthority, principals store.PrincipalStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				unauthorized(w, "Authentication credentials were not provided.")
				return
			}

			ctx := r.Context()

			principalID, err := authority.VerifyAccess(ctx, token)
			if err != nil {
				log.Debug().Err(err).Msg("access token rejected")
				unauthorized(w, "Given token not valid for any token type.")
				return
			}

			principal, err := principals.Get(ctx, principalID)
			if err != nil {
				log.Warn().Str("principal_id", principalID.String()).Msg("token subject no longer exists")
				unauthorized(w, "Given token not valid for any token type.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// OptionalMiddleware loads the principal when a valid Bearer token is
// present and continues anonymously otherwise. Read-public resources use
// this so staff callers see drafts while everyone else sees published
// content only.
func OptionalMiddleware(authority TokenAuthority, principals store.PrincipalStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			principalID, err := authority.VerifyAccess(ctx, token)
			if err != nil {
				// A presented-but-invalid token is rejected rather than
				// silently downgraded to anonymous.
				unauthorized(w, "Given token not valid for any token type.")
				return
			}

			principal, err := principals.Get(ctx, principalID)
			if err != nil {
				unauthorized(w, "Given token not valid for any token type.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": detail})
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
