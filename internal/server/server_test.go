package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/cache"
	memorystore "github.com/victoai/platform/internal/store/memory"
)

type testEnv struct {
	server  *Server
	handler http.Handler
	stores  Stores
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	authority, err := auth.NewEphemeralAuthority(15*time.Minute, 24*time.Hour, cache.NewMemory())
	require.NoError(t, err)

	stores := Stores{
		Organizations: memorystore.NewOrganizationStore(),
		Principals:    memorystore.NewPrincipalStore(),
		Models:        memorystore.NewModelStore(),
		Scans:         memorystore.NewScanStore(),
		Incidents:     memorystore.NewIncidentStore(),
		Audit:         memorystore.NewAuditStore(),
		Categories:    memorystore.NewCategoryStore(),
		Tags:          memorystore.NewTagStore(),
		Clients:       memorystore.NewClientStore(),
		BlogPosts:     memorystore.NewBlogPostStore(),
		CaseStudies:   memorystore.NewCaseStudyStore(),
		Comments:      memorystore.NewCommentStore(),
		Contact:       memorystore.NewContactStore(),
	}

	srv := NewServer(zerolog.Nop(), stores, authority, cache.NewMemory())
	return &testEnv{
		server:  srv,
		handler: srv.Handler([]string{"*"}),
		stores:  stores,
	}
}

// do issues a JSON request against the handler. token may be empty for
// anonymous calls.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerAndLogin provisions a user through the public API and returns the
// principal ID and an access token.
func (e *testEnv) registerAndLogin(t *testing.T, username string, orgID *uuid.UUID) (uuid.UUID, string) {
	t.Helper()

	payload := map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse-battery",
	}
	if orgID != nil {
		payload["organization"] = orgID.String()
	}
	rec := e.do(t, http.MethodPost, "/api/v1/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, err := uuid.Parse(decode(t, rec)["id"].(string))
	require.NoError(t, err)

	rec = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return id, decode(t, rec)["access"].(string)
}

// promoteToStaff flips the staff flag directly in the store.
func (e *testEnv) promoteToStaff(t *testing.T, principalID uuid.UUID) {
	t.Helper()
	p, err := e.stores.Principals.Get(context.Background(), principalID)
	require.NoError(t, err)
	p.IsStaff = true
	require.NoError(t, e.stores.Principals.Update(context.Background(), p))
}

// createOrg provisions an organization through the API.
func (e *testEnv) createOrg(t *testing.T, token, name string) uuid.UUID {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/organizations", token, map[string]string{
		"name":     name,
		"industry": "finance",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, err := uuid.Parse(decode(t, rec)["id"].(string))
	require.NoError(t, err)
	return id
}

// joinOrg attaches an existing principal to an organization.
func (e *testEnv) joinOrg(t *testing.T, principalID, orgID uuid.UUID) {
	t.Helper()
	p, err := e.stores.Principals.Get(context.Background(), principalID)
	require.NoError(t, err)
	p.OrgID = &orgID
	require.NoError(t, e.stores.Principals.Update(context.Background(), p))
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "healthy", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/organizations", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication credentials were not provided.", decode(t, rec)["error"])

	rec = env.do(t, http.MethodGet, "/api/v1/organizations", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
