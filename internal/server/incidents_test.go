package server

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIncidentCreate(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerAndLogin(t, "admin", nil)
	orgID := env.createOrg(t, token, "Tenant A")

	reporterID, reporterToken := env.registerAndLogin(t, "reporter", &orgID)

	t.Run("stamps organization and reporter", func(t *testing.T) {
		otherOrg := uuid.Must(uuid.NewV7())
		rec := env.do(t, http.MethodPost, "/api/v1/incidents", reporterToken, map[string]any{
			"title":        "Prompt injection observed",
			"description":  "Model leaked system prompt",
			"severity":     "high",
			"organization": otherOrg.String(), // ignored
			"reported_by":  uuid.Must(uuid.NewV7()).String(),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decode(t, rec)
		require.Equal(t, orgID.String(), body["organization"])
		require.Equal(t, reporterID.String(), body["reported_by"])
		require.Equal(t, "open", body["status"])
	})

	t.Run("rejects unknown severity", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/incidents", reporterToken, map[string]any{
			"title":       "x",
			"description": "y",
			"severity":    "catastrophic",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decode(t, rec)["errors"].(map[string]any)
		require.Contains(t, errs, "severity")
	})

	t.Run("principal without org cannot create", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/incidents", token, map[string]any{
			"title":       "x",
			"description": "y",
			"severity":    "low",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestIncidentTenantIsolation(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.registerAndLogin(t, "admin", nil)
	orgA := env.createOrg(t, admin, "Tenant A")
	orgB := env.createOrg(t, admin, "Tenant B")
	_, tokenA := env.registerAndLogin(t, "ua", &orgA)
	_, tokenB := env.registerAndLogin(t, "ub", &orgB)

	rec := env.do(t, http.MethodPost, "/api/v1/incidents", tokenA, map[string]any{
		"title":       "A-only incident",
		"description": "visible to tenant A",
		"severity":    "medium",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	incidentID := decode(t, rec)["id"].(string)

	t.Run("owner sees it", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/incidents", tokenA, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeList(t, rec), 1)
	})

	t.Run("other tenant list is empty", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/incidents", tokenB, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, decodeList(t, rec))
	})

	t.Run("cross-tenant lookup behaves as missing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/incidents/"+incidentID, tokenB, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("orgless principal sees empty list", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/incidents", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, decodeList(t, rec))
	})
}

func TestIncidentResolvedAtNeverAutoSet(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.registerAndLogin(t, "admin", nil)
	orgID := env.createOrg(t, admin, "Tenant")
	_, token := env.registerAndLogin(t, "user", &orgID)

	rec := env.do(t, http.MethodPost, "/api/v1/incidents", token, map[string]any{
		"title":       "lingering",
		"description": "stays unresolved on the record",
		"severity":    "low",
	})
	incidentID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPatch, "/api/v1/incidents/"+incidentID, token, map[string]any{
		"status": "resolved",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, "resolved", body["status"])
	require.NotContains(t, body, "resolved_at")
}

func TestIncidentAssign(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.registerAndLogin(t, "admin", nil)
	orgA := env.createOrg(t, admin, "Tenant A")
	orgB := env.createOrg(t, admin, "Tenant B")
	_, tokenA := env.registerAndLogin(t, "ua", &orgA)
	outsiderID, _ := env.registerAndLogin(t, "outsider", &orgB)

	rec := env.do(t, http.MethodPost, "/api/v1/incidents", tokenA, map[string]any{
		"title":       "needs an owner",
		"description": "assign me",
		"severity":    "high",
	})
	incidentID := decode(t, rec)["id"].(string)

	t.Run("unknown user is a 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/incidents/"+incidentID+"/assign", tokenA,
			map[string]string{"user_id": uuid.Must(uuid.NewV7()).String()})
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "User not found", decode(t, rec)["error"])
	})

	t.Run("assignment crosses organizations", func(t *testing.T) {
		// The assignee is resolved globally; membership is not checked.
		rec := env.do(t, http.MethodPost, "/api/v1/incidents/"+incidentID+"/assign", tokenA,
			map[string]string{"user_id": outsiderID.String()})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "incident assigned", decode(t, rec)["status"])

		rec = env.do(t, http.MethodGet, "/api/v1/incidents/"+incidentID, tokenA, nil)
		require.Equal(t, outsiderID.String(), decode(t, rec)["assigned_to"])
	})
}

func TestIncidentPartialUpdateKeepsOmittedFields(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.registerAndLogin(t, "admin", nil)
	orgID := env.createOrg(t, admin, "Tenant")
	_, token := env.registerAndLogin(t, "user", &orgID)
	assigneeID, _ := env.registerAndLogin(t, "oncall", &orgID)

	rec := env.do(t, http.MethodPost, "/api/v1/incidents", token, map[string]any{
		"title":       "assigned then triaged",
		"description": "assignment must survive later edits",
		"severity":    "high",
	})
	incidentID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/incidents/"+incidentID+"/assign", token,
		map[string]string{"user_id": assigneeID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/incidents/"+incidentID, token, map[string]any{
		"status": "investigating",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/incidents/"+incidentID, token, nil)
	body := decode(t, rec)
	require.Equal(t, "investigating", body["status"])
	require.Equal(t, assigneeID.String(), body["assigned_to"])
}

func TestIncidentBulkUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.registerAndLogin(t, "admin", nil)
	orgID := env.createOrg(t, admin, "Tenant")
	_, token := env.registerAndLogin(t, "user", &orgID)

	var ids []string
	for _, title := range []string{"one", "two"} {
		rec := env.do(t, http.MethodPost, "/api/v1/incidents", token, map[string]any{
			"title":       title,
			"description": "bulk target",
			"severity":    "low",
		})
		ids = append(ids, decode(t, rec)["id"].(string))
	}

	t.Run("missing ids are counted anyway", func(t *testing.T) {
		// The reported count is the submitted count, matching or not.
		payload := map[string]any{
			"incident_ids": append(ids, uuid.Must(uuid.NewV7()).String()),
			"status":       "closed",
		}
		rec := env.do(t, http.MethodPost, "/api/v1/incidents/bulk_update_status", token, payload)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, float64(3), decode(t, rec)["updated"])

		rec = env.do(t, http.MethodGet, "/api/v1/incidents/"+ids[0], token, nil)
		require.Equal(t, "closed", decode(t, rec)["status"])
	})

	t.Run("requires ids and status", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/incidents/bulk_update_status", token,
			map[string]any{"incident_ids": []string{}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "incident_ids and status are required", decode(t, rec)["error"])
	})
}

func TestIncidentDashboard(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.registerAndLogin(t, "admin", nil)
	orgID := env.createOrg(t, admin, "Tenant")
	_, token := env.registerAndLogin(t, "user", &orgID)

	for _, severity := range []string{"low", "high", "high", "critical"} {
		rec := env.do(t, http.MethodPost, "/api/v1/incidents", token, map[string]any{
			"title":       "incident " + severity,
			"description": "dashboard seed",
			"severity":    severity,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/incidents/dashboard_data", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Contains(t, body, "incidents_by_status")
	require.Contains(t, body, "incidents_by_severity")
	require.Contains(t, body, "incident_trend")
	require.Len(t, body["recent_incidents"].([]any), 4)

	bySeverity := body["incidents_by_severity"].([]any)
	counts := map[string]float64{}
	for _, row := range bySeverity {
		m := row.(map[string]any)
		counts[m["severity"].(string)] = m["count"].(float64)
	}
	require.Equal(t, float64(2), counts["high"])
	require.Equal(t, float64(1), counts["low"])

	trend := body["incident_trend"].([]any)
	require.Len(t, trend, 1) // all created today
}
