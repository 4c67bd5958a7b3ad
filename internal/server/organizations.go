package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func (s *Server) organizationRoutes(r chi.Router) {
	r.Route("/organizations", func(r chi.Router) {
		r.Get("/", s.handleOrganizationList)
		r.Post("/", s.handleOrganizationCreate)
		r.Route("/{orgID}", func(r chi.Router) {
			r.Get("/", s.handleOrganizationGet)
			r.Put("/", s.handleOrganizationUpdate)
			r.Patch("/", s.handleOrganizationUpdate)
			r.Delete("/", s.handleOrganizationDelete)
			r.Get("/incidents", s.handleOrganizationIncidents)
			r.Get("/models", s.handleOrganizationModels)
			r.Get("/statistics", s.handleOrganizationStatistics)
		})
	})
}

type organizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Size        string `json:"size"`
	Website     string `json:"website"`
}

func (s *Server) handleOrganizationList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgs, err := s.stores.Organizations.List(r.Context(), store.OrganizationFilter{
		Industry: q.Get("industry"),
		Size:     q.Get("size"),
		Search:   q.Get("search"),
	})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, orgs)
}

func (s *Server) handleOrganizationCreate(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Name == "" {
		fe.add("name", msgRequired)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	org := &models.Organization{
		OrgID:       uuid.Must(uuid.NewV7()),
		Name:        req.Name,
		Description: req.Description,
		Industry:    req.Industry,
		Size:        req.Size,
		Website:     req.Website,
	}
	if err := s.stores.Organizations.Create(r.Context(), org); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionCreate, "Organization",
		org.OrgID.String(), clientIP(r), map[string]any{"name": org.Name})
	writeJSON(w, http.StatusCreated, org)
}

func (s *Server) handleOrganizationGet(w http.ResponseWriter, r *http.Request) {
	org, ok := s.fetchOrganization(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, org)
}

type organizationUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Industry    *string `json:"industry"`
	Size        *string `json:"size"`
	Website     *string `json:"website"`
}

// handleOrganizationUpdate applies only the fields the client sent; omitted
// fields keep their stored values.
func (s *Server) handleOrganizationUpdate(w http.ResponseWriter, r *http.Request) {
	org, ok := s.fetchOrganization(w, r)
	if !ok {
		return
	}

	var req organizationUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name != nil && *req.Name != "" {
		org.Name = *req.Name
	}
	if req.Description != nil {
		org.Description = *req.Description
	}
	if req.Industry != nil {
		org.Industry = *req.Industry
	}
	if req.Size != nil {
		org.Size = *req.Size
	}
	if req.Website != nil {
		org.Website = *req.Website
	}

	if err := s.stores.Organizations.Update(r.Context(), org); err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionUpdate, "Organization",
		org.OrgID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, org)
}

// handleOrganizationDelete removes the tenant and cascades: owned models and
// incidents go with it, member principals are detached but survive.
func (s *Server) handleOrganizationDelete(w http.ResponseWriter, r *http.Request) {
	org, ok := s.fetchOrganization(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	if err := s.stores.Incidents.DeleteByOrg(ctx, org.OrgID); err != nil {
		panic(err)
	}
	if err := s.stores.Models.DeleteByOrg(ctx, org.OrgID); err != nil {
		panic(err)
	}
	if err := s.stores.Principals.DetachOrg(ctx, org.OrgID); err != nil {
		panic(err)
	}
	if err := s.stores.Organizations.Delete(ctx, org.OrgID); err != nil {
		panic(err)
	}

	s.audit.Record(ctx, principal(r), models.AuditActionDelete, "Organization",
		org.OrgID.String(), clientIP(r), map[string]any{"name": org.Name})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrganizationIncidents(w http.ResponseWriter, r *http.Request) {
	org, ok := s.fetchOrganization(w, r)
	if !ok {
		return
	}
	orgID := org.OrgID
	incidents, err := s.stores.Incidents.List(r.Context(), store.IncidentFilter{OrgID: &orgID})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, incidents)
}

func (s *Server) handleOrganizationModels(w http.ResponseWriter, r *http.Request) {
	org, ok := s.fetchOrganization(w, r)
	if !ok {
		return
	}
	orgID := org.OrgID
	aiModels, err := s.stores.Models.List(r.Context(), store.ModelFilter{OrgID: &orgID})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, aiModels)
}

// handleOrganizationStatistics aggregates tenant health in one response:
// incident totals and severity breakdown, model count, and currently
// running scans against the tenant's models.
func (s *Server) handleOrganizationStatistics(w http.ResponseWriter, r *http.Request) {
	org, ok := s.fetchOrganization(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	stats, err := s.stores.Incidents.StatsByOrg(ctx, org.OrgID)
	if err != nil {
		panic(err)
	}

	totalModels, err := s.stores.Models.CountByOrg(ctx, org.OrgID)
	if err != nil {
		panic(err)
	}

	orgID := org.OrgID
	orgModels, err := s.stores.Models.List(ctx, store.ModelFilter{OrgID: &orgID})
	if err != nil {
		panic(err)
	}
	modelIDs := make([]uuid.UUID, 0, len(orgModels))
	for _, m := range orgModels {
		modelIDs = append(modelIDs, m.ModelID)
	}
	activeScans, err := s.stores.Scans.CountRunningByModels(ctx, modelIDs)
	if err != nil {
		panic(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_incidents":       stats.Total,
		"active_incidents":      stats.Active,
		"incidents_by_severity": severityCounts(stats.BySeverity),
		"recent_incidents":      stats.Recent,
		"total_models":          totalModels,
		"active_scans":          activeScans,
	})
}

// severityCounts renders a count map as a stable array of row objects.
func severityCounts(by map[string]int) []map[string]any {
	out := make([]map[string]any, 0, len(by))
	for _, severity := range []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical} {
		if n, ok := by[severity]; ok {
			out = append(out, map[string]any{"severity": severity, "count": n})
		}
	}
	return out
}

// statusCounts renders a status count map as a stable array of row objects.
func statusCounts(by map[string]int, order []string) []map[string]any {
	out := make([]map[string]any, 0, len(by))
	for _, status := range order {
		if n, ok := by[status]; ok {
			out = append(out, map[string]any{"status": status, "count": n})
		}
	}
	return out
}

func (s *Server) fetchOrganization(w http.ResponseWriter, r *http.Request) (*models.Organization, bool) {
	id, err := uuidParam(r, "orgID")
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	org, err := s.stores.Organizations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	return org, true
}
