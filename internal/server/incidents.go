package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
	"github.com/victoai/platform/internal/tenant"
)

func (s *Server) incidentRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", s.handleIncidentList)
		r.Post("/", s.handleIncidentCreate)
		r.Post("/bulk_update_status", s.handleIncidentBulkUpdateStatus)
		r.Get("/dashboard_data", s.handleIncidentDashboard)
		r.Route("/{incidentID}", func(r chi.Router) {
			r.Get("/", s.handleIncidentGet)
			r.Put("/", s.handleIncidentUpdate)
			r.Patch("/", s.handleIncidentUpdate)
			r.Delete("/", s.handleIncidentDelete)
			r.Post("/assign", s.handleIncidentAssign)
		})
	})
}

type incidentRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity"`
	Status          string     `json:"status"`
	AffectedModelID *uuid.UUID `json:"affected_model"`
	AssignedTo      *uuid.UUID `json:"assigned_to"`
	ResolvedAt      *time.Time `json:"resolved_at"`
}

func (s *Server) handleIncidentList(w http.ResponseWriter, r *http.Request) {
	scope := tenant.Resolve(principal(r))
	if scope.Empty() {
		writeJSON(w, http.StatusOK, []*models.SecurityIncident{})
		return
	}

	q := r.URL.Query()
	incidents, err := s.stores.Incidents.List(r.Context(), store.IncidentFilter{
		OrgID:    scope.OrgRef(),
		Severity: q.Get("severity"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
	})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, incidents)
}

// handleIncidentCreate stores a new incident. The organization and reporter
// come from the authenticated principal; any client-supplied values for
// either are ignored.
func (s *Server) handleIncidentCreate(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	scope := tenant.Resolve(p)
	if scope.Empty() {
		writeNotFound(w)
		return
	}

	var req incidentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Title == "" {
		fe.add("title", msgRequired)
	}
	if req.Description == "" {
		fe.add("description", msgRequired)
	}
	if req.Severity == "" {
		fe.add("severity", msgRequired)
	} else if !models.ValidSeverity(req.Severity) {
		fe.add("severity", `"`+req.Severity+`" is not a valid choice.`)
	}
	if req.Status != "" && !models.ValidIncidentStatus(req.Status) {
		fe.add("status", `"`+req.Status+`" is not a valid choice.`)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	status := req.Status
	if status == "" {
		status = models.IncidentStatusOpen
	}
	reporter := p.PrincipalID
	incident := &models.SecurityIncident{
		IncidentID:      uuid.Must(uuid.NewV7()),
		Title:           req.Title,
		Description:     req.Description,
		Severity:        req.Severity,
		Status:          status,
		OrgID:           scope.OrgID(),
		AffectedModelID: req.AffectedModelID,
		ReportedBy:      &reporter,
		AssignedTo:      req.AssignedTo,
	}
	if err := s.stores.Incidents.Create(r.Context(), incident); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionIncident, "SecurityIncident",
		incident.IncidentID.String(), clientIP(r),
		map[string]any{"title": incident.Title, "severity": incident.Severity})
	writeJSON(w, http.StatusCreated, incident)
}

func (s *Server) handleIncidentGet(w http.ResponseWriter, r *http.Request) {
	incident, ok := s.fetchIncident(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, incident)
}

// handleIncidentUpdate applies client changes. resolved_at is only ever
// what the client sends: moving the status to resolved does not stamp it.
func (s *Server) handleIncidentUpdate(w http.ResponseWriter, r *http.Request) {
	incident, ok := s.fetchIncident(w, r)
	if !ok {
		return
	}

	var req incidentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title != "" {
		incident.Title = req.Title
	}
	if req.Description != "" {
		incident.Description = req.Description
	}
	if req.Severity != "" {
		if !models.ValidSeverity(req.Severity) {
			fe := fieldErrors{}
			fe.add("severity", `"`+req.Severity+`" is not a valid choice.`)
			fe.write(w)
			return
		}
		incident.Severity = req.Severity
	}
	if req.Status != "" {
		if !models.ValidIncidentStatus(req.Status) {
			fe := fieldErrors{}
			fe.add("status", `"`+req.Status+`" is not a valid choice.`)
			fe.write(w)
			return
		}
		incident.Status = req.Status
	}
	if req.AffectedModelID != nil {
		incident.AffectedModelID = req.AffectedModelID
	}
	if req.AssignedTo != nil {
		incident.AssignedTo = req.AssignedTo
	}
	if req.ResolvedAt != nil {
		incident.ResolvedAt = req.ResolvedAt
	}

	if err := s.stores.Incidents.Update(r.Context(), incident); err != nil {
		if errors.Is(err, store.ErrIncidentNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionIncident, "SecurityIncident",
		incident.IncidentID.String(), clientIP(r), map[string]any{"status": incident.Status})
	writeJSON(w, http.StatusOK, incident)
}

func (s *Server) handleIncidentDelete(w http.ResponseWriter, r *http.Request) {
	incident, ok := s.fetchIncident(w, r)
	if !ok {
		return
	}
	if err := s.stores.Incidents.Delete(r.Context(), incident.IncidentID); err != nil {
		panic(err)
	}
	s.audit.Record(r.Context(), principal(r), models.AuditActionDelete, "SecurityIncident",
		incident.IncidentID.String(), clientIP(r), nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleIncidentAssign points an incident at a user. The assignee is looked
// up globally, not within the caller's organization; a miss is the only
// failure mode.
func (s *Server) handleIncidentAssign(w http.ResponseWriter, r *http.Request) {
	incident, ok := s.fetchIncident(w, r)
	if !ok {
		return
	}

	var req struct {
		UserID *uuid.UUID `json:"user_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	assignee, err := s.stores.Principals.Get(r.Context(), *req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrPrincipalNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		panic(err)
	}

	incident.AssignedTo = &assignee.PrincipalID
	if err := s.stores.Incidents.Update(r.Context(), incident); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionIncident, "SecurityIncident",
		incident.IncidentID.String(), clientIP(r),
		map[string]any{"assigned_to": assignee.PrincipalID.String()})
	writeJSON(w, http.StatusOK, map[string]string{"status": "incident assigned"})
}

// handleIncidentBulkUpdateStatus sets one status across many incidents.
// The reported count is the number of IDs submitted; IDs that match
// nothing are skipped silently and still counted.
func (s *Server) handleIncidentBulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncidentIDs []uuid.UUID `json:"incident_ids"`
		Status      string      `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IncidentIDs) == 0 || req.Status == "" {
		writeError(w, http.StatusBadRequest, "incident_ids and status are required")
		return
	}

	if err := s.stores.Incidents.BulkUpdateStatus(r.Context(), req.IncidentIDs, req.Status); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionIncident, "SecurityIncident",
		"", clientIP(r), map[string]any{"bulk_status": req.Status, "count": len(req.IncidentIDs)})
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.IncidentIDs)})
}

func (s *Server) handleIncidentDashboard(w http.ResponseWriter, r *http.Request) {
	scope := tenant.Resolve(principal(r))
	if scope.Empty() {
		writeJSON(w, http.StatusOK, map[string]any{
			"incidents_by_status":   []map[string]any{},
			"incidents_by_severity": []map[string]any{},
			"recent_incidents":      []*models.SecurityIncident{},
			"incident_trend":        []store.TrendPoint{},
		})
		return
	}

	ctx := r.Context()
	orgID := scope.OrgID()
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	byStatus, err := s.stores.Incidents.CountByStatus(ctx, orgID)
	if err != nil {
		panic(err)
	}
	stats, err := s.stores.Incidents.StatsByOrg(ctx, orgID)
	if err != nil {
		panic(err)
	}
	recent, err := s.stores.Incidents.List(ctx, store.IncidentFilter{
		OrgID: scope.OrgRef(),
		Since: &thirtyDaysAgo,
		Limit: 5,
	})
	if err != nil {
		panic(err)
	}
	trend, err := s.stores.Incidents.TrendByOrg(ctx, orgID, thirtyDaysAgo)
	if err != nil {
		panic(err)
	}

	statusOrder := []string{
		models.IncidentStatusOpen, models.IncidentStatusInvestigating,
		models.IncidentStatusResolved, models.IncidentStatusClosed,
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"incidents_by_status":   statusCounts(byStatus, statusOrder),
		"incidents_by_severity": severityCounts(stats.BySeverity),
		"recent_incidents":      recent,
		"incident_trend":        trend,
	})
}

// fetchIncident resolves the path ID inside the caller's tenant scope. An
// incident belonging to another organization is indistinguishable from a
// missing one.
func (s *Server) fetchIncident(w http.ResponseWriter, r *http.Request) (*models.SecurityIncident, bool) {
	scope := tenant.Resolve(principal(r))
	if scope.Empty() {
		writeNotFound(w)
		return nil, false
	}

	id, err := uuidParam(r, "incidentID")
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	incident, err := s.stores.Incidents.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrIncidentNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	if !scope.Allows(incident.OrgID) {
		writeNotFound(w)
		return nil, false
	}
	return incident, true
}
