package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
	"github.com/victoai/platform/internal/tenant"
)

// Audit logs are read-only and tenant-scoped. Entries written before a
// principal joined an organization stay invisible to them.
func (s *Server) auditLogRoutes(r chi.Router) {
	r.Get("/audit-logs", s.handleAuditLogList)
}

func (s *Server) handleAuditLogList(w http.ResponseWriter, r *http.Request) {
	scope := tenant.Resolve(principal(r))
	if scope.Empty() {
		writeJSON(w, http.StatusOK, []*models.AuditLog{})
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	entries, err := s.stores.Audit.List(r.Context(), store.AuditFilter{
		OrgID:      scope.OrgRef(),
		Action:     q.Get("action"),
		EntityName: q.Get("model_name"),
		Limit:      limit,
	})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, entries)
}
