package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func (s *Server) scanRoutes(r chi.Router) {
	r.Route("/scans", func(r chi.Router) {
		r.Get("/", s.handleScanList)
		r.Post("/", s.handleScanCreate)
		r.Get("/scan_statistics", s.handleScanStatistics)
		r.Route("/{scanID}", func(r chi.Router) {
			r.Get("/", s.handleScanGet)
			r.Put("/", s.handleScanUpdate)
			r.Patch("/", s.handleScanUpdate)
			r.Delete("/", s.handleScanDelete)
			r.Post("/start_scan", s.handleScanStart)
			r.Post("/complete_scan", s.handleScanComplete)
			r.Post("/stop_scan", s.handleScanStop)
		})
	})
}

type scanRequest struct {
	ScanType      string         `json:"scan_type"`
	TargetModelID *uuid.UUID     `json:"target_model"`
	Status        string         `json:"status"`
	Findings      map[string]any `json:"findings"`
}

func (s *Server) handleScanList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	scans, err := s.stores.Scans.List(r.Context(), store.ScanFilter{
		ScanType: q.Get("scan_type"),
		Status:   q.Get("status"),
	})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleScanCreate(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.ScanType == "" {
		fe.add("scan_type", msgRequired)
	} else if !models.ValidScanType(req.ScanType) {
		fe.add("scan_type", `"`+req.ScanType+`" is not a valid choice.`)
	}
	if req.TargetModelID == nil {
		fe.add("target_model", msgRequired)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	if _, err := s.stores.Models.Get(r.Context(), *req.TargetModelID); err != nil {
		if errors.Is(err, store.ErrModelNotFound) {
			fe.add("target_model", "Model does not exist.")
			fe.write(w)
			return
		}
		panic(err)
	}

	// A client-supplied status is stored as-is; only the empty default is
	// filled in. Lifecycle enforcement happens in the transition actions.
	status := req.Status
	if status == "" {
		status = models.ScanStatusPending
	}

	p := principal(r)
	createdBy := p.PrincipalID
	scan := &models.SecurityScan{
		ScanID:        uuid.Must(uuid.NewV7()),
		ScanType:      req.ScanType,
		TargetModelID: *req.TargetModelID,
		Status:        status,
		Findings:      req.Findings,
		CreatedBy:     &createdBy,
	}
	if scan.Findings == nil {
		scan.Findings = map[string]any{}
	}
	if err := s.stores.Scans.Create(r.Context(), scan); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionScan, "SecurityScan",
		scan.ScanID.String(), clientIP(r), map[string]any{"scan_type": scan.ScanType})
	writeJSON(w, http.StatusCreated, scan)
}

func (s *Server) handleScanGet(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.fetchScan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) handleScanUpdate(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.fetchScan(w, r)
	if !ok {
		return
	}

	var req scanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.ScanType != "" {
		if !models.ValidScanType(req.ScanType) {
			fe := fieldErrors{}
			fe.add("scan_type", `"`+req.ScanType+`" is not a valid choice.`)
			fe.write(w)
			return
		}
		scan.ScanType = req.ScanType
	}
	if req.Status != "" {
		scan.Status = req.Status
	}
	if req.Findings != nil {
		scan.Findings = req.Findings
	}

	if err := s.stores.Scans.Update(r.Context(), scan); err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) handleScanDelete(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.fetchScan(w, r)
	if !ok {
		return
	}
	if err := s.stores.Scans.Delete(r.Context(), scan.ScanID); err != nil {
		panic(err)
	}
	s.audit.Record(r.Context(), principal(r), models.AuditActionDelete, "SecurityScan",
		scan.ScanID.String(), clientIP(r), nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.fetchScan(w, r)
	if !ok {
		return
	}
	if scan.Status != models.ScanStatusPending {
		writeError(w, http.StatusBadRequest, "Scan can only be started if it is in pending status")
		return
	}

	now := time.Now()
	scan.Status = models.ScanStatusRunning
	scan.StartedAt = &now
	if err := s.stores.Scans.Update(r.Context(), scan); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionScan, "SecurityScan",
		scan.ScanID.String(), clientIP(r), map[string]any{"transition": "start"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "scan started"})
}

func (s *Server) handleScanComplete(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.fetchScan(w, r)
	if !ok {
		return
	}
	if scan.Status != models.ScanStatusRunning {
		writeError(w, http.StatusBadRequest, "Scan can only be completed if it is running")
		return
	}

	var req struct {
		Findings map[string]any `json:"findings"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	now := time.Now()
	scan.Status = models.ScanStatusCompleted
	scan.CompletedAt = &now
	// Findings are stored verbatim; absent findings clear any previous ones.
	scan.Findings = req.Findings
	if scan.Findings == nil {
		scan.Findings = map[string]any{}
	}
	if err := s.stores.Scans.Update(r.Context(), scan); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionScan, "SecurityScan",
		scan.ScanID.String(), clientIP(r), map[string]any{"transition": "complete"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "scan completed"})
}

// handleScanStop moves a running scan to the stopped status. Stopped sits
// outside the pending/running/completed/failed choice set on purpose: it is
// reachable only through this action.
func (s *Server) handleScanStop(w http.ResponseWriter, r *http.Request) {
	scan, ok := s.fetchScan(w, r)
	if !ok {
		return
	}
	if scan.Status != models.ScanStatusRunning {
		writeError(w, http.StatusBadRequest, "Scan is not running")
		return
	}

	scan.Status = models.ScanStatusStopped
	if err := s.stores.Scans.Update(r.Context(), scan); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionScan, "SecurityScan",
		scan.ScanID.String(), clientIP(r), map[string]any{"transition": "stop"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "scan stopped"})
}

func (s *Server) handleScanStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.stores.Scans.Stats(r.Context())
	if err != nil {
		panic(err)
	}

	completed, err := s.stores.Scans.List(r.Context(), store.ScanFilter{Status: models.ScanStatusCompleted})
	if err != nil {
		panic(err)
	}
	var avgDuration any
	var total time.Duration
	counted := 0
	for _, scan := range completed {
		if scan.StartedAt != nil && scan.CompletedAt != nil {
			total += scan.CompletedAt.Sub(*scan.StartedAt)
			counted++
		}
	}
	if counted > 0 {
		avgDuration = (total / time.Duration(counted)).Seconds()
	}

	statusOrder := []string{
		models.ScanStatusPending, models.ScanStatusRunning,
		models.ScanStatusCompleted, models.ScanStatusFailed, models.ScanStatusStopped,
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_scans":      stats.Total,
		"scans_by_status":  statusCounts(stats.ByStatus, statusOrder),
		"average_duration": avgDuration,
	})
}

func (s *Server) fetchScan(w http.ResponseWriter, r *http.Request) (*models.SecurityScan, bool) {
	id, err := uuidParam(r, "scanID")
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	scan, err := s.stores.Scans.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	return scan, true
}
