package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func (s *Server) modelRoutes(r chi.Router) {
	r.Route("/models", func(r chi.Router) {
		r.Get("/", s.handleModelList)
		r.Post("/", s.handleModelCreate)
		r.Route("/{modelID}", func(r chi.Router) {
			r.Get("/", s.handleModelGet)
			r.Put("/", s.handleModelUpdate)
			r.Patch("/", s.handleModelUpdate)
			r.Delete("/", s.handleModelDelete)
			r.Get("/scans", s.handleModelScans)
			r.Get("/incidents", s.handleModelIncidents)
			r.Post("/retrain", s.handleModelRetrain)
			r.Get("/performance_metrics", s.handleModelPerformanceMetrics)
		})
	})
}

type modelRequest struct {
	Name        string     `json:"name"`
	ModelType   string     `json:"model_type"`
	Version     string     `json:"version"`
	Description string     `json:"description"`
	OrgID       *uuid.UUID `json:"organization"`
	Status      string     `json:"status"`
}

func (req *modelRequest) validate() fieldErrors {
	fe := fieldErrors{}
	if req.Name == "" {
		fe.add("name", msgRequired)
	}
	if req.ModelType == "" {
		fe.add("model_type", msgRequired)
	} else if !models.ValidModelType(req.ModelType) {
		fe.add("model_type", `"`+req.ModelType+`" is not a valid choice.`)
	}
	if req.Version == "" {
		fe.add("version", msgRequired)
	}
	if req.OrgID == nil {
		fe.add("organization", msgRequired)
	}
	if req.Status != "" && !models.ValidModelStatus(req.Status) {
		fe.add("status", `"`+req.Status+`" is not a valid choice.`)
	}
	return fe
}

func (s *Server) handleModelList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	aiModels, err := s.stores.Models.List(r.Context(), store.ModelFilter{
		ModelType: q.Get("model_type"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
	})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, aiModels)
}

func (s *Server) handleModelCreate(w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fe := req.validate(); !fe.empty() {
		fe.write(w)
		return
	}

	if _, err := s.stores.Organizations.Get(r.Context(), *req.OrgID); err != nil {
		if errors.Is(err, store.ErrOrganizationNotFound) {
			fe := fieldErrors{}
			fe.add("organization", "Organization does not exist.")
			fe.write(w)
			return
		}
		panic(err)
	}

	status := req.Status
	if status == "" {
		status = models.ModelStatusActive
	}
	m := &models.AIModel{
		ModelID:     uuid.Must(uuid.NewV7()),
		Name:        req.Name,
		ModelType:   req.ModelType,
		Version:     req.Version,
		Description: req.Description,
		OrgID:       *req.OrgID,
		Status:      status,
	}
	if err := s.stores.Models.Create(r.Context(), m); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionCreate, "AIModel",
		m.ModelID.String(), clientIP(r), map[string]any{"name": m.Name, "model_type": m.ModelType})
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleModelGet(w http.ResponseWriter, r *http.Request) {
	m, ok := s.fetchModel(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleModelUpdate(w http.ResponseWriter, r *http.Request) {
	m, ok := s.fetchModel(w, r)
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name"`
		ModelType   string  `json:"model_type"`
		Version     string  `json:"version"`
		Description *string `json:"description"`
		Status      string  `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name != "" {
		m.Name = req.Name
	}
	if req.ModelType != "" {
		if !models.ValidModelType(req.ModelType) {
			fe := fieldErrors{}
			fe.add("model_type", `"`+req.ModelType+`" is not a valid choice.`)
			fe.write(w)
			return
		}
		m.ModelType = req.ModelType
	}
	if req.Version != "" {
		m.Version = req.Version
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Status != "" {
		if !models.ValidModelStatus(req.Status) {
			fe := fieldErrors{}
			fe.add("status", `"`+req.Status+`" is not a valid choice.`)
			fe.write(w)
			return
		}
		m.Status = req.Status
	}

	if err := s.stores.Models.Update(r.Context(), m); err != nil {
		if errors.Is(err, store.ErrModelNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), principal(r), models.AuditActionUpdate, "AIModel",
		m.ModelID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleModelDelete(w http.ResponseWriter, r *http.Request) {
	m, ok := s.fetchModel(w, r)
	if !ok {
		return
	}
	if err := s.stores.Models.Delete(r.Context(), m.ModelID); err != nil {
		panic(err)
	}
	s.audit.Record(r.Context(), principal(r), models.AuditActionDelete, "AIModel",
		m.ModelID.String(), clientIP(r), map[string]any{"name": m.Name})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleModelScans(w http.ResponseWriter, r *http.Request) {
	m, ok := s.fetchModel(w, r)
	if !ok {
		return
	}
	modelID := m.ModelID
	scans, err := s.stores.Scans.List(r.Context(), store.ScanFilter{TargetModelID: &modelID})
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, scans)
}

func (s *Server) handleModelIncidents(w http.ResponseWriter, r *http.Request) {
	m, ok := s.fetchModel(w, r)
	if !ok {
		return
	}
	incidents, err := s.stores.Incidents.List(r.Context(), store.IncidentFilter{})
	if err != nil {
		panic(err)
	}
	related := incidents[:0:0]
	for _, inc := range incidents {
		if inc.AffectedModelID != nil && *inc.AffectedModelID == m.ModelID {
			related = append(related, inc)
		}
	}
	writeJSON(w, http.StatusOK, related)
}

// handleModelRetrain acknowledges a retraining request. Actual training
// runs out-of-band; the endpoint exists so clients have a stable trigger.
func (s *Server) handleModelRetrain(w http.ResponseWriter, r *http.Request) {
	m, ok := s.fetchModel(w, r)
	if !ok {
		return
	}
	s.audit.Record(r.Context(), principal(r), models.AuditActionUpdate, "AIModel",
		m.ModelID.String(), clientIP(r), map[string]any{"action": "retrain"})
	writeJSON(w, http.StatusOK, map[string]string{"status": "retraining started"})
}

// handleModelPerformanceMetrics reports placeholder evaluation numbers
// until an evaluation pipeline feeds real ones.
func (s *Server) handleModelPerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.fetchModel(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"accuracy":  0.95,
		"precision": 0.94,
		"recall":    0.93,
		"f1_score":  0.94,
	})
}

func (s *Server) fetchModel(w http.ResponseWriter, r *http.Request) (*models.AIModel, bool) {
	id, err := uuidParam(r, "modelID")
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	m, err := s.stores.Models.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrModelNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	return m, true
}
