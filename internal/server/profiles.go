package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
)

// Profiles are strictly self-scoped: the collection holds exactly the
// caller, and any other ID behaves as missing.
func (s *Server) profileRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handleProfileList)
		r.Get("/{profileID}", s.handleProfileRetrieve)
		r.Put("/{profileID}", s.handleProfileItemUpdate)
		r.Patch("/{profileID}", s.handleProfileItemUpdate)
	})
}

func (s *Server) handleProfileList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []*models.Principal{principal(r)})
}

func (s *Server) handleProfileRetrieve(w http.ResponseWriter, r *http.Request) {
	p, ok := selfProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileUpdateRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Role        *string `json:"role"`
	PhoneNumber *string `json:"phone_number"`
	Department  *string `json:"department"`
}

func (s *Server) handleProfileItemUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := selfProfile(w, r)
	if !ok {
		return
	}
	s.applyProfileUpdate(w, r, p)
}

func (s *Server) applyProfileUpdate(w http.ResponseWriter, r *http.Request, p *models.Principal) {
	var req profileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != "" {
		p.Email = *req.Email
	}
	if req.Role != nil && *req.Role != "" {
		p.Role = *req.Role
	}
	if req.PhoneNumber != nil {
		p.PhoneNumber = *req.PhoneNumber
	}
	if req.Department != nil {
		p.Department = *req.Department
	}

	if err := s.stores.Principals.Update(r.Context(), p); err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionUpdate, "Profile",
		p.PrincipalID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, p)
}

func selfProfile(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "profileID"))
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	p := principal(r)
	if p.PrincipalID != id {
		writeNotFound(w)
		return nil, false
	}
	return p, true
}
