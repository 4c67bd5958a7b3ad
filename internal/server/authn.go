package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

type registerRequest struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	OrgID     *uuid.UUID `json:"organization"`
	Role      string     `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Username == "" {
		fe.add("username", msgRequired)
	}
	if req.Email == "" {
		fe.add("email", msgRequired)
	} else if !strings.Contains(req.Email, "@") {
		fe.add("email", "Enter a valid email address.")
	}
	if req.Password == "" {
		fe.add("password", msgRequired)
	} else if len(req.Password) < 8 {
		fe.add("password", "This password is too short. It must contain at least 8 characters.")
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		panic(err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleDeveloper
	}
	p := &models.Principal{
		PrincipalID:  uuid.Must(uuid.NewV7()),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		OrgID:        req.OrgID,
		Role:         role,
	}
	if err := s.stores.Principals.Create(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrPrincipalAlreadyExists) {
			fe.add("username", "A user with that username or email already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}

	s.log.Info().Str("username", p.Username).Msg("new user registered")
	s.audit.Record(r.Context(), p, models.AuditActionCreate, "Principal",
		p.PrincipalID.String(), clientIP(r), map[string]any{"username": p.Username})
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := s.stores.Principals.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrPrincipalNotFound) {
			writeError(w, http.StatusUnauthorized, "No active account found with the given credentials")
			return
		}
		panic(err)
	}
	if err := auth.CheckPassword(p.PasswordHash, req.Password); err != nil {
		s.log.Warn().Str("username", req.Username).Msg("login failed")
		writeError(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	pair, err := s.authority.IssuePair(r.Context(), p.PrincipalID)
	if err != nil {
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionLogin, "Principal",
		p.PrincipalID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := s.authority.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           p.PrincipalID,
		"username":     p.Username,
		"email":        p.Email,
		"is_staff":     p.IsStaff,
		"is_superuser": p.IsSuperuser,
	})
}

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principal(r))
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	s.applyProfileUpdate(w, r, principal(r))
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.OldPassword == "" {
		fe.add("old_password", msgRequired)
	}
	if req.NewPassword == "" {
		fe.add("new_password", msgRequired)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	if err := auth.CheckPassword(p.PasswordHash, req.OldPassword); err != nil {
		s.log.Warn().Str("username", p.Username).Msg("change password rejected")
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		panic(err)
	}
	p.PasswordHash = hash
	if err := s.stores.Principals.Update(r.Context(), p); err != nil {
		panic(err)
	}

	s.log.Info().Str("username", p.Username).Msg("password changed")
	w.WriteHeader(http.StatusOK)
}

// handleLogout blacklists the presented refresh token. Success is a bare
// 205; any revocation failure is a bare 400.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.authority.Revoke(r.Context(), req.RefreshToken); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.audit.Record(r.Context(), p, models.AuditActionLogout, "Principal",
		p.PrincipalID.String(), clientIP(r), nil)
	w.WriteHeader(http.StatusResetContent)
}
