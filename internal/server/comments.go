package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func (s *Server) commentRoutes(r chi.Router) {
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", s.handleCommentList)
		r.Post("/", s.handleCommentCreate)
		r.Route("/{commentID}", func(r chi.Router) {
			r.Get("/", s.handleCommentGet)
			r.Delete("/", s.handleCommentDelete)
			r.Post("/approve", s.handleCommentApprove)
			r.Post("/mark_spam", s.handleCommentMarkSpam)
		})
	})
}

// handleCommentList returns comments in posting order. Non-staff readers
// only see approved ones.
func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	filter := store.CommentFilter{ApprovedOnly: !auth.IsStaff(principal(r))}

	q := r.URL.Query()
	if raw := q.Get("blog_post"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusOK, []*models.Comment{})
			return
		}
		filter.BlogPostID = &id
	}
	if raw := q.Get("case_study"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusOK, []*models.Comment{})
			return
		}
		filter.CaseStudyID = &id
	}

	comments, err := s.stores.Comments.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Content     string     `json:"content"`
	BlogPostID  *uuid.UUID `json:"blog_post"`
	CaseStudyID *uuid.UUID `json:"case_study"`
	ParentID    *uuid.UUID `json:"parent_comment"`
}

func (s *Server) handleCommentCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Content == "" {
		fe.add("content", msgRequired)
	}
	if req.BlogPostID == nil && req.CaseStudyID == nil {
		fe.add("blog_post", "A comment must reference a blog post or a case study.")
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	c := &models.Comment{
		CommentID:   uuid.Must(uuid.NewV7()),
		Content:     req.Content,
		AuthorID:    p.PrincipalID,
		BlogPostID:  req.BlogPostID,
		CaseStudyID: req.CaseStudyID,
		ParentID:    req.ParentID,
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
	}
	if err := s.stores.Comments.Create(r.Context(), c); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCommentGet(w http.ResponseWriter, r *http.Request) {
	c, ok := s.fetchComment(w, r)
	if !ok {
		return
	}
	// Pending or spam comments exist only for moderators.
	if !c.IsApproved && !auth.IsStaff(principal(r)) {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	c, ok := s.fetchComment(w, r)
	if !ok {
		return
	}
	// Authors may delete their own comments; everyone else needs staff.
	if c.AuthorID != p.PrincipalID {
		mustStaff(p)
	}
	if err := s.stores.Comments.Delete(r.Context(), c.CommentID); err != nil {
		panic(err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCommentApprove publishes a comment. Approving clears any spam flag:
// the two states are mutually exclusive.
func (s *Server) handleCommentApprove(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	mustStaff(p)

	c, ok := s.fetchComment(w, r)
	if !ok {
		return
	}
	c.IsApproved = true
	c.IsSpam = false
	if err := s.stores.Comments.Update(r.Context(), c); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "comment approved"})
}

// handleCommentMarkSpam flags a comment as spam and unpublishes it.
func (s *Server) handleCommentMarkSpam(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	mustStaff(p)

	c, ok := s.fetchComment(w, r)
	if !ok {
		return
	}
	c.IsSpam = true
	c.IsApproved = false
	if err := s.stores.Comments.Update(r.Context(), c); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "comment marked as spam"})
}

func (s *Server) fetchComment(w http.ResponseWriter, r *http.Request) (*models.Comment, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	c, err := s.stores.Comments.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrCommentNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	return c, true
}
