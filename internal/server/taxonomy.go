package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// contentRoutes registers every read-public resource: taxonomy, clients,
// publishable content and comments.
func (s *Server) contentRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleCategoryList)
		r.Post("/", s.handleCategoryCreate)
		r.Get("/{slug}", s.handleCategoryGet)
		r.Put("/{slug}", s.handleCategoryUpdate)
		r.Patch("/{slug}", s.handleCategoryUpdate)
		r.Delete("/{slug}", s.handleCategoryDelete)
	})
	r.Route("/tags", func(r chi.Router) {
		r.Get("/", s.handleTagList)
		r.Post("/", s.handleTagCreate)
		r.Get("/{slug}", s.handleTagGet)
		r.Put("/{slug}", s.handleTagUpdate)
		r.Patch("/{slug}", s.handleTagUpdate)
		r.Delete("/{slug}", s.handleTagDelete)
	})
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", s.handleClientList)
		r.Post("/", s.handleClientCreate)
		r.Get("/{clientID}", s.handleClientGet)
		r.Put("/{clientID}", s.handleClientUpdate)
		r.Patch("/{clientID}", s.handleClientUpdate)
		r.Delete("/{clientID}", s.handleClientDelete)
	})

	s.blogPostRoutes(r)
	s.caseStudyRoutes(r)
	s.commentRoutes(r)
}

type categoryRequest struct {
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Description     *string `json:"description"`
	Order           *int    `json:"order"`
	IsActive        *bool   `json:"is_active"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

func (s *Server) handleCategoryList(w http.ResponseWriter, r *http.Request) {
	categories, err := s.stores.Categories.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		fe := fieldErrors{}
		fe.add("name", msgRequired)
		fe.write(w)
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = models.Slugify(req.Name)
	}
	c := &models.Category{
		CategoryID:      uuid.Must(uuid.NewV7()),
		Name:            req.Name,
		Slug:            slug,
		Description:     strVal(req.Description),
		IsActive:        true,
		MetaTitle:       strVal(req.MetaTitle),
		MetaDescription: strVal(req.MetaDescription),
	}
	if req.Order != nil {
		c.Order = *req.Order
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.stores.Categories.Create(r.Context(), c); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe := fieldErrors{}
			fe.add("slug", "category with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCategoryGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.stores.Categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	c, err := s.stores.Categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Slug != "" {
		c.Slug = req.Slug
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Order != nil {
		c.Order = *req.Order
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.MetaTitle != nil {
		c.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		c.MetaDescription = *req.MetaDescription
	}

	if err := s.stores.Categories.Update(r.Context(), c); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe := fieldErrors{}
			fe.add("slug", "category with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	if err := s.stores.Categories.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}
	w.WriteHeader(http.StatusNoContent)
}

type tagRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
}

func (s *Server) handleTagList(w http.ResponseWriter, r *http.Request) {
	tags, err := s.stores.Tags.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleTagCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		fe := fieldErrors{}
		fe.add("name", msgRequired)
		fe.write(w)
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = models.Slugify(req.Name)
	}
	t := &models.Tag{
		TagID:       uuid.Must(uuid.NewV7()),
		Name:        req.Name,
		Slug:        slug,
		Description: strVal(req.Description),
	}
	if err := s.stores.Tags.Create(r.Context(), t); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe := fieldErrors{}
			fe.add("slug", "tag with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTagGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.stores.Tags.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTagUpdate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	t, err := s.stores.Tags.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	var req tagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Slug != "" {
		t.Slug = req.Slug
	}
	if req.Description != nil {
		t.Description = *req.Description
	}

	if err := s.stores.Tags.Update(r.Context(), t); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe := fieldErrors{}
			fe.add("slug", "tag with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTagDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	if err := s.stores.Tags.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}
	w.WriteHeader(http.StatusNoContent)
}

type clientRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Industry    *string `json:"industry"`
	IsActive    *bool   `json:"is_active"`
}

func (s *Server) handleClientList(w http.ResponseWriter, r *http.Request) {
	clients, err := s.stores.Clients.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, clients)
}

// Client writes are restricted to staff; the roster feeds public case
// studies and is not community-editable.
func (s *Server) handleClientCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	mustStaff(p)

	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		fe := fieldErrors{}
		fe.add("name", msgRequired)
		fe.write(w)
		return
	}

	c := &models.Client{
		ClientID:    uuid.Must(uuid.NewV7()),
		Name:        req.Name,
		Description: strVal(req.Description),
		Website:     strVal(req.Website),
		Industry:    strVal(req.Industry),
		IsActive:    true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.stores.Clients.Create(r.Context(), c); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleClientGet(w http.ResponseWriter, r *http.Request) {
	c, ok := s.fetchClient(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleClientUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	mustStaff(p)

	c, ok := s.fetchClient(w, r)
	if !ok {
		return
	}

	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Website != nil {
		c.Website = *req.Website
	}
	if req.Industry != nil {
		c.Industry = *req.Industry
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.stores.Clients.Update(r.Context(), c); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleClientDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	mustStaff(p)

	c, ok := s.fetchClient(w, r)
	if !ok {
		return
	}
	if err := s.stores.Clients.Delete(r.Context(), c.ClientID); err != nil {
		panic(err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fetchClient(w http.ResponseWriter, r *http.Request) (*models.Client, bool) {
	id, err := uuidParam(r, "clientID")
	if err != nil {
		writeNotFound(w)
		return nil, false
	}
	c, err := s.stores.Clients.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	return c, true
}
