package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

func (s *Server) blogPostRoutes(r chi.Router) {
	r.Route("/blog-posts", func(r chi.Router) {
		r.Get("/", s.handleBlogPostList)
		r.Post("/", s.handleBlogPostCreate)
		r.Get("/featured", s.handleBlogPostFeatured)
		r.Get("/by_category", s.handleBlogPostByCategory)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", s.handleBlogPostGet)
			r.Put("/", s.handleBlogPostUpdate)
			r.Patch("/", s.handleBlogPostUpdate)
			r.Delete("/", s.handleBlogPostDelete)
			r.Post("/increment_views", s.handleBlogPostIncrementViews)
		})
	})
}

func (s *Server) caseStudyRoutes(r chi.Router) {
	r.Route("/case-studies", func(r chi.Router) {
		r.Get("/", s.handleCaseStudyList)
		r.Post("/", s.handleCaseStudyCreate)
		r.Get("/featured", s.handleCaseStudyFeatured)
		r.Get("/by_industry", s.handleCaseStudyByIndustry)
		r.Route("/{slug}", func(r chi.Router) {
			r.Get("/", s.handleCaseStudyGet)
			r.Put("/", s.handleCaseStudyUpdate)
			r.Patch("/", s.handleCaseStudyUpdate)
			r.Delete("/", s.handleCaseStudyDelete)
			r.Post("/increment_views", s.handleCaseStudyIncrementViews)
		})
	})
}

// visibilityFilter builds the base listing filter for the caller: staff see
// everything, everyone else sees only published entries whose publish time
// has passed.
func visibilityFilter(p *models.Principal) store.PostFilter {
	if auth.IsStaff(p) {
		return store.PostFilter{}
	}
	return store.PostFilter{PublishedOnly: true, Now: time.Now()}
}

type blogPostRequest struct {
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Content         string      `json:"content"`
	Excerpt         *string     `json:"excerpt"`
	CategoryIDs     []uuid.UUID `json:"categories"`
	TagIDs          []uuid.UUID `json:"tags"`
	ReadTime        *int        `json:"read_time"`
	Featured        *bool       `json:"featured"`
	AllowComments   *bool       `json:"allow_comments"`
	MetaTitle       *string     `json:"meta_title"`
	MetaDescription *string     `json:"meta_description"`
	IsPublished     *bool       `json:"is_published"`
	PublishedAt     *time.Time  `json:"published_at"`
}

func (s *Server) handleBlogPostList(w http.ResponseWriter, r *http.Request) {
	filter := visibilityFilter(principal(r))
	filter.Search = r.URL.Query().Get("search")
	posts, err := s.stores.BlogPosts.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleBlogPostCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req blogPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Title == "" {
		fe.add("title", msgRequired)
	}
	if req.Content == "" {
		fe.add("content", msgRequired)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = models.Slugify(req.Title)
	}
	post := &models.BlogPost{
		PostID:          uuid.Must(uuid.NewV7()),
		Title:           req.Title,
		Slug:            slug,
		Content:         req.Content,
		Excerpt:         strVal(req.Excerpt),
		AuthorID:        p.PrincipalID,
		CategoryIDs:     req.CategoryIDs,
		TagIDs:          req.TagIDs,
		AllowComments:   true,
		MetaTitle:       strVal(req.MetaTitle),
		MetaDescription: strVal(req.MetaDescription),
	}
	if req.ReadTime != nil {
		post.ReadTime = *req.ReadTime
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.AllowComments != nil {
		post.AllowComments = *req.AllowComments
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}
	post.PublishedAt = req.PublishedAt
	// First publish stamps the publish time unless the author backdated it.
	if post.IsPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.stores.BlogPosts.Create(r.Context(), post); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe.add("slug", "blog post with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionCreate, "BlogPost",
		post.PostID.String(), clientIP(r), map[string]any{"slug": post.Slug})
	writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleBlogPostGet(w http.ResponseWriter, r *http.Request) {
	post, ok := s.fetchBlogPost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleBlogPostUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	post, ok := s.fetchBlogPost(w, r)
	if !ok {
		return
	}

	var req blogPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Slug != "" {
		post.Slug = req.Slug
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.CategoryIDs != nil {
		post.CategoryIDs = req.CategoryIDs
	}
	if req.TagIDs != nil {
		post.TagIDs = req.TagIDs
	}
	if req.ReadTime != nil {
		post.ReadTime = *req.ReadTime
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.AllowComments != nil {
		post.AllowComments = *req.AllowComments
	}
	if req.MetaTitle != nil {
		post.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		post.MetaDescription = *req.MetaDescription
	}
	if req.PublishedAt != nil {
		post.PublishedAt = req.PublishedAt
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
		if post.IsPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	}

	if err := s.stores.BlogPosts.Update(r.Context(), post); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe := fieldErrors{}
			fe.add("slug", "blog post with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionUpdate, "BlogPost",
		post.PostID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleBlogPostDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	post, ok := s.fetchBlogPost(w, r)
	if !ok {
		return
	}
	if err := s.stores.BlogPosts.Delete(r.Context(), post.Slug); err != nil {
		panic(err)
	}
	s.audit.Record(r.Context(), p, models.AuditActionDelete, "BlogPost",
		post.PostID.String(), clientIP(r), map[string]any{"slug": post.Slug})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBlogPostIncrementViews(w http.ResponseWriter, r *http.Request) {
	post, ok := s.fetchBlogPost(w, r)
	if !ok {
		return
	}
	if err := s.stores.BlogPosts.IncrementViews(r.Context(), post.PostID); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "views incremented"})
}

func (s *Server) handleBlogPostFeatured(w http.ResponseWriter, r *http.Request) {
	filter := visibilityFilter(principal(r))
	featured := true
	filter.Featured = &featured
	posts, err := s.stores.BlogPosts.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleBlogPostByCategory(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("category")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Category slug is required")
		return
	}
	category, err := s.stores.Categories.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	filter := visibilityFilter(principal(r))
	categoryID := category.CategoryID
	filter.CategoryID = &categoryID
	posts, err := s.stores.BlogPosts.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, posts)
}

// fetchBlogPost resolves the slug with the caller's visibility: a draft or
// future-dated post behaves as missing for non-staff readers.
func (s *Server) fetchBlogPost(w http.ResponseWriter, r *http.Request) (*models.BlogPost, bool) {
	post, err := s.stores.BlogPosts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrPostNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	if !auth.IsStaff(principal(r)) && !post.VisibleAt(time.Now()) {
		writeNotFound(w)
		return nil, false
	}
	return post, true
}

type caseStudyRequest struct {
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	Content         string         `json:"content"`
	Excerpt         *string        `json:"excerpt"`
	ClientID        *uuid.UUID     `json:"client"`
	IndustryID      *uuid.UUID     `json:"industry"`
	CategoryIDs     []uuid.UUID    `json:"categories"`
	TagIDs          []uuid.UUID    `json:"tags"`
	KeyResults      map[string]any `json:"key_results"`
	Technologies    []string       `json:"technologies"`
	Testimonial     *string        `json:"testimonial"`
	ReadTime        *int           `json:"read_time"`
	Featured        *bool          `json:"featured"`
	AllowComments   *bool          `json:"allow_comments"`
	MetaTitle       *string        `json:"meta_title"`
	MetaDescription *string        `json:"meta_description"`
	IsPublished     *bool          `json:"is_published"`
	PublishedAt     *time.Time     `json:"published_at"`
}

func (s *Server) handleCaseStudyList(w http.ResponseWriter, r *http.Request) {
	filter := visibilityFilter(principal(r))
	filter.Search = r.URL.Query().Get("search")
	studies, err := s.stores.CaseStudies.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, studies)
}

func (s *Server) handleCaseStudyCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req caseStudyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Title == "" {
		fe.add("title", msgRequired)
	}
	if req.Content == "" {
		fe.add("content", msgRequired)
	}
	if req.ClientID == nil {
		fe.add("client", msgRequired)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	if _, err := s.stores.Clients.Get(r.Context(), *req.ClientID); err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			fe.add("client", "Client does not exist.")
			fe.write(w)
			return
		}
		panic(err)
	}

	slug := req.Slug
	if slug == "" {
		slug = models.Slugify(req.Title)
	}
	study := &models.CaseStudy{
		StudyID:         uuid.Must(uuid.NewV7()),
		Title:           req.Title,
		Slug:            slug,
		Content:         req.Content,
		Excerpt:         strVal(req.Excerpt),
		ClientID:        *req.ClientID,
		IndustryID:      req.IndustryID,
		CategoryIDs:     req.CategoryIDs,
		TagIDs:          req.TagIDs,
		KeyResults:      req.KeyResults,
		Technologies:    req.Technologies,
		Testimonial:     strVal(req.Testimonial),
		AllowComments:   true,
		MetaTitle:       strVal(req.MetaTitle),
		MetaDescription: strVal(req.MetaDescription),
	}
	if req.ReadTime != nil {
		study.ReadTime = *req.ReadTime
	}
	if req.Featured != nil {
		study.Featured = *req.Featured
	}
	if req.AllowComments != nil {
		study.AllowComments = *req.AllowComments
	}
	if req.IsPublished != nil {
		study.IsPublished = *req.IsPublished
	}
	study.PublishedAt = req.PublishedAt
	if study.IsPublished && study.PublishedAt == nil {
		now := time.Now()
		study.PublishedAt = &now
	}

	if err := s.stores.CaseStudies.Create(r.Context(), study); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe.add("slug", "case study with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionCreate, "CaseStudy",
		study.StudyID.String(), clientIP(r), map[string]any{"slug": study.Slug})
	writeJSON(w, http.StatusCreated, study)
}

func (s *Server) handleCaseStudyGet(w http.ResponseWriter, r *http.Request) {
	study, ok := s.fetchCaseStudy(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, study)
}

func (s *Server) handleCaseStudyUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	study, ok := s.fetchCaseStudy(w, r)
	if !ok {
		return
	}

	var req caseStudyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title != "" {
		study.Title = req.Title
	}
	if req.Slug != "" {
		study.Slug = req.Slug
	}
	if req.Content != "" {
		study.Content = req.Content
	}
	if req.Excerpt != nil {
		study.Excerpt = *req.Excerpt
	}
	if req.ClientID != nil {
		study.ClientID = *req.ClientID
	}
	if req.IndustryID != nil {
		study.IndustryID = req.IndustryID
	}
	if req.CategoryIDs != nil {
		study.CategoryIDs = req.CategoryIDs
	}
	if req.TagIDs != nil {
		study.TagIDs = req.TagIDs
	}
	if req.KeyResults != nil {
		study.KeyResults = req.KeyResults
	}
	if req.Technologies != nil {
		study.Technologies = req.Technologies
	}
	if req.Testimonial != nil {
		study.Testimonial = *req.Testimonial
	}
	if req.ReadTime != nil {
		study.ReadTime = *req.ReadTime
	}
	if req.Featured != nil {
		study.Featured = *req.Featured
	}
	if req.AllowComments != nil {
		study.AllowComments = *req.AllowComments
	}
	if req.MetaTitle != nil {
		study.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		study.MetaDescription = *req.MetaDescription
	}
	if req.PublishedAt != nil {
		study.PublishedAt = req.PublishedAt
	}
	if req.IsPublished != nil {
		study.IsPublished = *req.IsPublished
		if study.IsPublished && study.PublishedAt == nil {
			now := time.Now()
			study.PublishedAt = &now
		}
	}

	if err := s.stores.CaseStudies.Update(r.Context(), study); err != nil {
		if errors.Is(err, store.ErrSlugTaken) {
			fe := fieldErrors{}
			fe.add("slug", "case study with this slug already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}

	s.audit.Record(r.Context(), p, models.AuditActionUpdate, "CaseStudy",
		study.StudyID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, study)
}

func (s *Server) handleCaseStudyDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	study, ok := s.fetchCaseStudy(w, r)
	if !ok {
		return
	}
	if err := s.stores.CaseStudies.Delete(r.Context(), study.Slug); err != nil {
		panic(err)
	}
	s.audit.Record(r.Context(), p, models.AuditActionDelete, "CaseStudy",
		study.StudyID.String(), clientIP(r), map[string]any{"slug": study.Slug})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCaseStudyIncrementViews(w http.ResponseWriter, r *http.Request) {
	study, ok := s.fetchCaseStudy(w, r)
	if !ok {
		return
	}
	if err := s.stores.CaseStudies.IncrementViews(r.Context(), study.StudyID); err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "views incremented"})
}

func (s *Server) handleCaseStudyFeatured(w http.ResponseWriter, r *http.Request) {
	filter := visibilityFilter(principal(r))
	featured := true
	filter.Featured = &featured
	studies, err := s.stores.CaseStudies.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, studies)
}

func (s *Server) handleCaseStudyByIndustry(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("industry")
	if slug == "" {
		writeError(w, http.StatusBadRequest, "Industry slug is required")
		return
	}
	industry, err := s.stores.Categories.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			writeNotFound(w)
			return
		}
		panic(err)
	}

	filter := visibilityFilter(principal(r))
	industryID := industry.CategoryID
	filter.IndustryID = &industryID
	studies, err := s.stores.CaseStudies.List(r.Context(), filter)
	if err != nil {
		panic(err)
	}
	writeJSON(w, http.StatusOK, studies)
}

func (s *Server) fetchCaseStudy(w http.ResponseWriter, r *http.Request) (*models.CaseStudy, bool) {
	study, err := s.stores.CaseStudies.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrCaseStudyNotFound) {
			writeNotFound(w)
			return nil, false
		}
		panic(err)
	}
	if !auth.IsStaff(principal(r)) && !study.VisibleAt(time.Now()) {
		writeNotFound(w)
		return nil, false
	}
	return study, true
}
