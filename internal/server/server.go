// Package server wires the REST resources over the store interfaces. Every
// route lives under /api/v1; the request pipeline, CORS and compression are
// applied per-group so /health and /metrics stay outside rate limiting.
package server

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/victoai/platform/internal/audit"
	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/cache"
	httpx "github.com/victoai/platform/internal/http"
	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// Stores bundles every store the server depends on. Memory and postgres
// implementations are interchangeable per field.
type Stores struct {
	Organizations store.OrganizationStore
	Principals    store.PrincipalStore
	Models        store.ModelStore
	Scans         store.ScanStore
	Incidents     store.IncidentStore
	Audit         store.AuditStore

	Categories  store.CategoryStore
	Tags        store.TagStore
	Clients     store.ClientStore
	BlogPosts   store.BlogPostStore
	CaseStudies store.CaseStudyStore
	Comments    store.CommentStore
	Contact     store.ContactStore
}

// Server hosts the REST API.
type Server struct {
	log       zerolog.Logger
	stores    Stores
	authority auth.TokenAuthority
	pipeline  *httpx.Pipeline
	audit     *audit.Recorder
}

// NewServer creates a server over the given stores. The cache backs the
// pipeline's rate-limit counters.
func NewServer(log zerolog.Logger, stores Stores, authority auth.TokenAuthority, c cache.Cache) *Server {
	return &Server{
		log:       log,
		stores:    stores,
		authority: authority,
		pipeline:  httpx.NewPipeline(log, c),
		audit:     audit.NewRecorder(stores.Audit),
	}
}

// Handler builds the full route tree.
func (s *Server) Handler(corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)

	// Load balancer probes and scrapers skip the pipeline entirely.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}).Handler

	requireAuth := auth.Middleware(s.authority, s.stores.Principals)
	optionalAuth := auth.OptionalMiddleware(s.authority, s.stores.Principals)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(corsHandler, gziphandler.GzipHandler, s.pipeline.Handler)

			// Public endpoints: registration, login and lead intake.
			r.Post("/auth/register", s.handleRegister)
			r.Post("/auth/login", s.handleLogin)
			r.Post("/auth/refresh", s.handleRefresh)

			r.Post("/contact", s.handleContactMessage)
			r.Post("/newsletter", s.handleSubscribe)
			r.Delete("/newsletter", s.handleUnsubscribe)
			r.Post("/demo-request", s.handleDemoRequest)
			r.Post("/consultation-request", s.handleConsultationRequest)

			// Content is readable anonymously; writes need a principal.
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				s.contentRoutes(r)
			})

			// Everything else requires an authenticated principal.
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Get("/whoami", s.handleWhoAmI)

				r.Get("/auth/profile", s.handleProfileGet)
				r.Put("/auth/profile", s.handleProfileUpdate)
				r.Patch("/auth/profile", s.handleProfileUpdate)
				r.Put("/auth/change-password", s.handleChangePassword)
				r.Post("/auth/logout", s.handleLogout)

				s.organizationRoutes(r)
				s.modelRoutes(r)
				s.scanRoutes(r)
				s.incidentRoutes(r)
				s.profileRoutes(r)
				s.auditLogRoutes(r)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("healthy"))
}

// principal returns the authenticated principal; routes behind the auth
// middleware always have one.
func principal(r *http.Request) *models.Principal {
	return auth.PrincipalFromContext(r.Context())
}

// requirePrincipal is used by optional-auth routes whose write methods
// still demand authentication. Reports false after writing a 401.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	p := principal(r)
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return nil, false
	}
	return p, true
}

// mustStaff aborts with the policy-denied sentinel unless the principal is
// staff; the pipeline turns the panic into an opaque 403.
func mustStaff(p *models.Principal) {
	if !auth.IsStaff(p) {
		panic(auth.ErrPermissionDenied)
	}
}

// clientIP pulls the resolved address recorded by the pipeline.
func clientIP(r *http.Request) string {
	return httpx.ClientIPFromContext(r.Context())
}
