// Package server exposes the support operations over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/gestor/internal/admin"
	"github.com/wolfeidau/gestor/internal/auth"
	"github.com/wolfeidau/gestor/internal/export"
	ihttp "github.com/wolfeidau/gestor/internal/http"
	"github.com/wolfeidau/gestor/internal/logger"
	"github.com/wolfeidau/gestor/internal/models"
)

const maxBodyBytes = 1 << 20

// Service is the set of support operations served over HTTP.
type Service interface {
	ListOrganizations(ctx context.Context, query string) ([]*models.Organization, error)
	CreateOrganization(ctx context.Context, in admin.NewOrganization) (*models.Organization, error)
	SwitchOrganization(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)
	ExportOrganization(ctx context.Context, orgID, format string) (*export.Result, error)
}

// Config holds HTTP settings.
type Config struct {
	// CORSOrigins lists origins allowed to call the API.
	// Default: all origins
	CORSOrigins []string

	// TrustProxy honours X-Forwarded-For and X-Real-IP.
	TrustProxy bool

	// RequestTimeout bounds each API request.
	// Default: 2m
	RequestTimeout time.Duration
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 2 * time.Minute
	}
}

// Server routes HTTP requests to the support service.
type Server struct {
	svc      Service
	verifier auth.TokenVerifier
	cfg      Config
}

// NewServer creates a server. Every /api route requires a bearer token
// accepted by verifier.
func NewServer(svc Service, verifier auth.TokenVerifier, cfg Config) *Server {
	cfg.ApplyDefaults()
	return &Server{
		svc:      svc,
		verifier: verifier,
		cfg:      cfg,
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler(log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(ihttp.ClientIPMiddleware(s.cfg.TrustProxy))
	r.Use(logger.Requests(log))
	r.Use(recoverer)

	// Health check endpoint for load balancer
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(withCORS(s.cfg.CORSOrigins))
		r.Use(auth.Middleware(s.verifier, writeError))
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))

		r.Get("/organizations", s.listOrganizations)
		r.Post("/organizations", s.createOrganization)
		r.Post("/organizations/{id}/switch", s.switchOrganization)
		r.With(compress).Post("/export-database", s.exportDatabase)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, fmt.Errorf("%w: %s", admin.ErrNotFound, r.URL.Path))
	})

	return r
}
