package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/cache"
	"github.com/victoai/platform/internal/logger"
	"github.com/victoai/platform/internal/server"
	"github.com/victoai/platform/internal/telemetry"
)

type ServerCmd struct {
	// Server configuration
	Listen string `help:"HTTP server listen address" default:"0.0.0.0:8000" env:"VICTOAI_LISTEN"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"http://localhost:3000" env:"VICTOAI_CORS_ORIGINS"`

	// Token configuration
	JWTSigningKey string        `help:"path to PEM-encoded EC private key for signing tokens; an ephemeral key is generated when unset" env:"VICTOAI_JWT_SIGNING_KEY"`
	AccessTTL     time.Duration `help:"access token lifetime" default:"15m" env:"VICTOAI_ACCESS_TTL"`
	RefreshTTL    time.Duration `help:"refresh token lifetime" default:"24h" env:"VICTOAI_REFRESH_TTL"`

	// Operational modes
	Tracing bool `help:"enable tracing" default:"false" env:"VICTOAI_TRACING"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"VICTOAI_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *ServerCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.Init(ctx, "victoai-platform", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, cleanup, err := buildStores(ctx, c.StoreType, c.PostgresStore)
	if err != nil {
		return err
	}
	defer cleanup()
	log.Info().Str("store", c.StoreType).Msg("Stores initialized")

	// The cache backs both the token blacklist and the rate limiter.
	tokenCache := cache.NewMemory()

	var authority *auth.JWTAuthority
	if c.JWTSigningKey != "" {
		pem, err := os.ReadFile(c.JWTSigningKey)
		if err != nil {
			return fmt.Errorf("failed to read JWT signing key: %w", err)
		}
		authority, err = auth.NewJWTAuthority(string(pem), c.AccessTTL, c.RefreshTTL, tokenCache)
		if err != nil {
			return fmt.Errorf("failed to create token authority: %w", err)
		}
	} else {
		log.Warn().Msg("No JWT signing key configured, generating an ephemeral key. Issued tokens will not survive a restart!")
		authority, err = auth.NewEphemeralAuthority(c.AccessTTL, c.RefreshTTL, tokenCache)
		if err != nil {
			return fmt.Errorf("failed to create token authority: %w", err)
		}
	}

	srv := server.NewServer(log, stores, authority, cache.NewMemory())
	handler := srv.Handler(c.CORSOrigins)

	log.Info().Str("addr", c.Listen).Msg("Starting HTTP server")
	if err := configureHTTPServer(c.Listen, handler).ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
