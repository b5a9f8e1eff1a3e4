package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wolfeidau/gestor/internal/logger"
	"github.com/wolfeidau/gestor/internal/server"
	"github.com/wolfeidau/gestor/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

type ServeCmd struct {
	// Server configuration
	Listen     string `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"GESTOR_LISTEN"`
	Cert       string `help:"path to TLS cert file" default:"" env:"GESTOR_TLS_CERT"`
	Key        string `help:"path to TLS key file" default:"" env:"GESTOR_TLS_KEY"`
	TrustProxy bool   `help:"trust X-Forwarded-For and X-Real-IP headers" default:"false" env:"GESTOR_TRUST_PROXY"`

	// CORS configuration
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"*" env:"GESTOR_CORS_ORIGINS"`

	RequestTimeout time.Duration `help:"timeout for API requests" default:"2m" env:"GESTOR_REQUEST_TIMEOUT"`

	// Operational modes
	Tracing     bool    `help:"enable tracing" default:"false" env:"GESTOR_TRACING"`
	SampleRatio float64 `help:"fraction of traces sampled when tracing is enabled" default:"1" env:"GESTOR_TRACE_SAMPLE_RATIO"`

	// Store configuration
	StoreType     string             `help:"store type (memory or postgres)" default:"memory" env:"GESTOR_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
	Auth          AuthFlags          `embed:"" prefix:"auth-"`
	Identity      IdentityFlags      `embed:"" prefix:"identity-"`
	Export        ExportFlags        `embed:"" prefix:"export-"`
}

func (c *ServeCmd) Validate() error {
	if (c.Cert == "") != (c.Key == "") {
		return errors.New("--cert and --key must be provided together")
	}
	return nil
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "gestor-server",
			Version:     globals.Version,
			SampleRatio: c.SampleRatio,
		})
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

	if err := c.Auth.validate(); err != nil {
		return fmt.Errorf("failed to validate auth flags: %w", err)
	}
	verifier, err := c.Auth.verifier()
	if err != nil {
		return fmt.Errorf("failed to create token verifier: %w", err)
	}

	st, err := openStores(ctx, c.StoreType, &c.PostgresStore)
	if err != nil {
		return err
	}
	defer st.close()

	provider, err := c.Identity.provider()
	if err != nil {
		return fmt.Errorf("failed to create identity provider: %w", err)
	}

	svc, err := st.service(provider, c.Export.config())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	handler := server.NewServer(svc, verifier, server.Config{
		CORSOrigins:    c.CORSOrigins,
		TrustProxy:     c.TrustProxy,
		RequestTimeout: c.RequestTimeout,
	}).Handler(log)

	srv := configureHTTPServer(c.Listen, handler)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Msg("Starting HTTP server")

		var err error
		if c.Cert != "" {
			err = srv.ListenAndServeTLS(c.Cert, c.Key)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()

		log.Info().Msg("Shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
