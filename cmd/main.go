// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/event-landing/internal/config"
	"github.com/Shivanand-hulikatti/event-landing/internal/handler"
	"github.com/Shivanand-hulikatti/event-landing/internal/ics"
	"github.com/Shivanand-hulikatti/event-landing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-landing/internal/page"
	"github.com/Shivanand-hulikatti/event-landing/internal/repository"
	"github.com/Shivanand-hulikatti/event-landing/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := newLogger(cfg, os.Stdout)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	// ── 1. Load event content ─────────────────────────────────────────────
	event, err := config.LoadEvent(cfg.EventFile, time.Now())
	if err != nil {
		return fmt.Errorf("event: %w", err)
	}
	log.Info().Str("title", event.Title).Str("start", event.Start).Msg("✓ Event loaded")

	// ── 2. Open the registration store ────────────────────────────────────
	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer closeBackend()
	log.Info().Str("backend", cfg.Store.Backend).Msg("✓ Registration store ready")

	// ── 3. Wire up layers ─────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store := repository.NewRegistrationStore(backend, repository.WithQuota(cfg.Store.QuotaBytes))
	registrations := service.NewRegistrationService(store, log, m)

	gen := ics.NewGenerator()
	gen.ProdID = cfg.Calendar.ProdID
	gen.UIDDomain = cfg.Calendar.UIDDomain
	gen.Description = cfg.Calendar.Description

	sessions := handler.NewSessions(cfg.SessionTTL, cfg.SessionMax, func() *page.Controller {
		return page.New(event, gen, registrations, newModal(log, m), log)
	}, m)
	pageHandler := handler.NewPageHandler(sessions, store, log, m)

	// ── 4. Build the router ───────────────────────────────────────────────
	routes := handler.RouterOptions{OperatorAPI: cfg.OperatorAPIEnabled}
	if cfg.MetricsEnabled {
		routes.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	if cfg.OperatorAPIEnabled {
		log.Warn().Msg("operator API enabled: /api/registrations lists every registrant")
	}
	router := handler.NewRouter(pageHandler, log, routes)

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("✓ Server listening on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if cfg.Log.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "event-landing").Logger()
}
