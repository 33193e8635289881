package main

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-landing/internal/config"
	"github.com/Shivanand-hulikatti/event-landing/internal/database"
	"github.com/Shivanand-hulikatti/event-landing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-landing/internal/modal"
	"github.com/Shivanand-hulikatti/event-landing/internal/repository"
	"github.com/rs/zerolog"
)

// openBackend connects the configured storage medium. The returned func
// releases it.
func openBackend(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Backend, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn().Msg("memory store: registrations are lost on restart")
		return repository.NewMemoryBackend(), noop, nil

	case config.BackendFile:
		b, err := repository.NewFileBackend(cfg.Store.Path)
		if err != nil {
			return nil, noop, err
		}
		return b, noop, nil

	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.DatabaseConfig(), log)
		if err != nil {
			return nil, noop, err
		}
		b := repository.NewPostgresBackend(pool)
		if err := b.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return b, pool.Close, nil

	case config.BackendRedis:
		client, err := database.NewRedisClient(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return repository.NewRedisBackend(client, log), func() { _ = client.Close() }, nil

	case config.BackendSQLite:
		db, err := database.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		b, err := repository.NewSQLiteBackend(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return b, func() { _ = db.Close() }, nil
	}
	return nil, noop, fmt.Errorf("unknown backend %q", cfg.Store.Backend)
}

// newModal builds a dialog controller that logs and counts its transitions.
func newModal(log zerolog.Logger, m *metrics.Metrics) *modal.Controller {
	c := modal.New()
	c.OnTransition = func(tr modal.Transition) {
		m.ModalTransitions.WithLabelValues(tr.From.String(), tr.To.String(), tr.Trigger).Inc()
		log.Debug().
			Str("from", tr.From.String()).
			Str("to", tr.To.String()).
			Str("trigger", tr.Trigger).
			Msg("modal transition")
	}
	return c
}
