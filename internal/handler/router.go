package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterOptions selects the optional routes.
type RouterOptions struct {
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	// OperatorAPI mounts GET /api/registrations, which exposes every
	// registrant's details. Keep it off on public deployments.
	OperatorAPI bool
}

// NewRouter mounts the page routes.
func NewRouter(h *PageHandler, log zerolog.Logger, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log

	// Health
	r.Get("/health", HealthCheck)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	// Page and its actions
	r.Group(func(r chi.Router) {
		r.Use(NoStore)
		r.Get("/", h.Index)
		r.Get("/calendar.ics", h.Calendar)
		r.Post("/ui/click", h.Click)
		r.Post("/ui/key", h.Key)
		r.Post("/register", h.Register)
	})

	// Operator API
	if opts.OperatorAPI {
		r.Get("/api/registrations", h.ListRegistrations)
	}

	return r
}
