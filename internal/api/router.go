package api

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/engleong-lee/stash/internal/metrics"
	"github.com/engleong-lee/stash/internal/naming"
	"github.com/engleong-lee/stash/internal/router"
	"github.com/engleong-lee/stash/internal/sessions"
)

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(
	msgRouter *router.Router,
	sessStore *sessions.Store,
	ollama naming.Provider,
	claude naming.Provider,
	m *metrics.Metrics,
	apiKey string,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Metrics(m))
	r.Use(Recovery(logger))

	// Handlers
	healthH := NewHealthHandler(sessStore, ollama, claude)
	messageH := NewMessageHandler(msgRouter)
	commandH := NewCommandHandler(msgRouter, sessStore)

	// Unauthenticated routes
	r.Get("/health", healthH.Health)
	r.Method("GET", "/metrics", m.Handler())

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Post("/messages", messageH.Handle)
		r.Post("/commands/quick-stash", commandH.QuickStash)
		r.Get("/export", commandH.Export)
	})

	return r
}
