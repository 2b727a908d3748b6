// Package router assembles the chi router for the assistant API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/http/handlers"
	httpmiddleware "github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/http/middleware"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	Orchestrator       *handlers.OrchestratorHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Orchestrator.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/orchestrator", func(r chi.Router) {
		r.Post("/chat", cfg.Orchestrator.Chat)
		r.Post("/message", cfg.Orchestrator.Message)
	})
	r.Get("/conversations/{conversationID}/history", cfg.Orchestrator.History)

	return r
}
