package router

import (
	"je-feed-v2/internal/handler"
	"je-feed-v2/internal/logger"
	"je-feed-v2/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	FeedHandler *handler.FeedHandler
	Logger      *logger.Logger
}

// New creates and configures the HTTP router for serve mode.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/feed.xml", cfg.FeedHandler.Feed)
	r.Get("/api/status", cfg.FeedHandler.Status)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", cfg.FeedHandler.Health)
		r.Get("/stats", cfg.FeedHandler.Stats)
	})

	return r
}
