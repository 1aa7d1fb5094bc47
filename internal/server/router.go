package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/server/handler"
	"github.com/sevigo/cartpilot/internal/storage"
)

// NewRouter creates and configures a new HTTP router with middleware and API routes.
func NewRouter(cfg *config.Config, store storage.Store, dispatcher core.JobDispatcher, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handler.Health(dispatcher))

	carts := handler.NewCartHandler(cfg, store, dispatcher, logger)
	r.Route("/api/v1/carts", func(r chi.Router) {
		r.Use(handler.Authenticate)

		r.With(createGate(cfg, store, logger)...).Post("/", carts.Create)
		r.Get("/", carts.List)
		r.Get("/{jobID}", carts.Get)
		r.Delete("/{jobID}", carts.Cancel)
	})

	return r
}

func createGate(cfg *config.Config, store storage.Store, logger *slog.Logger) chi.Middlewares {
	if !cfg.Server.RequirePremium {
		return nil
	}
	return chi.Middlewares{handler.RequirePremium(store, logger)}
}
