// Package app owns the lifecycle of the running service: job recovery, the
// HTTP server, the dispatcher and the event log writer.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/server"
)

// Closer is implemented by the event log writer.
type Closer interface {
	Close()
}

// App holds the main application components.
type App struct {
	cfg        *config.Config
	server     *server.Server
	dispatcher core.JobDispatcher
	events     Closer
	logger     *slog.Logger
}

// NewApp assembles the application from its wired components.
func NewApp(cfg *config.Config, srv *server.Server, dispatcher core.JobDispatcher, events Closer, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		server:     srv,
		dispatcher: dispatcher,
		events:     events,
		logger:     logger,
	}
}

// Run recovers unfinished jobs, serves HTTP until ctx is cancelled or the
// server fails, and then shuts everything down in order: the server stops
// accepting requests, the in-flight job finishes, and the log is flushed.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting cartpilot",
		"port", a.cfg.Server.Port,
		"strategy", a.cfg.Fulfillment.Strategy,
		"retailer", a.cfg.Fulfillment.Retailer,
		"ai_enabled", a.cfg.AI.Enabled)

	if err := a.dispatcher.Recover(ctx); err != nil {
		a.shutdownWorkers()
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Start)
	g.Go(func() error {
		<-gctx.Done()
		return a.server.Stop()
	})

	err := g.Wait()
	if err != nil {
		a.logger.Error("HTTP server stopped with error", "error", err)
	}
	a.shutdownWorkers()

	if err != nil {
		return err
	}
	a.logger.Info("cartpilot stopped successfully")
	return nil
}

func (a *App) shutdownWorkers() {
	a.dispatcher.Stop()
	a.events.Close()
}
