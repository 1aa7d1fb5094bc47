package wire

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/wire"
	"github.com/jmoiron/sqlx"

	"github.com/sevigo/cartpilot/internal/app"
	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/db"
	"github.com/sevigo/cartpilot/internal/eventlog"
	"github.com/sevigo/cartpilot/internal/fulfillment"
	"github.com/sevigo/cartpilot/internal/jobs"
	"github.com/sevigo/cartpilot/internal/llm"
	"github.com/sevigo/cartpilot/internal/logger"
	"github.com/sevigo/cartpilot/internal/server"
	"github.com/sevigo/cartpilot/internal/storage"
	"github.com/sevigo/cartpilot/internal/webhook"
)

// AppSet lists every provider of the service graph.
var AppSet = wire.NewSet(
	app.NewApp,
	server.NewServer,
	config.LoadConfig,
	db.NewDatabase,
	storage.NewStore,
	jobs.NewDispatcher,
	fulfillment.NewStrategy,
	llm.NewPromptManager,
	provideLoggerConfig,
	provideLogWriter,
	provideSlogLogger,
	provideDBConfig,
	provideSQLX,
	provideEventLog,
	provideSelector,
	provideNotifier,
	provideQueueConfig,
	wire.Bind(new(core.EventLogger), new(*eventlog.Logger)),
	wire.Bind(new(app.Closer), new(*eventlog.Logger)),
	wire.Bind(new(core.ProductSelector), new(*llm.Selector)),
	wire.Bind(new(core.Notifier), new(*webhook.Notifier)),
)

func provideLoggerConfig(cfg *config.Config) logger.Config {
	return cfg.Logging
}

func provideLogWriter(cfg logger.Config) io.Writer {
	return cfg.Writer()
}

func provideSlogLogger(cfg logger.Config, w io.Writer) *slog.Logger {
	l := logger.NewLogger(cfg, w)
	slog.SetDefault(l)
	return l
}

func provideDBConfig(cfg *config.Config) *config.DBConfig {
	return &cfg.Database
}

func provideSQLX(conn *db.DB) *sqlx.DB {
	return conn.DB
}

func provideQueueConfig(cfg *config.Config) config.QueueConfig {
	return cfg.Queue
}

// provideEventLog starts the log writer. Closing it is left to the app so
// that the dispatcher is stopped first.
func provideEventLog(cfg *config.Config, store storage.Store, logger *slog.Logger) *eventlog.Logger {
	return eventlog.New(store, cfg.Queue.LogBuffer, logger)
}

func provideSelector(ctx context.Context, cfg *config.Config, prompts *llm.PromptManager, logger *slog.Logger) (*llm.Selector, error) {
	model, err := llm.NewModel(ctx, cfg.AI, logger)
	if err != nil {
		return nil, err
	}
	return llm.NewSelector(llm.SelectorConfig{
		Enabled:  cfg.AI.Enabled,
		Provider: llm.ProviderFor(cfg.AI),
		Timeout:  cfg.AI.Timeout,
	}, llm.FromModel(model), prompts, logger), nil
}

func provideNotifier(cfg *config.Config, store storage.Store, events core.EventLogger, logger *slog.Logger) *webhook.Notifier {
	return webhook.NewNotifier(store, events, cfg.Webhook, logger)
}
