package llm

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/sevigo/cartpilot/internal/config"
)

// NewModel creates the ranking model for the configured provider. It returns
// a nil model when AI selection is disabled.
func NewModel(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (llms.Model, error) {
	if !cfg.Enabled {
		logger.Info("AI product selection disabled, using first search result")
		return nil, nil
	}

	switch cfg.Provider {
	case "gemini":
		logger.Info("using Gemini LLM provider", "model", cfg.Model)
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini_api_key is not set for gemini provider")
		}
		return gemini.New(ctx,
			gemini.WithModel(cfg.Model),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)

	case "ollama":
		logger.Info("using Ollama LLM provider", "model", cfg.Model, "host", cfg.OllamaHost)
		return ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newOllamaHTTPClient(cfg.Timeout)),
			ollama.WithModel(cfg.Model),
			ollama.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// ProviderFor maps the configured provider to its prompt variant.
func ProviderFor(cfg config.AIConfig) ModelProvider {
	if cfg.Provider == "gemini" {
		return "gemini"
	}
	return DefaultProvider
}

func newOllamaHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		// leave headroom over the per-call timeout enforced by the selector
		Timeout: timeout + 5*time.Second,
	}
}
