// Package fulfillment turns a grocery list into a retailer cart, either by
// driving the storefront in a browser or through the retailer's catalog API.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sevigo/cartpilot/internal/browser"
	"github.com/sevigo/cartpilot/internal/catalog"
	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
)

const (
	StrategyBrowser = "browser"
	StrategyCatalog = "catalog"
)

// NewStrategy builds the strategy selected by fulfillment.strategy.
func NewStrategy(cfg *config.Config, selector core.ProductSelector, events core.EventLogger, logger *slog.Logger) (core.CartStrategy, error) {
	switch cfg.Fulfillment.Strategy {
	case StrategyBrowser:
		profile, err := LoadProfile(cfg.Fulfillment.Retailer, cfg.Fulfillment.ProfileFile)
		if err != nil {
			return nil, err
		}
		launcher := browser.NewLauncher(cfg.Browser, logger)
		return NewBrowserStrategy(launcher, selector, events, profile, cfg.Fulfillment, logger), nil

	case StrategyCatalog:
		client, err := catalog.NewClient(cfg.Catalog, nil, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create catalog client: %w", err)
		}
		return NewCatalogStrategy(client, selector, events, cfg.Fulfillment, logger), nil

	default:
		return nil, fmt.Errorf("unsupported fulfillment strategy: %s", cfg.Fulfillment.Strategy)
	}
}

// pauseFunc waits between network-visible actions. It returns early when ctx
// is done.
type pauseFunc func(ctx context.Context)

func randomPause(minDelay, maxDelay time.Duration) pauseFunc {
	return func(ctx context.Context) {
		d := minDelay
		if maxDelay > minDelay {
			d += rand.N(maxDelay - minDelay)
		}
		if d <= 0 {
			return
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
		}
	}
}

// selection runs the selector for item and records the decision in the job log.
func selection(ctx context.Context, selector core.ProductSelector, events core.EventLogger, jobID string,
	item core.Item, candidates []core.Candidate, preferences string) core.SelectionResult {
	sel := selector.Select(ctx, item, candidates, preferences)

	if sel.Fallback {
		events.Append(jobID, core.LogInfo, fmt.Sprintf("Selected %s for %s (first result)", sel.SelectedProduct.Title, item.Name))
	} else {
		events.Append(jobID, core.LogInfo, fmt.Sprintf("Selected %s for %s (match score %d): %s",
			sel.SelectedProduct.Title, item.Name, sel.MatchScore, sel.Reasoning))
	}
	for _, w := range sel.Warnings {
		events.Append(jobID, core.LogWarning, fmt.Sprintf("%s: %s", item.Name, w))
	}
	return sel
}

func selectedProduct(item core.Item, sel core.SelectionResult) core.SelectedProduct {
	return core.SelectedProduct{
		Requested:  item.Name,
		Selected:   sel.SelectedProduct.Title,
		ItemID:     sel.SelectedProduct.ItemID,
		Price:      sel.SelectedProduct.Price,
		Quantity:   item.EffectiveQuantity(),
		Reasoning:  sel.Reasoning,
		MatchScore: sel.MatchScore,
	}
}
