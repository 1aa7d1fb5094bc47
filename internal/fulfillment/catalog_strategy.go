package fulfillment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/cartpilot/internal/catalog"
	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
)

const errNoItemsFound = "Failed to find any items"

// Catalog is the part of the retailer catalog API the strategy needs.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]core.Candidate, error)
	CartURL(lines []catalog.CartLine) string
}

// CatalogStrategy resolves items through the catalog API and returns an
// add-to-cart deep link instead of touching a real cart.
type CatalogStrategy struct {
	catalog       Catalog
	selector      core.ProductSelector
	events        core.EventLogger
	maxCandidates int
	logger        *slog.Logger
}

func NewCatalogStrategy(c Catalog, selector core.ProductSelector, events core.EventLogger,
	cfg config.FulfillmentConfig, logger *slog.Logger) *CatalogStrategy {
	if c == nil {
		panic("catalog client cannot be nil")
	}
	if selector == nil {
		panic("product selector cannot be nil")
	}
	if events == nil {
		panic("event logger cannot be nil")
	}
	return &CatalogStrategy{
		catalog:       c,
		selector:      selector,
		events:        events,
		maxCandidates: cfg.MaxCandidates,
		logger:        logger.With("component", "catalog_strategy"),
	}
}

func (s *CatalogStrategy) Name() string { return StrategyCatalog }

func (s *CatalogStrategy) CreateCart(ctx context.Context, req core.CartRequest) (*core.CartResult, error) {
	result := &core.CartResult{}
	lines := make([]catalog.CartLine, 0, len(req.Items))

	for _, item := range req.Items {
		s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Searching for %s", item.Name))

		candidates, err := s.catalog.Search(ctx, item.Name, s.maxCandidates)
		if err != nil {
			s.logger.Warn("catalog search failed", "job_id", req.JobID, "item", item.Name, "error", err)
			s.events.Append(req.JobID, core.LogWarning, fmt.Sprintf("Search failed for %s: %v", item.Name, err))
			continue
		}
		if len(candidates) == 0 {
			s.events.Append(req.JobID, core.LogWarning, fmt.Sprintf("No results found for %s", item.Name))
			continue
		}
		s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Found %d products for %s", len(candidates), item.Name))

		sel := selection(ctx, s.selector, s.events, req.JobID, item, candidates, req.Preferences)
		s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Adding %s (qty %d) to cart", sel.SelectedProduct.Title, item.EffectiveQuantity()))
		if sel.SelectedProduct.ItemID == "" {
			s.events.Append(req.JobID, core.LogWarning, fmt.Sprintf("Failed to add %s: selected product has no item id", item.Name))
			continue
		}

		lines = append(lines, catalog.CartLine{ItemID: sel.SelectedProduct.ItemID, Quantity: item.EffectiveQuantity()})
		result.SelectedProducts = append(result.SelectedProducts, selectedProduct(item, sel))
		s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Added %s to cart", sel.SelectedProduct.Title))
	}

	result.ItemsAdded = len(lines)
	if result.ItemsAdded == 0 {
		result.ErrorMessage = errNoItemsFound
		return result, nil
	}

	result.ShareURL = s.catalog.CartURL(lines)
	result.Success = true
	return result, nil
}
