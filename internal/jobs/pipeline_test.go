package jobs

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/cartpilot/internal/catalog"
	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/fulfillment"
	"github.com/sevigo/cartpilot/internal/llm"
)

// newCatalogPipeline runs jobs through the catalog strategy against a fake
// catalog, with AI ranking switched off.
func newCatalogPipeline(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case "milk":
			_, _ = io.WriteString(w, `{"items": [
				{"itemId": 10450114, "name": "Great Value Whole Milk, 1 Gallon", "salePrice": 3.12},
				{"itemId": 47806928, "name": "Horizon Organic Whole Milk", "salePrice": 4.98}
			]}`)
		case "eggs":
			_, _ = io.WriteString(w, `{"items": [
				{"itemId": 145051970, "name": "Great Value Large White Eggs, 12 Count", "salePrice": 2.47},
				{"itemId": 172844767, "name": "Eggland's Best Large Eggs", "salePrice": 4.12}
			]}`)
		default:
			_, _ = io.WriteString(w, `{"items": []}`)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := catalog.NewClient(config.CatalogConfig{BaseURL: srv.URL, CartBaseURL: "https://walmart.com", APIKey: "k"}, srv.Client(), logger)
	require.NoError(t, err)

	return newHarnessWith(t, func(events core.EventLogger) core.CartStrategy {
		selector := llm.NewSelector(llm.SelectorConfig{Enabled: false}, nil, nil, logger)
		return fulfillment.NewCatalogStrategy(client, selector, events, config.FulfillmentConfig{MaxCandidates: 10}, logger)
	})
}

func TestPipeline_FallbackSelectionCompletesJob(t *testing.T) {
	h := newCatalogPipeline(t)

	h.submit(t, "job-a", core.Item{Name: "milk"}, core.Item{Name: "eggs"})
	job := h.waitFor(t, "job-a", core.StatusCompleted)

	assert.Equal(t, "https://walmart.com/cart/addToCart?items=10450114:1,145051970:1", job.ShareURL)
	assert.Empty(t, job.ErrorMessage)
	assert.NotNil(t, job.CompletedAt)
	require.Len(t, job.SelectedProducts, 2)
	for i, want := range []string{"Great Value Whole Milk, 1 Gallon", "Great Value Large White Eggs, 12 Count"} {
		assert.Equal(t, want, job.SelectedProducts[i].Selected)
		assert.Equal(t, "default/first result", job.SelectedProducts[i].Reasoning)
		assert.Zero(t, job.SelectedProducts[i].MatchScore)
	}

	entries := h.logs(t, "job-a")
	var infos []string
	for _, e := range entries {
		assert.Equal(t, core.LogInfo, e.Level, e.Message)
		infos = append(infos, e.Message)
	}
	assert.Contains(t, infos, "Selected Great Value Whole Milk, 1 Gallon for milk (first result)")
	assert.Contains(t, infos, "Selected Great Value Large White Eggs, 12 Count for eggs (first result)")
	assert.Equal(t, "Cart creation completed successfully with 2 items", infos[len(infos)-1])
}

func TestPipeline_NoResultsFailsJob(t *testing.T) {
	h := newCatalogPipeline(t)

	h.submit(t, "job-b", core.Item{Name: "nonexistent-item-xyz"})
	job := h.waitFor(t, "job-b", core.StatusFailed)

	assert.Equal(t, "Failed to find any items", job.ErrorMessage)
	assert.Empty(t, job.ShareURL)
	assert.Empty(t, job.SelectedProducts)
	assert.NotNil(t, job.CompletedAt)

	var warnings []string
	for _, e := range h.logs(t, "job-b") {
		if e.Level == core.LogWarning {
			warnings = append(warnings, e.Message)
		}
	}
	assert.Equal(t, []string{"No results found for nonexistent-item-xyz"}, warnings)

	h.waitIdle(t)
	user, err := h.store.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.JobsFailed)
	assert.Equal(t, 0, user.JobsSucceeded)
}
