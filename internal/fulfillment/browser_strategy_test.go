package fulfillment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/cartpilot/internal/browser"
	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingEvents keeps appended entries in memory.
type recordingEvents struct {
	mu      sync.Mutex
	entries []core.LogEntry
}

func (r *recordingEvents) Append(jobID string, level core.LogLevel, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, core.LogEntry{JobID: jobID, Level: level, Message: message})
}

func (r *recordingEvents) Sync(context.Context) error { return nil }

func (r *recordingEvents) messages(level core.LogLevel) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// firstResult always picks the first candidate, like the selector with AI off.
type firstResult struct{ calls int }

func (f *firstResult) Select(_ context.Context, _ core.Item, candidates []core.Candidate, _ string) core.SelectionResult {
	f.calls++
	return core.SelectionResult{SelectedProduct: candidates[0], Reasoning: "default/first result", Warnings: []string{}, Fallback: true}
}

// fakeShop is a scripted storefront.
type fakeShop struct {
	results      map[string]string // query -> results page
	addable      map[string]bool   // product URL -> has a working add button
	addLocator   string            // the only add-to-cart locator that works
	searchBox    bool
	shareLink    string
	failNavigate bool
}

type fakeSession struct {
	shop      *fakeShop
	current   string
	query     string
	shareOpen bool
	cart      []string
	quantity  string
	closed    bool
}

type fakeFactory struct {
	shop     *fakeShop
	sessions []*fakeSession
	err      error
}

func (f *fakeFactory) NewSession(context.Context) (browser.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSession{shop: f.shop}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (s *fakeSession) Navigate(_ context.Context, u string) error {
	if s.shop.failNavigate {
		return errors.New("net::ERR_CONNECTION_RESET")
	}
	s.current = u
	s.shareOpen = false
	if parsed, err := url.Parse(u); err == nil && parsed.Path == "/search" {
		s.query = parsed.Query().Get("q")
	}
	return nil
}

func (s *fakeSession) WaitFor(context.Context, browser.Locator) error { return nil }

func (s *fakeSession) Exists(context.Context, browser.Locator) (bool, error) { return false, nil }

func (s *fakeSession) Click(_ context.Context, loc browser.Locator) error {
	switch {
	case loc.Name == s.shop.addLocator && s.shop.addable[s.current]:
		s.cart = append(s.cart, s.current)
		return nil
	case strings.HasPrefix(loc.Name, "share") && s.shop.shareLink != "" && s.current == "https://www.walmart.com/cart":
		s.shareOpen = true
		return nil
	}
	return browser.ErrNotFound
}

func (s *fakeSession) SendKeys(_ context.Context, loc browser.Locator, text string, submit bool) error {
	switch {
	case loc.Name == "search box" && s.shop.searchBox:
		if submit {
			s.current = "https://www.walmart.com/search?q=" + url.QueryEscape(text)
			s.query = text
		}
		return nil
	case loc.Name == "quantity input" && len(s.cart) > 0:
		s.quantity = text
		return nil
	}
	return browser.ErrNotFound
}

func (s *fakeSession) SetValue(context.Context, browser.Locator, string) error {
	return browser.ErrNotFound
}

func (s *fakeSession) Read(_ context.Context, loc browser.Locator) (string, error) {
	if s.shareOpen && loc.Attr == "value" {
		return s.shop.shareLink, nil
	}
	return "", browser.ErrNotFound
}

func (s *fakeSession) HTML(context.Context) (string, error) {
	if page, ok := s.shop.results[s.query]; ok && strings.Contains(s.current, "/search") {
		return page, nil
	}
	return "<html><body></body></html>", nil
}

func (s *fakeSession) Location(context.Context) (string, error) { return s.current, nil }

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func newGroceryShop() *fakeShop {
	return &fakeShop{
		searchBox:  true,
		addLocator: "add-to-cart button",
		results: map[string]string{
			"milk": resultsPage(
				fixtureProduct{id: "10450114", title: "Great Value Whole Milk, 1 Gallon", price: "$3.12"},
				fixtureProduct{id: "47806928", title: "Horizon Organic Whole Milk", price: "$4.98"},
			),
			"eggs": resultsPage(
				fixtureProduct{id: "145051970", title: "Great Value Large White Eggs, 12 Count", price: "$2.47"},
			),
		},
		addable: map[string]bool{
			"https://www.walmart.com/ip/item/10450114":  true,
			"https://www.walmart.com/ip/item/145051970": true,
		},
	}
}

func newTestBrowserStrategy(t *testing.T, factory browser.Factory, selector core.ProductSelector, events core.EventLogger) *BrowserStrategy {
	t.Helper()
	return NewBrowserStrategy(factory, selector, events, walmartProfile(t), config.FulfillmentConfig{MaxCandidates: 10}, testLogger())
}

func TestBrowserStrategy_AddsEveryItem(t *testing.T) {
	shop := newGroceryShop()
	shop.shareLink = "https://www.walmart.com/cart/share/abc123"
	factory := &fakeFactory{shop: shop}
	events := &recordingEvents{}
	selector := &firstResult{}

	s := newTestBrowserStrategy(t, factory, selector, events)
	got, err := s.CreateCart(context.Background(), core.CartRequest{
		JobID: "job-1",
		Items: []core.Item{{Name: "milk", Quantity: 2}, {Name: "eggs"}},
	})
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 2, got.ItemsAdded)
	assert.Equal(t, "https://www.walmart.com/cart/share/abc123", got.ShareURL)
	require.Len(t, got.SelectedProducts, 2)
	assert.Equal(t, core.SelectedProduct{
		Requested: "milk", Selected: "Great Value Whole Milk, 1 Gallon", ItemID: "10450114",
		Price: "$3.12", Quantity: 2, Reasoning: "default/first result",
	}, got.SelectedProducts[0])
	assert.Equal(t, 1, got.SelectedProducts[1].Quantity)
	assert.Equal(t, 2, selector.calls)

	require.Len(t, factory.sessions, 1)
	session := factory.sessions[0]
	assert.True(t, session.closed)
	assert.Equal(t, []string{"https://www.walmart.com/ip/item/10450114", "https://www.walmart.com/ip/item/145051970"}, session.cart)
	assert.Equal(t, "2", session.quantity)

	assert.Empty(t, events.messages(core.LogWarning))
	assert.Equal(t, []string{
		"Searching for milk",
		"Found 2 products for milk",
		"Selected Great Value Whole Milk, 1 Gallon for milk (first result)",
		"Adding Great Value Whole Milk, 1 Gallon (qty 2) to cart",
		"Added Great Value Whole Milk, 1 Gallon to cart",
		"Searching for eggs",
		"Found 1 products for eggs",
		"Selected Great Value Large White Eggs, 12 Count for eggs (first result)",
		"Adding Great Value Large White Eggs, 12 Count (qty 1) to cart",
		"Added Great Value Large White Eggs, 12 Count to cart",
		"Creating shareable cart link",
	}, events.messages(core.LogInfo))
}

func TestBrowserStrategy_FallsBackToCartURL(t *testing.T) {
	shop := newGroceryShop()
	shop.searchBox = false
	shop.addLocator = "add-to-cart text"
	factory := &fakeFactory{shop: shop}
	events := &recordingEvents{}

	s := newTestBrowserStrategy(t, factory, &firstResult{}, events)
	got, err := s.CreateCart(context.Background(), core.CartRequest{JobID: "job-2", Items: []core.Item{{Name: "milk"}}})
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 1, got.ItemsAdded)
	assert.Equal(t, "https://www.walmart.com/cart", got.ShareURL)
	assert.Equal(t, []string{"Share button not found, using direct cart URL"}, events.messages(core.LogWarning))
}

func TestBrowserStrategy_NoResults(t *testing.T) {
	factory := &fakeFactory{shop: newGroceryShop()}
	events := &recordingEvents{}
	selector := &firstResult{}

	s := newTestBrowserStrategy(t, factory, selector, events)
	got, err := s.CreateCart(context.Background(), core.CartRequest{
		JobID: "job-3",
		Items: []core.Item{{Name: "nonexistent-item-xyz"}},
	})
	require.NoError(t, err)

	assert.False(t, got.Success)
	assert.Equal(t, 0, got.ItemsAdded)
	assert.Equal(t, "Failed to add any items to cart", got.ErrorMessage)
	assert.Empty(t, got.ShareURL)
	assert.Equal(t, []string{"No results found for nonexistent-item-xyz"}, events.messages(core.LogWarning))
	assert.Zero(t, selector.calls)
	assert.True(t, factory.sessions[0].closed)
}

func TestBrowserStrategy_ItemFailureContinues(t *testing.T) {
	shop := newGroceryShop()
	delete(shop.addable, "https://www.walmart.com/ip/item/10450114")
	events := &recordingEvents{}

	s := newTestBrowserStrategy(t, &fakeFactory{shop: shop}, &firstResult{}, events)
	got, err := s.CreateCart(context.Background(), core.CartRequest{
		JobID: "job-4",
		Items: []core.Item{{Name: "milk"}, {Name: "eggs"}},
	})
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, 1, got.ItemsAdded)
	assert.Equal(t, "eggs", got.SelectedProducts[0].Requested)
	assert.Contains(t, events.messages(core.LogWarning), "Failed to add milk: could not find Add to Cart button")
}

func TestBrowserStrategy_SetupErrors(t *testing.T) {
	t.Run("launch failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		factory := mocks.NewMockFactory(ctrl)
		factory.EXPECT().NewSession(gomock.Any()).Return(nil, errors.New("chrome not found"))

		s := newTestBrowserStrategy(t, factory, &firstResult{}, &recordingEvents{})
		_, err := s.CreateCart(context.Background(), core.CartRequest{JobID: "job-5", Items: []core.Item{{Name: "milk"}}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chrome not found")
	})

	t.Run("home page unreachable closes the session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		session := mocks.NewMockSession(ctrl)
		factory := mocks.NewMockFactory(ctrl)
		factory.EXPECT().NewSession(gomock.Any()).Return(session, nil)
		session.EXPECT().Navigate(gomock.Any(), "https://www.walmart.com").Return(errors.New("timeout"))
		session.EXPECT().Close().Return(nil)

		s := newTestBrowserStrategy(t, factory, &firstResult{}, &recordingEvents{})
		_, err := s.CreateCart(context.Background(), core.CartRequest{JobID: "job-6", Items: []core.Item{{Name: "milk"}}})
		assert.Error(t, err)
	})
}
