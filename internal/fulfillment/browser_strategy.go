package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sevigo/cartpilot/internal/browser"
	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
)

const errNoItemsAdded = "Failed to add any items to cart"

var errNoAddButton = errors.New("could not find Add to Cart button")

// BrowserStrategy fills a cart by driving the retailer storefront. Every job
// gets its own browser session.
type BrowserStrategy struct {
	sessions      browser.Factory
	selector      core.ProductSelector
	events        core.EventLogger
	profile       *Profile
	maxCandidates int
	pause         pauseFunc
	logger        *slog.Logger
}

func NewBrowserStrategy(sessions browser.Factory, selector core.ProductSelector, events core.EventLogger,
	profile *Profile, cfg config.FulfillmentConfig, logger *slog.Logger) *BrowserStrategy {
	if sessions == nil {
		panic("browser session factory cannot be nil")
	}
	if selector == nil {
		panic("product selector cannot be nil")
	}
	if events == nil {
		panic("event logger cannot be nil")
	}
	if profile == nil {
		panic("locator profile cannot be nil")
	}
	return &BrowserStrategy{
		sessions:      sessions,
		selector:      selector,
		events:        events,
		profile:       profile,
		maxCandidates: cfg.MaxCandidates,
		pause:         randomPause(cfg.DelayMin, cfg.DelayMax),
		logger:        logger.With("component", "browser_strategy"),
	}
}

func (s *BrowserStrategy) Name() string { return StrategyBrowser }

// CreateCart adds every item it can and returns a share link for the cart.
// Launch or home page failures are returned as errors.
func (s *BrowserStrategy) CreateCart(ctx context.Context, req core.CartRequest) (*core.CartResult, error) {
	session, err := s.sessions.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.logger.Warn("failed to close browser session", "job_id", req.JobID, "error", err)
		}
	}()

	if err := session.Navigate(ctx, s.profile.HomeURL); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.profile.Retailer, err)
	}
	s.pause(ctx)

	result := &core.CartResult{}
	for _, item := range req.Items {
		product, ok := s.addItem(ctx, session, req, item)
		if !ok {
			continue
		}
		result.ItemsAdded++
		result.SelectedProducts = append(result.SelectedProducts, product)
	}

	if result.ItemsAdded == 0 {
		result.ErrorMessage = errNoItemsAdded
		return result, nil
	}

	result.ShareURL = s.shareLink(ctx, session, req.JobID)
	result.Success = true
	return result, nil
}

func (s *BrowserStrategy) addItem(ctx context.Context, session browser.Session, req core.CartRequest, item core.Item) (core.SelectedProduct, bool) {
	s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Searching for %s", item.Name))

	candidates, err := s.search(ctx, session, item.Name)
	if err != nil {
		s.events.Append(req.JobID, core.LogWarning, fmt.Sprintf("Search failed for %s: %v", item.Name, err))
		return core.SelectedProduct{}, false
	}
	if len(candidates) == 0 {
		s.events.Append(req.JobID, core.LogWarning, fmt.Sprintf("No results found for %s", item.Name))
		return core.SelectedProduct{}, false
	}
	s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Found %d products for %s", len(candidates), item.Name))

	sel := selection(ctx, s.selector, s.events, req.JobID, item, candidates, req.Preferences)
	quantity := item.EffectiveQuantity()

	s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Adding %s (qty %d) to cart", sel.SelectedProduct.Title, quantity))
	if err := s.addToCart(ctx, session, req.JobID, sel.SelectedProduct, quantity); err != nil {
		s.events.Append(req.JobID, core.LogWarning, fmt.Sprintf("Failed to add %s: %v", item.Name, err))
		return core.SelectedProduct{}, false
	}
	s.events.Append(req.JobID, core.LogInfo, fmt.Sprintf("Added %s to cart", sel.SelectedProduct.Title))
	return selectedProduct(item, sel), true
}

// search types query into the storefront search box, falling back to the
// search results URL when no search box can be driven.
func (s *BrowserStrategy) search(ctx context.Context, session browser.Session, query string) ([]core.Candidate, error) {
	typed := false
	for _, loc := range s.profile.SearchInput {
		if err := session.SendKeys(ctx, loc, query, true); err == nil {
			typed = true
			break
		}
	}
	if !typed {
		if err := session.Navigate(ctx, s.profile.SearchPageURL(query)); err != nil {
			return nil, err
		}
	}
	s.pause(ctx)

	html, err := session.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return s.profile.ExtractCandidates(html, s.maxCandidates)
}

func (s *BrowserStrategy) addToCart(ctx context.Context, session browser.Session, jobID string, product core.Candidate, quantity int) error {
	if product.URL != "" {
		if err := session.Navigate(ctx, product.URL); err != nil {
			return err
		}
	} else if err := session.Click(ctx, productLinkLocator(product.Title)); err != nil {
		return fmt.Errorf("could not open product page: %w", err)
	}
	s.pause(ctx)

	added := false
	for _, loc := range s.profile.AddToCart {
		err := session.Click(ctx, loc)
		if err == nil {
			added = true
			break
		}
		if !errors.Is(err, browser.ErrNotFound) {
			s.logger.Debug("add-to-cart locator failed", "locator", loc.String(), "error", err)
		}
	}
	if !added {
		return errNoAddButton
	}
	s.pause(ctx)

	if quantity > 1 && !s.setQuantity(ctx, session, quantity) {
		s.events.Append(jobID, core.LogWarning, fmt.Sprintf("Could not set quantity %d for %s", quantity, product.Title))
	}
	return nil
}

func (s *BrowserStrategy) setQuantity(ctx context.Context, session browser.Session, quantity int) bool {
	value := strconv.Itoa(quantity)
	for _, loc := range s.profile.Quantity {
		var err error
		if strings.HasPrefix(loc.Query, "select") {
			err = session.SetValue(ctx, loc, value)
		} else {
			err = session.SendKeys(ctx, loc, value, false)
		}
		if err == nil {
			s.pause(ctx)
			return true
		}
	}
	return false
}

// shareLink opens the cart and asks the storefront for a share link. Without
// one, the cart page URL is used.
func (s *BrowserStrategy) shareLink(ctx context.Context, session browser.Session, jobID string) string {
	s.events.Append(jobID, core.LogInfo, "Creating shareable cart link")

	if err := session.Navigate(ctx, s.profile.CartURL); err != nil {
		s.logger.Warn("failed to open cart page", "job_id", jobID, "error", err)
	}
	s.pause(ctx)

	for _, button := range s.profile.ShareButton {
		if err := session.Click(ctx, button); err != nil {
			continue
		}
		s.pause(ctx)
		for _, loc := range s.profile.ShareURL {
			if link, err := session.Read(ctx, loc); err == nil && strings.TrimSpace(link) != "" {
				return strings.TrimSpace(link)
			}
		}
	}

	s.events.Append(jobID, core.LogWarning, "Share button not found, using direct cart URL")
	link, err := session.Location(ctx)
	if err != nil || link == "" {
		return s.profile.CartURL
	}
	return link
}

// productLinkLocator finds a link whose text starts like title, for result
// cards that carry no href.
func productLinkLocator(title string) browser.Locator {
	prefix := title
	if r := []rune(title); len(r) > 30 {
		prefix = string(r[:30])
	}
	return browser.Locator{
		Name:  "product link",
		Query: fmt.Sprintf(`//a[contains(normalize-space(.), %s)]`, xpathLiteral(prefix)),
		By:    browser.ByXPath,
	}
}

// xpathLiteral quotes s for use in an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `'"'`)
		}
		quoted = append(quoted, `"`+p+`"`)
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
