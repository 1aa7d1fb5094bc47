// Package catalog talks to the retailer's product catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sevigo/cartpilot/internal/config"
	"github.com/sevigo/cartpilot/internal/core"
)

var (
	ErrUnauthorized = errors.New("catalog API rejected credentials")
	ErrUnavailable  = errors.New("catalog API unavailable")
)

// Client searches the catalog. It is safe for concurrent use.
type Client struct {
	baseURL     string
	cartBaseURL string
	apiKey      string
	publisherID string
	signer      *Signer
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient builds a catalog client. When a consumer id and key path are
// configured, requests are RSA signed in addition to carrying the API key.
func NewClient(cfg config.CatalogConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		cartBaseURL: strings.TrimRight(cfg.CartBaseURL, "/"),
		apiKey:      cfg.APIKey,
		publisherID: cfg.PublisherID,
		httpClient:  httpClient,
		logger:      logger.With("component", "catalog"),
	}
	if c.cartBaseURL == "" {
		c.cartBaseURL = "https://walmart.com"
	}

	if cfg.ConsumerID != "" && cfg.PrivateKeyPath != "" {
		signer, err := NewSigner(cfg.ConsumerID, cfg.KeyVersion, cfg.PrivateKeyPath)
		if err != nil {
			return nil, err
		}
		c.signer = signer
	}
	return c, nil
}

type searchResponse struct {
	Items []catalogItem `json:"items"`
}

type catalogItem struct {
	ItemID                   flexString `json:"itemId"`
	Name                     string     `json:"name"`
	SalePrice                float64    `json:"salePrice"`
	ThumbnailImage           string     `json:"thumbnailImage"`
	CustomerRating           flexFloat  `json:"customerRating"`
	NumReviews               int        `json:"numReviews"`
	BrandName                string     `json:"brandName"`
	Size                     string     `json:"size"`
	ShortDescription         string     `json:"shortDescription"`
	ProductURL               string     `json:"productUrl"`
	IsTwoDayShippingEligible bool       `json:"isTwoDayShippingEligible"`
	FreeShippingOver35       bool       `json:"freeShippingOver35Dollars"`
	Clearance                bool       `json:"clearance"`
	BestMarketplacePrice     *struct {
		Clearance bool `json:"clearance"`
	} `json:"bestMarketplacePrice"`
}

// flexString accepts identifiers encoded either as JSON strings or numbers.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = flexString(strings.Trim(string(b), `"`))
	if *f == "null" {
		*f = ""
	}
	return nil
}

// flexFloat accepts numbers encoded either as JSON numbers or strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// Search returns at most limit candidates for query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]core.Candidate, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("numItems", strconv.Itoa(limit))
	params.Set("format", "json")
	if c.publisherID != "" {
		params.Set("publisherId", c.publisherID)
	}
	if c.apiKey != "" {
		params.Set("apiKey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.signer != nil {
		if err := c.signer.Sign(req); err != nil {
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	candidates := make([]core.Candidate, 0, min(len(body.Items), limit))
	for _, item := range body.Items {
		if len(candidates) == limit {
			break
		}
		if item.ItemID == "" || item.Name == "" {
			continue
		}
		candidates = append(candidates, item.toCandidate())
	}

	c.logger.Debug("catalog search finished", "query", query, "results", len(candidates))
	return candidates, nil
}

func (i catalogItem) toCandidate() core.Candidate {
	cand := core.Candidate{
		ItemID:      string(i.ItemID),
		Title:       i.Name,
		Brand:       i.BrandName,
		Size:        i.Size,
		Description: i.ShortDescription,
		ImageURL:    i.ThumbnailImage,
		URL:         i.ProductURL,
		Badges:      badgesFor(i),
	}
	if i.SalePrice > 0 {
		cand.Price = fmt.Sprintf("$%.2f", i.SalePrice)
	}
	if i.CustomerRating > 0 {
		cand.Rating = strconv.FormatFloat(float64(i.CustomerRating), 'f', -1, 64)
	}
	return cand
}

func badgesFor(i catalogItem) []string {
	var badges []string
	if strings.Contains(strings.ToLower(i.Name), "organic") {
		badges = append(badges, "Organic")
	}
	if i.Clearance || (i.BestMarketplacePrice != nil && i.BestMarketplacePrice.Clearance) {
		badges = append(badges, "Clearance")
	}
	if i.IsTwoDayShippingEligible {
		badges = append(badges, "2-Day Shipping")
	}
	if i.FreeShippingOver35 {
		badges = append(badges, "Free Shipping")
	}
	if i.CustomerRating >= 4.5 {
		badges = append(badges, "Highly Rated")
	}
	return badges
}

// CartLine is one resolved item of a deep-link cart.
type CartLine struct {
	ItemID   string
	Quantity int
}

// CartURL builds the add-to-cart deep link for lines, in order.
func (c *Client) CartURL(lines []CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		q := l.Quantity
		if q < 1 {
			q = 1
		}
		parts = append(parts, l.ItemID+":"+strconv.Itoa(q))
	}
	return c.cartBaseURL + "/cart/addToCart?items=" + strings.Join(parts, ",")
}
