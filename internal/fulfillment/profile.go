package fulfillment

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"gopkg.in/yaml.v3"

	"github.com/sevigo/cartpilot/internal/browser"
)

//go:embed profiles/*.yaml
var profileFS embed.FS

// Profile describes how to drive one retailer's storefront. Locator lists are
// ordered: the first one that works wins.
type Profile struct {
	Retailer    string            `yaml:"retailer"`
	HomeURL     string            `yaml:"home_url"`
	SearchURL   string            `yaml:"search_url"`
	CartURL     string            `yaml:"cart_url"`
	SearchInput []browser.Locator `yaml:"search_input"`
	ResultCards []string          `yaml:"result_cards"`
	Card        CardSelectors     `yaml:"card"`
	AddToCart   []browser.Locator `yaml:"add_to_cart"`
	Quantity    []browser.Locator `yaml:"quantity"`
	ShareButton []browser.Locator `yaml:"share_button"`
	ShareURL    []browser.Locator `yaml:"share_url"`
}

// CardSelectors are CSS selectors evaluated inside one result card.
type CardSelectors struct {
	ItemIDAttrs []string `yaml:"item_id_attrs"`
	Title       []string `yaml:"title"`
	Price       []string `yaml:"price"`
	Rating      []string `yaml:"rating"`
	Badges      []string `yaml:"badges"`
	Brand       []string `yaml:"brand"`
	Size        []string `yaml:"size"`
	Description []string `yaml:"description"`
	Image       []string `yaml:"image"`
	Link        []string `yaml:"link"`
}

// LoadProfile returns the locator profile for retailer. A non-empty path
// replaces the built-in profile.
func LoadProfile(retailer, path string) (*Profile, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = profileFS.ReadFile("profiles/" + retailer + ".yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read locator profile for %q: %w", retailer, err)
	}
	return ParseProfile(data)
}

func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse locator profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid locator profile: %w", err)
	}
	return &p, nil
}

func (p *Profile) Validate() error {
	var errs []error

	for name, u := range map[string]string{"home_url": p.HomeURL, "search_url": p.SearchURL, "cart_url": p.CartURL} {
		if u == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}
	if p.SearchURL != "" && !strings.Contains(p.SearchURL, "{query}") {
		errs = append(errs, errors.New("search_url must contain {query}"))
	}
	if len(p.ResultCards) == 0 || len(p.Card.Title) == 0 {
		errs = append(errs, errors.New("result_cards and card.title are required"))
	}
	if len(p.AddToCart) == 0 {
		errs = append(errs, errors.New("add_to_cart needs at least one locator"))
	}

	for _, group := range [][]browser.Locator{p.SearchInput, p.AddToCart, p.Quantity, p.ShareButton, p.ShareURL} {
		for _, loc := range group {
			if err := loc.Validate(); err != nil {
				errs = append(errs, err)
				continue
			}
			if loc.By != browser.ByXPath {
				errs = append(errs, compileCSS(loc.Query))
			}
		}
	}

	c := p.Card
	for _, group := range [][]string{p.ResultCards, c.Title, c.Price, c.Rating, c.Badges, c.Brand, c.Size, c.Description, c.Image, c.Link} {
		for _, sel := range group {
			errs = append(errs, compileCSS(sel))
		}
	}

	return errors.Join(errs...)
}

func compileCSS(sel string) error {
	if _, err := cascadia.Compile(sel); err != nil {
		return fmt.Errorf("invalid CSS selector %q: %w", sel, err)
	}
	return nil
}

// SearchPageURL is the results page for query, used when the search box
// cannot be driven.
func (p *Profile) SearchPageURL(query string) string {
	return strings.ReplaceAll(p.SearchURL, "{query}", url.QueryEscape(query))
}

// resolve makes href absolute against the storefront home page.
func (p *Profile) resolve(href string) string {
	if href == "" {
		return ""
	}
	base, err := url.Parse(p.HomeURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
