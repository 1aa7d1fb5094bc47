package fulfillment

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sevigo/cartpilot/internal/core"
)

const maxCandidates = 10

// ExtractCandidates parses a search results page into at most limit
// candidates, in page order. Cards without a title are skipped.
func (p *Profile) ExtractCandidates(html string, limit int) ([]core.Candidate, error) {
	if limit <= 0 || limit > maxCandidates {
		limit = maxCandidates
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var cards *goquery.Selection
	for _, sel := range p.ResultCards {
		if found := doc.Find(sel); found.Length() > 0 {
			cards = found
			break
		}
	}
	if cards == nil {
		return nil, nil
	}

	candidates := make([]core.Candidate, 0, limit)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if c, ok := p.candidateFrom(card); ok {
			candidates = append(candidates, c)
		}
		return len(candidates) < limit
	})
	return candidates, nil
}

func (p *Profile) candidateFrom(card *goquery.Selection) (core.Candidate, bool) {
	sel := p.Card
	title := firstText(card, sel.Title)
	if title == "" {
		return core.Candidate{}, false
	}

	c := core.Candidate{
		ItemID:      firstAttr(card, sel.ItemIDAttrs),
		Title:       title,
		Price:       firstText(card, sel.Price),
		Brand:       firstText(card, sel.Brand),
		Size:        firstText(card, sel.Size),
		Description: firstText(card, sel.Description),
		Badges:      allTexts(card, sel.Badges),
	}

	if rating := first(card, sel.Rating); rating != nil {
		if label, ok := rating.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
			c.Rating = strings.TrimSpace(label)
		} else {
			c.Rating = cleanText(rating.Text())
		}
	}
	if img := first(card, sel.Image); img != nil {
		c.ImageURL, _ = img.Attr("src")
	}
	if link := first(card, sel.Link); link != nil {
		href, _ := link.Attr("href")
		c.URL = p.resolve(href)
	}
	return c, true
}

// first returns the first element matched by the earliest selector that
// matches anything inside card.
func first(card *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if found := card.Find(s); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

func firstText(card *goquery.Selection, selectors []string) string {
	if s := first(card, selectors); s != nil {
		return cleanText(s.Text())
	}
	return ""
}

func firstAttr(card *goquery.Selection, attrs []string) string {
	for _, a := range attrs {
		if v, ok := card.Attr(a); ok && v != "" {
			return v
		}
	}
	return ""
}

func allTexts(card *goquery.Selection, selectors []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range selectors {
		card.Find(s).Each(func(_ int, el *goquery.Selection) {
			text := cleanText(el.Text())
			if text != "" && !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		})
	}
	return out
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
