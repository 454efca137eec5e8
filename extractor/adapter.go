// Package extractor turns fetched product pages into models.ExtractionResult values.
//
// Every adapter runs the same fallback chain per field: site-specific selectors
// first, then Open Graph and standard meta tags, first non-empty value wins.
// Adapters differ only in the Rules they are built from.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
)

// Adapter maps already-fetched markup to a product record. Implementations perform no I/O.
type Adapter interface {
	Name() string
	Extract(markup, sourceURL string) (models.ExtractionResult, error)
}

// ImageCandidate is an element whose attributes are tried in order for the primary image.
// Lazy-loading sites keep the real URL in a secondary attribute, so list those before src.
type ImageCandidate struct {
	Selector string
	Attrs    []string
}

// PriceCandidate is an element whose text (or Attr, when set) is handed to the price parser.
type PriceCandidate struct {
	Selector string
	Attr     string
}

// Rules lists the site-specific selectors tried before the shared fallbacks.
type Rules struct {
	Title       []string
	Description []string
	Image       []ImageCandidate
	Price       []PriceCandidate
}

// New builds an adapter that runs the shared fallback chain with rules tried first.
func New(name string, rules Rules) Adapter {
	return &siteAdapter{name: name, rules: rules}
}

type siteAdapter struct {
	name  string
	rules Rules
}

type textAttempt func(*page) string

type priceAttempt func(*page) (float64, string, bool)

func (a *siteAdapter) Name() string {
	return a.name
}

func (a *siteAdapter) Extract(markup, sourceURL string) (models.ExtractionResult, error) {
	result := models.ExtractionResult{SourceURL: sourceURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return result, fmt.Errorf("%s: parse markup: %w", a.name, err)
	}
	p := &page{doc: doc, sourceURL: sourceURL}

	result.Title = firstText(p, a.titleAttempts())
	result.Description = firstText(p, a.descriptionAttempts())
	result.ImageURL = firstText(p, a.imageAttempts())

	if amount, currency, ok := firstPrice(p, a.priceAttempts()); ok {
		result.Price = &amount
		result.Currency = &currency
	}
	return result, nil
}

func (a *siteAdapter) titleAttempts() []textAttempt {
	attempts := make([]textAttempt, 0, len(a.rules.Title)+2)
	for _, sel := range a.rules.Title {
		attempts = append(attempts, selectorText(sel))
	}
	return append(attempts, metaProperty("og:title"), documentTitle)
}

func (a *siteAdapter) descriptionAttempts() []textAttempt {
	attempts := make([]textAttempt, 0, len(a.rules.Description)+2)
	for _, sel := range a.rules.Description {
		attempts = append(attempts, selectorText(sel))
	}
	return append(attempts, metaProperty("og:description"), metaName("description"))
}

func (a *siteAdapter) imageAttempts() []textAttempt {
	attempts := make([]textAttempt, 0, len(a.rules.Image)+2)
	for _, c := range a.rules.Image {
		attempts = append(attempts, imageAttr(c))
	}
	return append(attempts, metaImage("og:image"), metaImage("og:image:secure_url"))
}

func (a *siteAdapter) priceAttempts() []priceAttempt {
	attempts := make([]priceAttempt, 0, len(a.rules.Price)+len(commonPriceCandidates)+4)
	for _, c := range a.rules.Price {
		attempts = append(attempts, parsedPrice(c))
	}
	attempts = append(attempts,
		metaPrice("product:price:amount", "product:price:currency"),
		metaPrice("og:price:amount", "og:price:currency"),
		microdataPrice,
		jsonLDPrice,
	)
	for _, c := range commonPriceCandidates {
		attempts = append(attempts, parsedPrice(c))
	}
	return attempts
}

func firstText(p *page, attempts []textAttempt) *string {
	for _, attempt := range attempts {
		if v := models.StringPtr(attempt(p)); v != nil {
			return v
		}
	}
	return nil
}

func firstPrice(p *page, attempts []priceAttempt) (float64, string, bool) {
	for _, attempt := range attempts {
		if amount, currency, ok := attempt(p); ok {
			return amount, currency, true
		}
	}
	return 0, "", false
}

func parsedPrice(c PriceCandidate) priceAttempt {
	return func(p *page) (float64, string, bool) {
		var raw string
		if c.Attr != "" {
			raw = p.attr(c.Selector, c.Attr)
		} else {
			raw = p.text(c.Selector)
		}
		if raw == "" {
			return 0, "", false
		}
		return parser.ParsePrice(raw)
	}
}
