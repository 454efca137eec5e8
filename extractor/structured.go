package extractor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/parser"
)

// commonPriceCandidates are class and attribute conventions reused across
// e-commerce templates (WooCommerce, Shopify, Magento and friends).
var commonPriceCandidates = []PriceCandidate{
	{Selector: "[data-price]", Attr: "data-price"},
	{Selector: ".product-price"},
	{Selector: ".price-current"},
	{Selector: ".current-price"},
	{Selector: ".sale-price"},
	{Selector: ".woocommerce-Price-amount"},
	{Selector: ".price .money"},
	{Selector: "#price"},
	{Selector: ".price"},
}

// metaPrice reads an amount/currency meta pair such as product:price:amount.
func metaPrice(amountProperty, currencyProperty string) priceAttempt {
	amountMeta := metaProperty(amountProperty)
	currencyMeta := metaProperty(currencyProperty)
	return func(p *page) (float64, string, bool) {
		return structuredPrice(amountMeta(p), currencyMeta(p))
	}
}

// microdataPrice reads schema.org microdata: itemprop="price" plus itemprop="priceCurrency".
func microdataPrice(p *page) (float64, string, bool) {
	amount := p.attr(`[itemprop="price"]`, "content")
	if amount == "" {
		amount = p.text(`[itemprop="price"]`)
	}
	if amount == "" {
		return 0, "", false
	}
	currency := p.attr(`[itemprop="priceCurrency"]`, "content")
	if currency == "" {
		currency = p.text(`[itemprop="priceCurrency"]`)
	}
	if _, ok := parser.ParseAmount(amount); !ok {
		// Text like "$12.98" rather than a bare number.
		value, code, ok := parser.ParsePrice(amount)
		if !ok {
			return 0, "", false
		}
		if normalized, valid := parser.NormalizeCurrency(currency); valid {
			code = normalized
		}
		return value, code, true
	}
	return structuredPrice(amount, currency)
}

// jsonLDPrice reads the first Product offer out of application/ld+json blocks.
func jsonLDPrice(p *page) (float64, string, bool) {
	var (
		amount, currency string
		found            bool
	)
	p.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		amount, currency, found = findProductOffer(data)
		return !found
	})
	if !found {
		return 0, "", false
	}
	return structuredPrice(amount, currency)
}

func structuredPrice(amount, currency string) (float64, string, bool) {
	if amount == "" {
		return 0, "", false
	}
	value, ok := parser.ParseAmount(amount)
	if !ok {
		return 0, "", false
	}
	code, valid := parser.NormalizeCurrency(currency)
	if !valid {
		code = parser.DetectCurrency(amount)
	}
	return value, code, true
}

func findProductOffer(node any) (string, string, bool) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			if amount, currency, ok := findProductOffer(item); ok {
				return amount, currency, true
			}
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			if amount, currency, ok := findProductOffer(graph); ok {
				return amount, currency, true
			}
		}
		if isProduct(v["@type"]) {
			return offerPrice(v["offers"])
		}
	}
	return "", "", false
}

func isProduct(t any) bool {
	switch v := t.(type) {
	case string:
		return strings.EqualFold(v, "Product")
	case []any:
		for _, item := range v {
			if isProduct(item) {
				return true
			}
		}
	}
	return false
}

func offerPrice(offers any) (string, string, bool) {
	switch v := offers.(type) {
	case []any:
		for _, item := range v {
			if amount, currency, ok := offerPrice(item); ok {
				return amount, currency, true
			}
		}
	case map[string]any:
		currency := scalarString(v["priceCurrency"])
		for _, key := range []string{"price", "lowPrice"} {
			if amount := scalarString(v[key]); amount != "" {
				return amount, currency, true
			}
		}
		if spec, ok := v["priceSpecification"]; ok {
			return offerPrice(spec)
		}
	}
	return "", "", false
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
