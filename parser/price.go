// Package parser holds the pure text helpers used by the extraction adapters:
// price/currency parsing and URL normalisation.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DefaultCurrency is assumed when an amount parses but no currency marker is present.
const DefaultCurrency = "USD"

// pricePattern maps one regular expression to the currency it implies.
// An empty currency means the currency is detected from the surrounding text.
type pricePattern struct {
	name      string
	re        *regexp.Regexp
	currency  string
	normalize func(string) string
}

// pricePatterns is evaluated in order against whitespace-free text; the first
// pattern whose amount parses wins.
var pricePatterns = []pricePattern{
	{
		name:      "dollar_prefix",
		re:        regexp.MustCompile(`\$((?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2})`),
		currency:  "USD",
		normalize: stripCommas,
	},
	{
		name:      "usd_suffix",
		re:        regexp.MustCompile(`(?i)((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)usd`),
		currency:  "USD",
		normalize: stripCommas,
	},
	{
		name:      "euro_prefix",
		re:        regexp.MustCompile(`€((?:\d{1,3}(?:\.\d{3})+|\d+)(?:[.,]\d{1,2})?)`),
		currency:  "EUR",
		normalize: normalizeGrouping,
	},
	{
		name:      "pound_prefix",
		re:        regexp.MustCompile(`£((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)`),
		currency:  "GBP",
		normalize: stripCommas,
	},
	{
		name:      "bare_amount",
		re:        regexp.MustCompile(`(\d+(?:[.,]\d+)*)`),
		normalize: normalizeGrouping,
	},
}

// currencySymbols is scanned in order, so multi-character markers come before "$".
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"US$", "USD"},
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"AU$", "AUD"},
	{"A$", "AUD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"₩", "KRW"},
}

var isoCodeRe = regexp.MustCompile(`(?:^|[^A-Za-z])(USD|EUR|GBP|CAD|AUD|NZD|JPY|CNY|INR|KRW|CHF|SEK|NOK|DKK|PLN|CZK|MXN|BRL)(?:[^A-Za-z]|$)`)

// ParsePrice extracts an amount and an ISO-4217 currency code from free text.
// ok is false when no pattern yields a finite amount.
func ParsePrice(text string) (amount float64, currency string, ok bool) {
	compact := stripSpace(text)
	if compact == "" {
		return 0, "", false
	}

	for _, p := range pricePatterns {
		m := p.re.FindStringSubmatch(compact)
		if m == nil {
			continue
		}
		value, parsed := parseFinite(p.normalize(m[1]))
		if !parsed {
			continue
		}
		code := p.currency
		if code == "" {
			code = DetectCurrency(text)
		}
		return value, code, true
	}
	return 0, "", false
}

// ParseAmount parses a machine-readable amount such as a meta tag's content.
func ParseAmount(text string) (float64, bool) {
	compact := stripSpace(text)
	if compact == "" {
		return 0, false
	}
	if !strings.Contains(compact, ",") {
		return parseFinite(compact)
	}
	return parseFinite(normalizeGrouping(compact))
}

// DetectCurrency scans text for an ISO code or currency symbol, falling back to DefaultCurrency.
func DetectCurrency(text string) string {
	if m := isoCodeRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, s := range currencySymbols {
		if strings.Contains(text, s.symbol) {
			return s.code
		}
	}
	return DefaultCurrency
}

// NormalizeCurrency upper-cases a three-letter code and reports whether it looks valid.
func NormalizeCurrency(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", false
		}
	}
	return code, true
}

func parseFinite(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// normalizeGrouping treats the last separator as decimal when one or two digits
// follow it; every other separator is a thousands separator.
func normalizeGrouping(s string) string {
	last := strings.LastIndexAny(s, ".,")
	if last < 0 {
		return s
	}
	frac := s[last+1:]
	whole := strings.NewReplacer(".", "", ",", "").Replace(s[:last])
	if len(frac) == 1 || len(frac) == 2 {
		return whole + "." + frac
	}
	return whole + frac
}
