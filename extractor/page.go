package extractor

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/parser"
)

// page wraps one parsed document and its source URL.
type page struct {
	doc       *goquery.Document
	sourceURL string
}

// text returns the collapsed text of the first element matching sel that has any.
func (p *page) text(sel string) string {
	return firstNonEmpty(p.doc.Find(sel))
}

func firstNonEmpty(sel *goquery.Selection) string {
	var out string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		out = cleanText(s.Text())
		return out == ""
	})
	return out
}

// attr returns the trimmed attribute of the first element matching sel that carries it.
func (p *page) attr(sel, name string) string {
	var out string
	p.doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr(name); ok {
			if v = strings.TrimSpace(v); v != "" {
				out = v
				return false
			}
		}
		return true
	})
	return out
}

func (p *page) meta(key, value string) string {
	return cleanText(p.attr(`meta[`+key+`="`+value+`"]`, "content"))
}

func selectorText(sel string) textAttempt {
	return func(p *page) string {
		return p.text(sel)
	}
}

// metaProperty reads an Open Graph tag; some templates put og:* in name= instead of property=.
func metaProperty(property string) textAttempt {
	return func(p *page) string {
		if v := p.meta("property", property); v != "" {
			return v
		}
		return p.meta("name", property)
	}
}

func metaName(name string) textAttempt {
	return func(p *page) string {
		return p.meta("name", name)
	}
}

func metaImage(property string) textAttempt {
	read := metaProperty(property)
	return func(p *page) string {
		return usableImage(p.sourceURL, read(p))
	}
}

// documentTitle prefers the head title; inline <svg><title> labels are never the page title.
func documentTitle(p *page) string {
	if v := p.text("head > title"); v != "" {
		return v
	}
	return firstNonEmpty(p.doc.Find("title").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered("svg").Length() == 0
	}))
}

func imageAttr(c ImageCandidate) textAttempt {
	return func(p *page) string {
		var out string
		p.doc.Find(c.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, name := range c.Attrs {
				v, ok := s.Attr(name)
				if !ok {
					continue
				}
				v = strings.TrimSpace(v)
				if strings.HasPrefix(v, "{") {
					v = largestDynamicImage(v)
				}
				if img := usableImage(p.sourceURL, v); img != "" {
					out = img
					return false
				}
			}
			return true
		})
		return out
	}
}

// usableImage drops empty values and inline data: placeholders and resolves the rest.
func usableImage(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return ""
	}
	return parser.ResolveURL(base, raw)
}

// largestDynamicImage picks the biggest entry from a {"url":[width,height]} map.
// Ties go to the lexically smallest URL so repeated runs agree.
func largestDynamicImage(raw string) string {
	var sizes map[string][]float64
	if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
		return ""
	}
	urls := make([]string, 0, len(sizes))
	for u := range sizes {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	best, bestArea := "", -1.0
	for _, u := range urls {
		area := 0.0
		if dims := sizes[u]; len(dims) == 2 {
			area = dims[0] * dims[1]
		}
		if area > bestArea {
			best, bestArea = u, area
		}
	}
	return best
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
