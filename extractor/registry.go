package extractor

import (
	"strings"

	"github.com/aluiziolira/go-scrape-products/parser"
)

// HostPredicate reports whether a lower-cased host belongs to an adapter.
type HostPredicate func(host string) bool

// HostContains matches hosts containing any marker, which tolerates country
// domains and subdomains (www.amazon.co.uk, smile.amazon.com).
func HostContains(markers ...string) HostPredicate {
	return func(host string) bool {
		for _, m := range markers {
			if strings.Contains(host, m) {
				return true
			}
		}
		return false
	}
}

type route struct {
	match   HostPredicate
	adapter Adapter
}

// Registry routes URLs to adapters in registration order, falling back to a
// default adapter. Register everything before sharing the registry between goroutines.
type Registry struct {
	routes   []route
	fallback Adapter
}

// NewRegistry returns an empty registry that always answers with fallback.
func NewRegistry(fallback Adapter) *Registry {
	return &Registry{fallback: fallback}
}

// DefaultRegistry wires the built-in retailers in priority order.
func DefaultRegistry() *Registry {
	r := NewRegistry(Generic())
	r.Register(HostContains("amazon."), Amazon())
	r.Register(HostContains("target.com"), Target())
	r.Register(HostContains("walmart."), Walmart())
	r.Register(HostContains("etsy.com"), Etsy())
	return r
}

// Register appends a route; earlier routes win.
func (r *Registry) Register(match HostPredicate, adapter Adapter) {
	r.routes = append(r.routes, route{match: match, adapter: adapter})
}

// Select returns the adapter for rawURL. It never fails.
func (r *Registry) Select(rawURL string) Adapter {
	host := parser.Host(rawURL)
	if host != "" {
		for _, rt := range r.routes {
			if rt.match(host) {
				return rt.adapter
			}
		}
	}
	return r.fallback
}

// Names lists the routed adapters in priority order followed by the fallback.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.routes)+1)
	for _, rt := range r.routes {
		names = append(names, rt.adapter.Name())
	}
	return append(names, r.fallback.Name())
}
