package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry          *prometheus.Registry
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
	AdapterTotal      *prometheus.CounterVec
	FieldsTotal       *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	ItemsScrapedTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_requests_total",
			Help: "Total scrape invocations by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_request_duration_seconds",
			Help:    "End-to-end latency of a scrape, fetch included.",
			Buckets: prometheus.DefBuckets,
		},
	)
	adapters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_adapter_selected_total",
			Help: "Total pages routed to each extraction adapter.",
		},
		[]string{"adapter"},
	)
	fields := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_fields_extracted_total",
			Help: "Total non-empty fields extracted, by field.",
		},
		[]string{"field"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	itemsScraped := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_items_scraped_total",
			Help: "Total number of records sent to the output pipeline.",
		},
	)

	registry.MustRegister(requests, requestDuration, adapters, fields, errorsTotal, itemsScraped)

	return &Metrics{
		Registry:          registry,
		RequestsTotal:     requests,
		RequestDuration:   requestDuration,
		AdapterTotal:      adapters,
		FieldsTotal:       fields,
		ErrorsTotal:       errorsTotal,
		ItemsScrapedTotal: itemsScraped,
	}
}

// IncRequest increments the requests counter for an outcome.
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records a scrape duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncAdapter counts a routing decision.
func (m *Metrics) IncAdapter(name string) {
	if m == nil {
		return
	}
	m.AdapterTotal.WithLabelValues(name).Inc()
}

// IncField counts one extracted field.
func (m *Metrics) IncField(field string) {
	if m == nil {
		return
	}
	m.FieldsTotal.WithLabelValues(field).Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncItems increments the items scraped counter.
func (m *Metrics) IncItems() {
	if m == nil {
		return
	}
	m.ItemsScrapedTotal.Inc()
}
