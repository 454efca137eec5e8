// Package scraper turns a user-supplied URL into product data: it normalises
// the input, fetches the page once, routes it to a site adapter and extracts.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/extractor"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/parser"
	"github.com/aluiziolira/go-scrape-products/pipeline"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// Scraper wires a fetcher to the adapter registry. It holds no per-request state
// and is safe for concurrent use.
type Scraper struct {
	cfg      *config.Config
	fetcher  Fetcher
	registry *extractor.Registry
	Metrics  *Metrics
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithFetcher replaces the colly-backed fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) {
		s.fetcher = f
	}
}

// WithRegistry replaces the default adapter registry.
func WithRegistry(r *extractor.Registry) Option {
	return func(s *Scraper) {
		s.registry = r
	}
}

// WithMetrics replaces the metrics bundle. A nil bundle disables metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Scraper) {
		s.Metrics = m
	}
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config, opts ...Option) (*Scraper, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Scraper{
		cfg:      cfg,
		fetcher:  NewFetcher(cfg),
		registry: extractor.DefaultRegistry(),
		Metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		return nil, errors.New("fetcher cannot be nil")
	}
	if s.registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	return s, nil
}

// Scrape extracts product data from rawURL. It returns *InvalidURLError before any
// request, *FetchError when the page cannot be retrieved and *ExtractionError when
// the adapter fails. A page with no product signals is not an error.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (models.ExtractionResult, error) {
	result, _, err := s.scrape(ctx, rawURL)
	return result, err
}

func (s *Scraper) scrape(ctx context.Context, rawURL string) (models.ExtractionResult, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	target, err := parser.NormalizeURL(rawURL)
	if err != nil {
		err = &InvalidURLError{Input: rawURL, Err: err}
		s.observe(start, rawURL, "", err)
		return models.ExtractionResult{}, "", err
	}

	markup, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			err = &FetchError{URL: target, Err: classifyError(err, 0)}
		}
		s.observe(start, target, "", err)
		return models.ExtractionResult{}, "", err
	}

	adapter := s.registry.Select(target)
	s.Metrics.IncAdapter(adapter.Name())

	result, err := extract(adapter, markup, target)
	if err != nil {
		s.observe(start, target, adapter.Name(), err)
		return models.ExtractionResult{}, adapter.Name(), err
	}

	s.countFields(result)
	s.observe(start, target, adapter.Name(), nil)
	return result, adapter.Name(), nil
}

func extract(adapter extractor.Adapter, markup, target string) (result models.ExtractionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = models.ExtractionResult{}
			err = &ExtractionError{URL: target, Adapter: adapter.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	result, err = adapter.Extract(markup, target)
	if err != nil {
		return models.ExtractionResult{}, &ExtractionError{URL: target, Adapter: adapter.Name(), Err: err}
	}
	result.SourceURL = target
	return result, nil
}

func (s *Scraper) observe(start time.Time, target, adapter string, err error) {
	elapsed := time.Since(start)
	s.Metrics.ObserveDuration(elapsed)

	if err == nil {
		s.Metrics.IncRequest("success")
		slog.Debug("scrape complete",
			slog.String("url", target),
			slog.String("adapter", adapter),
			slog.Duration("duration", elapsed),
		)
		return
	}

	category := errorTypeLabel(err)
	s.Metrics.IncRequest("failure")
	s.Metrics.IncError(category)
	slog.Warn("scrape failed",
		slog.String("url", target),
		slog.String("category", category),
		slog.Any("error", err),
	)
}

func (s *Scraper) countFields(result models.ExtractionResult) {
	if result.Title != nil {
		s.Metrics.IncField("title")
	}
	if result.Description != nil {
		s.Metrics.IncField("description")
	}
	if result.HasPrice() {
		s.Metrics.IncField("price")
	}
	if result.ImageURL != nil {
		s.Metrics.IncField("image")
	}
}

// Run scrapes every URL received on urls with at most cfg.Parallelism requests in
// flight and streams one record per distinct input through p. Inputs that
// normalise to an already-seen URL are skipped. Individual scrape failures are
// recorded, not returned; Run only fails when the pipeline rejects a record.
func (s *Scraper) Run(ctx context.Context, urls <-chan string, p *pipeline.Pipeline) (*models.BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	seen, err := lru.New[string, struct{}](s.cfg.DedupeMaxSize)
	if err != nil {
		return nil, fmt.Errorf("create dedupe cache: %w", err)
	}

	result := &models.BatchResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)

feed:
	for {
		select {
		case <-gctx.Done():
			break feed
		case raw, ok := <-urls:
			if !ok {
				break feed
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}

			key := raw
			if normalized, err := parser.NormalizeURL(raw); err == nil {
				key = normalized
			}
			if found, _ := seen.ContainsOrAdd(key, struct{}{}); found {
				mu.Lock()
				result.DuplicateCount++
				mu.Unlock()
				slog.Debug("skipping duplicate url", slog.String("url", key))
				continue
			}

			g.Go(func() error {
				record, scrapeErr := s.scrapeRecord(gctx, raw)

				mu.Lock()
				result.TotalCount++
				if scrapeErr == nil {
					result.SuccessCount++
				} else {
					result.ErrorCount++
					result.FailedURLs = append(result.FailedURLs, raw)
					result.ErrorsByType[errorTypeLabel(scrapeErr)]++
				}
				mu.Unlock()

				if err := p.Process(record); err != nil {
					return fmt.Errorf("process %s: %w", raw, err)
				}
				s.Metrics.IncItems()
				return nil
			})
		}
	}

	err = g.Wait()
	result.EndTime = time.Now()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return result, err
}

func (s *Scraper) scrapeRecord(ctx context.Context, raw string) (*models.Record, error) {
	res, adapter, err := s.scrape(ctx, raw)
	record := &models.Record{
		ExtractionResult: res,
		Input:            raw,
		Adapter:          adapter,
		ScrapedAt:        time.Now().UTC(),
	}
	if err != nil {
		record.Error = err.Error()
		if record.SourceURL == "" {
			if normalized, nerr := parser.NormalizeURL(raw); nerr == nil {
				record.SourceURL = normalized
			}
		}
	}
	return record, err
}

// Adapters lists the adapter names in routing order.
func (s *Scraper) Adapters() []string {
	return s.registry.Names()
}
