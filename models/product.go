// Package models defines data structures for the scraper.
package models

import "time"

// ExtractionResult is the best-effort product data derived from one page fetch.
// A nil field means the page exposed no signal for it; adapters never emit empty strings.
// Currency is set if and only if Price is set.
type ExtractionResult struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	ImageURL    *string  `json:"imageUrl"`
	SourceURL   string   `json:"sourceUrl"`
}

// HasPrice reports whether a price and its currency were found.
func (r ExtractionResult) HasPrice() bool {
	return r.Price != nil && r.Currency != nil
}

// Record is one line of batch output.
type Record struct {
	ExtractionResult
	Input     string    `json:"input"`
	Adapter   string    `json:"adapter,omitempty"`
	Error     string    `json:"error,omitempty"`
	ScrapedAt time.Time `json:"scrapedAt"`
}

// BatchResult holds the overall result of a batch scrape.
type BatchResult struct {
	StartTime      time.Time
	EndTime        time.Time
	TotalCount     int
	SuccessCount   int
	ErrorCount     int
	DuplicateCount int
	FailedURLs     []string
	ErrorsByType   map[string]int
}

// Duration returns the wall-clock time the batch took.
func (r *BatchResult) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
