package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/gin-gonic/gin"
)

type scraperFunc func(ctx context.Context, rawURL string) (models.ExtractionResult, error)

func (f scraperFunc) Scrape(ctx context.Context, rawURL string) (models.ExtractionResult, error) {
	return f(ctx, rawURL)
}

func TestScrapeHandlerErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "invalid url",
			err:        &scraper.InvalidURLError{Input: "x", Err: errors.New("bad")},
			wantStatus: http.StatusBadRequest,
			wantType:   "invalid_url",
		},
		{
			name:       "timeout",
			err:        &scraper.FetchError{URL: "https://a.example", Err: scraper.ErrTimeout{Err: context.DeadlineExceeded}},
			wantStatus: http.StatusInternalServerError,
			wantType:   "timeout",
		},
		{
			name:       "extraction",
			err:        &scraper.ExtractionError{URL: "https://a.example", Adapter: "amazon", Err: errors.New("panic: boom")},
			wantStatus: http.StatusInternalServerError,
			wantType:   "extraction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/scrape", Scrape(scraperFunc(func(ctx context.Context, rawURL string) (models.ExtractionResult, error) {
				return models.ExtractionResult{}, tt.err
			})))

			req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(`{"url":"https://a.example"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), `"type":"`+tt.wantType+`"`) {
				t.Fatalf("body %s missing type %s", rec.Body.String(), tt.wantType)
			}
		})
	}
}

func TestScrapeHandlerPassesURL(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got string
	r := gin.New()
	r.POST("/scrape", Scrape(scraperFunc(func(ctx context.Context, rawURL string) (models.ExtractionResult, error) {
		got = rawURL
		return models.ExtractionResult{SourceURL: "https://shop.example/x"}, nil
	})))

	req := httptest.NewRequest(http.MethodPost, "/scrape", strings.NewReader(`{"url":"shop.example/x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got != "shop.example/x" {
		t.Fatalf("scraper received %q", got)
	}
	if !strings.Contains(rec.Body.String(), `"title":null`) {
		t.Fatalf("absent title should serialise as null: %s", rec.Body.String())
	}
}
