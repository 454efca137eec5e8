package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/scraper"
)

type stubFetcher map[string]string

func (f stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if page, ok := f[url]; ok {
		return page, nil
	}
	return "", &scraper.FetchError{URL: url, StatusCode: http.StatusNotFound, Err: scraper.ErrNotFound{Err: errors.New("not found")}}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ServerMode = "test"

	pages := stubFetcher{
		"https://shop.example/widget": `<html><head>
<meta property="og:title" content="Widget">
<meta property="og:price:amount" content="9.99">
<meta property="og:price:currency" content="USD">
</head></html>`,
	}
	sc, err := scraper.NewScraper(cfg, scraper.WithFetcher(pages))
	if err != nil {
		t.Fatalf("new scraper: %v", err)
	}
	return NewRouter(sc, cfg, time.Now())
}

func TestRouterScrape(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantInBody string
	}{
		{name: "success", body: `{"url":"shop.example/widget"}`, wantStatus: http.StatusOK, wantInBody: `"title":"Widget"`},
		{name: "malformed json", body: `{"url":`, wantStatus: http.StatusBadRequest, wantInBody: `"invalid_input"`},
		{name: "missing url", body: `{}`, wantStatus: http.StatusBadRequest, wantInBody: `"invalid_input"`},
		{name: "invalid url", body: `{"url":"not a url"}`, wantStatus: http.StatusBadRequest, wantInBody: `"invalid_url"`},
		{name: "fetch failure", body: `{"url":"https://shop.example/gone"}`, wantStatus: http.StatusInternalServerError, wantInBody: `"not_found"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantInBody) {
				t.Fatalf("body %s does not contain %s", rec.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestRouterScrapeSuccessShape(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"url":"https://shop.example/widget"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["price"] != 9.99 || body["currency"] != "USD" || body["sourceUrl"] != "https://shop.example/widget" {
		t.Fatalf("unexpected body: %v", body)
	}
	if value, ok := body["description"]; !ok || value != nil {
		t.Fatalf("description should be null, got %v", value)
	}
	if value, ok := body["imageUrl"]; !ok || value != nil {
		t.Fatalf("imageUrl should be null, got %v", value)
	}
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"generic"`) {
		t.Fatalf("health should list adapters: %s", rec.Body.String())
	}

	scrape := httptest.NewRequest(http.MethodPost, "/api/v1/scrape", strings.NewReader(`{"url":"https://shop.example/widget"}`))
	scrape.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(httptest.NewRecorder(), scrape)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `scraper_requests_total{outcome="success"} 1`) {
		t.Fatalf("metrics missing success counter:\n%s", rec.Body.String())
	}
}
