// Package handler holds the gin handlers behind the API routes.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/gin-gonic/gin"
)

// Scraper is the subset of *scraper.Scraper the handlers need.
type Scraper interface {
	Scrape(ctx context.Context, rawURL string) (models.ExtractionResult, error)
}

// ScrapeRequest is the body of POST /api/v1/scrape.
type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// ErrorResponse is returned for every non-200 answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type"`
}

// Scrape returns a handler for POST /api/v1/scrape. A successful scrape answers
// 200 with the extraction result even when every product field is null.
func Scrape(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: err.Error(),
				Type:  "invalid_input",
			})
			return
		}

		result, err := sc.Scrape(c.Request.Context(), req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("scrape request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
	}
	c.JSON(status, ErrorResponse{
		Error: err.Error(),
		Type:  scraper.ErrorType(err),
	})
}

// mapErrorToStatus translates scraper errors to HTTP status codes.
func mapErrorToStatus(err error) int {
	var invalid *scraper.InvalidURLError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
