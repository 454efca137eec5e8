// Package api exposes the scraper over HTTP.
package api

import (
	"time"

	"github.com/aluiziolira/go-scrape-products/api/handler"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/scraper"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//
// Callers are expected to sit behind their own authentication.
func NewRouter(sc *scraper.Scraper, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.ServerMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(sc.Adapters(), startTime))
	v1.POST("/scrape", handler.Scrape(sc))

	if sc.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(sc.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	return r
}
