package server

import (
	"vodcrawler/internal/core/crawler"
	"vodcrawler/internal/core/vod"
	"vodcrawler/internal/health"
	"vodcrawler/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Crawl   *crawler.Handler
	Catalog *vod.Handler
	Metrics *metrics.Metrics
	Checks  map[string]health.Checker
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
		app.Get("/metrics", d.Metrics.Handler())
	}

	healthHandler := health.NewHealthHandler(d.Checks)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/api/v1")
	d.Crawl.Register(api)
	d.Catalog.Register(api)

	return healthHandler
}
