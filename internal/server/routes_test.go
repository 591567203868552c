package server

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"vodcrawler/internal/core/crawler"
	"vodcrawler/internal/core/vod"
	"vodcrawler/internal/health"
	"vodcrawler/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type noopLauncher struct{}

func (noopLauncher) EnqueueCrawlRun(time.Duration) error { return nil }

type zeroCounter struct{}

func (zeroCounter) Count(context.Context) (int64, error) { return 0, nil }

func TestRegisterRoutes(t *testing.T) {
	orch := crawler.NewOrchestrator(nil, crawler.NewNormalizer(crawler.LocaleVI), nil, crawler.Options{URLs: []string{"https://vieon.vn/a.html"}})
	app := fiber.New()
	hh := RegisterRoutes(app, Dependencies{
		Crawl:   crawler.NewHandler(orch, noopLauncher{}, zeroCounter{}, crawler.HandlerOptions{SourcePrefix: "https://vieon.vn/"}),
		Catalog: vod.NewHandler(nil),
		Metrics: metrics.New(),
		Checks:  map[string]health.Checker{"noop": func(context.Context) error { return nil }},
	})
	hh.SetReady()

	for _, path := range []string{"/v1/health", "/metrics", "/api/v1/crawl/status", "/api/v1/crawl/stats"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}
