package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRunAndItemCounters(t *testing.T) {
	m := New()

	m.RunStarted()
	require.Equal(t, 1.0, testutil.ToFloat64(m.runActive))

	m.ItemProcessed(120 * time.Millisecond)
	m.ItemFailed("crawl")
	m.ItemFailed("crawl")
	m.RunFinished("completed", 3*time.Second)

	require.Equal(t, 0.0, testutil.ToFloat64(m.runActive))
	require.Equal(t, 1.0, testutil.ToFloat64(m.itemsTotal.WithLabelValues("processed", "")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.itemsTotal.WithLabelValues("failed", "crawl")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("completed")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/metrics", m.Handler())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "200")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "http_requests_total")
	require.Contains(t, string(body), "vodcrawler_run_active")
}
