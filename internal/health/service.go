package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"vodcrawler/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Checker is a dependency probe, e.g. a redis or mongo ping.
type Checker func(ctx context.Context) error

// HealthHandler reports readiness and the state of each dependency.
type HealthHandler struct {
	log       *logger.Logger
	checks    map[string]Checker
	timeout   time.Duration
	startTime time.Time
	ready     atomic.Bool
}

func NewHealthHandler(checks map[string]Checker) *HealthHandler {
	return &HealthHandler{
		log:       logger.New("HealthCheck"),
		checks:    checks,
		timeout:   8 * time.Second,
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to receive traffic.
func (h *HealthHandler) SetReady() {
	h.ready.Store(true)
	h.log.LogInfof("ready for traffic after %v", time.Since(h.startTime).Round(time.Millisecond))
}

type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type OverallHealth struct {
	OverallStatus string                     `json:"overall_status"`
	Timestamp     string                     `json:"timestamp"`
	Ready         bool                       `json:"ready"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Components    map[string]ComponentStatus `json:"components"`
}

// HandleHealth probes every dependency in parallel. It answers 200 only when
// the app is ready and all probes pass.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		allOk    = true
		statuses = make(map[string]ComponentStatus, len(h.checks))
	)
	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check Checker) {
			defer wg.Done()
			st := ComponentStatus{Status: "ok"}
			if err := check(ctx); err != nil {
				st = ComponentStatus{Status: "error", Error: err.Error()}
				h.log.LogErrorf("health check failed for %s: %v", name, err)
			}
			mu.Lock()
			statuses[name] = st
			if st.Status != "ok" {
				allOk = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	ready := h.ready.Load()
	resp := OverallHealth{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Ready:         ready,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Components:    statuses,
	}
	switch {
	case allOk && ready:
		resp.OverallStatus = "ok"
		return c.Status(http.StatusOK).JSON(resp)
	case !ready:
		resp.OverallStatus = "starting"
	default:
		resp.OverallStatus = "error"
		h.log.LogWarnf("health degraded: %+v", statuses)
	}
	return c.Status(http.StatusServiceUnavailable).JSON(resp)
}

func HealthLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Rate limit exceeded"})
		},
	})
}
