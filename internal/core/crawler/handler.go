package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vodcrawler/internal/logger"
	"vodcrawler/internal/utils/parser"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
)

// Launcher queues a batch run for the background worker.
type Launcher interface {
	EnqueueCrawlRun(uniqueFor time.Duration) error
}

// Counter reports how many catalog documents are stored.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type HandlerOptions struct {
	// SourcePrefix restricts test crawls to the catalog site.
	SourcePrefix string
	// RunDeadline is how long a queued run blocks new start requests.
	RunDeadline time.Duration
}

type Handler struct {
	orch     *Orchestrator
	launcher Launcher
	catalog  Counter
	opts     HandlerOptions
	log      *logger.Logger
}

func NewHandler(orch *Orchestrator, launcher Launcher, catalog Counter, opts HandlerOptions) *Handler {
	return &Handler{orch: orch, launcher: launcher, catalog: catalog, opts: opts, log: logger.New("CrawlHandler")}
}

func (h *Handler) Register(r fiber.Router) {
	r.Post("/crawl/start", h.HandleStart)
	r.Get("/crawl/status", h.HandleStatus)
	r.Get("/crawl/stats", h.HandleStats)
	r.Post("/crawl/test", h.HandleTest)
	r.Post("/crawl/reset", h.HandleReset)
}

func (h *Handler) HandleStart(c *fiber.Ctx) error {
	if h.orch.Status().Status == StateRunning {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Crawling is already running"})
	}
	if err := h.launcher.EnqueueCrawlRun(h.opts.RunDeadline); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Crawling is already running"})
		}
		h.log.LogError("enqueue crawl run", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start crawling process"})
	}
	total := h.orch.TotalURLs()
	h.log.LogInfof("queued crawl run over %d urls", total)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":    fmt.Sprintf("Started crawling %d movies", total),
		"total_urls": total,
		"status":     "started",
	})
}

func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.orch.Status())
}

func (h *Handler) HandleStats(c *fiber.Ctx) error {
	n, err := h.catalog.Count(c.UserContext())
	if err != nil {
		h.log.LogError("count catalog", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get crawl statistics"})
	}
	var lastUpdated interface{} = "never"
	if t := h.orch.LastCompleted(); t != nil {
		lastUpdated = t.UTC().Format(time.RFC3339)
	}
	return c.JSON(fiber.Map{
		"total_movies_in_db": n,
		"available_urls":     h.orch.TotalURLs(),
		"last_updated":       lastUpdated,
	})
}

type testQuery struct {
	URL string `form:"url"`
}

func (h *Handler) HandleTest(c *fiber.Ctx) error {
	var q testQuery
	if err := parser.ParseQuery(c, &q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if q.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "url is required"})
	}
	if !strings.HasPrefix(q.URL, h.opts.SourcePrefix) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "URL must start with " + h.opts.SourcePrefix})
	}
	res := h.orch.TestSingleURL(c.UserContext(), q.URL)
	if !res.Success {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Crawl test failed: " + res.Error})
	}
	return c.JSON(res)
}

func (h *Handler) HandleReset(c *fiber.Ctx) error {
	h.orch.Reset()
	return c.JSON(fiber.Map{"message": "Crawl status reset successfully"})
}
