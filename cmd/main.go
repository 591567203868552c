package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"vodcrawler/internal/config"
	"vodcrawler/internal/core/crawler"
	"vodcrawler/internal/core/vod"
	"vodcrawler/internal/health"
	"vodcrawler/internal/logger"
	"vodcrawler/internal/metrics"
	mgo "vodcrawler/internal/platform/mongo"
	rds "vodcrawler/internal/platform/redis"
	"vodcrawler/internal/platform/tasks"
	"vodcrawler/internal/server"
	"vodcrawler/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[vodcrawler] starting at %s (env=%s, urls=%d)\n", cfg.HTTPAddr, cfg.AppEnv, len(cfg.CatalogURLs))

	logr := logger.New("main")

	redisSvc, err := rds.New(rds.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	mongoSvc, err := mgo.New(mgo.Options{URI: cfg.MongoURL, Database: cfg.MongoDatabase})
	if err != nil {
		log.Fatal(err)
	}
	defer mongoSvc.Close()

	store := vod.NewStore(mongoSvc.Collection(cfg.MongoCollection))
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		logr.LogError("index bootstrap failed", err)
	}
	cancelIndex()
	catalog := vod.NewService(store, redisSvc, cfg.ListCacheTTL)

	locale, err := crawler.LocaleByName(cfg.Locale)
	if err != nil {
		log.Fatal(err)
	}
	dupes, err := crawler.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		log.Fatal(err)
	}
	promMetrics := metrics.New()
	fetcher := crawler.NewCollyFetcher(crawler.FetchOptions{Timeout: cfg.FetchTimeout, RespectRobots: cfg.RespectRobots})
	orch := crawler.NewOrchestrator(
		crawler.NewPageCrawler(fetcher, crawler.DefaultSelectors, locale),
		crawler.NewNormalizer(locale),
		catalog,
		crawler.Options{
			URLs:       cfg.CatalogURLs,
			PaceDelay:  cfg.PaceDelay,
			MaxErrors:  cfg.MaxErrors,
			Duplicates: dupes,
			Metrics:    promMetrics,
		},
	)

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	defer taskClient.Close()
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{tasks.QueueDefault: 1},
	})

	mux := worker.NewMux()
	mux.HandleFunc(tasks.TaskTypeCrawlRun, orch.HandleRunTask)
	if err := asynqServer.Start(mux.Mux()); err != nil {
		log.Fatalf("[worker] start: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName: "VOD Crawler",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	healthHandler := server.RegisterRoutes(app, server.Dependencies{
		Crawl: crawler.NewHandler(orch, taskClient, catalog, crawler.HandlerOptions{
			SourcePrefix: cfg.SourcePrefix,
			RunDeadline:  orch.RunDeadline(cfg.FetchTimeout),
		}),
		Catalog: vod.NewHandler(catalog),
		Metrics: promMetrics,
		Checks: map[string]health.Checker{
			"redis": redisSvc.HealthCheck,
			"mongo": mongoSvc.HealthCheck,
		},
	})
	healthHandler.SetReady()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
