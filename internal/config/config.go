package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCatalogURLs is the built-in catalog used when no catalog file is configured.
var DefaultCatalogURLs = []string{
	"https://vieon.vn/cuoc-ruot-duoi-tai-cuc-dia.html",
}

type Config struct {
	AppEnv        string
	HTTPAddr      string
	RedisAddr     string
	RedisPassword string

	MongoURL        string
	MongoDatabase   string
	MongoCollection string

	CatalogFile   string
	SourcePrefix  string
	CatalogURLs   []string
	Locale        string
	FetchTimeout  time.Duration
	PaceDelay     time.Duration
	MaxErrors     int
	RespectRobots bool

	DuplicatePolicy   string
	ListCacheTTL      time.Duration
	WorkerConcurrency int
}

// Catalog is the on-disk list of detail pages to crawl.
type Catalog struct {
	Source string   `yaml:"source"`
	URLs   []string `yaml:"urls"`
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func Load() Config {
	cfg := Config{
		AppEnv:        getenv("APP_ENV", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MongoURL:        getenv("MONGO_URL", "mongodb://127.0.0.1:27017"),
		MongoDatabase:   getenv("MONGO_DATABASE", "vod_db"),
		MongoCollection: getenv("MONGO_COLLECTION", "vods"),

		CatalogFile:   os.Getenv("CATALOG_FILE"),
		SourcePrefix:  getenv("SOURCE_PREFIX", "https://vieon.vn/"),
		Locale:        getenv("CRAWL_LOCALE", "vi"),
		FetchTimeout:  getenvDuration("FETCH_TIMEOUT", 30*time.Second),
		PaceDelay:     getenvDuration("PACE_DELAY", time.Second),
		MaxErrors:     getenvInt("MAX_ERRORS", 100),
		RespectRobots: getenvBool("RESPECT_ROBOTS", false),

		DuplicatePolicy:   getenv("DUPLICATE_POLICY", "append"),
		ListCacheTTL:      getenvDuration("LIST_CACHE_TTL", 120*time.Second),
		WorkerConcurrency: getenvInt("WORKER_CONCURRENCY", 1),
	}
	if cfg.RedisAddr == "" {
		panic(fmt.Errorf("REDIS_ADDR is required"))
	}
	if cfg.MongoURL == "" {
		panic(fmt.Errorf("MONGO_URL is required"))
	}

	cfg.CatalogURLs = DefaultCatalogURLs
	if cfg.CatalogFile != "" {
		cat, err := LoadCatalog(cfg.CatalogFile)
		if err != nil {
			panic(fmt.Errorf("load catalog: %w", err))
		}
		cfg.CatalogURLs = cat.URLs
		if cat.Source != "" {
			cfg.SourcePrefix = cat.Source
		}
	}
	return cfg
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cat.URLs) == 0 {
		return nil, fmt.Errorf("catalog %s lists no urls", path)
	}
	return &cat, nil
}
