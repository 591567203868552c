package crawler

import (
	"context"
	"fmt"
	"time"

	"vodcrawler/internal/logger"

	"github.com/gocolly/colly"
)

const DefaultFetchTimeout = 30 * time.Second

// Fetcher returns the body of a successful GET.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type FetchOptions struct {
	Timeout       time.Duration
	RespectRobots bool
	// Profile overrides the randomly chosen browser headers.
	Profile *HeaderProfile
}

// CollyFetcher fetches single pages with a colly collector. Every call runs
// on a clone of the base collector so callbacks never leak between calls.
type CollyFetcher struct {
	base    *colly.Collector
	profile *HeaderProfile
	log     *logger.Logger
}

func NewCollyFetcher(opts FetchOptions) *CollyFetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(timeout)
	c.IgnoreRobotsTxt = !opts.RespectRobots
	return &CollyFetcher{base: c, profile: opts.Profile, log: logger.New("Fetcher")}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile := RandomProfile()
	if f.profile != nil {
		profile = *f.profile
	}

	c := f.base.Clone()
	var (
		body   []byte
		status int
	)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		profile.apply(r.Headers)
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	start := time.Now()
	if err := c.Visit(url); err != nil {
		if status != 0 {
			return nil, fmt.Errorf("fetch %s: status %d: %w", url, status, err)
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	c.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("fetch %s: no response", url)
	}
	f.log.LogDebugf("fetched %s (%d bytes) in %v", url, len(body), time.Since(start))
	return body, nil
}
