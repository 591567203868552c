package crawler

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"vodcrawler/internal/core/vod"
	"vodcrawler/internal/logger"

	"github.com/google/uuid"
)

const DefaultMaxErrors = 100

// Crawler produces the raw record for one url.
type Crawler interface {
	Crawl(ctx context.Context, url string) (*RawRecord, error)
}

// Store persists normalized records.
type Store interface {
	Create(ctx context.Context, in vod.VodCreate) (*vod.Vod, error)
	UpsertByURL(ctx context.Context, in vod.VodCreate) (*vod.Vod, error)
}

// Recorder receives run and item outcomes.
type Recorder interface {
	RunStarted()
	RunFinished(state string, took time.Duration)
	ItemProcessed(took time.Duration)
	ItemFailed(reason string)
}

type DuplicatePolicy string

const (
	// DuplicateAppend inserts a new document on every run.
	DuplicateAppend DuplicatePolicy = "append"
	// DuplicateUpsert replaces the document crawled from the same url.
	DuplicateUpsert DuplicatePolicy = "upsert"
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case DuplicateAppend, "":
		return DuplicateAppend, nil
	case DuplicateUpsert:
		return DuplicateUpsert, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

type Options struct {
	URLs       []string
	PaceDelay  time.Duration
	MaxErrors  int
	Duplicates DuplicatePolicy
	Metrics    Recorder
}

// Orchestrator runs the configured urls through crawl, normalize and store
// one at a time. A failing url is counted and skipped; only a failure
// outside the per-url step ends the run early.
type Orchestrator struct {
	crawler    Crawler
	normalizer *Normalizer
	store      Store
	opts       Options
	metrics    Recorder
	log        *logger.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu            sync.RWMutex
	status        RunStatus
	lastCompleted *time.Time
}

func NewOrchestrator(c Crawler, n *Normalizer, s Store, opts Options) *Orchestrator {
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}
	if opts.Duplicates == "" {
		opts.Duplicates = DuplicateAppend
	}
	opts.URLs = append([]string(nil), opts.URLs...)
	rec := opts.Metrics
	if rec == nil {
		rec = nopRecorder{}
	}
	o := &Orchestrator{
		crawler:    c,
		normalizer: n,
		store:      s,
		opts:       opts,
		metrics:    rec,
		log:        logger.New("Orchestrator"),
		now:        time.Now,
		sleep:      sleepContext,
	}
	o.status = o.initialStatus()
	return o
}

func (o *Orchestrator) initialStatus() RunStatus {
	return RunStatus{TotalURLs: len(o.opts.URLs), Status: StateIdle, Errors: []string{}}
}

func (o *Orchestrator) TotalURLs() int { return len(o.opts.URLs) }

// Run processes every configured url in order and blocks until done. It
// returns an error only when the run ends in the failed state.
func (o *Orchestrator) Run(ctx context.Context) (err error) {
	started := o.now()
	runID := uuid.NewString()
	o.mu.Lock()
	o.status = o.initialStatus()
	o.status.RunID = runID
	o.status.Status = StateRunning
	o.status.StartTime = &started
	o.mu.Unlock()
	o.metrics.RunStarted()
	o.log.Info().Str("run_id", runID).Int("urls", len(o.opts.URLs)).Msg("crawl run started")

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("crawl run %s aborted: %v", runID, rec)
			o.log.Error().Str("run_id", runID).Str("panic", fmt.Sprint(rec)).Msg("crawl run aborted")
			o.finish(StateFailed, started)
		}
	}()

	for i, url := range o.opts.URLs {
		if cerr := ctx.Err(); cerr != nil {
			o.finish(StateFailed, started)
			return fmt.Errorf("crawl run %s cancelled: %w", runID, cerr)
		}
		o.processURL(ctx, url)
		if i == len(o.opts.URLs)-1 {
			break
		}
		if serr := o.sleep(ctx, o.opts.PaceDelay); serr != nil {
			o.finish(StateFailed, started)
			return fmt.Errorf("crawl run %s cancelled: %w", runID, serr)
		}
	}

	o.finish(StateCompleted, started)
	return nil
}

func (o *Orchestrator) finish(state RunState, started time.Time) {
	end := o.now()
	o.mu.Lock()
	o.status.Status = state
	o.status.EndTime = &end
	o.status.CurrentURL = nil
	if state == StateCompleted {
		o.lastCompleted = &end
	}
	s := o.status
	o.mu.Unlock()

	o.metrics.RunFinished(string(state), end.Sub(started))
	o.log.Info().
		Str("run_id", s.RunID).
		Str("status", string(state)).
		Int("processed", s.Processed).
		Int("failed", s.Failed).
		Dur("took", end.Sub(started)).
		Msg("crawl run finished")
}

// processURL records exactly one outcome for url, whatever happens inside.
func (o *Orchestrator) processURL(ctx context.Context, url string) {
	started := o.now()
	o.mu.Lock()
	current := url
	o.status.CurrentURL = &current
	o.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			o.log.Error().Str("url", url).Str("panic", fmt.Sprint(rec)).Msg("panic while processing url")
			o.recordFailure("panic", fmt.Sprintf("Error processing %s: %v", url, rec))
		}
	}()

	raw, err := o.crawler.Crawl(ctx, url)
	if err != nil || raw == nil {
		o.recordFailure("crawl", "Failed to crawl: "+url)
		return
	}
	rec, err := o.normalizer.Normalize(raw)
	if err != nil {
		o.log.LogError("normalize "+url, err)
		o.recordFailure("normalize", fmt.Sprintf("Error processing %s: %v", url, err))
		return
	}
	saved, err := o.persist(ctx, rec.ToCreate())
	if err != nil {
		o.log.LogError("store "+url, err)
		o.recordFailure("store", fmt.Sprintf("Error processing %s: %v", url, err))
		return
	}

	o.mu.Lock()
	o.status.Processed++
	o.mu.Unlock()
	o.metrics.ItemProcessed(o.now().Sub(started))
	o.log.Info().Str("url", url).Str("id", saved.ID.Hex()).Str("title", rec.Title).Msg("stored")
}

func (o *Orchestrator) persist(ctx context.Context, in vod.VodCreate) (*vod.Vod, error) {
	if o.opts.Duplicates == DuplicateUpsert {
		return o.store.UpsertByURL(ctx, in)
	}
	return o.store.Create(ctx, in)
}

// recordFailure counts a failed url. Messages past MaxErrors are dropped.
func (o *Orchestrator) recordFailure(reason, msg string) {
	o.mu.Lock()
	o.status.Failed++
	if len(o.status.Errors) < o.opts.MaxErrors {
		o.status.Errors = append(o.status.Errors, msg)
	}
	o.mu.Unlock()
	o.metrics.ItemFailed(reason)
}

// Status returns a copy of the run status that later updates do not touch.
func (o *Orchestrator) Status() RunStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s := o.status
	s.Errors = append([]string{}, o.status.Errors...)
	s.CurrentURL = copyPtr(o.status.CurrentURL)
	s.StartTime = copyPtr(o.status.StartTime)
	s.EndTime = copyPtr(o.status.EndTime)
	s.ProgressPercent = progress(s.Processed, s.Failed, s.TotalURLs)
	return s
}

// Reset puts the status back to idle. It does not stop a running Run.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.status = o.initialStatus()
	o.mu.Unlock()
	o.log.LogInfo("crawl status reset to idle")
}

// LastCompleted is the end time of the most recent completed run.
func (o *Orchestrator) LastCompleted() *time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return copyPtr(o.lastCompleted)
}

// TestSingleURL crawls and normalizes url without storing anything.
func (o *Orchestrator) TestSingleURL(ctx context.Context, url string) TestResult {
	raw, err := o.crawler.Crawl(ctx, url)
	if err != nil || raw == nil {
		return TestResult{Error: "Failed to extract data"}
	}
	rec, err := o.normalizer.Normalize(raw)
	if err != nil {
		return TestResult{RawData: raw, Error: err.Error()}
	}
	return TestResult{Success: true, RawData: raw, ProcessedData: rec}
}

func progress(processed, failed, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(processed+failed) / float64(total) * 100
	return math.Round(p*100) / 100
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopRecorder struct{}

func (nopRecorder) RunStarted()                       {}
func (nopRecorder) RunFinished(string, time.Duration) {}
func (nopRecorder) ItemProcessed(time.Duration)       {}
func (nopRecorder) ItemFailed(string)                 {}
