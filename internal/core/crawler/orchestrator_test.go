package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vodcrawler/internal/core/vod"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// scriptedCrawler returns a titled record for every url unless told to
// fail or panic on it.
type scriptedCrawler struct {
	mu     sync.Mutex
	fail   map[string]bool
	panics map[string]bool
	calls  []string
}

func (c *scriptedCrawler) Crawl(_ context.Context, url string) (*RawRecord, error) {
	c.mu.Lock()
	c.calls = append(c.calls, url)
	c.mu.Unlock()
	if c.panics[url] {
		panic("selector engine exploded")
	}
	if c.fail[url] {
		return nil, errors.New("timeout")
	}
	return &RawRecord{URL: url, Title: str("Movie " + url), Duration: str("45m")}, nil
}

type recordingStore struct {
	mu      sync.Mutex
	created []vod.VodCreate
	upserts []vod.VodCreate
	fail    map[string]bool
}

func (s *recordingStore) Create(_ context.Context, in vod.VodCreate) (*vod.Vod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[in.URL] {
		return nil, errors.New("write rejected")
	}
	s.created = append(s.created, in)
	return &vod.Vod{ID: primitive.NewObjectID(), Title: in.Title, URL: in.URL}, nil
}

func (s *recordingStore) UpsertByURL(_ context.Context, in vod.VodCreate) (*vod.Vod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, in)
	return &vod.Vod{ID: primitive.NewObjectID(), Title: in.Title, URL: in.URL}, nil
}

type countingRecorder struct {
	mu                         sync.Mutex
	started, processed, failed int
	finished                   []string
}

func (r *countingRecorder) RunStarted() { r.mu.Lock(); r.started++; r.mu.Unlock() }
func (r *countingRecorder) RunFinished(state string, _ time.Duration) {
	r.mu.Lock()
	r.finished = append(r.finished, state)
	r.mu.Unlock()
}
func (r *countingRecorder) ItemProcessed(time.Duration) { r.mu.Lock(); r.processed++; r.mu.Unlock() }
func (r *countingRecorder) ItemFailed(string)           { r.mu.Lock(); r.failed++; r.mu.Unlock() }

func newTestOrchestrator(c Crawler, s Store, opts Options) (*Orchestrator, *[]time.Duration) {
	o := NewOrchestrator(c, NewNormalizer(LocaleEN), s, opts)
	var sleeps []time.Duration
	o.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return o, &sleeps
}

func TestRunSingleURLSuccess(t *testing.T) {
	store := &recordingStore{}
	o, sleeps := newTestOrchestrator(&scriptedCrawler{}, store, Options{URLs: []string{"https://vieon.vn/a.html"}, PaceDelay: time.Second})

	require.NoError(t, o.Run(context.Background()))

	st := o.Status()
	require.Equal(t, StateCompleted, st.Status)
	require.Equal(t, 1, st.Processed)
	require.Equal(t, 0, st.Failed)
	require.Empty(t, st.Errors)
	require.Nil(t, st.CurrentURL)
	require.NotNil(t, st.StartTime)
	require.NotNil(t, st.EndTime)
	require.NotEmpty(t, st.RunID)
	require.Equal(t, 100.0, st.ProgressPercent)
	require.Empty(t, *sleeps)

	require.Len(t, store.created, 1)
	require.Equal(t, "Movie https://vieon.vn/a.html", store.created[0].Title)
	require.Equal(t, 45, *store.created[0].Duration)
}

func TestRunSingleURLCrawlFailure(t *testing.T) {
	url := "https://vieon.vn/a.html"
	o, _ := newTestOrchestrator(&scriptedCrawler{fail: map[string]bool{url: true}}, &recordingStore{}, Options{URLs: []string{url}})

	require.NoError(t, o.Run(context.Background()))

	st := o.Status()
	require.Equal(t, StateCompleted, st.Status)
	require.Equal(t, 0, st.Processed)
	require.Equal(t, 1, st.Failed)
	require.Equal(t, []string{"Failed to crawl: " + url}, st.Errors)
}

func TestRunIsolatesEveryKindOfItemFailure(t *testing.T) {
	urls := []string{
		"https://vieon.vn/ok.html",
		"https://vieon.vn/down.html",
		"https://vieon.vn/rejected.html",
		"https://vieon.vn/panics.html",
		"https://vieon.vn/ok2.html",
	}
	crawler := &scriptedCrawler{
		fail:   map[string]bool{urls[1]: true},
		panics: map[string]bool{urls[3]: true},
	}
	store := &recordingStore{fail: map[string]bool{urls[2]: true}}
	rec := &countingRecorder{}
	o, sleeps := newTestOrchestrator(crawler, store, Options{URLs: urls, PaceDelay: time.Second, Metrics: rec})

	require.NoError(t, o.Run(context.Background()))

	st := o.Status()
	require.Equal(t, StateCompleted, st.Status)
	require.Equal(t, 2, st.Processed)
	require.Equal(t, 3, st.Failed)
	require.Equal(t, len(urls), st.Processed+st.Failed)
	require.Equal(t, urls, crawler.calls)
	require.Equal(t, "Failed to crawl: "+urls[1], st.Errors[0])
	require.Equal(t, "Error processing "+urls[2]+": write rejected", st.Errors[1])
	require.Equal(t, "Error processing "+urls[3]+": selector engine exploded", st.Errors[2])
	require.Equal(t, []time.Duration{time.Second, time.Second, time.Second, time.Second}, *sleeps)

	require.Equal(t, 1, rec.started)
	require.Equal(t, 2, rec.processed)
	require.Equal(t, 3, rec.failed)
	require.Equal(t, []string{"completed"}, rec.finished)
}

func TestRunPanicOutsideItemFailsRun(t *testing.T) {
	urls := []string{"https://vieon.vn/a.html", "https://vieon.vn/b.html"}
	crawler := &scriptedCrawler{}
	o, _ := newTestOrchestrator(crawler, &recordingStore{}, Options{URLs: urls})
	o.sleep = func(context.Context, time.Duration) error { panic("clock broke") }

	err := o.Run(context.Background())

	require.Error(t, err)
	st := o.Status()
	require.Equal(t, StateFailed, st.Status)
	require.Equal(t, 1, st.Processed)
	require.NotNil(t, st.EndTime)
	require.Nil(t, st.CurrentURL)
	require.Equal(t, urls[:1], crawler.calls)
	require.Nil(t, o.LastCompleted())
}

func TestRunCancelledBetweenItems(t *testing.T) {
	urls := []string{"https://vieon.vn/a.html", "https://vieon.vn/b.html", "https://vieon.vn/c.html"}
	crawler := &scriptedCrawler{}
	o, _ := newTestOrchestrator(crawler, &recordingStore{}, Options{URLs: urls})
	ctx, cancel := context.WithCancel(context.Background())
	o.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	err := o.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StateFailed, o.Status().Status)
	require.Len(t, crawler.calls, 1)
}

func TestRunBoundsErrorList(t *testing.T) {
	urls := []string{"https://vieon.vn/a.html", "https://vieon.vn/b.html", "https://vieon.vn/c.html"}
	crawler := &scriptedCrawler{fail: map[string]bool{urls[0]: true, urls[1]: true, urls[2]: true}}
	o, _ := newTestOrchestrator(crawler, &recordingStore{}, Options{URLs: urls, MaxErrors: 2})

	require.NoError(t, o.Run(context.Background()))

	st := o.Status()
	require.Equal(t, 3, st.Failed)
	require.Equal(t, []string{"Failed to crawl: " + urls[0], "Failed to crawl: " + urls[1]}, st.Errors)
}

func TestRunUpsertPolicy(t *testing.T) {
	store := &recordingStore{}
	o, _ := newTestOrchestrator(&scriptedCrawler{}, store, Options{URLs: []string{"https://vieon.vn/a.html"}, Duplicates: DuplicateUpsert})

	require.NoError(t, o.Run(context.Background()))
	require.NoError(t, o.Run(context.Background()))

	require.Empty(t, store.created)
	require.Len(t, store.upserts, 2)
}

func TestRunRestartsCounters(t *testing.T) {
	url := "https://vieon.vn/a.html"
	o, _ := newTestOrchestrator(&scriptedCrawler{fail: map[string]bool{url: true}}, &recordingStore{}, Options{URLs: []string{url}})

	require.NoError(t, o.Run(context.Background()))
	first := o.Status()
	require.NoError(t, o.Run(context.Background()))
	second := o.Status()

	require.Equal(t, 1, second.Failed)
	require.Len(t, second.Errors, 1)
	require.NotEqual(t, first.RunID, second.RunID)
	require.NotNil(t, o.LastCompleted())
}

func TestStatusProgressPercent(t *testing.T) {
	o, _ := newTestOrchestrator(&scriptedCrawler{}, &recordingStore{}, Options{})
	o.status = RunStatus{TotalURLs: 4, Processed: 1, Failed: 1, Status: StateRunning}
	require.Equal(t, 50.0, o.Status().ProgressPercent)

	o.status = RunStatus{TotalURLs: 3, Processed: 1, Status: StateRunning}
	require.Equal(t, 33.33, o.Status().ProgressPercent)

	o.status = RunStatus{Status: StateIdle}
	require.Equal(t, 0.0, o.Status().ProgressPercent)
}

func TestStatusIsASnapshot(t *testing.T) {
	url := "https://vieon.vn/a.html"
	o, _ := newTestOrchestrator(&scriptedCrawler{fail: map[string]bool{url: true}}, &recordingStore{}, Options{URLs: []string{url}})
	require.NoError(t, o.Run(context.Background()))

	snap := o.Status()
	snap.Errors[0] = "mutated"
	*snap.EndTime = time.Time{}

	again := o.Status()
	require.Equal(t, "Failed to crawl: "+url, again.Errors[0])
	require.False(t, again.EndTime.IsZero())
}

func TestStatusReadableDuringRun(t *testing.T) {
	urls := make([]string, 20)
	for i := range urls {
		urls[i] = "https://vieon.vn/" + itoa(i) + ".html"
	}
	o := NewOrchestrator(&scriptedCrawler{}, NewNormalizer(LocaleEN), &recordingStore{}, Options{URLs: urls, PaceDelay: time.Millisecond})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = o.Run(context.Background())
	}()
	for {
		st := o.Status()
		require.LessOrEqual(t, st.Processed+st.Failed, st.TotalURLs)
		select {
		case <-done:
			require.Equal(t, StateCompleted, o.Status().Status)
			require.Equal(t, 20, o.Status().Processed)
			return
		default:
		}
	}
}

func TestReset(t *testing.T) {
	url := "https://vieon.vn/a.html"
	o, _ := newTestOrchestrator(&scriptedCrawler{fail: map[string]bool{url: true}}, &recordingStore{}, Options{URLs: []string{url}})
	require.NoError(t, o.Run(context.Background()))

	o.Reset()

	st := o.Status()
	require.Equal(t, StateIdle, st.Status)
	require.Equal(t, 1, st.TotalURLs)
	require.Zero(t, st.Failed)
	require.Empty(t, st.Errors)
	require.NotNil(t, st.Errors)
	require.Nil(t, st.StartTime)
}

func TestInitialStatus(t *testing.T) {
	o := NewOrchestrator(&scriptedCrawler{}, NewNormalizer(LocaleEN), &recordingStore{}, Options{URLs: []string{"a", "b"}})

	st := o.Status()
	require.Equal(t, StateIdle, st.Status)
	require.Equal(t, 2, st.TotalURLs)
	require.Nil(t, st.CurrentURL)
	require.Nil(t, o.LastCompleted())
}

func TestTestSingleURLOnEmptyPage(t *testing.T) {
	f := staticFetcher{bodies: map[string][]byte{detailURL: []byte("<html><body><p>Không có gì</p></body></html>")}}
	o := NewOrchestrator(NewPageCrawler(f, DefaultSelectors, LocaleVI), NewNormalizer(LocaleVI), &recordingStore{}, Options{})

	res := o.TestSingleURL(context.Background(), detailURL)

	require.True(t, res.Success)
	require.Equal(t, &RawRecord{URL: detailURL}, res.RawData)
	require.Equal(t, UnknownTitle, res.ProcessedData.Title)
	require.Equal(t, []string{}, res.ProcessedData.Genre)
	require.Equal(t, []string{}, res.ProcessedData.Actors)
	require.Nil(t, res.ProcessedData.Duration)
}

func TestTestSingleURLFailureDoesNotPersist(t *testing.T) {
	store := &recordingStore{}
	o := NewOrchestrator(NewPageCrawler(staticFetcher{err: errors.New("refused")}, DefaultSelectors, LocaleVI), NewNormalizer(LocaleVI), store, Options{})

	res := o.TestSingleURL(context.Background(), detailURL)

	require.False(t, res.Success)
	require.Equal(t, "Failed to extract data", res.Error)
	require.Nil(t, res.RawData)
	require.Empty(t, store.created)
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	require.Equal(t, DuplicateAppend, p)

	p, err = ParseDuplicatePolicy("upsert")
	require.NoError(t, err)
	require.Equal(t, DuplicateUpsert, p)

	_, err = ParseDuplicatePolicy("merge")
	require.Error(t, err)
}

func TestRunDeadline(t *testing.T) {
	o := NewOrchestrator(&scriptedCrawler{}, NewNormalizer(LocaleEN), &recordingStore{}, Options{URLs: []string{"a", "b"}, PaceDelay: time.Second})

	require.Equal(t, 2*31*time.Second+time.Minute, o.RunDeadline(30*time.Second))
}
