package tasks

import (
	"time"

	"vodcrawler/internal/platform/redis"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeCrawlRun = "crawler:run"
	QueueDefault     = "default"
)

type Client struct{ c *asynq.Client }

func New(r *redis.Service) *Client { return &Client{c: asynq.NewClient(r.AsynqRedisOpt())} }

func (t *Client) Close() error { return t.c.Close() }

// EnqueueCrawlRun queues one batch run. A run already queued or in flight
// makes the call fail with asynq.ErrDuplicateTask until runFor elapses
// or the task finishes.
func (t *Client) EnqueueCrawlRun(runFor time.Duration) error {
	task := asynq.NewTask(TaskTypeCrawlRun, nil)
	_, err := t.c.Enqueue(task, crawlRunOptions(runFor)...)
	return err
}

// crawlRunOptions sets the task timeout to runFor as well, otherwise asynq
// cancels the handler after its 30 minute default.
func crawlRunOptions(runFor time.Duration) []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(0),
		asynq.Unique(runFor),
		asynq.Timeout(runFor),
	}
}
