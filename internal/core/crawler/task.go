package crawler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
)

// HandleRunTask runs one batch for a queued run task. A failed run is
// reported through the run status, not through the task result, so the
// uniqueness lock is released and a new run can be started right away.
func (o *Orchestrator) HandleRunTask(ctx context.Context, t *asynq.Task) error {
	if err := o.Run(ctx); err != nil {
		o.log.LogError("crawl run failed", err)
	}
	return nil
}

// RunDeadline bounds how long a single run may hold the queue: every url
// taking the full fetch timeout plus pacing, with a minute of slack.
func (o *Orchestrator) RunDeadline(fetchTimeout time.Duration) time.Duration {
	n := time.Duration(len(o.opts.URLs))
	return n*(fetchTimeout+o.opts.PaceDelay) + time.Minute
}
