package worker

import (
	"context"
	"time"

	"vodcrawler/internal/logger"

	"github.com/hibiken/asynq"
)

type Mux struct {
	mux *asynq.ServeMux
	log *logger.Logger
}

// NewMux returns a task mux that logs every task it dispatches.
func NewMux() *Mux {
	m := &Mux{mux: asynq.NewServeMux(), log: logger.New("Worker")}
	m.mux.Use(m.logTask)
	return m
}

func (m *Mux) HandleFunc(t string, h func(ctx context.Context, task *asynq.Task) error) {
	m.mux.HandleFunc(t, h)
}

func (m *Mux) Mux() *asynq.ServeMux { return m.mux }

func (m *Mux) logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		start := time.Now()
		m.log.Info().Str("type", task.Type()).Msg("task start")
		err := next.ProcessTask(ctx, task)
		if err != nil {
			m.log.Error().Err(err).Str("type", task.Type()).Dur("took", time.Since(start)).Msg("task failed")
			return err
		}
		m.log.Info().Str("type", task.Type()).Dur("took", time.Since(start)).Msg("task done")
		return nil
	})
}
