package workers

import (
	"context"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/service"
)

type Workers struct {
	workers []Worker
}

// NewWorkers aggregates the given workers. Run starts them in order.
func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Stop shuts down every worker that supports it, in reverse start order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		if s, ok := w.workers[i].(Stopper); ok {
			s.Stop()
		}
	}
}

// syncJobWorker adapts the periodic sync job to the Worker interface.
type syncJobWorker struct {
	ctx      context.Context
	job      service.SyncJob
	interval time.Duration
}

// NewSyncJobWorker wraps the background sync job so it can run under the
// Workers aggregate.
func NewSyncJobWorker(ctx context.Context, job service.SyncJob, interval time.Duration) Worker {
	return &syncJobWorker{ctx: ctx, job: job, interval: interval}
}

func (w *syncJobWorker) Run() {
	w.job.Start(w.ctx, w.interval)
}

func (w *syncJobWorker) Stop() {
	w.job.Stop()
}
