package worker

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Worker long running job
type Worker interface {
	Run(ctx context.Context) error
}

type OnWork func() error

// BaseJob cron driven job. Tick goes on the cron schedule; a tick is
// skipped while the previous one still runs.
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

// Run starts the cron schedule and blocks until ctx is done.
func (job *BaseJob) Run(ctx context.Context) error {
	job.Cron.Start()
	<-ctx.Done()

	job.Cron.Stop()
	return ctx.Err()
}

func (job *BaseJob) Tick() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true

	job.OnWork()

	job.IsRunning = false
}
