package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// initJob wires the background refresh sweep: every live session's
// collection is re-fetched so long-running admin tabs do not drift from the
// backend. A zero interval disables the job.
func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	if loc == nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc))

	interval := a.appConfig.System.RefreshInterval
	if interval <= 0 {
		zap.L().Info("collection refresh job disabled")
		return
	}

	spec := fmt.Sprintf("@every %ds", interval)
	_, err := a.sched.AddFunc(spec, func() {
		start := time.Now()
		a.registry.RefreshAll(context.Background())
		zap.L().Debug("collection refresh sweep done",
			zap.Duration("elapsed", time.Since(start)))
	})
	if err != nil {
		zap.L().Error("failed to schedule refresh job", zap.Error(err))
	}
}

// StartBackgroundJobs starts the scheduler and stops it when ctx ends.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.sched.Start()
	zap.L().Info("background jobs started",
		zap.Int("refresh_interval", a.appConfig.System.RefreshInterval))
	go func() {
		<-ctx.Done()
		a.sched.Stop()
	}()
}
