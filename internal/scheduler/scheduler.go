// Package scheduler runs the periodic background jobs: Gmail sync and the
// stale-analysis sweep.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron    *cron.Cron
	chain   cron.Chain
	log     *zap.Logger
	timeout time.Duration
}

// New creates a Scheduler whose job runs are bounded by timeout.
func New(log *zap.Logger, timeout time.Duration) *Scheduler {
	adapter := cronLogger{log.Sugar()}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(adapter)),
		chain:   cron.NewChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		log:     log,
		timeout: timeout,
	}
}

// Add registers job under spec (e.g. "@every 15m"). With runNow the job also
// runs once immediately so state is fresh without waiting for the first tick.
// The immediate run and the ticks share one wrapper, so a tick that lands
// while the first run is still going is skipped.
func (s *Scheduler) Add(ctx context.Context, name, spec string, runNow bool, job Job) error {
	wrapped := s.chain.Then(cron.FuncJob(func() { s.run(ctx, name, job) }))
	if _, err := s.cron.AddJob(spec, wrapped); err != nil {
		return fmt.Errorf("cron.AddJob %s: %w", name, err)
	}
	s.log.Info("scheduled job", zap.String("job", name), zap.String("spec", spec))
	if runNow {
		go wrapped.Run()
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, name string, job Job) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Debug("scheduled job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
