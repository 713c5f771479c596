// Package scheduler wires up the cron job that keeps the web service's
// in-memory and cached state tidy: idle feed pagers are swept, the tag facet
// cache is warmed, and expired sessions are purged.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper evicts feed pagers idle for longer than the given duration.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// TagRefresher reloads the cached tag facet list.
type TagRefresher interface {
	Refresh(ctx context.Context) error
}

// Purger deletes expired session records.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Pruner forgets rate-limit buckets for clients idle for the given duration.
type Pruner interface {
	Prune(idle time.Duration) int
}

// Jobs lists what a maintenance cycle touches. Nil members are skipped.
type Jobs struct {
	Pagers    Sweeper
	PagerIdle time.Duration
	Tags      TagRefresher
	Sessions  Purger // only set when sessions live in Postgres
	Limiter   Pruner
}

// Scheduler wraps robfig/cron and manages the maintenance loop.
type Scheduler struct {
	cron *cron.Cron
	jobs Jobs
	spec string // cron spec, e.g. "@every 5m"
	log  *slog.Logger
}

// New creates a Scheduler that fires every intervalMinutes minutes.
func New(jobs Jobs, intervalMinutes int) *Scheduler {
	logger := slog.Default().With("component", "scheduler")
	cronLog := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.SkipIfStillRunning(cronLog))),
		jobs: jobs,
		spec: fmt.Sprintf("@every %dm", intervalMinutes),
		log:  logger,
	}
}

// Start registers the job and starts the scheduler. It also runs one cycle
// immediately so the tag cache is warm before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runMaintenance(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", "spec", s.spec)

	go s.runMaintenance(ctx)

	return nil
}

// Stop shuts the scheduler down and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// runMaintenance performs one cycle. Each step is independent: a failure is
// logged and the remaining steps still run.
func (s *Scheduler) runMaintenance(ctx context.Context) {
	start := time.Now()

	if s.jobs.Pagers != nil {
		if n := s.jobs.Pagers.Sweep(s.jobs.PagerIdle); n > 0 {
			s.log.Info("swept idle feed pagers", "count", n)
		}
	}

	if s.jobs.Tags != nil {
		if err := s.jobs.Tags.Refresh(ctx); err != nil {
			s.log.Warn("tag cache refresh failed", "error", err)
		}
	}

	if s.jobs.Sessions != nil {
		n, err := s.jobs.Sessions.Purge(ctx)
		if err != nil {
			s.log.Warn("session purge failed", "error", err)
		} else if n > 0 {
			s.log.Info("purged expired sessions", "count", n)
		}
	}

	if s.jobs.Limiter != nil {
		s.jobs.Limiter.Prune(s.jobs.PagerIdle)
	}

	s.log.Debug("maintenance cycle complete", "elapsed", time.Since(start))
}
