// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// JobFunc is a unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a gocron scheduler with a shared cancellation context.
type Scheduler struct {
	gocron gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler.
func New() (*Scheduler, error) {
	gocronScheduler, err := gocron.NewScheduler(gocron.WithLogger(newLogger()))
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{gocron: gocronScheduler, ctx: ctx, cancel: cancel}, nil
}

// AddIntervalJob runs fn every interval, starting immediately. Runs never overlap.
func (s *Scheduler) AddIntervalJob(name string, every time.Duration, fn JobFunc) error {
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	_, err := s.gocron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			started := time.Now()
			if errRun := fn(s.ctx); errRun != nil {
				log.WithError(errRun).WithField("job", name).Warn("scheduler: job failed")
				return
			}
			log.WithFields(log.Fields{"job": name, "took": time.Since(started)}).Debug("scheduler: job finished")
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("add job %s: %w", name, err)
	}
	return nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	log.WithField("jobs", len(s.gocron.Jobs())).Info("scheduler: starting")
	s.gocron.Start()
}

// Stop cancels running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.gocron.Shutdown()
}
