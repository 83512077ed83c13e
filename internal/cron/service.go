package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/ovenly-backend/pkg/logger"
	"github.com/angelmondragon/ovenly-backend/pkg/metrics"
)

const defaultInterval = 10 * time.Minute

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs every registered job once per interval while holding Lock.
// Jobs run sequentially in registration order; one failing job does not stop
// the rest of the cycle.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Logger == nil:
		return nil, errors.New("logger required")
	case params.Lock == nil:
		return nil, errors.New("lock required")
	}
	s := &Service{
		logg:     params.Logger,
		registry: params.Registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		interval: params.Interval,
	}
	if s.registry == nil {
		s.registry = &Registry{byName: map[string]Job{}}
	}
	if s.interval <= 0 {
		s.interval = defaultInterval
	}
	return s, nil
}

// Run starts a cycle immediately and then every interval, measured from the
// end of the previous cycle, until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron.stopped")
			return ctx.Err()
		case <-timer.C:
			if err := s.runCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logg.Error(ctx, "cron.cycle_failed", err)
			}
			timer.Reset(s.interval)
		}
	}
}

// RunOnce runs a single named job under the lock and returns its error.
func (s *Service) RunOnce(ctx context.Context, name string) error {
	job, ok := s.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown cron job %q", name)
	}
	var jobErr error
	held, err := s.withLock(ctx, func() error {
		jobErr = s.runJob(ctx, job)
		return nil
	})
	if err != nil {
		return err
	}
	if !held {
		return fmt.Errorf("cron lock held elsewhere; %q not run", name)
	}
	return jobErr
}

func (s *Service) runCycle(ctx context.Context) error {
	var failed int
	started := time.Now()
	held, err := s.withLock(ctx, func() error {
		for _, job := range s.registry.Jobs() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.runJob(ctx, job) != nil {
				failed++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !held {
		s.logg.Info(ctx, "cron.cycle_skipped_lock_held")
		return nil
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"failed_jobs": failed,
		"duration_ms": time.Since(started).Milliseconds(),
	}), "cron.cycle_done")
	return nil
}

// withLock reports held=false without calling fn when another worker owns the
// lock. The lock is released even when ctx has been canceled.
func (s *Service) withLock(ctx context.Context, fn func() error) (held bool, err error) {
	held, err = s.lock.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("lock acquire: %w", err)
	}
	if !held {
		return false, nil
	}
	defer func() {
		if relErr := s.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			s.logg.Error(ctx, "cron.lock_release_failed", relErr)
		}
	}()
	return true, fn()
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	started := time.Now()
	err := job.Run(jobCtx)
	elapsed := time.Since(started)
	s.metrics.ObserveRun(job.Name(), elapsed, err)

	jobCtx = s.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "cron.job_failed", err)
		return err
	}
	s.logg.Info(jobCtx, "cron.job_done")
	return nil
}
