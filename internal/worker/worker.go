package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/usecase/commands"
)

// Job is one periodic pass.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives each job on its own ticker until stopped.
type Runner struct {
	jobs   []Job
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRunner(logger *slog.Logger, jobs ...Job) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{jobs: jobs, logger: logger}
}

// NewBookingRunner wires the sweeps, the orphan retry pass and the outbox dispatcher.
func NewBookingRunner(
	cfg config.WorkerConfig,
	sweeps commands.SweepCommands,
	payments commands.PaymentCommands,
	notifications commands.NotificationCommands,
	logger *slog.Logger,
) *Runner {
	return NewRunner(logger,
		Job{
			Name:     "expire_holds",
			Interval: cfg.ExpiryInterval,
			Run: func(ctx context.Context) error {
				_, err := sweeps.ExpireOverdue(ctx, cfg.BatchSize)
				return err
			},
		},
		Job{
			Name:     "complete_events",
			Interval: cfg.CompletionInterval,
			Run: func(ctx context.Context) error {
				if _, err := sweeps.CompletePastEvents(ctx); err != nil {
					return err
				}
				_, err := sweeps.PurgeExpiredKeys(ctx)
				return err
			},
		},
		Job{
			Name:     "retry_orphans",
			Interval: cfg.OrphanRetryInterval,
			Run: func(ctx context.Context) error {
				_, err := payments.RetryOrphans(ctx, int64(cfg.BatchSize))
				return err
			},
		},
		Job{
			Name:     "dispatch_notifications",
			Interval: cfg.DispatchInterval,
			Run: func(ctx context.Context) error {
				_, err := notifications.Dispatch(ctx, cfg.BatchSize)
				return err
			},
		},
	)
}

func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	for _, job := range r.jobs {
		if job.Interval <= 0 {
			r.logger.Warn("worker job disabled", "job", job.Name)
			continue
		}
		r.wg.Add(1)
		go func(job Job) {
			defer r.wg.Done()
			r.loop(ctx, job)
		}(job)
	}
}

// Stop cancels every loop and waits for in-flight passes, or for ctx to end.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	r.logger.Info("worker started", "job", job.Name, "interval", job.Interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("worker stopped", "job", job.Name)
			return
		case <-ticker.C:
			r.tick(ctx, job)
		}
	}
}

func (r *Runner) tick(ctx context.Context, job Job) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("worker pass panicked", "job", job.Name, "panic", p)
		}
	}()

	if err := job.Run(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("worker pass failed", "job", job.Name, "error", err.Error())
	}
}
