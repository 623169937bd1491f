package commands

import (
	"context"
	"log/slog"
	"time"

	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/shared"
)

const (
	notificationBaseDelay = 10 * time.Second
	notificationMaxDelay  = 10 * time.Minute
	notificationLease     = 5 * time.Minute
)

type DispatchResult struct {
	Sent   int
	Failed int
	Retry  int
}

type NotificationCommands interface {
	Dispatch(ctx context.Context, limit int32) (*DispatchResult, error)
}

type notificationUseCaseImpl struct {
	uow        shared.UnitOfWork
	mailer     Mailer
	clock      clock.Clock
	maxRetries int32
}

func NewNotificationUseCase(uow shared.UnitOfWork, mailer Mailer, clk clock.Clock, maxRetries int32) NotificationCommands {
	return &notificationUseCaseImpl{
		uow:        uow,
		mailer:     mailer,
		clock:      clk,
		maxRetries: maxRetries,
	}
}

// Dispatch sends due outbox jobs. Jobs are leased in one short transaction,
// mailed outside it, and each result is recorded in its own transaction. A
// failed result write leaves the job leased, so it is not mailed again until
// the lease lapses.
func (uc *notificationUseCaseImpl) Dispatch(ctx context.Context, limit int32) (*DispatchResult, error) {
	now := uc.clock.Now()

	var jobs []shared.NotificationJob
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var cerr error
		jobs, cerr = tx.Notifications().ClaimDue(ctx, tx.DB(), now, now.Add(notificationLease), limit)
		return cerr
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	var (
		res      DispatchResult
		firstErr error
	)
	for _, job := range jobs {
		update := uc.deliver(ctx, job, now, &res)
		rerr := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			return tx.Notifications().UpdateJobStatus(ctx, tx.DB(), update)
		})
		if rerr != nil {
			slog.Error("failed to record notification result",
				"job_id", job.ID, "status", update.Status, "error", rerr.Error())
			if firstErr == nil {
				firstErr = rerr
			}
		}
	}
	if firstErr != nil {
		return nil, errs.Mark(firstErr, ErrDatabaseOperation)
	}
	return &res, nil
}

func (uc *notificationUseCaseImpl) deliver(ctx context.Context, job shared.NotificationJob, now time.Time, res *DispatchResult) shared.NotificationJobUpdate {
	update := shared.NotificationJobUpdate{
		ID:       job.ID,
		Status:   shared.JobStatusSent,
		Attempts: job.Attempts + 1,
		RunAt:    job.RunAt,
	}

	err := uc.mailer.Send(ctx, job.Topic, job.Payload)
	if err == nil {
		res.Sent++
		return update
	}

	msg := err.Error()
	update.LastError = &msg
	if update.Attempts >= uc.maxRetries {
		update.Status = shared.JobStatusFailed
		res.Failed++
		slog.Error("notification job failed permanently",
			"job_id", job.ID, "topic", job.Topic, "attempts", update.Attempts, "error", msg)
		return update
	}

	update.Status = shared.JobStatusQueued
	update.RunAt = now.Add(notificationBackoff(update.Attempts))
	res.Retry++
	slog.Warn("notification job will be retried",
		"job_id", job.ID, "topic", job.Topic, "attempts", update.Attempts, "error", msg)
	return update
}

func notificationBackoff(attempts int32) time.Duration {
	d := notificationBaseDelay
	for i := int32(1); i < attempts; i++ {
		d *= 2
		if d >= notificationMaxDelay {
			return notificationMaxDelay
		}
	}
	return d
}
