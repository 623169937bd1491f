package commands

import (
	"context"
	"log/slog"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/infra"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingCommands interface {
	Cancel(ctx context.Context, bookingID uuid.UUID, actor user.Actor) (*queries.BookingView, error)
}

// SweepCommands are the periodic maintenance passes run by the workers.
type SweepCommands interface {
	ExpireOverdue(ctx context.Context, limit int32) (int, error)
	CompletePastEvents(ctx context.Context) (int64, error)
	PurgeExpiredKeys(ctx context.Context) (int64, error)
}

type bookingUseCaseImpl struct {
	uow      shared.UnitOfWork
	bookings queries.BookingQueries
	clock    clock.Clock
	cfg      config.BookingConfig
	metrics  Recorder
}

func NewBookingUseCase(uow shared.UnitOfWork, bookings queries.BookingQueries, clk clock.Clock, metrics Recorder) BookingCommands {
	return &bookingUseCaseImpl{uow: uow, bookings: bookings, clock: clk, metrics: metrics}
}

func NewSweepUseCase(uow shared.UnitOfWork, clk clock.Clock, cfg config.BookingConfig, metrics Recorder) SweepCommands {
	return &bookingUseCaseImpl{uow: uow, clock: clk, cfg: cfg, metrics: metrics}
}

func (uc *bookingUseCaseImpl) Cancel(ctx context.Context, bookingID uuid.UUID, actor user.Actor) (*queries.BookingView, error) {
	snap, err := uc.uow.CommandReads().BookingByID(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if !actor.CanActFor(snap.HolderID) {
		return nil, ErrBookingNotFound
	}

	var released bool
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		b, derr := releaseBooking(ctx, tx, snap.EventID, bookingID, uc.clock.Now(), func(b *booking.Booking, now time.Time) ([]booking.Effect, error) {
			effects, cerr := b.Cancel(now)
			released = len(effects) > 0
			return effects, cerr
		})
		if derr != nil {
			return derr
		}
		if released && b.PaymentRef() != nil {
			slog.Info("paid booking cancelled", "booking_id", b.ID(), "payment_ref", *b.PaymentRef())
		}
		return nil
	})
	if err != nil {
		switch {
		case errs.Is(err, booking.ErrAlreadyRedeemed):
			return nil, errs.Mark(err, ErrAlreadyRedeemed)
		case infra.IsKind(err, infra.KindNotFound):
			return nil, ErrBookingNotFound
		default:
			return nil, errs.Mark(err, ErrDatabaseOperation)
		}
	}

	return uc.bookings.GetByID(ctx, actor, bookingID)
}

// ExpireOverdue cancels pending holds past their deadline, one transaction per hold.
func (uc *bookingUseCaseImpl) ExpireOverdue(ctx context.Context, limit int32) (int, error) {
	var holds []shared.ExpiredHold
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		holds, derr = tx.Bookings().ListExpiredPending(ctx, tx.DB(), uc.clock.Now(), limit)
		return derr
	})
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperation)
	}

	expired := 0
	for _, h := range holds {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		var released bool
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			_, derr := releaseBooking(ctx, tx, h.EventID, h.BookingID, uc.clock.Now(), func(b *booking.Booking, now time.Time) ([]booking.Effect, error) {
				effects, eerr := b.Expire(now)
				released = len(effects) > 0
				return effects, eerr
			})
			return derr
		})
		if err != nil {
			slog.Error("failed to expire booking", "booking_id", h.BookingID, "error", err.Error())
			continue
		}
		if released {
			expired++
			slog.Info("pending booking expired", "booking_id", h.BookingID, "event_id", h.EventID)
		}
	}

	uc.metrics.Swept("expired_holds", expired)
	return expired, nil
}

// CompletePastEvents closes every event scheduled before the current venue day.
func (uc *bookingUseCaseImpl) CompletePastEvents(ctx context.Context) (int64, error) {
	cutoff := startOfDay(uc.clock.Now(), uc.cfg.VenueLocation())

	var n int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		n, derr = tx.Events().CompletePast(ctx, tx.DB(), cutoff)
		return derr
	})
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperation)
	}

	if n > 0 {
		slog.Info("events completed", "count", n, "cutoff", cutoff)
	}
	uc.metrics.Swept("completed_events", int(n))
	return n, nil
}

func (uc *bookingUseCaseImpl) PurgeExpiredKeys(ctx context.Context) (int64, error) {
	var n int64
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		n, derr = tx.Idempotency().DeleteExpired(ctx, tx.DB())
		return derr
	})
	if err != nil {
		return 0, errs.Mark(err, ErrDatabaseOperation)
	}
	uc.metrics.Swept("idempotency_keys", int(n))
	return n, nil
}

// releaseBooking locks the event row, then the booking row, applies the
// transition and executes the seat releases it returns.
func releaseBooking(
	ctx context.Context,
	tx shared.Tx,
	eventID, bookingID uuid.UUID,
	now time.Time,
	apply func(b *booking.Booking, now time.Time) ([]booking.Effect, error),
) (*booking.Booking, error) {
	ev, err := tx.Events().LockByID(ctx, tx.DB(), eventID)
	if err != nil {
		return nil, err
	}
	b, err := tx.Bookings().LockByID(ctx, tx.DB(), bookingID)
	if err != nil {
		return nil, err
	}
	if b.EventID() != ev.ID() {
		return nil, errs.Newf("booking %s does not belong to event %s", bookingID, eventID)
	}

	effects, err := apply(b, now)
	if err != nil {
		return nil, err
	}
	if len(effects) == 0 {
		return b, nil
	}

	for _, eff := range effects {
		switch eff.Kind {
		case booking.EffectReleaseSeats:
			if err := ev.Release(eff.Seats, now); err != nil {
				return nil, err
			}
		case booking.EffectDeliverTicket:
			return nil, errs.Newf("unexpected effect %s on release", eff.Kind)
		default:
			return nil, errs.Newf("unknown effect %s", eff.Kind)
		}
	}

	if err := tx.Events().SaveSeats(ctx, tx.DB(), ev); err != nil {
		return nil, err
	}
	if err := tx.Bookings().Update(ctx, tx.DB(), b); err != nil {
		return nil, err
	}
	return b, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
