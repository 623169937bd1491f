package commands

import (
	"context"
	"log/slog"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/infra"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type RedeemResult struct {
	Outcome    booking.RedeemOutcome
	BookingID  *uuid.UUID
	Seats      int
	EventTitle string
	RedeemedAt *time.Time
}

type ScanResolver interface {
	ResolveScan(scanned string) (string, error)
}

type CheckInCommands interface {
	Redeem(ctx context.Context, scanned string, operator user.Actor) (*RedeemResult, error)
}

type checkInUseCaseImpl struct {
	uow      shared.UnitOfWork
	resolver ScanResolver
	clock    clock.Clock
	venueLoc *time.Location
	metrics  Recorder
}

func NewCheckInUseCase(uow shared.UnitOfWork, resolver ScanResolver, clk clock.Clock, cfg config.BookingConfig, metrics Recorder) CheckInCommands {
	return &checkInUseCaseImpl{
		uow:      uow,
		resolver: resolver,
		clock:    clk,
		venueLoc: cfg.VenueLocation(),
		metrics:  metrics,
	}
}

// Redeem admits a scanned ticket at most once. Every attempt, including
// rejected ones, is appended to the audit trail in the same transaction.
func (uc *checkInUseCaseImpl) Redeem(ctx context.Context, scanned string, operator user.Actor) (*RedeemResult, error) {
	if !operator.CanScan() {
		return nil, ErrOperatorRequired
	}

	scanTime := uc.clock.Now()
	fingerprint := ticket.Fingerprint(scanned)

	var res RedeemResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res = RedeemResult{}

		token, rerr := uc.resolver.ResolveScan(scanned)
		if rerr != nil {
			res.Outcome = booking.RedeemInvalidToken
			return uc.audit(ctx, tx, nil, fingerprint, operator.ID, res.Outcome, scanTime)
		}

		b, derr := tx.Bookings().LockByToken(ctx, tx.DB(), token)
		if derr != nil {
			if !infra.IsKind(derr, infra.KindNotFound) {
				return derr
			}
			res.Outcome = booking.RedeemInvalidToken
			return uc.audit(ctx, tx, nil, fingerprint, operator.ID, res.Outcome, scanTime)
		}

		ev, derr := tx.Events().FindByID(ctx, tx.DB(), b.EventID())
		if derr != nil {
			return derr
		}

		id := b.ID()
		res.BookingID = &id
		res.Seats = b.Seats()
		res.EventTitle = ev.Title()

		rerr = b.Redeem(operator.ID, scanTime, ev.IsOnDate(scanTime, uc.venueLoc))
		res.Outcome = redeemOutcome(rerr)
		if res.Outcome == "" {
			return rerr
		}
		res.RedeemedAt = b.RedeemedAt()
		if res.Outcome == booking.RedeemAdmitted {
			if derr = tx.Bookings().Update(ctx, tx.DB(), b); derr != nil {
				return derr
			}
		}

		return uc.audit(ctx, tx, &id, fingerprint, operator.ID, res.Outcome, scanTime)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	uc.metrics.Redeem(res.Outcome)
	attrs := []any{"operator_id", operator.ID, "outcome", res.Outcome.String(), "fingerprint", fingerprint}
	if res.BookingID != nil {
		attrs = append(attrs, "booking_id", *res.BookingID)
	}
	if res.Outcome == booking.RedeemAdmitted {
		slog.Info("ticket redeemed", attrs...)
	} else {
		slog.Warn("ticket scan rejected", attrs...)
	}
	return &res, nil
}

func (uc *checkInUseCaseImpl) audit(
	ctx context.Context,
	tx shared.Tx,
	bookingID *uuid.UUID,
	fingerprint string,
	operatorID uuid.UUID,
	outcome booking.RedeemOutcome,
	scanTime time.Time,
) error {
	return tx.CheckIns().Append(ctx, tx.DB(), shared.CheckInAttempt{
		BookingID:   bookingID,
		Fingerprint: fingerprint,
		OperatorID:  operatorID,
		Outcome:     outcome,
		ScannedAt:   scanTime,
	})
}

// redeemOutcome maps a domain rejection to its outcome; unknown errors map to "".
func redeemOutcome(err error) booking.RedeemOutcome {
	switch {
	case err == nil:
		return booking.RedeemAdmitted
	case errs.Is(err, booking.ErrNotConfirmed):
		return booking.RedeemNotConfirmed
	case errs.Is(err, booking.ErrAlreadyRedeemed):
		return booking.RedeemAlreadyRedeemed
	case errs.Is(err, booking.ErrWrongDay):
		return booking.RedeemWrongDay
	default:
		return ""
	}
}
