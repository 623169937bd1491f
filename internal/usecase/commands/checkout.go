package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/infra"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const checkoutEndpoint = "POST /api/checkouts"

type CheckoutRequest struct {
	EventID uuid.UUID `json:"eventId"`
	Seats   int       `json:"seats"`
}

type CheckoutResult struct {
	Booking    *queries.BookingView
	IsReplayed bool
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, req CheckoutRequest, holderID uuid.UUID, idempotencyKey uuid.UUID) (*CheckoutResult, error)
}

type checkoutUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  PaymentGateway
	bookings queries.BookingQueries
	clock    clock.Clock
	cfg      config.BookingConfig
	metrics  Recorder
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	gateway PaymentGateway,
	bookings queries.BookingQueries,
	clk clock.Clock,
	cfg config.BookingConfig,
	metrics Recorder,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		bookings: bookings,
		clock:    clk,
		cfg:      cfg,
		metrics:  metrics,
	}
}

// held is what the reservation transaction hands to the payment step.
type held struct {
	booking *booking.Booking
	event   *event.Event
}

func (uc *checkoutUseCaseImpl) Checkout(
	ctx context.Context,
	req CheckoutRequest,
	holderID uuid.UUID,
	idempotencyKey uuid.UUID,
) (*CheckoutResult, error) {
	if req.EventID == uuid.Nil || req.Seats <= 0 || req.Seats > uc.cfg.MaxSeats {
		return nil, errs.Wrapf(ErrInvalidRequest, "seats must be between 1 and %d", uc.cfg.MaxSeats)
	}

	holder, err := uc.uow.CommandReads().HolderByID(ctx, holderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrHolderInactive
		}
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if !holder.IsActive {
		return nil, ErrHolderInactive
	}

	requestHash := calculateRequestHash(req)
	replayed, err := uc.handleIdempotency(ctx, idempotencyKey, holderID, requestHash)
	if err != nil {
		return nil, err
	}
	if replayed != nil {
		uc.metrics.Checkout("replayed")
		slog.Info("checkout replayed", "idempotency_key", idempotencyKey, "booking_id", replayed.ID)
		return &CheckoutResult{Booking: replayed, IsReplayed: true}, nil
	}

	view, err := uc.checkout(ctx, req, holder, idempotencyKey)
	if err != nil {
		uc.releaseKey(ctx, idempotencyKey, holderID)
		uc.metrics.Checkout(checkoutOutcome(err))
		return nil, err
	}

	uc.metrics.Checkout("created")
	return &CheckoutResult{Booking: view, IsReplayed: false}, nil
}

func (uc *checkoutUseCaseImpl) checkout(
	ctx context.Context,
	req CheckoutRequest,
	holder *shared.HolderSnapshot,
	idempotencyKey uuid.UUID,
) (*queries.BookingView, error) {
	h, err := uc.hold(ctx, req, holder.ID)
	if err != nil {
		return nil, err
	}

	b := h.booking
	session, err := uc.gateway.CreateSession(ctx, SessionRequest{
		BookingID:   b.ID(),
		EventID:     h.event.ID(),
		HolderID:    holder.ID,
		HolderEmail: holder.Email,
		Seats:       b.Seats(),
		Amount:      h.event.Total(b.Seats()),
		Description: fmt.Sprintf("%s x%d", h.event.Title(), b.Seats()),
		ExpiresAt:   b.ExpiresAt(),
	})
	if err != nil {
		slog.Error("payment session creation failed, releasing hold",
			"booking_id", b.ID(), "event_id", h.event.ID(), "error", err.Error())
		if cerr := uc.compensate(ctx, b.ID(), h.event.ID()); cerr != nil {
			slog.Error("failed to release hold after payment failure",
				"booking_id", b.ID(), "error", cerr.Error())
		}
		return nil, errs.Mark(err, ErrPaymentUnavailable)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		locked, derr := tx.Bookings().LockByID(ctx, tx.DB(), b.ID())
		if derr != nil {
			return derr
		}
		if derr = locked.AttachSession(session.ID, session.RedirectURL, uc.clock.Now()); derr != nil {
			return errs.Mark(derr, ErrBookingNotPending)
		}
		if derr = tx.Bookings().Update(ctx, tx.DB(), locked); derr != nil {
			return derr
		}
		return tx.Idempotency().UpdateStatusCompleted(ctx, tx.DB(), idempotencyKey, holder.ID,
			calculateIDHash(locked.ID(), session.ID), locked.ID())
	})
	if err != nil {
		if errs.Is(err, ErrBookingNotPending) {
			return nil, err
		}
		slog.Error("failed to attach payment session, releasing hold",
			"booking_id", b.ID(), "session_id", session.ID, "error", err.Error())
		if cerr := uc.compensate(ctx, b.ID(), h.event.ID()); cerr != nil {
			slog.Error("failed to release hold after attach failure",
				"booking_id", b.ID(), "error", cerr.Error())
		}
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	actor := user.NewActor(holder.ID, user.RoleCustomer)
	return uc.bookings.GetByID(ctx, actor, b.ID())
}

// hold runs the capacity check and the booking write under the event row lock.
func (uc *checkoutUseCaseImpl) hold(ctx context.Context, req CheckoutRequest, holderID uuid.UUID) (*held, error) {
	var out held
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()

		ev, derr := tx.Events().LockByID(ctx, tx.DB(), req.EventID)
		if derr != nil {
			if infra.IsKind(derr, infra.KindNotFound) {
				return ErrEventNotFound
			}
			return derr
		}

		existing, derr := tx.Bookings().LockByHolderEvent(ctx, tx.DB(), holderID, req.EventID)
		if derr != nil && !infra.IsKind(derr, infra.KindNotFound) {
			return derr
		}

		if existing != nil {
			if derr = existing.Reopen(req.Seats, now, uc.cfg.HoldTTL); derr != nil {
				return mapBookingErr(derr)
			}
		}

		if derr = ev.Reserve(req.Seats, now); derr != nil {
			return mapReserveErr(derr)
		}
		if derr = tx.Events().SaveSeats(ctx, tx.DB(), ev); derr != nil {
			return derr
		}

		if existing != nil {
			if derr = tx.Bookings().Update(ctx, tx.DB(), existing); derr != nil {
				return derr
			}
			out = held{booking: existing, event: ev}
			return nil
		}

		b, derr := booking.NewPending(req.EventID, holderID, req.Seats, now, uc.cfg.HoldTTL)
		if derr != nil {
			return errs.Mark(derr, ErrInvalidRequest)
		}
		if derr = tx.Bookings().Create(ctx, tx.DB(), b); derr != nil {
			if infra.IsKind(derr, infra.KindDuplicateKey) {
				return errs.Mark(derr, ErrDuplicateBooking)
			}
			return derr
		}
		out = held{booking: b, event: ev}
		return nil
	})
	if err != nil {
		if isCheckoutRejection(err) {
			return nil, err
		}
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	return &out, nil
}

// compensate releases a hold whose checkout could not finish. A booking the
// provider already confirmed is left alone.
func (uc *checkoutUseCaseImpl) compensate(ctx context.Context, bookingID, eventID uuid.UUID) error {
	return uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := releaseBooking(ctx, tx, eventID, bookingID, uc.clock.Now(), (*booking.Booking).ReleaseHold)
		return err
	})
}

func (uc *checkoutUseCaseImpl) handleIdempotency(
	ctx context.Context,
	idempotencyKey, holderID uuid.UUID,
	requestHash string,
) (*queries.BookingView, error) {
	now := uc.clock.Now()
	expiresAt := now.Add(uc.cfg.IdempotencyTTL)

	var inserted bool
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var derr error
		inserted, derr = tx.Idempotency().TryInsert(ctx, tx.DB(), idempotencyKey, holderID, checkoutEndpoint, requestHash, expiresAt)
		return derr
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	if inserted {
		return nil, nil
	}

	existing, err := uc.uow.CommandReads().IdempotencyByKey(ctx, idempotencyKey, holderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// Deleted by a failed attempt between our insert and read.
			return nil, ErrIdempotencyInProgress
		}
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	if existing.IsExpired(now) {
		var claimed bool
		err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			var derr error
			claimed, derr = tx.Idempotency().ClaimExpired(ctx, tx.DB(), idempotencyKey, holderID, requestHash, expiresAt)
			return derr
		})
		if err != nil {
			return nil, errs.Mark(err, ErrDatabaseOperation)
		}
		if !claimed {
			return nil, ErrIdempotencyInProgress
		}
		return nil, nil
	}

	if existing.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyReused
	}

	switch existing.Status {
	case shared.IdempotencyStatusCompleted:
		if existing.ResultBookingID == nil {
			return nil, errs.New("completed request missing result booking ID")
		}
		return uc.bookings.GetByID(ctx, user.NewActor(holderID, user.RoleCustomer), *existing.ResultBookingID)
	case shared.IdempotencyStatusProcessing:
		return nil, ErrIdempotencyInProgress
	default:
		return nil, errs.Newf("invalid idempotency key status %q", existing.Status)
	}
}

// releaseKey lets the client retry a failed checkout under the same key.
func (uc *checkoutUseCaseImpl) releaseKey(ctx context.Context, idempotencyKey, holderID uuid.UUID) {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Delete(ctx, tx.DB(), idempotencyKey, holderID)
	})
	if err != nil {
		slog.Warn("failed to release idempotency key", "idempotency_key", idempotencyKey, "error", err.Error())
	}
}

func mapReserveErr(err error) error {
	switch {
	case errs.Is(err, event.ErrCapacityExceeded):
		return errs.Mark(err, ErrCapacityRejected)
	case errs.Is(err, event.ErrNotBookable):
		return errs.Mark(err, ErrEventNotBookable)
	case errs.Is(err, event.ErrInvalidSeats):
		return errs.Mark(err, ErrInvalidRequest)
	default:
		return err
	}
}

func mapBookingErr(err error) error {
	switch {
	case errs.Is(err, booking.ErrDuplicate):
		return errs.Mark(err, ErrDuplicateBooking)
	case errs.Is(err, booking.ErrInvalidSeats), errs.Is(err, booking.ErrInvalidHoldTTL):
		return errs.Mark(err, ErrInvalidRequest)
	default:
		return err
	}
}

func isCheckoutRejection(err error) bool {
	return errs.IsAny(err,
		ErrEventNotFound,
		ErrEventNotBookable,
		ErrCapacityRejected,
		ErrDuplicateBooking,
		ErrInvalidRequest,
	)
}

func checkoutOutcome(err error) string {
	switch {
	case errs.Is(err, ErrCapacityRejected):
		return "capacity_rejected"
	case errs.Is(err, ErrDuplicateBooking):
		return "duplicate"
	case errs.Is(err, ErrEventNotBookable), errs.Is(err, ErrEventNotFound):
		return "not_bookable"
	case errs.Is(err, ErrPaymentUnavailable):
		return "payment_failed"
	default:
		return "error"
	}
}

func calculateRequestHash(req CheckoutRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func calculateIDHash(id uuid.UUID, sessionID string) string {
	hash := sha256.Sum256([]byte(id.String() + ":" + sessionID))
	return hex.EncodeToString(hash[:])
}
