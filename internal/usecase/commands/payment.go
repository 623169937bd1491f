package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/infra"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	NotificationKindEmail = "email"
	TopicTicketIssued     = "ticket_issued"

	ReasonExternalIDReused = "external_id_reused"
)

type ReconcileResult struct {
	Outcome    booking.ReconcileOutcome
	Reason     string
	BookingID  *uuid.UUID
	Deliveries int
}

// TicketDelivery is the outbox payload handed to the mailer.
type TicketDelivery struct {
	BookingID     uuid.UUID `json:"bookingId"`
	Token         string    `json:"token"`
	SignedPayload string    `json:"signedPayload"`
	HolderEmail   string    `json:"holderEmail"`
	EventTitle    string    `json:"eventTitle"`
	Venue         string    `json:"venue"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	Seats         int       `json:"seats"`
}

type TicketIssuer interface {
	Mint() (string, error)
	Render(p ticket.Payload) (string, error)
}

type PaymentCommands interface {
	// Receive reconciles one provider delivery and parks orphans on the retry queue.
	Receive(ctx context.Context, c shared.PaymentConfirmation) (*ReconcileResult, error)
	Reconcile(ctx context.Context, c shared.PaymentConfirmation) (*ReconcileResult, error)
	RetryOrphans(ctx context.Context, limit int64) (int, error)
}

type paymentUseCaseImpl struct {
	uow     shared.UnitOfWork
	issuer  TicketIssuer
	queue   RetryQueue
	clock   clock.Clock
	cfg     config.WorkerConfig
	metrics Recorder
}

func NewPaymentUseCase(
	uow shared.UnitOfWork,
	issuer TicketIssuer,
	queue RetryQueue,
	clk clock.Clock,
	cfg config.WorkerConfig,
	metrics Recorder,
) PaymentCommands {
	return &paymentUseCaseImpl{
		uow:     uow,
		issuer:  issuer,
		queue:   queue,
		clock:   clk,
		cfg:     cfg,
		metrics: metrics,
	}
}

func (uc *paymentUseCaseImpl) Receive(ctx context.Context, c shared.PaymentConfirmation) (*ReconcileResult, error) {
	res, err := uc.Reconcile(ctx, c)
	if err != nil {
		return nil, err
	}
	if res.Outcome != booking.OutcomeOrphan {
		return res, nil
	}

	item := OrphanRetry{Confirmation: c, Attempt: 1}
	if err := uc.queue.Schedule(ctx, item, uc.clock.Now().Add(uc.backoff(item.Attempt))); err != nil {
		return nil, errs.Mark(err, ErrRetryQueueUnavailable)
	}
	return res, nil
}

// Reconcile applies a confirmation in a single transaction: inbox row,
// booking transition, outbox job and outcome commit together.
func (uc *paymentUseCaseImpl) Reconcile(ctx context.Context, c shared.PaymentConfirmation) (*ReconcileResult, error) {
	c.ExternalID = strings.TrimSpace(c.ExternalID)
	if c.ExternalID == "" || c.EventID == uuid.Nil || c.HolderID == uuid.Nil || c.Seats <= 0 {
		return nil, ErrInvalidRequest
	}

	var res ReconcileResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()
		res = ReconcileResult{}

		stored, derr := tx.PaymentConfirmations().Record(ctx, tx.DB(), c, now)
		if derr != nil {
			return derr
		}
		res.Deliveries = stored.Deliveries

		// a provider id already bound to another payload is never applied
		if !stored.SamePayload(c) {
			res.Outcome = booking.OutcomePaymentConflict
			res.Reason = ReasonExternalIDReused
			res.BookingID = stored.BookingID
			return tx.PaymentConfirmations().FlagForReview(ctx, tx.DB(), c.ExternalID, booking.OutcomePaymentConflict)
		}

		b, derr := tx.Bookings().LockByHolderEvent(ctx, tx.DB(), c.HolderID, c.EventID)
		if derr != nil {
			if !infra.IsKind(derr, infra.KindNotFound) {
				return derr
			}
			res.Outcome = booking.OutcomeOrphan
			return tx.PaymentConfirmations().UpdateOutcome(ctx, tx.DB(), c.ExternalID, booking.OutcomeOrphan, nil)
		}

		rec, derr := b.Reconcile(c.ExternalID, c.Seats, uc.issuer.Mint, now)
		if derr != nil {
			return derr
		}
		id := b.ID()
		res.Outcome = rec.Outcome
		res.Reason = rec.Reason
		res.BookingID = &id

		if rec.Transitioned() {
			if derr = tx.Bookings().Update(ctx, tx.DB(), b); derr != nil {
				return derr
			}
			for _, eff := range rec.Effects {
				if derr = uc.apply(ctx, tx, b, eff, now); derr != nil {
					return derr
				}
			}
		}

		return tx.PaymentConfirmations().UpdateOutcome(ctx, tx.DB(), c.ExternalID, rec.Outcome, &id)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	uc.metrics.Reconcile(res.Outcome)
	logReconcile(c, &res)
	return &res, nil
}

func (uc *paymentUseCaseImpl) apply(ctx context.Context, tx shared.Tx, b *booking.Booking, eff booking.Effect, now time.Time) error {
	switch eff.Kind {
	case booking.EffectDeliverTicket:
		payload, err := uc.ticketDelivery(ctx, tx, b)
		if err != nil {
			return err
		}
		body, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		return tx.Notifications().CreateJob(ctx, tx.DB(), NotificationKindEmail, TopicTicketIssued, body, now)
	case booking.EffectReleaseSeats:
		return errs.Newf("unexpected effect %s on confirmation", eff.Kind)
	default:
		return errs.Newf("unknown effect %s", eff.Kind)
	}
}

func (uc *paymentUseCaseImpl) ticketDelivery(ctx context.Context, tx shared.Tx, b *booking.Booking) (*TicketDelivery, error) {
	ev, err := tx.Events().FindByID(ctx, tx.DB(), b.EventID())
	if err != nil {
		return nil, err
	}
	holder, err := tx.Reads().HolderByID(ctx, b.HolderID())
	if err != nil {
		return nil, err
	}
	if b.RedemptionToken() == nil {
		return nil, errs.Newf("confirmed booking %s has no token", b.ID())
	}

	p := ticket.Payload{
		BookingID:   b.ID(),
		Token:       *b.RedemptionToken(),
		HolderEmail: holder.Email,
		EventTitle:  ev.Title(),
		Venue:       ev.Venue(),
		ScheduledAt: ev.ScheduledAt(),
		Seats:       b.Seats(),
	}
	signed, err := uc.issuer.Render(p)
	if err != nil {
		return nil, err
	}

	return &TicketDelivery{
		BookingID:     p.BookingID,
		Token:         p.Token,
		SignedPayload: signed,
		HolderEmail:   p.HolderEmail,
		EventTitle:    p.EventTitle,
		Venue:         p.Venue,
		ScheduledAt:   p.ScheduledAt,
		Seats:         p.Seats,
	}, nil
}

// RetryOrphans drains due orphan confirmations. Still-orphaned items are
// rescheduled with backoff until the attempt limit, then flagged for review.
func (uc *paymentUseCaseImpl) RetryOrphans(ctx context.Context, limit int64) (int, error) {
	items, err := uc.queue.ClaimDue(ctx, uc.clock.Now(), limit)
	if err != nil {
		return 0, errs.Mark(err, ErrRetryQueueUnavailable)
	}

	resolved := 0
	for _, item := range items {
		res, err := uc.Reconcile(ctx, item.Confirmation)
		if err != nil {
			slog.Error("orphan retry failed",
				"external_id", item.Confirmation.ExternalID,
				"attempt", item.Attempt,
				"error", err.Error())
			uc.reschedule(ctx, item, item.Attempt)
			continue
		}
		if res.Outcome != booking.OutcomeOrphan {
			resolved++
			continue
		}

		if item.Attempt >= uc.cfg.OrphanMaxAttempts {
			uc.flagOrphan(ctx, item)
			continue
		}
		uc.reschedule(ctx, item, item.Attempt+1)
	}
	return resolved, nil
}

func (uc *paymentUseCaseImpl) reschedule(ctx context.Context, item OrphanRetry, attempt int) {
	item.Attempt = attempt
	at := uc.clock.Now().Add(uc.backoff(attempt))
	if err := uc.queue.Schedule(ctx, item, at); err != nil {
		slog.Error("failed to reschedule orphan confirmation",
			"external_id", item.Confirmation.ExternalID,
			"attempt", attempt,
			"error", err.Error())
	}
}

func (uc *paymentUseCaseImpl) flagOrphan(ctx context.Context, item OrphanRetry) {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.PaymentConfirmations().FlagForReview(ctx, tx.DB(), item.Confirmation.ExternalID, booking.OutcomeOrphan)
	})
	if err != nil {
		slog.Error("failed to flag orphan confirmation",
			"external_id", item.Confirmation.ExternalID,
			"error", err.Error())
		return
	}
	slog.Warn("orphan confirmation flagged for review",
		"external_id", item.Confirmation.ExternalID,
		"attempts", item.Attempt)
}

func (uc *paymentUseCaseImpl) backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := uc.cfg.OrphanBaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= uc.cfg.OrphanMaxDelay {
			return uc.cfg.OrphanMaxDelay
		}
	}
	return d
}

func logReconcile(c shared.PaymentConfirmation, res *ReconcileResult) {
	attrs := []any{
		"external_id", c.ExternalID,
		"event_id", c.EventID,
		"holder_id", c.HolderID,
		"outcome", res.Outcome.String(),
		"deliveries", res.Deliveries,
	}
	if res.BookingID != nil {
		attrs = append(attrs, "booking_id", *res.BookingID)
	}
	if res.Reason != "" {
		attrs = append(attrs, "reason", res.Reason)
	}

	switch res.Outcome {
	case booking.OutcomeConfirmed:
		slog.Info("payment confirmed", attrs...)
	case booking.OutcomeReplayed:
		slog.Info("payment confirmation replayed", attrs...)
	case booking.OutcomePaymentConflict, booking.OutcomeBookingCancelled:
		slog.Warn("payment confirmation needs review", attrs...)
	case booking.OutcomeOrphan:
		slog.Warn("payment confirmation has no booking", attrs...)
	default:
		slog.Error("unknown reconcile outcome", attrs...)
	}
}
