package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus      = errors.New("invalid booking status")
	ErrInvalidSeats       = errors.New("seat count must be positive")
	ErrInvalidHoldTTL     = errors.New("hold ttl must be positive")
	ErrDuplicate          = errors.New("booking already exists for holder and event")
	ErrNotPending         = errors.New("booking is not pending")
	ErrAlreadyRedeemed    = errors.New("ticket already redeemed")
	ErrNotConfirmed       = errors.New("booking is not confirmed")
	ErrWrongDay           = errors.New("scan is not on the event day")
	ErrEmptyPaymentRef    = errors.New("payment reference is required")
	ErrTokenAlreadyIssued = errors.New("redemption token already issued")
)

type Booking struct {
	id                uuid.UUID
	eventID           uuid.UUID
	holderID          uuid.UUID
	seats             int
	status            Status
	paymentRef        *string
	checkoutSessionID *string
	checkoutURL       *string
	redemptionToken   *string
	redeemedAt        *time.Time
	redeemedBy        *uuid.UUID
	expiresAt         time.Time
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

func NewPending(eventID, holderID uuid.UUID, seats int, now time.Time, holdTTL time.Duration) (*Booking, error) {
	if seats <= 0 {
		return nil, ErrInvalidSeats
	}
	if holdTTL <= 0 {
		return nil, ErrInvalidHoldTTL
	}
	return &Booking{
		id:        uuid.New(),
		eventID:   eventID,
		holderID:  holderID,
		seats:     seats,
		status:    StatusPending,
		expiresAt: now.Add(holdTTL),
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type ReconstructParams struct {
	ID                uuid.UUID
	EventID           uuid.UUID
	HolderID          uuid.UUID
	Seats             int
	Status            Status
	PaymentRef        *string
	CheckoutSessionID *string
	CheckoutURL       *string
	RedemptionToken   *string
	RedeemedAt        *time.Time
	RedeemedBy        *uuid.UUID
	ExpiresAt         time.Time
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func Reconstruct(p ReconstructParams) *Booking {
	return &Booking{
		id:                p.ID,
		eventID:           p.EventID,
		holderID:          p.HolderID,
		seats:             p.Seats,
		status:            p.Status,
		paymentRef:        p.PaymentRef,
		checkoutSessionID: p.CheckoutSessionID,
		checkoutURL:       p.CheckoutURL,
		redemptionToken:   p.RedemptionToken,
		redeemedAt:        p.RedeemedAt,
		redeemedBy:        p.RedeemedBy,
		expiresAt:         p.ExpiresAt,
		version:           p.Version,
		createdAt:         p.CreatedAt,
		updatedAt:         p.UpdatedAt,
	}
}

// Reopen turns an abandoned, never-paid booking back into a pending hold.
// Anything else for the same holder and event is a duplicate.
func (b *Booking) Reopen(seats int, now time.Time, holdTTL time.Duration) error {
	if seats <= 0 {
		return ErrInvalidSeats
	}
	if holdTTL <= 0 {
		return ErrInvalidHoldTTL
	}
	switch b.status {
	case StatusCancelled:
		if b.paymentRef != nil || b.redemptionToken != nil {
			return ErrDuplicate
		}
	case StatusPending, StatusConfirmed:
		return ErrDuplicate
	default:
		return ErrInvalidStatus
	}
	b.status = StatusPending
	b.seats = seats
	b.checkoutSessionID = nil
	b.checkoutURL = nil
	b.expiresAt = now.Add(holdTTL)
	b.updatedAt = now
	return nil
}

// AttachSession records the payment collaborator's hosted checkout handle.
func (b *Booking) AttachSession(sessionID, url string, now time.Time) error {
	if b.status != StatusPending {
		return ErrNotPending
	}
	b.checkoutSessionID = &sessionID
	b.checkoutURL = &url
	b.updatedAt = now
	return nil
}

// Reconcile applies a payment confirmation. mint is called only when the
// booking actually transitions to confirmed.
func (b *Booking) Reconcile(paymentRef string, seats int, mint func() (string, error), now time.Time) (Reconciliation, error) {
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return Reconciliation{}, ErrEmptyPaymentRef
	}

	switch b.status {
	case StatusCancelled:
		return Reconciliation{Outcome: OutcomeBookingCancelled, Reason: "booking_cancelled"}, nil
	case StatusConfirmed:
		if b.paymentRef != nil && *b.paymentRef == paymentRef {
			return Reconciliation{Outcome: OutcomeReplayed}, nil
		}
		return Reconciliation{Outcome: OutcomePaymentConflict, Reason: "payment_ref_mismatch"}, nil
	case StatusPending:
		if seats != b.seats {
			return Reconciliation{Outcome: OutcomePaymentConflict, Reason: "seat_mismatch"}, nil
		}
		if err := b.confirm(paymentRef, mint, now); err != nil {
			return Reconciliation{}, err
		}
		return Reconciliation{
			Outcome: OutcomeConfirmed,
			Effects: []Effect{{Kind: EffectDeliverTicket, BookingID: b.id, EventID: b.eventID, Seats: b.seats}},
		}, nil
	default:
		return Reconciliation{}, ErrInvalidStatus
	}
}

func (b *Booking) confirm(paymentRef string, mint func() (string, error), now time.Time) error {
	if b.redemptionToken != nil {
		return ErrTokenAlreadyIssued
	}
	token, err := mint()
	if err != nil {
		return err
	}
	b.status = StatusConfirmed
	b.paymentRef = &paymentRef
	b.redemptionToken = &token
	b.updatedAt = now
	return nil
}

// Cancel releases a pending or unredeemed confirmed booking. Cancelling a
// cancelled booking is a no-op with no effects.
func (b *Booking) Cancel(now time.Time) ([]Effect, error) {
	switch b.status {
	case StatusCancelled:
		return nil, nil
	case StatusConfirmed:
		if b.redeemedAt != nil {
			return nil, ErrAlreadyRedeemed
		}
	case StatusPending:
	default:
		return nil, ErrInvalidStatus
	}
	b.status = StatusCancelled
	b.updatedAt = now
	return []Effect{{Kind: EffectReleaseSeats, BookingID: b.id, EventID: b.eventID, Seats: b.seats}}, nil
}

// Expire cancels a pending hold whose deadline has passed.
func (b *Booking) Expire(now time.Time) ([]Effect, error) {
	if !b.IsOverdue(now) {
		return nil, nil
	}
	return b.Cancel(now)
}

// ReleaseHold cancels the booking only while it is still an unpaid hold.
func (b *Booking) ReleaseHold(now time.Time) ([]Effect, error) {
	if b.status != StatusPending {
		return nil, nil
	}
	return b.Cancel(now)
}

func (b *Booking) IsOverdue(now time.Time) bool {
	return b.status == StatusPending && !now.Before(b.expiresAt)
}

// Redeem admits the holder. Checks run in order: confirmed, not yet
// redeemed, scanned on the event day.
func (b *Booking) Redeem(operatorID uuid.UUID, scanTime time.Time, onEventDay bool) error {
	switch b.status {
	case StatusConfirmed:
	case StatusPending, StatusCancelled:
		return ErrNotConfirmed
	default:
		return ErrInvalidStatus
	}
	if b.redeemedAt != nil {
		return ErrAlreadyRedeemed
	}
	if !onEventDay {
		return ErrWrongDay
	}
	at := scanTime
	op := operatorID
	b.redeemedAt = &at
	b.redeemedBy = &op
	b.updatedAt = scanTime
	return nil
}

func (b *Booking) IsRedeemed() bool {
	return b.redeemedAt != nil
}

func (b *Booking) ID() uuid.UUID              { return b.id }
func (b *Booking) EventID() uuid.UUID         { return b.eventID }
func (b *Booking) HolderID() uuid.UUID        { return b.holderID }
func (b *Booking) Seats() int                 { return b.seats }
func (b *Booking) Status() Status             { return b.status }
func (b *Booking) PaymentRef() *string        { return b.paymentRef }
func (b *Booking) CheckoutSessionID() *string { return b.checkoutSessionID }
func (b *Booking) CheckoutURL() *string       { return b.checkoutURL }
func (b *Booking) RedemptionToken() *string   { return b.redemptionToken }
func (b *Booking) RedeemedAt() *time.Time     { return b.redeemedAt }
func (b *Booking) RedeemedBy() *uuid.UUID     { return b.redeemedBy }
func (b *Booking) ExpiresAt() time.Time       { return b.expiresAt }
func (b *Booking) Version() int               { return b.version }
func (b *Booking) CreatedAt() time.Time       { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time       { return b.updatedAt }

// Reconciliation is the result of applying one payment confirmation.
type Reconciliation struct {
	Outcome ReconcileOutcome
	Reason  string
	Effects []Effect
}

func (r Reconciliation) Transitioned() bool {
	return len(r.Effects) > 0
}
