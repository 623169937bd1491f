package commands

import (
	"context"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/pkg/money"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

// SessionRequest describes the hosted checkout the payment provider should open.
type SessionRequest struct {
	BookingID   uuid.UUID
	EventID     uuid.UUID
	HolderID    uuid.UUID
	HolderEmail string
	Seats       int
	Amount      money.Money
	Description string
	ExpiresAt   time.Time
}

type CheckoutSession struct {
	ID          string
	RedirectURL string
}

type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error)
}

type Mailer interface {
	Send(ctx context.Context, topic string, payload []byte) error
}

// OrphanRetry is a payment confirmation waiting for its booking to appear.
type OrphanRetry struct {
	Confirmation shared.PaymentConfirmation `json:"confirmation"`
	Attempt      int                        `json:"attempt"`
}

type RetryQueue interface {
	Schedule(ctx context.Context, item OrphanRetry, at time.Time) error
	// ClaimDue removes and returns up to limit items due at now.
	ClaimDue(ctx context.Context, now time.Time, limit int64) ([]OrphanRetry, error)
}

type Recorder interface {
	Checkout(outcome string)
	Reconcile(outcome booking.ReconcileOutcome)
	Redeem(outcome booking.RedeemOutcome)
	Swept(kind string, n int)
}

type NopRecorder struct{}

func (NopRecorder) Checkout(string)                    {}
func (NopRecorder) Reconcile(booking.ReconcileOutcome) {}
func (NopRecorder) Redeem(booking.RedeemOutcome)       {}
func (NopRecorder) Swept(string, int)                  {}
