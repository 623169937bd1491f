package shared

import (
	"time"

	"cinema-booking/internal/domain/booking"

	"github.com/google/uuid"
)

const (
	IdempotencyStatusProcessing = "processing"
	IdempotencyStatusCompleted  = "completed"
)

type IdempotencyRecord struct {
	Key             uuid.UUID
	UserID          uuid.UUID
	Status          string
	RequestHash     string
	ResultBookingID *uuid.UUID
	ExpiresAt       time.Time
}

func (r IdempotencyRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type HolderSnapshot struct {
	ID       uuid.UUID
	Email    string
	Role     string
	IsActive bool
}

type BookingSnapshot struct {
	ID       uuid.UUID
	EventID  uuid.UUID
	HolderID uuid.UUID
	Status   string
}

type ExpiredHold struct {
	BookingID uuid.UUID
	EventID   uuid.UUID
}

const (
	JobStatusQueued  = "queued"
	JobStatusSending = "sending"
	JobStatusSent    = "sent"
	JobStatusFailed  = "failed"
)

type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	Attempts int32
	RunAt    time.Time
}

type NotificationJobUpdate struct {
	ID        uuid.UUID
	Status    string
	Attempts  int32
	RunAt     time.Time
	LastError *string
}

// PaymentConfirmation is one delivery from the payment provider.
type PaymentConfirmation struct {
	ExternalID string    `json:"externalPaymentId"`
	EventID    uuid.UUID `json:"eventId"`
	HolderID   uuid.UUID `json:"holderId"`
	Seats      int       `json:"seats"`
}

type PaymentConfirmationRecord struct {
	PaymentConfirmation
	Outcome     string
	NeedsReview bool
	BookingID   *uuid.UUID
	Deliveries  int
}

// SamePayload reports whether c carries the event, holder and seats this
// record was first received with.
func (r PaymentConfirmationRecord) SamePayload(c PaymentConfirmation) bool {
	return r.EventID == c.EventID && r.HolderID == c.HolderID && r.Seats == c.Seats
}

type CheckInAttempt struct {
	BookingID   *uuid.UUID
	Fingerprint string
	OperatorID  uuid.UUID
	Outcome     booking.RedeemOutcome
	ScannedAt   time.Time
}
