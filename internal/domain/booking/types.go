package booking

import "github.com/google/uuid"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

type ReconcileOutcome string

const (
	OutcomeConfirmed        ReconcileOutcome = "confirmed"
	OutcomeReplayed         ReconcileOutcome = "replayed"
	OutcomePaymentConflict  ReconcileOutcome = "payment_conflict"
	OutcomeBookingCancelled ReconcileOutcome = "booking_cancelled"
	OutcomeOrphan           ReconcileOutcome = "orphan"
)

func (o ReconcileOutcome) String() string {
	return string(o)
}

// NeedsReview reports whether a human has to look at the confirmation.
func (o ReconcileOutcome) NeedsReview() bool {
	switch o {
	case OutcomePaymentConflict, OutcomeBookingCancelled:
		return true
	case OutcomeConfirmed, OutcomeReplayed, OutcomeOrphan:
		return false
	default:
		return false
	}
}

type RedeemOutcome string

const (
	RedeemAdmitted        RedeemOutcome = "admitted"
	RedeemInvalidToken    RedeemOutcome = "invalid_token"
	RedeemAlreadyRedeemed RedeemOutcome = "already_redeemed"
	RedeemNotConfirmed    RedeemOutcome = "not_confirmed"
	RedeemWrongDay        RedeemOutcome = "wrong_day"
)

func (o RedeemOutcome) String() string {
	return string(o)
}

type EffectKind string

const (
	EffectDeliverTicket EffectKind = "deliver_ticket"
	EffectReleaseSeats  EffectKind = "release_seats"
)

// Effect is a side effect owed by a state transition. Effects are returned in
// the order they must be executed and only when the transition happened.
type Effect struct {
	Kind      EffectKind
	BookingID uuid.UUID
	EventID   uuid.UUID
	Seats     int
}
