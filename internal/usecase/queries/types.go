package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingView struct {
	ID                uuid.UUID       `json:"id"`
	EventID           uuid.UUID       `json:"event_id"`
	EventTitle        string          `json:"event_title"`
	EventVenue        string          `json:"event_venue"`
	EventScheduledAt  time.Time       `json:"event_scheduled_at"`
	HolderID          uuid.UUID       `json:"holder_id"`
	HolderEmail       string          `json:"holder_email"`
	Seats             int             `json:"seats"`
	Status            string          `json:"status"`
	Currency          string          `json:"currency"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Total             decimal.Decimal `json:"total"`
	PaymentRef        *string         `json:"payment_ref,omitempty"`
	CheckoutSessionID *string         `json:"checkout_session_id,omitempty"`
	CheckoutURL       *string         `json:"checkout_url,omitempty"`
	RedeemedAt        *time.Time      `json:"redeemed_at,omitempty"`
	ExpiresAt         time.Time       `json:"expires_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	RedemptionToken *string `json:"-"`
}

type BookingListItem struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"event_id"`
	EventTitle       string     `json:"event_title"`
	EventScheduledAt time.Time  `json:"event_scheduled_at"`
	Seats            int        `json:"seats"`
	Status           string     `json:"status"`
	RedeemedAt       *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type EventView struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Venue          string          `json:"venue"`
	ScheduledAt    time.Time       `json:"scheduled_at"`
	Capacity       int             `json:"capacity"`
	CommittedSeats int             `json:"committed_seats"`
	Remaining      int             `json:"remaining"`
	Status         string          `json:"status"`
	Currency       string          `json:"currency"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

type TicketView struct {
	BookingID   uuid.UUID `json:"booking_id"`
	EventTitle  string    `json:"event_title"`
	Venue       string    `json:"venue"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Seats       int       `json:"seats"`
	// QR content: compact JWS over the ticket payload
	Payload    string     `json:"payload"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

// AuthorizedUserView represents read-optimized user data with authorization info
type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

type PaymentReviewItem struct {
	ExternalID     string     `json:"external_id"`
	EventID        uuid.UUID  `json:"event_id"`
	HolderID       uuid.UUID  `json:"holder_id"`
	Seats          int        `json:"seats"`
	Outcome        string     `json:"outcome"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
	Deliveries     int        `json:"deliveries"`
	LastReceivedAt time.Time  `json:"last_received_at"`
}
