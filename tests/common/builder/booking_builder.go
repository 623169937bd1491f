//go:build unit || e2e

package builder

import (
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingBuilder struct {
	ID              uuid.UUID
	EventID         uuid.UUID
	HolderID        uuid.UUID
	Seats           int
	Status          string
	PaymentRef      *string
	RedemptionToken *string
	RedeemedAt      *time.Time
	ExpiresAt       time.Time
	Now             time.Time
}

func NewBookingBuilder() *BookingBuilder {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return &BookingBuilder{
		ID:        uuid.New(),
		EventID:   uuid.New(),
		HolderID:  uuid.New(),
		Seats:     2,
		Status:    "pending",
		ExpiresAt: now.Add(15 * time.Minute),
		Now:       now,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) BuildDomain() *booking.Booking {
	return booking.Reconstruct(booking.ReconstructParams{
		ID:              b.ID,
		EventID:         b.EventID,
		HolderID:        b.HolderID,
		Seats:           b.Seats,
		Status:          booking.Status(b.Status),
		PaymentRef:      b.PaymentRef,
		RedemptionToken: b.RedemptionToken,
		RedeemedAt:      b.RedeemedAt,
		ExpiresAt:       b.ExpiresAt,
		Version:         1,
		CreatedAt:       b.Now,
		UpdatedAt:       b.Now,
	})
}

func (b *BookingBuilder) BuildView() *queries.BookingView {
	return &queries.BookingView{
		ID:               b.ID,
		EventID:          b.EventID,
		EventTitle:       "Night of the Living Test",
		EventVenue:       "Screen 1",
		EventScheduledAt: b.Now.Add(7 * 24 * time.Hour),
		HolderID:         b.HolderID,
		HolderEmail:      "test@example.com",
		Seats:            b.Seats,
		Status:           b.Status,
		Currency:         "EUR",
		UnitPrice:        decimal.RequireFromString("12.00"),
		Total:            decimal.New(int64(b.Seats)*1200, -2),
		PaymentRef:       b.PaymentRef,
		RedeemedAt:       b.RedeemedAt,
		ExpiresAt:        b.ExpiresAt,
		CreatedAt:        b.Now,
		UpdatedAt:        b.Now,
		RedemptionToken:  b.RedemptionToken,
	}
}

func (b *BookingBuilder) ForEvent(eventID uuid.UUID) *BookingBuilder {
	b.EventID = eventID
	return b
}

func (b *BookingBuilder) ForHolder(holderID uuid.UUID) *BookingBuilder {
	b.HolderID = holderID
	return b
}

func (b *BookingBuilder) WithSeats(seats int) *BookingBuilder {
	b.Seats = seats
	return b
}

func (b *BookingBuilder) Overdue() *BookingBuilder {
	b.ExpiresAt = b.Now.Add(-time.Minute)
	return b
}

func (b *BookingBuilder) Confirmed(paymentRef, token string) *BookingBuilder {
	b.Status = "confirmed"
	b.PaymentRef = &paymentRef
	b.RedemptionToken = &token
	return b
}

func (b *BookingBuilder) Redeemed(at time.Time) *BookingBuilder {
	b.RedeemedAt = &at
	return b
}

func (b *BookingBuilder) Cancelled() *BookingBuilder {
	b.Status = "cancelled"
	return b
}
