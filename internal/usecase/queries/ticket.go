package queries

import (
	"context"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

type TicketRenderer interface {
	Render(p ticket.Payload) (string, error)
}

type TicketQueries interface {
	GetTicket(ctx context.Context, actor user.Actor, bookingID uuid.UUID) (*TicketView, error)
}

type ticketQueriesImpl struct {
	bookings BookingQueries
	renderer TicketRenderer
}

func NewTicketQueries(bookings BookingQueries, renderer TicketRenderer) TicketQueries {
	return &ticketQueriesImpl{bookings: bookings, renderer: renderer}
}

// GetTicket re-derives the signed QR payload from the stored booking.
func (q *ticketQueriesImpl) GetTicket(ctx context.Context, actor user.Actor, bookingID uuid.UUID) (*TicketView, error) {
	view, err := q.bookings.GetByID(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if view.Status != booking.StatusConfirmed.String() || view.RedemptionToken == nil {
		return nil, ErrTicketNotIssued
	}

	payload, err := q.renderer.Render(ticket.Payload{
		BookingID:   view.ID,
		Token:       *view.RedemptionToken,
		HolderEmail: view.HolderEmail,
		EventTitle:  view.EventTitle,
		Venue:       view.EventVenue,
		ScheduledAt: view.EventScheduledAt,
		Seats:       view.Seats,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to render ticket")
	}

	return &TicketView{
		BookingID:   view.ID,
		EventTitle:  view.EventTitle,
		Venue:       view.EventVenue,
		ScheduledAt: view.EventScheduledAt,
		Seats:       view.Seats,
		Payload:     payload,
		RedeemedAt:  view.RedeemedAt,
	}, nil
}
