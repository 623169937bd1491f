//go:build unit

package memuow

import (
	"context"
	"sort"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// BookingReads serves the query side from the same state.
func (s *Store) BookingReads() queries.BookingReadStore {
	return &bookingReads{s: s}
}

func (s *Store) EventReads() queries.EventReadStore {
	return &eventReads{s: s}
}

type bookingReads struct{ s *Store }

func (r *bookingReads) FindByID(_ context.Context, id uuid.UUID) (*queries.BookingView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.st.bookings[id]
	if !ok {
		return nil, notFound("booking not found")
	}
	ev := r.s.st.events[b.EventID()]
	holder := r.s.st.holders[b.HolderID()]
	return bookingView(b, ev, holder.Email), nil
}

func (r *bookingReads) FindByHolderFirstPage(_ context.Context, holderID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	return r.list(holderID, func(*booking.Booking) bool { return true }, limit), nil
}

func (r *bookingReads) FindByHolderKeyset(_ context.Context, holderID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	return r.list(holderID, func(b *booking.Booking) bool {
		if b.CreatedAt().Equal(lastCreatedAt) {
			return b.ID().String() < lastID.String()
		}
		return b.CreatedAt().Before(lastCreatedAt)
	}, limit), nil
}

// list orders newest first, ties broken by id descending.
func (r *bookingReads) list(holderID uuid.UUID, after func(*booking.Booking) bool, limit int32) []*queries.BookingListItem {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rows []*booking.Booking
	for _, b := range r.s.st.bookings {
		if b.HolderID() == holderID && after(b) {
			rows = append(rows, b)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt().Equal(rows[j].CreatedAt()) {
			return rows[i].ID().String() > rows[j].ID().String()
		}
		return rows[i].CreatedAt().After(rows[j].CreatedAt())
	})
	if int32(len(rows)) > limit {
		rows = rows[:limit]
	}

	items := make([]*queries.BookingListItem, 0, len(rows))
	for _, b := range rows {
		ev := r.s.st.events[b.EventID()]
		item := &queries.BookingListItem{
			ID:         b.ID(),
			EventID:    b.EventID(),
			Seats:      b.Seats(),
			Status:     b.Status().String(),
			RedeemedAt: b.RedeemedAt(),
			CreatedAt:  b.CreatedAt(),
		}
		if ev != nil {
			item.EventTitle = ev.Title()
			item.EventScheduledAt = ev.ScheduledAt()
		}
		items = append(items, item)
	}
	return items
}

func bookingView(b *booking.Booking, ev *event.Event, holderEmail string) *queries.BookingView {
	v := &queries.BookingView{
		ID:                b.ID(),
		EventID:           b.EventID(),
		HolderID:          b.HolderID(),
		HolderEmail:       holderEmail,
		Seats:             b.Seats(),
		Status:            b.Status().String(),
		PaymentRef:        b.PaymentRef(),
		CheckoutSessionID: b.CheckoutSessionID(),
		CheckoutURL:       b.CheckoutURL(),
		RedeemedAt:        b.RedeemedAt(),
		ExpiresAt:         b.ExpiresAt(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
		RedemptionToken:   b.RedemptionToken(),
	}
	if ev != nil {
		v.EventTitle = ev.Title()
		v.EventVenue = ev.Venue()
		v.EventScheduledAt = ev.ScheduledAt()
		v.Currency = ev.Price().Currency()
		v.UnitPrice = ev.Price().Decimal()
		v.Total = ev.Total(b.Seats()).Decimal()
	}
	return v
}

type eventReads struct{ s *Store }

func (r *eventReads) FindByID(_ context.Context, id uuid.UUID) (*queries.EventView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ev, ok := r.s.st.events[id]
	if !ok {
		return nil, notFound("event not found")
	}
	return eventView(ev), nil
}

func (r *eventReads) ListUpcoming(_ context.Context, now time.Time, limit int32) ([]*queries.EventView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var views []*queries.EventView
	for _, ev := range r.s.st.events {
		if ev.ScheduledAt().After(now) && ev.Status() != event.StatusCancelled {
			views = append(views, eventView(ev))
		}
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ScheduledAt.Before(views[j].ScheduledAt) })
	if int32(len(views)) > limit {
		views = views[:limit]
	}
	return views, nil
}

func eventView(ev *event.Event) *queries.EventView {
	return &queries.EventView{
		ID:             ev.ID(),
		Title:          ev.Title(),
		Venue:          ev.Venue(),
		ScheduledAt:    ev.ScheduledAt(),
		Capacity:       ev.Capacity(),
		CommittedSeats: ev.CommittedSeats(),
		Remaining:      ev.Remaining(),
		Status:         ev.Status().String(),
		Currency:       ev.Price().Currency(),
		UnitPrice:      ev.Price().Decimal(),
	}
}
