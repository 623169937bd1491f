package event

import (
	"errors"
	"strings"
	"time"

	"cinema-booking/internal/pkg/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus    = errors.New("invalid event status")
	ErrInvalidCapacity  = errors.New("capacity must be positive")
	ErrInvalidSeats     = errors.New("seat count must be positive")
	ErrInvalidTitle     = errors.New("title is required")
	ErrCapacityExceeded = errors.New("not enough seats remaining")
	ErrNotBookable      = errors.New("event is not bookable")
	ErrSeatUnderflow    = errors.New("release exceeds committed seats")
)

// Event owns the committed seat counter. Reserve and Release are the only
// operations that move it.
type Event struct {
	id             uuid.UUID
	title          string
	venue          string
	capacity       int
	committedSeats int
	price          money.Money
	scheduledAt    time.Time
	status         Status
	createdAt      time.Time
	updatedAt      time.Time
}

func NewEvent(title, venue string, capacity int, price money.Money, scheduledAt, now time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Event{
		id:          uuid.New(),
		title:       title,
		venue:       strings.TrimSpace(venue),
		capacity:    capacity,
		price:       price,
		scheduledAt: scheduledAt,
		status:      StatusUpcoming,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	title, venue string,
	capacity, committedSeats int,
	price money.Money,
	scheduledAt time.Time,
	status Status,
	createdAt, updatedAt time.Time,
) *Event {
	return &Event{
		id:             id,
		title:          title,
		venue:          venue,
		capacity:       capacity,
		committedSeats: committedSeats,
		price:          price,
		scheduledAt:    scheduledAt,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Reserve commits seats against capacity. The caller must hold the event row lock.
func (e *Event) Reserve(seats int, now time.Time) error {
	if seats <= 0 {
		return ErrInvalidSeats
	}
	if !e.IsBookable(now) {
		return ErrNotBookable
	}
	if e.committedSeats+seats > e.capacity {
		return ErrCapacityExceeded
	}
	e.committedSeats += seats
	if e.committedSeats == e.capacity {
		e.status = StatusSoldOut
	}
	e.updatedAt = now
	return nil
}

// Release returns seats to the pool. A sold-out event reopens only while it
// has not started yet.
func (e *Event) Release(seats int, now time.Time) error {
	if seats <= 0 {
		return ErrInvalidSeats
	}
	if seats > e.committedSeats {
		return ErrSeatUnderflow
	}
	e.committedSeats -= seats
	if e.status == StatusSoldOut && e.committedSeats < e.capacity && now.Before(e.scheduledAt) {
		e.status = StatusUpcoming
	}
	e.updatedAt = now
	return nil
}

func (e *Event) IsBookable(now time.Time) bool {
	switch e.status {
	case StatusUpcoming, StatusSoldOut:
		return now.Before(e.scheduledAt)
	case StatusCompleted, StatusCancelled:
		return false
	default:
		return false
	}
}

// IsOnDate compares calendar dates in the venue's time zone.
func (e *Event) IsOnDate(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ey, em, ed := e.scheduledAt.In(loc).Date()
	ty, tm, td := t.In(loc).Date()
	return ey == ty && em == tm && ed == td
}

func (e *Event) Remaining() int {
	return e.capacity - e.committedSeats
}

// Total returns the price of the given number of seats.
func (e *Event) Total(seats int) money.Money {
	return e.price.Times(seats)
}

func (e *Event) ID() uuid.UUID          { return e.id }
func (e *Event) Title() string          { return e.title }
func (e *Event) Venue() string          { return e.venue }
func (e *Event) Capacity() int          { return e.capacity }
func (e *Event) CommittedSeats() int    { return e.committedSeats }
func (e *Event) Price() money.Money     { return e.price }
func (e *Event) ScheduledAt() time.Time { return e.scheduledAt }
func (e *Event) Status() Status         { return e.status }
func (e *Event) CreatedAt() time.Time   { return e.createdAt }
func (e *Event) UpdatedAt() time.Time   { return e.updatedAt }
