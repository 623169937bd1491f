//go:build unit || e2e

package builder

import (
	"time"

	"cinema-booking/internal/domain/event"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type EventBuilder struct {
	ID             uuid.UUID
	Title          string
	Venue          string
	Capacity       int
	CommittedSeats int
	UnitPriceMinor int64
	Currency       string
	ScheduledAt    time.Time
	Status         string
	Now            time.Time
}

func NewEventBuilder() *EventBuilder {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return &EventBuilder{
		ID:             uuid.New(),
		Title:          "Night of the Living Test",
		Venue:          "Screen 1",
		Capacity:       100,
		UnitPriceMinor: 1200,
		Currency:       "EUR",
		ScheduledAt:    now.Add(7 * 24 * time.Hour),
		Status:         "upcoming",
		Now:            now,
	}
}

func (e *EventBuilder) With(mutate func(*EventBuilder)) *EventBuilder {
	mutate(e)
	return e
}

// BuildNew runs the creation validation path.
func (e *EventBuilder) BuildNew() (*event.Event, error) {
	price, err := money.New(e.UnitPriceMinor, e.Currency)
	if err != nil {
		return nil, err
	}
	return event.NewEvent(e.Title, e.Venue, e.Capacity, price, e.ScheduledAt, e.Now)
}

// BuildDomain rebuilds a stored event with the builder's counters and status.
func (e *EventBuilder) BuildDomain() *event.Event {
	price, err := money.New(e.UnitPriceMinor, e.Currency)
	if err != nil {
		panic(err)
	}
	return event.Reconstruct(
		e.ID, e.Title, e.Venue,
		e.Capacity, e.CommittedSeats,
		price, e.ScheduledAt,
		event.Status(e.Status),
		e.Now, e.Now,
	)
}

func (e *EventBuilder) BuildInfra() sqlc.Events {
	return sqlc.Events{
		ID:             e.ID,
		Title:          e.Title,
		Venue:          e.Venue,
		Capacity:       int32(e.Capacity),
		CommittedSeats: int32(e.CommittedSeats),
		UnitPriceMinor: e.UnitPriceMinor,
		Currency:       e.Currency,
		ScheduledAt:    pgtype.Timestamptz{Time: e.ScheduledAt, Valid: true},
		Status:         e.Status,
		CreatedAt:      pgtype.Timestamptz{Time: e.Now, Valid: true},
		UpdatedAt:      pgtype.Timestamptz{Time: e.Now, Valid: true},
	}
}

func (e *EventBuilder) WithID(id uuid.UUID) *EventBuilder {
	e.ID = id
	return e
}

func (e *EventBuilder) WithTitle(title string) *EventBuilder {
	e.Title = title
	return e
}

func (e *EventBuilder) WithCapacity(capacity int) *EventBuilder {
	e.Capacity = capacity
	return e
}

func (e *EventBuilder) WithCommitted(seats int) *EventBuilder {
	e.CommittedSeats = seats
	return e
}

func (e *EventBuilder) WithPrice(minor int64, currency string) *EventBuilder {
	e.UnitPriceMinor = minor
	e.Currency = currency
	return e
}

func (e *EventBuilder) WithStatus(status string) *EventBuilder {
	e.Status = status
	return e
}

func (e *EventBuilder) ScheduledIn(d time.Duration) *EventBuilder {
	e.ScheduledAt = e.Now.Add(d)
	return e
}

func (e *EventBuilder) SoldOut() *EventBuilder {
	e.CommittedSeats = e.Capacity
	e.Status = "sold_out"
	return e
}
