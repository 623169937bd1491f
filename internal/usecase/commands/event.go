package commands

import (
	"context"
	"log/slog"
	"time"

	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/pkg/money"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"
)

type CreateEventRequest struct {
	Title          string
	Venue          string
	Capacity       int
	UnitPriceMinor int64
	Currency       string
	ScheduledAt    time.Time
}

type EventCommands interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*queries.EventView, error)
}

type eventUseCaseImpl struct {
	uow    shared.UnitOfWork
	events queries.EventQueries
	clock  clock.Clock
}

func NewEventUseCase(uow shared.UnitOfWork, events queries.EventQueries, clk clock.Clock) EventCommands {
	return &eventUseCaseImpl{uow: uow, events: events, clock: clk}
}

func (uc *eventUseCaseImpl) CreateEvent(ctx context.Context, req CreateEventRequest) (*queries.EventView, error) {
	price, err := money.New(req.UnitPriceMinor, req.Currency)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}
	now := uc.clock.Now()
	if !req.ScheduledAt.After(now) {
		return nil, errs.Wrap(ErrInvalidRequest, "event must be scheduled in the future")
	}
	ev, err := event.NewEvent(req.Title, req.Venue, req.Capacity, price, req.ScheduledAt, now)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidRequest)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Events().Create(ctx, tx.DB(), ev)
	})
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}

	slog.Info("event created", "event_id", ev.ID(), "capacity", ev.Capacity(), "scheduled_at", ev.ScheduledAt())
	return uc.events.GetAvailability(ctx, ev.ID())
}
