package repository

import (
	"context"
	"time"

	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/infra"
	"cinema-booking/internal/infra/repository/converter"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type EventWriteQueries interface {
	CreateEvent(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateEventParams) error
	GetEventByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Events, error)
	LockEventByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Events, error)
	UpdateEventSeats(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateEventSeatsParams) (int64, error)
	CompletePastEvents(ctx context.Context, db sqlc.DBTX, now pgtype.Timestamptz) (int64, error)
}

type EventRepository struct {
	queries EventWriteQueries
}

func NewEventRepository(queries EventWriteQueries) *EventRepository {
	return &EventRepository{queries: queries}
}

func (r *EventRepository) Create(ctx context.Context, tx sqlc.DBTX, e *event.Event) error {
	if err := r.queries.CreateEvent(ctx, tx, converter.EventToCreateParams(e)); err != nil {
		return infra.WrapRepoErr("failed to create event", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (*event.Event, error) {
	row, err := r.queries.GetEventByID(ctx, tx, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get event", err)
	}
	return r.toDomain(row)
}

// LockByID takes the event row lock that serializes seat reservations.
func (r *EventRepository) LockByID(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (*event.Event, error) {
	row, err := r.queries.LockEventByID(ctx, tx, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock event", err)
	}
	return r.toDomain(row)
}

func (r *EventRepository) SaveSeats(ctx context.Context, tx sqlc.DBTX, e *event.Event) error {
	n, err := r.queries.UpdateEventSeats(ctx, tx, converter.EventToSeatParams(e))
	if err != nil {
		return infra.WrapRepoErr("failed to update event seats", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("event not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *EventRepository) CompletePast(ctx context.Context, tx sqlc.DBTX, cutoff time.Time) (int64, error) {
	n, err := r.queries.CompletePastEvents(ctx, tx, pgconv.TimeToPgtype(cutoff))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to complete past events", err)
	}
	return n, nil
}

func (r *EventRepository) toDomain(row sqlc.Events) (*event.Event, error) {
	e, err := converter.EventFromInfra(row)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt event row", err)
	}
	return e, nil
}
