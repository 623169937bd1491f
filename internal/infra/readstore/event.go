package readstore

import (
	"context"
	"time"

	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/money"
	"cinema-booking/internal/pkg/pgconv"
	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

type EventViewQueries interface {
	GetEventByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Events, error)
	ListUpcomingEvents(ctx context.Context, db sqlc.DBTX, arg sqlc.ListUpcomingEventsParams) ([]sqlc.Events, error)
}

type EventReadStore struct {
	queries EventViewQueries
	db      sqlc.DBTX
}

func NewEventReadStore(queries EventViewQueries, db sqlc.DBTX) *EventReadStore {
	return &EventReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *EventReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.EventView, error) {
	row, err := r.queries.GetEventByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("event not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get event by id", err)
	}
	return toEventView(row)
}

func (r *EventReadStore) ListUpcoming(ctx context.Context, now time.Time, limit int32) ([]*queries.EventView, error) {
	rows, err := r.queries.ListUpcomingEvents(ctx, r.db, sqlc.ListUpcomingEventsParams{
		Now:     pgconv.TimeToPgtype(now),
		MaxRows: limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list upcoming events", err)
	}

	views := make([]*queries.EventView, 0, len(rows))
	for _, row := range rows {
		v, err := toEventView(row)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func toEventView(row sqlc.Events) (*queries.EventView, error) {
	price, err := money.New(row.UnitPriceMinor, row.Currency)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid event price", err)
	}
	return &queries.EventView{
		ID:             row.ID,
		Title:          row.Title,
		Venue:          row.Venue,
		ScheduledAt:    pgconv.TimeFromPgtype(row.ScheduledAt),
		Capacity:       int(row.Capacity),
		CommittedSeats: int(row.CommittedSeats),
		Remaining:      int(row.Capacity - row.CommittedSeats),
		Status:         row.Status,
		Currency:       price.Currency(),
		UnitPrice:      price.Decimal(),
	}, nil
}
