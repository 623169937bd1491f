package converter

import (
	"cinema-booking/internal/domain/event"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/money"
	"cinema-booking/internal/pkg/pgconv"
)

func EventFromInfra(row sqlc.Events) (*event.Event, error) {
	price, err := money.New(row.UnitPriceMinor, row.Currency)
	if err != nil {
		return nil, err
	}
	status, err := event.NewStatus(row.Status)
	if err != nil {
		return nil, err
	}
	return event.Reconstruct(
		row.ID,
		row.Title,
		row.Venue,
		int(row.Capacity),
		int(row.CommittedSeats),
		price,
		pgconv.TimeFromPgtype(row.ScheduledAt),
		status,
		pgconv.TimeFromPgtype(row.CreatedAt),
		pgconv.TimeFromPgtype(row.UpdatedAt),
	), nil
}

func EventToCreateParams(e *event.Event) sqlc.CreateEventParams {
	return sqlc.CreateEventParams{
		ID:             e.ID(),
		Title:          e.Title(),
		Venue:          e.Venue(),
		Capacity:       int32(e.Capacity()),       // #nosec G115 -- bounded by CHECK constraint
		CommittedSeats: int32(e.CommittedSeats()), // #nosec G115
		UnitPriceMinor: e.Price().Minor(),
		Currency:       e.Price().Currency(),
		ScheduledAt:    pgconv.TimeToPgtype(e.ScheduledAt()),
		Status:         e.Status().String(),
	}
}

func EventToSeatParams(e *event.Event) sqlc.UpdateEventSeatsParams {
	return sqlc.UpdateEventSeatsParams{
		ID:             e.ID(),
		CommittedSeats: int32(e.CommittedSeats()), // #nosec G115
		Status:         e.Status().String(),
	}
}
