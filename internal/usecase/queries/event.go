package queries

import (
	"context"
	"time"

	"cinema-booking/internal/infra"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/errs"

	"github.com/google/uuid"
)

type EventReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*EventView, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int32) ([]*EventView, error)
}

type EventQueries interface {
	GetAvailability(ctx context.Context, id uuid.UUID) (*EventView, error)
	ListUpcoming(ctx context.Context, limit int) ([]*EventView, error)
}

type eventQueriesImpl struct {
	repo  EventReadStore
	clock clock.Clock
}

func NewEventQueries(repo EventReadStore, clk clock.Clock) EventQueries {
	return &eventQueriesImpl{repo: repo, clock: clk}
}

func (q *eventQueriesImpl) GetAvailability(ctx context.Context, id uuid.UUID) (*EventView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrEventNotFound)
		}
		return nil, err
	}
	return view, nil
}

func (q *eventQueriesImpl) ListUpcoming(ctx context.Context, limit int) ([]*EventView, error) {
	limit = ValidateLimit(limit)
	return q.repo.ListUpcoming(ctx, q.clock.Now(), int32(limit)) // #nosec G115 -- bounded by ValidateLimit
}
