package repository

import (
	"context"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/infra"
	"cinema-booking/internal/infra/repository/converter"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingWriteQueries interface {
	CreateBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateBookingParams) error
	LockBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error)
	LockBookingByHolderEvent(ctx context.Context, db sqlc.DBTX, arg sqlc.LockBookingByHolderEventParams) (sqlc.Bookings, error)
	LockBookingByToken(ctx context.Context, db sqlc.DBTX, redemptionToken string) (sqlc.Bookings, error)
	UpdateBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateBookingParams) (int64, error)
	ListExpiredPendingBookings(ctx context.Context, db sqlc.DBTX, arg sqlc.ListExpiredPendingBookingsParams) ([]sqlc.ListExpiredPendingBookingsRow, error)
}

type BookingRepository struct {
	queries BookingWriteQueries
}

func NewBookingRepository(queries BookingWriteQueries) *BookingRepository {
	return &BookingRepository{queries: queries}
}

// Create maps the (holder, event) unique violation to KindDuplicateKey.
func (r *BookingRepository) Create(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) error {
	if err := r.queries.CreateBooking(ctx, tx, converter.BookingToCreateParams(b)); err != nil {
		return infra.WrapRepoErr("failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) LockByID(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (*booking.Booking, error) {
	row, err := r.queries.LockBookingByID(ctx, tx, id)
	return r.toDomain(row, err, "booking not found")
}

func (r *BookingRepository) LockByHolderEvent(ctx context.Context, tx sqlc.DBTX, holderID, eventID uuid.UUID) (*booking.Booking, error) {
	row, err := r.queries.LockBookingByHolderEvent(ctx, tx, sqlc.LockBookingByHolderEventParams{
		HolderID: holderID,
		EventID:  eventID,
	})
	return r.toDomain(row, err, "no booking for holder and event")
}

func (r *BookingRepository) LockByToken(ctx context.Context, tx sqlc.DBTX, token string) (*booking.Booking, error) {
	row, err := r.queries.LockBookingByToken(ctx, tx, token)
	return r.toDomain(row, err, "no booking for token")
}

func (r *BookingRepository) Update(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) error {
	n, err := r.queries.UpdateBooking(ctx, tx, converter.BookingToUpdateParams(b))
	if err != nil {
		return infra.WrapRepoErr("failed to update booking", err)
	}
	if n == 0 {
		return infra.WrapRepoErr("booking version changed", nil, infra.KindConflict)
	}
	return nil
}

func (r *BookingRepository) ListExpiredPending(ctx context.Context, tx sqlc.DBTX, now time.Time, limit int32) ([]shared.ExpiredHold, error) {
	rows, err := r.queries.ListExpiredPendingBookings(ctx, tx, sqlc.ListExpiredPendingBookingsParams{
		Now:     pgconv.TimeToPgtype(now),
		MaxRows: limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expired holds", err)
	}
	holds := make([]shared.ExpiredHold, 0, len(rows))
	for _, row := range rows {
		holds = append(holds, shared.ExpiredHold{BookingID: row.ID, EventID: row.EventID})
	}
	return holds, nil
}

func (r *BookingRepository) toDomain(row sqlc.Bookings, err error, notFoundMsg string) (*booking.Booking, error) {
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to lock booking", err)
	}
	b, err := converter.BookingFromInfra(row)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt booking row", err)
	}
	return b, nil
}
