package readstore

import (
	"context"
	"time"

	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/money"
	"cinema-booking/internal/pkg/pgconv"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type BookingViewQueries interface {
	GetBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error)
	GetBookingView(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.GetBookingViewRow, error)
	ListBookingsByHolder(ctx context.Context, db sqlc.DBTX, arg sqlc.ListBookingsByHolderParams) ([]sqlc.ListBookingsByHolderRow, error)
}

type BookingReadStore struct {
	queries BookingViewQueries
	db      sqlc.DBTX
}

func NewBookingReadStore(queries BookingViewQueries, db sqlc.DBTX) *BookingReadStore {
	return &BookingReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *BookingReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	row, err := r.queries.GetBookingView(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking view by id", err)
	}

	unit, err := money.New(row.UnitPriceMinor, row.Currency)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid event price", err)
	}

	return &queries.BookingView{
		ID:                row.ID,
		EventID:           row.EventID,
		EventTitle:        row.EventTitle,
		EventVenue:        row.EventVenue,
		EventScheduledAt:  pgconv.TimeFromPgtype(row.EventScheduledAt),
		HolderID:          row.HolderID,
		HolderEmail:       row.HolderEmail,
		Seats:             int(row.Seats),
		Status:            row.Status,
		Currency:          unit.Currency(),
		UnitPrice:         unit.Decimal(),
		Total:             unit.Times(int(row.Seats)).Decimal(),
		PaymentRef:        pgconv.StringPtrFromPgtype(row.PaymentRef),
		CheckoutSessionID: pgconv.StringPtrFromPgtype(row.CheckoutSessionID),
		CheckoutURL:       pgconv.StringPtrFromPgtype(row.CheckoutUrl),
		RedeemedAt:        pgconv.TimePtrFromPgtype(row.RedeemedAt),
		ExpiresAt:         pgconv.TimeFromPgtype(row.ExpiresAt),
		CreatedAt:         pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:         pgconv.TimeFromPgtype(row.UpdatedAt),
		RedemptionToken:   pgconv.StringPtrFromPgtype(row.RedemptionToken),
	}, nil
}

// Snapshot reads the booking row without locking it.
func (r *BookingReadStore) Snapshot(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	row, err := r.queries.GetBookingByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get booking by id", err)
	}
	return &shared.BookingSnapshot{
		ID:       row.ID,
		EventID:  row.EventID,
		HolderID: row.HolderID,
		Status:   row.Status,
	}, nil
}

func (r *BookingReadStore) FindByHolderFirstPage(ctx context.Context, holderID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.queries.ListBookingsByHolder(ctx, r.db, sqlc.ListBookingsByHolderParams{
		HolderID: holderID,
		MaxRows:  limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings first page by holder", err)
	}
	return mapBookingListRows(rows), nil
}

func (r *BookingReadStore) FindByHolderKeyset(ctx context.Context, holderID uuid.UUID, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := r.queries.ListBookingsByHolder(ctx, r.db, sqlc.ListBookingsByHolderParams{
		HolderID:       holderID,
		AfterCreatedAt: pgconv.TimeToPgtype(lastCreatedAt),
		AfterID:        pgtype.UUID{Bytes: lastID, Valid: true},
		MaxRows:        limit,
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings keyset by holder", err)
	}
	return mapBookingListRows(rows), nil
}

func mapBookingListRows(rows []sqlc.ListBookingsByHolderRow) []*queries.BookingListItem {
	items := make([]*queries.BookingListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &queries.BookingListItem{
			ID:               row.ID,
			EventID:          row.EventID,
			EventTitle:       row.EventTitle,
			EventScheduledAt: pgconv.TimeFromPgtype(row.EventScheduledAt),
			Seats:            int(row.Seats),
			Status:           row.Status,
			RedeemedAt:       pgconv.TimePtrFromPgtype(row.RedeemedAt),
			CreatedAt:        pgconv.TimeFromPgtype(row.CreatedAt),
		})
	}
	return items
}
