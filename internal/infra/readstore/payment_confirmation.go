package readstore

import (
	"context"

	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"
	"cinema-booking/internal/usecase/queries"
)

type PaymentReviewQueries interface {
	ListPaymentConfirmationsForReview(ctx context.Context, db sqlc.DBTX, maxRows int32) ([]sqlc.PaymentConfirmations, error)
}

type PaymentReviewReadStore struct {
	queries PaymentReviewQueries
	db      sqlc.DBTX
}

func NewPaymentReviewReadStore(queries PaymentReviewQueries, db sqlc.DBTX) *PaymentReviewReadStore {
	return &PaymentReviewReadStore{
		queries: queries,
		db:      db,
	}
}

func (r *PaymentReviewReadStore) ListForReview(ctx context.Context, limit int32) ([]*queries.PaymentReviewItem, error) {
	rows, err := r.queries.ListPaymentConfirmationsForReview(ctx, r.db, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list payment confirmations for review", err)
	}

	items := make([]*queries.PaymentReviewItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, &queries.PaymentReviewItem{
			ExternalID:     row.ExternalID,
			EventID:        row.EventID,
			HolderID:       row.HolderID,
			Seats:          int(row.Seats),
			Outcome:        row.Outcome,
			BookingID:      pgconv.UUIDPtrFromPgtype(row.BookingID),
			Deliveries:     int(row.Deliveries),
			LastReceivedAt: pgconv.TimeFromPgtype(row.LastReceivedAt),
		})
	}
	return items, nil
}
