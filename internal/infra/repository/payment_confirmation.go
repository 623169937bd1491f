package repository

import (
	"context"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type PaymentConfirmationWriteQueries interface {
	RecordPaymentConfirmation(ctx context.Context, db sqlc.DBTX, arg sqlc.RecordPaymentConfirmationParams) (sqlc.PaymentConfirmations, error)
	UpdatePaymentConfirmationOutcome(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdatePaymentConfirmationOutcomeParams) error
	GetPaymentConfirmation(ctx context.Context, db sqlc.DBTX, externalID string) (sqlc.PaymentConfirmations, error)
}

type PaymentConfirmationRepository struct {
	queries PaymentConfirmationWriteQueries
}

func NewPaymentConfirmationRepository(queries PaymentConfirmationWriteQueries) *PaymentConfirmationRepository {
	return &PaymentConfirmationRepository{queries: queries}
}

// Record upserts the inbox row and returns it as stored. On a redelivery the
// stored event, holder and seats are the first delivery's.
func (r *PaymentConfirmationRepository) Record(ctx context.Context, tx sqlc.DBTX, c shared.PaymentConfirmation, receivedAt time.Time) (*shared.PaymentConfirmationRecord, error) {
	row, err := r.queries.RecordPaymentConfirmation(ctx, tx, sqlc.RecordPaymentConfirmationParams{
		ExternalID: c.ExternalID,
		EventID:    c.EventID,
		HolderID:   c.HolderID,
		Seats:      int32(c.Seats), // #nosec G115 -- validated at the boundary
		ReceivedAt: pgconv.TimeToPgtype(receivedAt),
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to record payment confirmation", err)
	}
	return toConfirmationRecord(row), nil
}

// UpdateOutcome never clears a review flag once set.
func (r *PaymentConfirmationRepository) UpdateOutcome(ctx context.Context, tx sqlc.DBTX, externalID string, outcome booking.ReconcileOutcome, bookingID *uuid.UUID) error {
	err := r.queries.UpdatePaymentConfirmationOutcome(ctx, tx, sqlc.UpdatePaymentConfirmationOutcomeParams{
		Outcome:     outcome.String(),
		NeedsReview: outcome.NeedsReview(),
		BookingID:   pgconv.UUIDPtrToPgtype(bookingID),
		ExternalID:  externalID,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to update payment confirmation outcome", err)
	}
	return nil
}

// FlagForReview marks a confirmation for manual handling. Its booking link is kept.
func (r *PaymentConfirmationRepository) FlagForReview(ctx context.Context, tx sqlc.DBTX, externalID string, outcome booking.ReconcileOutcome) error {
	err := r.queries.UpdatePaymentConfirmationOutcome(ctx, tx, sqlc.UpdatePaymentConfirmationOutcomeParams{
		Outcome:     outcome.String(),
		NeedsReview: true,
		ExternalID:  externalID,
	})
	if err != nil {
		return infra.WrapRepoErr("failed to flag payment confirmation for review", err)
	}
	return nil
}

func (r *PaymentConfirmationRepository) Find(ctx context.Context, tx sqlc.DBTX, externalID string) (*shared.PaymentConfirmationRecord, error) {
	row, err := r.queries.GetPaymentConfirmation(ctx, tx, externalID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment confirmation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to get payment confirmation", err)
	}
	return toConfirmationRecord(row), nil
}

func toConfirmationRecord(row sqlc.PaymentConfirmations) *shared.PaymentConfirmationRecord {
	return &shared.PaymentConfirmationRecord{
		PaymentConfirmation: shared.PaymentConfirmation{
			ExternalID: row.ExternalID,
			EventID:    row.EventID,
			HolderID:   row.HolderID,
			Seats:      int(row.Seats),
		},
		Outcome:     row.Outcome,
		NeedsReview: row.NeedsReview,
		BookingID:   pgconv.UUIDPtrFromPgtype(row.BookingID),
		Deliveries:  int(row.Deliveries),
	}
}
