package repository

import (
	"context"

	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"
	"cinema-booking/internal/usecase/shared"
)

type CheckInWriteQueries interface {
	CreateCheckInAttempt(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateCheckInAttemptParams) error
}

// CheckInRepository appends to the check-in audit trail. Rows are never updated.
type CheckInRepository struct {
	queries CheckInWriteQueries
}

func NewCheckInRepository(queries CheckInWriteQueries) *CheckInRepository {
	return &CheckInRepository{queries: queries}
}

func (r *CheckInRepository) Append(ctx context.Context, tx sqlc.DBTX, attempt shared.CheckInAttempt) error {
	err := r.queries.CreateCheckInAttempt(ctx, tx, sqlc.CreateCheckInAttemptParams{
		BookingID:        pgconv.UUIDPtrToPgtype(attempt.BookingID),
		TokenFingerprint: attempt.Fingerprint,
		OperatorID:       attempt.OperatorID,
		Outcome:          attempt.Outcome.String(),
		ScannedAt:        pgconv.TimeToPgtype(attempt.ScannedAt),
	})
	if err != nil {
		return infra.WrapRepoErr("failed to append check-in attempt", err)
	}
	return nil
}
