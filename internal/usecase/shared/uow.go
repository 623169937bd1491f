package shared

import (
	"context"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	sqlc "cinema-booking/internal/infra/sqlc/generated"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error
	// WithDB: Single query operations using implicit transactions
	WithDB(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error
	// CommandReads: Direct access to command reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Events() EventRepository
	Bookings() BookingRepository
	Idempotency() IdempotencyRepository
	Notifications() NotificationRepository
	PaymentConfirmations() PaymentConfirmationRepository
	CheckIns() CheckInRepository
	Users() UserRepository
	Reads() CommandReads
	DB() sqlc.DBTX
}

type CommandReads interface {
	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
	HolderByID(ctx context.Context, id uuid.UUID) (*HolderSnapshot, error)
	BookingByID(ctx context.Context, id uuid.UUID) (*BookingSnapshot, error)
}

// Lock order inside one transaction is always event row, then booking row.
type EventRepository interface {
	Create(ctx context.Context, tx sqlc.DBTX, e *event.Event) error
	FindByID(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (*event.Event, error)
	LockByID(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (*event.Event, error)
	SaveSeats(ctx context.Context, tx sqlc.DBTX, e *event.Event) error
	CompletePast(ctx context.Context, tx sqlc.DBTX, now time.Time) (int64, error)
}

type BookingRepository interface {
	Create(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) error
	LockByID(ctx context.Context, tx sqlc.DBTX, id uuid.UUID) (*booking.Booking, error)
	LockByHolderEvent(ctx context.Context, tx sqlc.DBTX, holderID, eventID uuid.UUID) (*booking.Booking, error)
	LockByToken(ctx context.Context, tx sqlc.DBTX, token string) (*booking.Booking, error)
	// Update is a compare-and-set on (id, version).
	Update(ctx context.Context, tx sqlc.DBTX, b *booking.Booking) error
	ListExpiredPending(ctx context.Context, tx sqlc.DBTX, now time.Time, limit int32) ([]ExpiredHold, error)
}

type IdempotencyRepository interface {
	TryInsert(ctx context.Context, tx sqlc.DBTX, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	UpdateStatusCompleted(ctx context.Context, tx sqlc.DBTX, key, userID uuid.UUID, responseHash string, bookingID uuid.UUID) error
	ClaimExpired(ctx context.Context, tx sqlc.DBTX, key, userID uuid.UUID, requestHash string, expiresAt time.Time) (bool, error)
	Delete(ctx context.Context, tx sqlc.DBTX, key, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, tx sqlc.DBTX) (int64, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, tx sqlc.DBTX, kind, topic string, payload []byte, runAt time.Time) error
	// ClaimDue marks due jobs as sending until leaseUntil and returns them.
	// A job whose lease lapses without a recorded result is due again.
	ClaimDue(ctx context.Context, tx sqlc.DBTX, now, leaseUntil time.Time, limit int32) ([]NotificationJob, error)
	UpdateJobStatus(ctx context.Context, tx sqlc.DBTX, update NotificationJobUpdate) error
}

type PaymentConfirmationRepository interface {
	// Record upserts the inbox row and returns it as stored, with the
	// delivery count. A redelivery keeps the first delivery's payload.
	Record(ctx context.Context, tx sqlc.DBTX, c PaymentConfirmation, receivedAt time.Time) (*PaymentConfirmationRecord, error)
	UpdateOutcome(ctx context.Context, tx sqlc.DBTX, externalID string, outcome booking.ReconcileOutcome, bookingID *uuid.UUID) error
	FlagForReview(ctx context.Context, tx sqlc.DBTX, externalID string, outcome booking.ReconcileOutcome) error
	Find(ctx context.Context, tx sqlc.DBTX, externalID string) (*PaymentConfirmationRecord, error)
}

type CheckInRepository interface {
	Append(ctx context.Context, tx sqlc.DBTX, attempt CheckInAttempt) error
}

type UserRepository interface {
	UpdateLastLogin(ctx context.Context, tx sqlc.DBTX, userID uuid.UUID) error
}
