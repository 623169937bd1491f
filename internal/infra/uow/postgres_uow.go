package uow

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"cinema-booking/internal/infra/readstore"
	"cinema-booking/internal/infra/repository"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

// SQLSTATEs that mean "run the whole transaction again".
var retryableCodes = map[string]string{
	"40001": "serialization_failure",
	"40P01": "deadlock_detected",
	"55P03": "lock_not_available",
}

type retryPolicy struct {
	maxRetries int
	base       time.Duration
}

// backoff doubles per attempt and adds up to 20% jitter so contending
// checkouts do not retry in lockstep.
func (p retryPolicy) backoff(attempt int) time.Duration {
	wait := p.base << attempt
	if jitter := int64(wait / 5); jitter > 0 {
		wait += time.Duration(rand.Int64N(jitter))
	}
	return wait
}

// repositories are stateless over sqlc.Queries, so one set serves every transaction.
type repositories struct {
	events        *repository.EventRepository
	bookings      *repository.BookingRepository
	idempotency   *repository.IdempotencyRepository
	notifications *repository.NotificationRepository
	payments      *repository.PaymentConfirmationRepository
	checkIns      *repository.CheckInRepository
	users         *repository.UserRepository
}

type PostgresUoW struct {
	pool   *pgxpool.Pool
	q      *sqlc.Queries
	repos  repositories
	policy retryPolicy
}

func NewPostgresUoW(pool *pgxpool.Pool, q *sqlc.Queries) shared.UnitOfWork {
	return &PostgresUoW{
		pool: pool,
		q:    q,
		repos: repositories{
			events:        repository.NewEventRepository(q),
			bookings:      repository.NewBookingRepository(q),
			idempotency:   repository.NewIdempotencyRepository(q),
			notifications: repository.NewNotificationRepository(q),
			payments:      repository.NewPaymentConfirmationRepository(q),
			checkIns:      repository.NewCheckInRepository(q),
			users:         repository.NewUserRepository(q),
		},
		policy: retryPolicy{maxRetries: 3, base: 50 * time.Millisecond},
	}
}

// Within runs fn under READ COMMITTED. Writers serialize on row locks
// (SELECT ... FOR UPDATE), and fn is re-run from scratch on lock conflicts.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt <= u.policy.maxRetries; attempt++ {
		err := u.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		code, retryable := retryableCode(err)
		if !retryable {
			return err
		}
		lastErr = err

		if attempt == u.policy.maxRetries {
			break
		}
		wait := u.policy.backoff(attempt)
		slog.Warn("retrying transaction",
			"attempt", attempt+1,
			"reason", code,
			"wait_ms", wait.Milliseconds())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	slog.Error("transaction failed after max retries",
		"attempts", u.policy.maxRetries+1,
		"error", lastErr.Error())
	return errs.Mark(lastErr, errMaxRetriesExceeded)
}

// attempt owns exactly one pgx transaction so a retry never holds two connections.
func (u *PostgresUoW) attempt(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}
	defer rollback(ctx, pgxTx)

	if err := fn(ctx, &pgTx{dbtx: pgxTx, uow: u}); err != nil {
		return err
	}
	if err := pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, errTransactionCommit)
	}
	return nil
}

func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}
	defer rollback(ctx, pgxTx)

	if err := fn(ctx, pgxTx); err != nil {
		return err
	}
	return pgxTx.Commit(ctx)
}

func (u *PostgresUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db sqlc.DBTX) error) error {
	return fn(ctx, u.pool)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return newCommandReads(u.q, u.pool)
}

// rollback after a successful commit is a no-op returning ErrTxClosed.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", "error", err.Error())
	}
}

func retryableCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	name, ok := retryableCodes[pgErr.Code]
	return name, ok
}

type pgTx struct {
	dbtx  sqlc.DBTX
	uow   *PostgresUoW
	reads shared.CommandReads
}

func (t *pgTx) DB() sqlc.DBTX {
	return t.dbtx
}

func (t *pgTx) Events() shared.EventRepository {
	return t.uow.repos.events
}

func (t *pgTx) Bookings() shared.BookingRepository {
	return t.uow.repos.bookings
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	return t.uow.repos.idempotency
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	return t.uow.repos.notifications
}

func (t *pgTx) PaymentConfirmations() shared.PaymentConfirmationRepository {
	return t.uow.repos.payments
}

func (t *pgTx) CheckIns() shared.CheckInRepository {
	return t.uow.repos.checkIns
}

func (t *pgTx) Users() shared.UserRepository {
	return t.uow.repos.users
}

// Reads sees the transaction's own uncommitted writes.
func (t *pgTx) Reads() shared.CommandReads {
	if t.reads == nil {
		t.reads = newCommandReads(t.uow.q, t.dbtx)
	}
	return t.reads
}

type commandReads struct {
	idempotency *readstore.IdempotencyReadStore
	users       *readstore.UserReadStore
	bookings    *readstore.BookingReadStore
}

func newCommandReads(q *sqlc.Queries, db sqlc.DBTX) *commandReads {
	return &commandReads{
		idempotency: readstore.NewIdempotencyReadStore(q, db),
		users:       readstore.NewUserReadStore(q, db),
		bookings:    readstore.NewBookingReadStore(q, db),
	}
}

func (r *commandReads) IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	return r.idempotency.Get(ctx, key, userID)
}

func (r *commandReads) HolderByID(ctx context.Context, id uuid.UUID) (*shared.HolderSnapshot, error) {
	u, err := r.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &shared.HolderSnapshot{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}, nil
}

func (r *commandReads) BookingByID(ctx context.Context, id uuid.UUID) (*shared.BookingSnapshot, error) {
	return r.bookings.Snapshot(ctx, id)
}
