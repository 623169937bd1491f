//go:build unit

package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/shared"
	"cinema-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("基本成功ケース", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		key := uuid.New()

		res, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 2}, w.holder.ID, key)
		require.NoError(t, err)
		require.NotNil(t, res.Booking)

		assert.False(t, res.IsReplayed)
		assert.Equal(t, "pending", res.Booking.Status)
		assert.Equal(t, 2, res.Booking.Seats)
		assert.Equal(t, "24", res.Booking.Total.String())
		require.NotNil(t, res.Booking.CheckoutURL)
		assert.Contains(t, *res.Booking.CheckoutURL, res.Booking.ID.String())
		assert.Equal(t, fixtureNow.Add(15*time.Minute), res.Booking.ExpiresAt)

		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())

		rec, ok := w.store.IdempotencyKey(key, w.holder.ID)
		require.True(t, ok)
		assert.Equal(t, shared.IdempotencyStatusCompleted, rec.Status)
		require.NotNil(t, rec.ResultBookingID)
		assert.Equal(t, res.Booking.ID, *rec.ResultBookingID)

		require.Equal(t, 1, w.gateway.calls())
		req := w.gateway.requests[0]
		assert.Equal(t, "holder@example.com", req.HolderEmail)
		assert.Equal(t, int64(2400), req.Amount.Minor())
		assert.Equal(t, "EUR", req.Amount.Currency())
		assert.Equal(t, 1, w.metrics.checkouts["created"])
	})

	t.Run("最後の席で完売になる", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCapacity(5).WithCommitted(3) })

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 2}, w.holder.ID, uuid.New())
		require.NoError(t, err)

		stored := w.store.Event(ev.ID())
		assert.Equal(t, 5, stored.CommittedSeats())
		assert.Equal(t, event.StatusSoldOut, stored.Status())
	})

	t.Run("同じキーの再送は同じ予約を返す", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		key := uuid.New()
		req := CheckoutRequest{EventID: ev.ID(), Seats: 2}
		uc := w.checkoutUseCase()

		first, err := uc.Checkout(ctx, req, w.holder.ID, key)
		require.NoError(t, err)
		second, err := uc.Checkout(ctx, req, w.holder.ID, key)
		require.NoError(t, err)

		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Booking.ID, second.Booking.ID)
		assert.Equal(t, 1, w.gateway.calls())
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
		assert.Equal(t, 1, w.metrics.checkouts["replayed"])
	})

	t.Run("同じキーで異なるリクエスト", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		key := uuid.New()
		uc := w.checkoutUseCase()

		_, err := uc.Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 2}, w.holder.ID, key)
		require.NoError(t, err)

		_, err = uc.Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 3}, w.holder.ID, key)
		assertMarked(t, err, ErrIdempotencyKeyReused)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("処理中のキー", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		key := uuid.New()
		req := CheckoutRequest{EventID: ev.ID(), Seats: 2}
		w.store.PutIdempotencyKey(shared.IdempotencyRecord{
			Key:         key,
			UserID:      w.holder.ID,
			Status:      shared.IdempotencyStatusProcessing,
			RequestHash: calculateRequestHash(req),
			ExpiresAt:   fixtureNow.Add(time.Hour),
		})

		_, err := w.checkoutUseCase().Checkout(ctx, req, w.holder.ID, key)
		assertMarked(t, err, ErrIdempotencyInProgress)

		_, ok := w.store.IdempotencyKey(key, w.holder.ID)
		assert.True(t, ok, "in-flight key must not be released by the loser")
		assert.Equal(t, 0, w.gateway.calls())
	})

	t.Run("期限切れのキーは再利用できる", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		key := uuid.New()
		stale := uuid.New()
		w.store.PutIdempotencyKey(shared.IdempotencyRecord{
			Key:             key,
			UserID:          w.holder.ID,
			Status:          shared.IdempotencyStatusCompleted,
			RequestHash:     "stale-hash",
			ResultBookingID: &stale,
			ExpiresAt:       fixtureNow.Add(-time.Hour),
		})

		res, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, w.holder.ID, key)
		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
		assert.NotEqual(t, stale, res.Booking.ID)
	})

	t.Run("残席不足", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCapacity(3).WithCommitted(2) })
		key := uuid.New()

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 2}, w.holder.ID, key)
		assertMarked(t, err, ErrCapacityRejected)

		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
		assert.Empty(t, w.store.Bookings())
		_, ok := w.store.IdempotencyKey(key, w.holder.ID)
		assert.False(t, ok, "failed checkout releases its key")
		assert.Equal(t, 1, w.metrics.checkouts["capacity_rejected"])
	})

	t.Run("同一イベントの二重予約", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCommitted(2) })
		w.seedBooking(func(b *builder.BookingBuilder) { b.ForEvent(ev.ID()).ForHolder(w.holder.ID) })

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, w.holder.ID, uuid.New())
		assertMarked(t, err, ErrDuplicateBooking)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
		assert.Equal(t, 1, w.metrics.checkouts["duplicate"])
	})

	t.Run("未払いでキャンセルされた予約は再開される", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		old := w.seedBooking(func(b *builder.BookingBuilder) {
			b.ForEvent(ev.ID()).ForHolder(w.holder.ID).Cancelled()
		})

		res, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 4}, w.holder.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, old.ID(), res.Booking.ID)
		assert.Equal(t, "pending", res.Booking.Status)
		assert.Equal(t, 4, res.Booking.Seats)
		assert.Equal(t, 4, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("支払い済みでキャンセルされた予約は重複扱い", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		w.seedBooking(func(b *builder.BookingBuilder) {
			b.ForEvent(ev.ID()).ForHolder(w.holder.ID).Confirmed("pi_old", w.mint(t)).Cancelled()
		})

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, w.holder.ID, uuid.New())
		assertMarked(t, err, ErrDuplicateBooking)
	})

	t.Run("決済セッション作成失敗で仮押さえを解放する", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		w.gateway.err = errors.New("provider down")
		key := uuid.New()
		req := CheckoutRequest{EventID: ev.ID(), Seats: 2}
		uc := w.checkoutUseCase()

		_, err := uc.Checkout(ctx, req, w.holder.ID, key)
		assertMarked(t, err, ErrPaymentUnavailable)

		assert.Equal(t, 0, w.store.Event(ev.ID()).CommittedSeats())
		bookings := w.store.Bookings()
		require.Len(t, bookings, 1)
		assert.Equal(t, booking.StatusCancelled, bookings[0].Status())
		_, ok := w.store.IdempotencyKey(key, w.holder.ID)
		assert.False(t, ok)
		assert.Equal(t, 1, w.metrics.checkouts["payment_failed"])

		// the client retries with the same key once the provider recovers
		w.gateway.err = nil
		res, err := uc.Checkout(ctx, req, w.holder.ID, key)
		require.NoError(t, err)
		assert.Equal(t, bookings[0].ID(), res.Booking.ID)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("セッション保存失敗でも仮押さえを解放する", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		key := uuid.New()
		req := CheckoutRequest{EventID: ev.ID(), Seats: 2}
		uc := w.checkoutUseCase()

		// key insert and hold commit; the session write does not
		w.store.FailCommit = errors.New("connection reset")
		w.store.FailCommitAfter = 2
		_, err := uc.Checkout(ctx, req, w.holder.ID, key)
		assertMarked(t, err, ErrDatabaseOperation)
		assert.Equal(t, 1, w.gateway.calls())

		assert.Equal(t, 0, w.store.Event(ev.ID()).CommittedSeats())
		bookings := w.store.Bookings()
		require.Len(t, bookings, 1)
		assert.Equal(t, booking.StatusCancelled, bookings[0].Status())
		_, ok := w.store.IdempotencyKey(key, w.holder.ID)
		assert.False(t, ok)

		res, err := uc.Checkout(ctx, req, w.holder.ID, key)
		require.NoError(t, err)
		assert.Equal(t, bookings[0].ID(), res.Booking.ID)
		assert.Equal(t, "pending", res.Booking.Status)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("イベントが存在しない", func(t *testing.T) {
		w := newWorld(t)

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: uuid.New(), Seats: 1}, w.holder.ID, uuid.New())
		assertMarked(t, err, ErrEventNotFound)
		assert.Equal(t, 1, w.metrics.checkouts["not_bookable"])
	})

	t.Run("終了済みイベント", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithStatus("completed") })

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, w.holder.ID, uuid.New())
		assertMarked(t, err, ErrEventNotBookable)
	})

	t.Run("開始済みイベント", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.ScheduledIn(-time.Hour) })

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, w.holder.ID, uuid.New())
		assertMarked(t, err, ErrEventNotBookable)
	})

	t.Run("座席数が範囲外", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)

		for _, seats := range []int{0, -1, 11} {
			_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: seats}, w.holder.ID, uuid.New())
			assertMarked(t, err, ErrInvalidRequest)
		}
		assert.Equal(t, 0, w.gateway.calls())
	})

	t.Run("無効なユーザー", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		inactive := shared.HolderSnapshot{ID: uuid.New(), Email: "gone@example.com", Role: "customer"}
		w.store.PutHolder(inactive)

		_, err := w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, inactive.ID, uuid.New())
		assertMarked(t, err, ErrHolderInactive)

		_, err = w.checkoutUseCase().Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, uuid.New(), uuid.New())
		assertMarked(t, err, ErrHolderInactive)
	})
}

func TestCheckout_Concurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("同時購入でも定員を超えない", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCapacity(10) })
		uc := w.checkoutUseCase()

		const buyers = 25
		holders := make([]uuid.UUID, buyers)
		for i := range holders {
			holders[i] = uuid.New()
			w.store.PutHolder(shared.HolderSnapshot{ID: holders[i], Email: "buyer@example.com", Role: "customer", IsActive: true})
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			created  int
			rejected int
		)
		for _, holderID := range holders {
			wg.Add(1)
			go func(holderID uuid.UUID) {
				defer wg.Done()
				_, err := uc.Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 1}, holderID, uuid.New())
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errs.Is(err, ErrCapacityRejected):
					rejected++
				}
			}(holderID)
		}
		wg.Wait()

		assert.Equal(t, 10, created)
		assert.Equal(t, buyers-10, rejected)
		stored := w.store.Event(ev.ID())
		assert.Equal(t, 10, stored.CommittedSeats())
		assert.Equal(t, event.StatusSoldOut, stored.Status())
	})

	t.Run("同じユーザーの連打は一件だけ成立する", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(nil)
		uc := w.checkoutUseCase()

		var (
			wg         sync.WaitGroup
			mu         sync.Mutex
			created    int
			duplicates int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := uc.Checkout(ctx, CheckoutRequest{EventID: ev.ID(), Seats: 2}, w.holder.ID, uuid.New())
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					created++
				} else if errs.Is(err, ErrDuplicateBooking) {
					duplicates++
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created)
		assert.Equal(t, 4, duplicates)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
		assert.Len(t, w.store.Bookings(), 1)
	})
}
