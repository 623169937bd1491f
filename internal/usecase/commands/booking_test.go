//go:build unit

package commands

import (
	"context"
	"testing"
	"time"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"
	"cinema-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancel(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, mutate func(*builder.BookingBuilder)) (*world, *event.Event, *booking.Booking) {
		t.Helper()
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCapacity(4).WithCommitted(4).SoldOut() })
		bk := w.seedBooking(func(b *builder.BookingBuilder) {
			b.ForEvent(ev.ID()).ForHolder(w.holder.ID)
			if mutate != nil {
				mutate(b)
			}
		})
		return w, ev, bk
	}
	cancel := func(w *world, id uuid.UUID, actor user.Actor) (*queries.BookingView, error) {
		return NewBookingUseCase(w.store, w.bookings, w.clock, w.metrics).Cancel(ctx, id, actor)
	}

	t.Run("基本成功ケース", func(t *testing.T) {
		w, ev, bk := setup(t, nil)

		view, err := cancel(w, bk.ID(), user.NewActor(w.holder.ID, user.RoleCustomer))
		require.NoError(t, err)
		assert.Equal(t, "cancelled", view.Status)

		stored := w.store.Event(ev.ID())
		assert.Equal(t, 2, stored.CommittedSeats())
		assert.Equal(t, event.StatusUpcoming, stored.Status(), "sold out event reopens")
	})

	t.Run("確定済みの予約も取り消せる", func(t *testing.T) {
		w, ev, bk := setup(t, func(b *builder.BookingBuilder) { b.Confirmed("pi_1", "token") })

		view, err := cancel(w, bk.ID(), user.NewActor(w.holder.ID, user.RoleCustomer))
		require.NoError(t, err)
		assert.Equal(t, "cancelled", view.Status)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("二重キャンセルは座席を二度返さない", func(t *testing.T) {
		w, ev, bk := setup(t, nil)
		actor := user.NewActor(w.holder.ID, user.RoleCustomer)

		_, err := cancel(w, bk.ID(), actor)
		require.NoError(t, err)
		view, err := cancel(w, bk.ID(), actor)
		require.NoError(t, err)
		assert.Equal(t, "cancelled", view.Status)
		assert.Equal(t, 2, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("入場済みは取り消せない", func(t *testing.T) {
		w, ev, bk := setup(t, func(b *builder.BookingBuilder) {
			b.Confirmed("pi_1", "token").Redeemed(fixtureNow)
		})

		_, err := cancel(w, bk.ID(), user.NewActor(w.holder.ID, user.RoleCustomer))
		assertMarked(t, err, ErrAlreadyRedeemed)
		assert.Equal(t, 4, w.store.Event(ev.ID()).CommittedSeats())
		assert.Equal(t, booking.StatusConfirmed, w.store.Booking(bk.ID()).Status())
	})

	t.Run("他人の予約は見つからない扱い", func(t *testing.T) {
		w, ev, bk := setup(t, nil)

		_, err := cancel(w, bk.ID(), user.NewActor(uuid.New(), user.RoleCustomer))
		assertMarked(t, err, ErrBookingNotFound)
		assert.Equal(t, 4, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("管理者は他人の予約を取り消せる", func(t *testing.T) {
		w, _, bk := setup(t, nil)

		view, err := cancel(w, bk.ID(), user.NewActor(uuid.New(), user.RoleAdmin))
		require.NoError(t, err)
		assert.Equal(t, "cancelled", view.Status)
	})

	t.Run("存在しない予約", func(t *testing.T) {
		w := newWorld(t)

		_, err := cancel(w, uuid.New(), user.NewActor(w.holder.ID, user.RoleCustomer))
		assertMarked(t, err, ErrBookingNotFound)
	})
}

func TestExpireOverdue(t *testing.T) {
	ctx := context.Background()

	t.Run("期限切れの仮押さえだけを解放する", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCommitted(6) })
		overdue := w.seedBooking(func(b *builder.BookingBuilder) { b.ForEvent(ev.ID()).WithSeats(3).Overdue() })
		fresh := w.seedBooking(func(b *builder.BookingBuilder) { b.ForEvent(ev.ID()).WithSeats(2) })
		paid := w.seedBooking(func(b *builder.BookingBuilder) {
			b.ForEvent(ev.ID()).WithSeats(1).Overdue().Confirmed("pi_1", "token")
		})

		n, err := NewSweepUseCase(w.store, w.clock, w.cfg, w.metrics).ExpireOverdue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.Equal(t, booking.StatusCancelled, w.store.Booking(overdue.ID()).Status())
		assert.Equal(t, booking.StatusPending, w.store.Booking(fresh.ID()).Status())
		assert.Equal(t, booking.StatusConfirmed, w.store.Booking(paid.ID()).Status())
		assert.Equal(t, 3, w.store.Event(ev.ID()).CommittedSeats())
		assert.Equal(t, 1, w.metrics.swept["expired_holds"])
	})

	t.Run("期限ちょうどで失効する", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCommitted(2) })
		bk := w.seedBooking(func(b *builder.BookingBuilder) { b.ForEvent(ev.ID()) })
		sweep := NewSweepUseCase(w.store, w.clock, w.cfg, w.metrics)

		w.clock.Add(15*time.Minute - time.Second)
		n, err := sweep.ExpireOverdue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		w.clock.Add(time.Second)
		n, err = sweep.ExpireOverdue(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, booking.StatusCancelled, w.store.Booking(bk.ID()).Status())
		assert.Equal(t, 0, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("失効後の支払いはキャンセル済みとして記録される", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCommitted(2) })
		w.seedBooking(func(b *builder.BookingBuilder) { b.ForEvent(ev.ID()).ForHolder(w.holder.ID).Overdue() })

		_, err := NewSweepUseCase(w.store, w.clock, w.cfg, w.metrics).ExpireOverdue(ctx, 100)
		require.NoError(t, err)

		res, err := w.paymentUseCase().Reconcile(ctx, shared.PaymentConfirmation{
			ExternalID: "pi_late", EventID: ev.ID(), HolderID: w.holder.ID, Seats: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, booking.OutcomeBookingCancelled, res.Outcome)
		assert.Equal(t, 0, w.store.Event(ev.ID()).CommittedSeats())
	})

	t.Run("キャンセル済みのコンテキスト", func(t *testing.T) {
		w := newWorld(t)
		ev := w.seedEvent(func(b *builder.EventBuilder) { b.WithCommitted(2) })
		w.seedBooking(func(b *builder.BookingBuilder) { b.ForEvent(ev.ID()).Overdue() })
		cctx, cancelFn := context.WithCancel(ctx)
		cancelFn()

		n, err := NewSweepUseCase(w.store, w.clock, w.cfg, w.metrics).ExpireOverdue(cctx, 100)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, n)
	})
}

func TestCompletePastEvents(t *testing.T) {
	ctx := context.Background()

	w := newWorld(t)
	yesterday := w.seedEvent(func(b *builder.EventBuilder) { b.ScheduledIn(-24 * time.Hour) })
	soldOut := w.seedEvent(func(b *builder.EventBuilder) { b.ScheduledIn(-48 * time.Hour).SoldOut() })
	// earlier today in Tokyo, still running on the venue day
	today := w.seedEvent(func(b *builder.EventBuilder) { b.ScheduledIn(-time.Hour) })
	upcoming := w.seedEvent(nil)

	n, err := NewSweepUseCase(w.store, w.clock, w.cfg, w.metrics).CompletePastEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, event.StatusCompleted, w.store.Event(yesterday.ID()).Status())
	assert.Equal(t, event.StatusCompleted, w.store.Event(soldOut.ID()).Status())
	assert.Equal(t, event.StatusUpcoming, w.store.Event(today.ID()).Status())
	assert.Equal(t, event.StatusUpcoming, w.store.Event(upcoming.ID()).Status())
	assert.Equal(t, 2, w.metrics.swept["completed_events"])
}

func TestPurgeExpiredKeys(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	expired := uuid.New()
	live := uuid.New()
	w.store.PutIdempotencyKey(shared.IdempotencyRecord{Key: expired, UserID: w.holder.ID, ExpiresAt: time.Now().Add(-time.Hour)})
	w.store.PutIdempotencyKey(shared.IdempotencyRecord{Key: live, UserID: w.holder.ID, ExpiresAt: time.Now().Add(time.Hour)})

	n, err := NewSweepUseCase(w.store, w.clock, w.cfg, w.metrics).PurgeExpiredKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok := w.store.IdempotencyKey(expired, w.holder.ID)
	assert.False(t, ok)
	_, ok = w.store.IdempotencyKey(live, w.holder.ID)
	assert.True(t, ok)
}
