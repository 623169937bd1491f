//go:build unit

package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cinema-booking/internal/domain/booking"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDepth struct {
	n   int64
	err error
}

func (f fixedDepth) Len(context.Context) (int64, error) { return f.n, f.err }

func TestMetricsCounters(t *testing.T) {
	m := New()

	m.Checkout("created")
	m.Checkout("created")
	m.Checkout("capacity_rejected")
	m.Reconcile(booking.OutcomeConfirmed)
	m.Redeem(booking.RedeemAlreadyRedeemed)
	m.Swept("expired_holds", 3)
	m.Swept("expired_holds", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("capacity_rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciles.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redeems.WithLabelValues("already_redeemed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.swept.WithLabelValues("expired_holds")))
}

func TestWatchQueue(t *testing.T) {
	t.Run("reports depth", func(t *testing.T) {
		m := New()
		m.WatchQueue("orphans", fixedDepth{n: 7})

		expected := `
# HELP cinema_booking_retry_queue_depth Items waiting on a retry queue
# TYPE cinema_booking_retry_queue_depth gauge
cinema_booking_retry_queue_depth{queue="orphans"} 7
`
		require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "cinema_booking_retry_queue_depth"))
	})

	t.Run("reports zero when sampling fails", func(t *testing.T) {
		m := New()
		m.WatchQueue("orphans", fixedDepth{err: errors.New("redis down")})

		expected := `
# HELP cinema_booking_retry_queue_depth Items waiting on a retry queue
# TYPE cinema_booking_retry_queue_depth gauge
cinema_booking_retry_queue_depth{queue="orphans"} 0
`
		require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "cinema_booking_retry_queue_depth"))
	})
}
