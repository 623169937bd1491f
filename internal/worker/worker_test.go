//go:build unit

package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner(t *testing.T) {
	t.Run("runs jobs until stopped", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRunner(quietLogger(), Job{
			Name:     "count",
			Interval: 5 * time.Millisecond,
			Run: func(context.Context) error {
				calls.Add(1)
				return nil
			},
		})

		r.Start(context.Background())
		require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
		require.NoError(t, r.Stop(context.Background()))

		stopped := calls.Load()
		time.Sleep(20 * time.Millisecond)
		assert.Equal(t, stopped, calls.Load())
	})

	t.Run("keeps running after failures and panics", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRunner(quietLogger(), Job{
			Name:     "flaky",
			Interval: 5 * time.Millisecond,
			Run: func(context.Context) error {
				n := calls.Add(1)
				if n == 1 {
					panic("boom")
				}
				return errors.New("still failing")
			},
		})

		r.Start(context.Background())
		require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
		require.NoError(t, r.Stop(context.Background()))
	})

	t.Run("skips jobs without an interval", func(t *testing.T) {
		var calls atomic.Int32
		r := NewRunner(quietLogger(), Job{
			Name: "disabled",
			Run: func(context.Context) error {
				calls.Add(1)
				return nil
			},
		})

		r.Start(context.Background())
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, r.Stop(context.Background()))
		assert.Zero(t, calls.Load())
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		r := NewRunner(quietLogger())
		assert.NoError(t, r.Stop(context.Background()))
	})
}
