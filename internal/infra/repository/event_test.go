//go:build unit

package repository

import (
	"context"
	"testing"
	"time"

	"cinema-booking/internal/domain/event"
	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventWriteQueries struct {
	mock.Mock
}

func (m *MockEventWriteQueries) CreateEvent(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateEventParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockEventWriteQueries) GetEventByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Events, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Events), args.Error(1)
}

func (m *MockEventWriteQueries) LockEventByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Events, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Events), args.Error(1)
}

func (m *MockEventWriteQueries) UpdateEventSeats(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateEventSeatsParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEventWriteQueries) CompletePastEvents(ctx context.Context, db sqlc.DBTX, now pgtype.Timestamptz) (int64, error) {
	args := m.Called(ctx, db, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestEventRepository_LockByID(t *testing.T) {
	row := builder.NewEventBuilder().WithCapacity(50).WithCommitted(10).BuildInfra()

	tests := []struct {
		name     string
		row      sqlc.Events
		mockErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "success", row: row},
		{name: "not found", mockErr: pgx.ErrNoRows, wantKind: infra.KindNotFound},
		{name: "database error", mockErr: assert.AnError, wantKind: infra.KindDBFailure},
		{
			name: "corrupt status",
			row: func() sqlc.Events {
				r := row
				r.Status = "postponed"
				return r
			}(),
			wantKind: infra.KindDBFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockEventWriteQueries)
			mockQueries.On("LockEventByID", mock.Anything, mock.Anything, row.ID).Return(tt.row, tt.mockErr)

			repo := NewEventRepository(mockQueries)
			ev, err := repo.LockByID(context.Background(), nil, row.ID)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
				assert.Nil(t, ev)
			} else {
				require.NoError(t, err)
				assert.Equal(t, row.ID, ev.ID())
				assert.Equal(t, 40, ev.Remaining())
				assert.Equal(t, event.StatusUpcoming, ev.Status())
			}
			mockQueries.AssertExpectations(t)
		})
	}
}

func TestEventRepository_SaveSeats(t *testing.T) {
	ev := builder.NewEventBuilder().WithCapacity(2).WithCommitted(1).BuildDomain()
	require.NoError(t, ev.Reserve(1, ev.CreatedAt()))

	want := sqlc.UpdateEventSeatsParams{ID: ev.ID(), CommittedSeats: 2, Status: "sold_out"}

	t.Run("success", func(t *testing.T) {
		mockQueries := new(MockEventWriteQueries)
		mockQueries.On("UpdateEventSeats", mock.Anything, mock.Anything, want).Return(int64(1), nil)

		err := NewEventRepository(mockQueries).SaveSeats(context.Background(), nil, ev)
		require.NoError(t, err)
		mockQueries.AssertExpectations(t)
	})

	t.Run("row vanished", func(t *testing.T) {
		mockQueries := new(MockEventWriteQueries)
		mockQueries.On("UpdateEventSeats", mock.Anything, mock.Anything, want).Return(int64(0), nil)

		err := NewEventRepository(mockQueries).SaveSeats(context.Background(), nil, ev)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})
}

func TestEventRepository_CompletePast(t *testing.T) {
	cutoff := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	mockQueries := new(MockEventWriteQueries)
	mockQueries.On("CompletePastEvents", mock.Anything, mock.Anything, pgtype.Timestamptz{Time: cutoff, Valid: true}).
		Return(int64(3), nil)

	n, err := NewEventRepository(mockQueries).CompletePast(context.Background(), nil, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	mockQueries.AssertExpectations(t)
}
