//go:build unit

package repository

import (
	"context"
	"testing"

	"cinema-booking/internal/domain/booking"
	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBookingWriteQueries struct {
	mock.Mock
}

func (m *MockBookingWriteQueries) CreateBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateBookingParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockBookingWriteQueries) LockBookingByID(ctx context.Context, db sqlc.DBTX, id uuid.UUID) (sqlc.Bookings, error) {
	args := m.Called(ctx, db, id)
	return args.Get(0).(sqlc.Bookings), args.Error(1)
}

func (m *MockBookingWriteQueries) LockBookingByHolderEvent(ctx context.Context, db sqlc.DBTX, arg sqlc.LockBookingByHolderEventParams) (sqlc.Bookings, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(sqlc.Bookings), args.Error(1)
}

func (m *MockBookingWriteQueries) LockBookingByToken(ctx context.Context, db sqlc.DBTX, redemptionToken string) (sqlc.Bookings, error) {
	args := m.Called(ctx, db, redemptionToken)
	return args.Get(0).(sqlc.Bookings), args.Error(1)
}

func (m *MockBookingWriteQueries) UpdateBooking(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateBookingParams) (int64, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingWriteQueries) ListExpiredPendingBookings(ctx context.Context, db sqlc.DBTX, arg sqlc.ListExpiredPendingBookingsParams) ([]sqlc.ListExpiredPendingBookingsRow, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlc.ListExpiredPendingBookingsRow), args.Error(1)
}

func TestBookingRepository_Create(t *testing.T) {
	b := builder.NewBookingBuilder().BuildDomain()

	tests := []struct {
		name     string
		mockErr  error
		wantKind infra.RepositoryErrorKind
	}{
		{name: "success"},
		{
			name:     "holder already booked",
			mockErr:  &pgconn.PgError{Code: "23505", ConstraintName: "bookings_holder_event_key"},
			wantKind: infra.KindDuplicateKey,
		},
		{name: "database error", mockErr: assert.AnError, wantKind: infra.KindDBFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueries := new(MockBookingWriteQueries)
			mockQueries.On("CreateBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.CreateBookingParams) bool {
				return p.ID == b.ID() && p.Status == "pending" && p.Seats == int32(b.Seats())
			})).Return(tt.mockErr)

			err := NewBookingRepository(mockQueries).Create(context.Background(), nil, b)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, infra.IsKind(err, tt.wantKind))
			} else {
				require.NoError(t, err)
			}
			mockQueries.AssertExpectations(t)
		})
	}

	t.Run("constraint name is kept", func(t *testing.T) {
		mockQueries := new(MockBookingWriteQueries)
		mockQueries.On("CreateBooking", mock.Anything, mock.Anything, mock.Anything).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_holder_event_key"})

		err := NewBookingRepository(mockQueries).Create(context.Background(), nil, b)
		assert.Equal(t, "bookings_holder_event_key", infra.ConstraintOf(err))
	})
}

func TestBookingRepository_LockByToken(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		mockQueries := new(MockBookingWriteQueries)
		mockQueries.On("LockBookingByToken", mock.Anything, mock.Anything, "tkn").Return(sqlc.Bookings{}, pgx.ErrNoRows)

		b, err := NewBookingRepository(mockQueries).LockByToken(context.Background(), nil, "tkn")
		assert.Nil(t, b)
		assert.True(t, infra.IsKind(err, infra.KindNotFound))
	})

	t.Run("corrupt status", func(t *testing.T) {
		mockQueries := new(MockBookingWriteQueries)
		mockQueries.On("LockBookingByToken", mock.Anything, mock.Anything, "tkn").
			Return(sqlc.Bookings{ID: uuid.New(), Status: "refunded"}, nil)

		_, err := NewBookingRepository(mockQueries).LockByToken(context.Background(), nil, "tkn")
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})

	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		mockQueries := new(MockBookingWriteQueries)
		mockQueries.On("LockBookingByToken", mock.Anything, mock.Anything, "tkn").
			Return(sqlc.Bookings{ID: id, Seats: 2, Status: "confirmed", Version: 3}, nil)

		b, err := NewBookingRepository(mockQueries).LockByToken(context.Background(), nil, "tkn")
		require.NoError(t, err)
		assert.Equal(t, id, b.ID())
		assert.Equal(t, booking.StatusConfirmed, b.Status())
		assert.Equal(t, 3, b.Version())
	})
}

func TestBookingRepository_Update(t *testing.T) {
	b := builder.NewBookingBuilder().BuildDomain()

	t.Run("success", func(t *testing.T) {
		mockQueries := new(MockBookingWriteQueries)
		mockQueries.On("UpdateBooking", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.UpdateBookingParams) bool {
			return p.ID == b.ID() && p.Version == 1
		})).Return(int64(1), nil)

		require.NoError(t, NewBookingRepository(mockQueries).Update(context.Background(), nil, b))
		mockQueries.AssertExpectations(t)
	})

	t.Run("stale version", func(t *testing.T) {
		mockQueries := new(MockBookingWriteQueries)
		mockQueries.On("UpdateBooking", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

		err := NewBookingRepository(mockQueries).Update(context.Background(), nil, b)
		assert.True(t, infra.IsKind(err, infra.KindConflict))
	})
}

func TestBookingRepository_ListExpiredPending(t *testing.T) {
	bookingID, eventID := uuid.New(), uuid.New()
	mockQueries := new(MockBookingWriteQueries)
	mockQueries.On("ListExpiredPendingBookings", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.ListExpiredPendingBookingsParams) bool {
		return p.MaxRows == 50 && p.Now.Valid
	})).Return([]sqlc.ListExpiredPendingBookingsRow{{ID: bookingID, EventID: eventID}}, nil)

	holds, err := NewBookingRepository(mockQueries).ListExpiredPending(context.Background(), nil, builder.NewBookingBuilder().Now, 50)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, bookingID, holds[0].BookingID)
	assert.Equal(t, eventID, holds[0].EventID)
}
