//go:build unit

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinema-booking/internal/infra"
	sqlc "cinema-booking/internal/infra/sqlc/generated"
	"cinema-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationWriteQueries struct {
	mock.Mock
}

func (m *MockNotificationWriteQueries) CreateNotificationJob(ctx context.Context, db sqlc.DBTX, arg sqlc.CreateNotificationJobParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func (m *MockNotificationWriteQueries) ClaimDueNotificationJobs(ctx context.Context, db sqlc.DBTX, arg sqlc.ClaimDueNotificationJobsParams) ([]sqlc.NotificationJobs, error) {
	args := m.Called(ctx, db, arg)
	return args.Get(0).([]sqlc.NotificationJobs), args.Error(1)
}

func (m *MockNotificationWriteQueries) UpdateNotificationJobStatus(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateNotificationJobStatusParams) error {
	args := m.Called(ctx, db, arg)
	return args.Error(0)
}

func TestNotificationRepository_ClaimDue(t *testing.T) {
	now := time.Date(2030, 6, 1, 3, 0, 0, 0, time.UTC)
	lease := now.Add(5 * time.Minute)

	t.Run("leases due jobs", func(t *testing.T) {
		id := uuid.New()
		q := new(MockNotificationWriteQueries)
		q.On("ClaimDueNotificationJobs", mock.Anything, mock.Anything, mock.MatchedBy(func(p sqlc.ClaimDueNotificationJobsParams) bool {
			return p.Now.Time.Equal(now) && p.LeaseUntil.Time.Equal(lease) && p.MaxRows == 25
		})).Return([]sqlc.NotificationJobs{{
			ID:       id,
			Kind:     "email",
			Topic:    "ticket_issued",
			Payload:  []byte(`{}`),
			RunAt:    pgconv.TimeToPgtype(lease),
			Attempts: 1,
			Status:   "sending",
		}}, nil)

		jobs, err := NewNotificationRepository(q).ClaimDue(context.Background(), nil, now, lease, 25)

		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, id, jobs[0].ID)
		assert.Equal(t, int32(1), jobs[0].Attempts)
		assert.True(t, jobs[0].RunAt.Equal(lease))
		q.AssertExpectations(t)
	})

	t.Run("wraps query failures", func(t *testing.T) {
		q := new(MockNotificationWriteQueries)
		q.On("ClaimDueNotificationJobs", mock.Anything, mock.Anything, mock.Anything).
			Return([]sqlc.NotificationJobs(nil), errors.New("connection refused"))

		_, err := NewNotificationRepository(q).ClaimDue(context.Background(), nil, now, lease, 25)

		require.Error(t, err)
		assert.True(t, infra.IsKind(err, infra.KindDBFailure))
	})
}
