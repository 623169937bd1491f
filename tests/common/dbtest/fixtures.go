//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// DBLike is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBLike interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// bcrypt hash of "password123"
const TestPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, password_hash, role, is_active) VALUES ($1, $2, $3, $4, true) ON CONFLICT (email) WHERE is_active = true DO NOTHING",
		userID, email, TestPasswordHash, role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1 AND is_active = true", email).Scan(&userID)
	}

	return userID
}

func DeactivateUser(t *testing.T, db DBLike, userID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(context.Background(), "UPDATE users SET is_active = false WHERE id = $1", userID)
	require.NoError(t, err)
}

type EventFixture struct {
	Title          string
	Capacity       int
	CommittedSeats int
	UnitPriceMinor int64
	Currency       string
	ScheduledAt    time.Time
	Status         string
}

func CreateTestEvent(t *testing.T, db DBLike, f EventFixture) uuid.UUID {
	t.Helper()

	if f.Title == "" {
		f.Title = "E2E Screening"
	}
	if f.Currency == "" {
		f.Currency = "JPY"
	}
	if f.Status == "" {
		f.Status = "upcoming"
	}

	eventID := uuid.New()
	_, err := db.Exec(context.Background(),
		`INSERT INTO events (id, title, venue, capacity, committed_seats, unit_price_minor, currency, scheduled_at, status)
		 VALUES ($1, $2, 'Screen 1', $3, $4, $5, $6, $7, $8)`,
		eventID, f.Title, f.Capacity, f.CommittedSeats, f.UnitPriceMinor, f.Currency, f.ScheduledAt, f.Status)
	require.NoError(t, err)

	return eventID
}

// EventSeats returns committed seats and status as stored.
func EventSeats(t *testing.T, db DBLike, eventID uuid.UUID) (int, string) {
	t.Helper()

	var committed int
	var status string
	err := db.QueryRow(context.Background(),
		"SELECT committed_seats, status FROM events WHERE id = $1", eventID).Scan(&committed, &status)
	require.NoError(t, err)
	return committed, status
}

func CountRows(t *testing.T, db DBLike, query string, args ...any) int {
	t.Helper()

	var n int
	require.NoError(t, db.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

// BookingToken returns the redemption token of a confirmed booking.
func BookingToken(t *testing.T, db DBLike, bookingID uuid.UUID) string {
	t.Helper()

	var token *string
	err := db.QueryRow(context.Background(),
		"SELECT redemption_token FROM bookings WHERE id = $1", bookingID).Scan(&token)
	require.NoError(t, err)
	require.NotNil(t, token, "booking %s has no redemption token", bookingID)
	return *token
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	_, err := pool.Exec(ctx, sqlAny.(string))
	return err
}
