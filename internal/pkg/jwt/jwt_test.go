//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	svc := jwt.NewService("test-secret", 15*time.Minute, 24*time.Hour)
	userID := uuid.New()

	t.Run("アクセストークンの発行と検証", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(userID, user.RoleOperator)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "operator", claims.Role)
		assert.Equal(t, jwt.TokenTypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("リフレッシュトークンは種別が異なる", func(t *testing.T) {
		token, err := svc.GenerateRefreshToken(userID, user.RoleCustomer)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, jwt.TokenTypeRefresh, claims.TokenType)
	})

	t.Run("期限切れトークン", func(t *testing.T) {
		expired := jwt.NewService("test-secret", -time.Minute, time.Hour)
		token, err := expired.GenerateAccessToken(userID, user.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("別の鍵のトークン", func(t *testing.T) {
		other := jwt.NewService("other-secret", time.Minute, time.Hour)
		token, err := other.GenerateAccessToken(userID, user.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("HMAC以外の署名方式は拒否", func(t *testing.T) {
		token := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"user_id": userID.String()})
		signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}

func TestTicketSigner(t *testing.T) {
	signer := jwt.NewTicketSigner("ticket-secret", "cinema-booking")
	p := ticket.Payload{
		BookingID:   uuid.New(),
		Token:       "tkn",
		HolderEmail: "holder@example.com",
		EventTitle:  "Matinee",
		Venue:       "Screen 2",
		ScheduledAt: time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC),
		Seats:       3,
	}

	t.Run("署名と検証の往復", func(t *testing.T) {
		signed, err := signer.SignTicket(p)
		require.NoError(t, err)

		got, err := signer.VerifyTicket(signed)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("発行者が異なるとNG", func(t *testing.T) {
		other := jwt.NewTicketSigner("ticket-secret", "someone-else")
		signed, err := other.SignTicket(p)
		require.NoError(t, err)

		_, err = signer.VerifyTicket(signed)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("改ざんされたトークン", func(t *testing.T) {
		signed, err := signer.SignTicket(p)
		require.NoError(t, err)

		_, err = signer.VerifyTicket(signed[:len(signed)-2] + "xx")
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
