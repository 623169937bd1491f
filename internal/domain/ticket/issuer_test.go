//go:build unit

package ticket_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T) *ticket.Issuer {
	t.Helper()
	return ticket.NewIssuer(ticket.NewRandomTokenSource(), jwt.NewTicketSigner("ticket-secret", "cinema-booking"))
}

func samplePayload(token string) ticket.Payload {
	return ticket.Payload{
		BookingID:   uuid.New(),
		Token:       token,
		HolderEmail: "holder@example.com",
		EventTitle:  "Matinee",
		Venue:       "Screen 2",
		ScheduledAt: time.Date(2026, 3, 17, 10, 0, 0, 0, time.UTC),
		Seats:       2,
	}
}

func TestRandomTokenSource(t *testing.T) {
	t.Run("URLセーフな43文字", func(t *testing.T) {
		token, err := ticket.NewRandomTokenSource().NewToken()
		require.NoError(t, err)

		assert.Len(t, token, 43)
		assert.True(t, ticket.IsWellFormed(token))
		assert.NotContains(t, token, "=")
	})

	t.Run("毎回異なる", func(t *testing.T) {
		src := ticket.NewRandomTokenSource()
		seen := make(map[string]struct{})
		for range 100 {
			token, err := src.NewToken()
			require.NoError(t, err)
			_, dup := seen[token]
			require.False(t, dup)
			seen[token] = struct{}{}
		}
	})

	t.Run("読み取り失敗はエラー", func(t *testing.T) {
		src := ticket.NewTokenSourceFromReader(bytes.NewReader([]byte{1, 2, 3}))

		_, err := src.NewToken()
		require.ErrorIs(t, err, ticket.ErrTokenGenerator)
	})

	t.Run("固定入力から決定的に生成", func(t *testing.T) {
		src := ticket.NewTokenSourceFromReader(bytes.NewReader(make([]byte, 32)))

		token, err := src.NewToken()
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("A", 43), token)
	})
}

func TestIsWellFormed(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{name: "正しい形式", in: strings.Repeat("A", 43), want: true},
		{name: "短すぎる", in: strings.Repeat("A", 42), want: false},
		{name: "長すぎる", in: strings.Repeat("A", 44), want: false},
		{name: "不正な文字", in: strings.Repeat("A", 42) + "+", want: false},
		{name: "空文字", in: "", want: false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ticket.IsWellFormed(c.in))
		})
	}
}

func TestFingerprint(t *testing.T) {
	fp := ticket.Fingerprint("some-token")

	assert.Len(t, fp, 16)
	assert.Equal(t, fp, ticket.Fingerprint("  some-token\n"))
	assert.NotEqual(t, fp, ticket.Fingerprint("other-token"))
	assert.NotContains(t, fp, "some-token")
}

func TestIssuer_ResolveScan(t *testing.T) {
	issuer := newIssuer(t)
	token, err := issuer.Mint()
	require.NoError(t, err)

	t.Run("生トークンはそのまま", func(t *testing.T) {
		got, err := issuer.ResolveScan("  " + token + " ")
		require.NoError(t, err)
		assert.Equal(t, token, got)
	})

	t.Run("署名済みQRはトークンに展開", func(t *testing.T) {
		signed, err := issuer.Render(samplePayload(token))
		require.NoError(t, err)

		got, err := issuer.ResolveScan(signed)
		require.NoError(t, err)
		assert.Equal(t, token, got)
	})

	t.Run("別の鍵で署名されたQRはNG", func(t *testing.T) {
		other := ticket.NewIssuer(ticket.NewRandomTokenSource(), jwt.NewTicketSigner("other-secret", "cinema-booking"))
		signed, err := other.Render(samplePayload(token))
		require.NoError(t, err)

		_, err = issuer.ResolveScan(signed)
		require.ErrorIs(t, err, ticket.ErrInvalidToken)
	})

	t.Run("署名済みでも中身が不正な形式ならNG", func(t *testing.T) {
		signed, err := issuer.Render(samplePayload("short"))
		require.NoError(t, err)

		_, err = issuer.ResolveScan(signed)
		require.ErrorIs(t, err, ticket.ErrInvalidToken)
	})

	t.Run("不正な入力はNG", func(t *testing.T) {
		for _, in := range []string{"", "   ", "garbage", "a.b.c"} {
			_, err := issuer.ResolveScan(in)
			require.ErrorIs(t, err, ticket.ErrInvalidToken, in)
		}
	})
}

func TestIssuer_Render(t *testing.T) {
	t.Run("トークン無しはNG", func(t *testing.T) {
		_, err := newIssuer(t).Render(samplePayload(""))
		require.ErrorIs(t, err, ticket.ErrInvalidToken)
	})

	t.Run("署名エラーは伝播", func(t *testing.T) {
		boom := errors.New("signer down")
		issuer := ticket.NewIssuer(ticket.NewRandomTokenSource(), failingSigner{err: boom})

		_, err := issuer.Render(samplePayload(strings.Repeat("A", 43)))
		require.ErrorIs(t, err, boom)
	})
}

type failingSigner struct {
	err error
}

func (s failingSigner) SignTicket(ticket.Payload) (string, error) { return "", s.err }
func (s failingSigner) VerifyTicket(string) (ticket.Payload, error) {
	return ticket.Payload{}, s.err
}
