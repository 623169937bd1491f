package ticket

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payload is the QR presentation of a ticket. It is for display only; the
// token inside it is always re-resolved against the booking store.
type Payload struct {
	BookingID   uuid.UUID
	Token       string
	HolderEmail string
	EventTitle  string
	Venue       string
	ScheduledAt time.Time
	Seats       int
}

type Signer interface {
	SignTicket(p Payload) (string, error)
	VerifyTicket(signed string) (Payload, error)
}

type Issuer struct {
	tokens TokenSource
	signer Signer
}

func NewIssuer(tokens TokenSource, signer Signer) *Issuer {
	return &Issuer{tokens: tokens, signer: signer}
}

// Mint returns a fresh redemption token.
func (i *Issuer) Mint() (string, error) {
	return i.tokens.NewToken()
}

// Render signs the presentation payload for an issued token.
func (i *Issuer) Render(p Payload) (string, error) {
	if p.Token == "" {
		return "", ErrInvalidToken
	}
	return i.signer.SignTicket(p)
}

// ResolveScan turns scanner input into a redemption token. A compact JWS is
// verified and unwrapped; anything else must be a raw token.
func (i *Issuer) ResolveScan(scanned string) (string, error) {
	scanned = strings.TrimSpace(scanned)
	if scanned == "" {
		return "", ErrInvalidToken
	}
	if strings.Count(scanned, ".") == 2 {
		p, err := i.signer.VerifyTicket(scanned)
		if err != nil {
			return "", errors.Join(ErrInvalidToken, err)
		}
		if !IsWellFormed(p.Token) {
			return "", ErrInvalidToken
		}
		return p.Token, nil
	}
	if !IsWellFormed(scanned) {
		return "", ErrInvalidToken
	}
	return scanned, nil
}
