package jwt

import (
	"errors"
	"time"

	"cinema-booking/internal/domain/ticket"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ticketClaims struct {
	Token       string    `json:"tkn"`
	HolderEmail string    `json:"holder"`
	EventTitle  string    `json:"event"`
	Venue       string    `json:"venue"`
	ScheduledAt time.Time `json:"starts_at"`
	Seats       int       `json:"seats"`
	jwt.RegisteredClaims
}

// TicketSigner signs QR payloads as compact HS256 JWS. Tickets carry no expiry;
// admission is always decided against the stored booking.
type TicketSigner struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

func NewTicketSigner(secretKey, issuer string) *TicketSigner {
	return &TicketSigner{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}
}

func (s *TicketSigner) SignTicket(p ticket.Payload) (string, error) {
	claims := ticketClaims{
		Token:       p.Token,
		HolderEmail: p.HolderEmail,
		EventTitle:  p.EventTitle,
		Venue:       p.Venue,
		ScheduledAt: p.ScheduledAt.UTC(),
		Seats:       p.Seats,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  p.BookingID.String(),
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

func (s *TicketSigner) VerifyTicket(signed string) (ticket.Payload, error) {
	token, err := jwt.ParseWithClaims(signed, &ticketClaims{}, func(token *jwt.Token) (any, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ticket.Payload{}, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*ticketClaims)
	if !ok || !token.Valid || claims.Token == "" {
		return ticket.Payload{}, ErrInvalidToken
	}

	bookingID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ticket.Payload{}, ErrInvalidToken
	}

	return ticket.Payload{
		BookingID:   bookingID,
		Token:       claims.Token,
		HolderEmail: claims.HolderEmail,
		EventTitle:  claims.EventTitle,
		Venue:       claims.Venue,
		ScheduledAt: claims.ScheduledAt,
		Seats:       claims.Seats,
	}, nil
}
