package bootstrap

import (
	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
		NewTicketIssuer,
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenDuration, cfg.JWT.RefreshTokenDuration)
}

// NewTicketIssuer signs QR payloads with the ticket secret, falling back to the JWT secret.
func NewTicketIssuer(cfg config.Config) *ticket.Issuer {
	signer := jwt.NewTicketSigner(cfg.TicketSecret(), cfg.Ticket.Issuer)
	return ticket.NewIssuer(ticket.NewRandomTokenSource(), signer)
}
