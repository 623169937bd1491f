package bootstrap

import (
	"log/slog"

	"cinema-booking/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
	fx.Invoke(logEffectiveConfig),
)

// secrets are never logged
func logEffectiveConfig(cfg config.Config, logger *slog.Logger) {
	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_host", cfg.DB.Host,
		"redis_addr", cfg.Redis.Addr,
		"hold_ttl", cfg.Booking.HoldTTL,
		"max_seats", cfg.Booking.MaxSeats,
		"venue_timezone", cfg.Booking.VenueTimeZone,
		"payment_gateway", gatewayMode(cfg.Payment),
		"webhook_signed", cfg.Payment.WebhookSecret != "",
		"workers_enabled", cfg.Worker.Enabled)
}

func gatewayMode(cfg config.PaymentConfig) string {
	if cfg.APIURL == "" {
		return "local"
	}
	return "http"
}
