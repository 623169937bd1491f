package components

import (
	"cinema-booking/internal/handler"
	"cinema-booking/internal/handler/api"
	"cinema-booking/internal/handler/middleware"
	"cinema-booking/internal/infra/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewCheckoutHandler,
		api.NewBookingHandler,
		api.NewEventHandler,
		api.NewPaymentHandler,
		api.NewCheckInHandler,
		NewHealthHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

type handlerParams struct {
	fx.In

	Auth     *api.AuthHandler
	Checkout *api.CheckoutHandler
	Booking  *api.BookingHandler
	Event    *api.EventHandler
	Payment  *api.PaymentHandler
	CheckIn  *api.CheckInHandler
	Health   *api.HealthHandler
}

func NewHandlers(p handlerParams) handler.Handlers {
	return handler.Handlers{
		Auth:     p.Auth,
		Checkout: p.Checkout,
		Booking:  p.Booking,
		Event:    p.Event,
		Payment:  p.Payment,
		CheckIn:  p.CheckIn,
		Health:   p.Health,
	}
}

func NewHealthHandler(pool *pgxpool.Pool, client *redis.Client) *api.HealthHandler {
	return api.NewHealthHandler(map[string]api.Pinger{
		"postgres": pool,
		"redis":    db.RedisPinger{Client: client},
	})
}
