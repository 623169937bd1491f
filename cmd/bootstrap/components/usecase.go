package components

import (
	"cinema-booking/internal/domain/ticket"
	"cinema-booking/internal/pkg/clock"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/usecase"
	"cinema-booking/internal/usecase/commands"
	"cinema-booking/internal/usecase/queries"
	"cinema-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	func(cfg config.Config) config.WorkerConfig { return cfg.Worker },
	func(i *ticket.Issuer) commands.TicketIssuer { return i },
	func(i *ticket.Issuer) commands.ScanResolver { return i },
	func(i *ticket.Issuer) queries.TicketRenderer { return i },
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewCheckoutUseCase,
		commands.NewBookingUseCase,
		commands.NewSweepUseCase,
		commands.NewPaymentUseCase,
		commands.NewCheckInUseCase,
		commands.NewEventUseCase,
		NewNotificationCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewUserQueries,
		queries.NewBookingQueries,
		queries.NewEventQueries,
		queries.NewTicketQueries,
		queries.NewPaymentQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewNotificationCommands(uow shared.UnitOfWork, mailer commands.Mailer, clk clock.Clock, cfg config.WorkerConfig) commands.NotificationCommands {
	return commands.NewNotificationUseCase(uow, mailer, clk, cfg.NotificationRetries)
}
