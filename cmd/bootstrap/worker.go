package bootstrap

import (
	"context"
	"log/slog"

	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/usecase/commands"
	"cinema-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewWorkerRunner,
	),
	fx.Invoke(startWorkers),
)

func NewWorkerRunner(
	cfg config.Config,
	sweeps commands.SweepCommands,
	payments commands.PaymentCommands,
	notifications commands.NotificationCommands,
	logger *slog.Logger,
) *worker.Runner {
	return worker.NewBookingRunner(cfg.Worker, sweeps, payments, notifications, logger)
}

func startWorkers(lc fx.Lifecycle, cfg config.Config, runner *worker.Runner, logger *slog.Logger) {
	if !cfg.Worker.Enabled {
		logger.Info("background workers disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// the start context is cancelled once startup completes
			runner.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
}
