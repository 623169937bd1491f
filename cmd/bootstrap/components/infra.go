package components

import (
	"log/slog"

	"cinema-booking/internal/infra/mailer"
	"cinema-booking/internal/infra/metrics"
	"cinema-booking/internal/infra/payment"
	"cinema-booking/internal/infra/queue"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		metrics.New,
		func(m *metrics.Metrics) commands.Recorder { return m },
		NewRetryQueue,
		func(q *queue.RedisRetryQueue) commands.RetryQueue { return q },
		func(cfg config.Config) commands.PaymentGateway { return payment.NewGateway(cfg.Payment) },
		func(logger *slog.Logger) commands.Mailer { return mailer.NewLogMailer(logger) },
	),
	fx.Invoke(watchRetryQueue),
)

func NewRetryQueue(client *redis.Client, cfg config.Config) *queue.RedisRetryQueue {
	return queue.NewRedisRetryQueue(client, cfg.Redis.RetryQueueKey)
}

func watchRetryQueue(m *metrics.Metrics, q *queue.RedisRetryQueue) {
	m.WatchQueue("orphan_confirmations", q)
}
