package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/commands"

	"github.com/redis/go-redis/v9"
)

// RedisRetryQueue is a delayed queue on a sorted set scored by due time in
// unix milliseconds. It only holds copies of inbox rows and can be rebuilt.
type RedisRetryQueue struct {
	client redis.Cmdable
	key    string
}

func NewRedisRetryQueue(client redis.Cmdable, key string) *RedisRetryQueue {
	return &RedisRetryQueue{client: client, key: key}
}

func (q *RedisRetryQueue) Schedule(ctx context.Context, item commands.OrphanRetry, at time.Time) error {
	member, err := json.Marshal(item)
	if err != nil {
		return errs.Wrap(err, "failed to encode retry item")
	}
	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: string(member),
	}).Err()
	if err != nil {
		return errs.Wrap(err, "failed to schedule retry item")
	}
	return nil
}

// ClaimDue reads due members and removes them one by one. A member counts as
// claimed only if this caller's ZREM removed it, so concurrent workers never
// process the same item twice.
func (q *RedisRetryQueue) ClaimDue(ctx context.Context, now time.Time, limit int64) ([]commands.OrphanRetry, error) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, errs.Wrap(err, "failed to read due retry items")
	}

	items := make([]commands.OrphanRetry, 0, len(members))
	for _, m := range members {
		removed, err := q.client.ZRem(ctx, q.key, m).Result()
		if err != nil {
			return items, errs.Wrap(err, "failed to claim retry item")
		}
		if removed == 0 {
			continue
		}

		var item commands.OrphanRetry
		if err := json.Unmarshal([]byte(m), &item); err != nil {
			slog.Error("dropping undecodable retry item", "member", m, "error", err.Error())
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (q *RedisRetryQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return 0, errs.Wrap(err, "failed to count retry items")
	}
	return n, nil
}
