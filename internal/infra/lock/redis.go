package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

const defaultPollInterval = 100 * time.Millisecond

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis — распределённая блокировка на базе SET NX с TTL.
type Redis struct {
	client       *redis.Client
	prefix       string
	ttl          time.Duration
	pollInterval time.Duration
	log          zerolog.Logger
}

var _ domain.ChannelLocker = (*Redis)(nil)

// NewRedis создаёт блокировку. ttl ограничивает время жизни зависшей блокировки.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, pollInterval: defaultPollInterval, log: log}
}

// Acquire опрашивает Redis, пока не захватит ключ или не истечёт контекст.
func (r *Redis) Acquire(ctx context.Context, key string) (domain.ReleaseFunc, error) {
	lockKey := r.prefix + ":lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		start := time.Now()
		ok, err := r.client.SetNX(ctx, lockKey, token, r.ttl).Result()
		metrics.ObserveNetworkRequest("redis", "lock_acquire", "lock", start, err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire lock %s: %w", lockKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		start := time.Now()
		err := releaseScript.Run(releaseCtx, r.client, []string{lockKey}, token).Err()
		metrics.ObserveNetworkRequest("redis", "lock_release", "lock", start, err)
		if err != nil {
			r.log.Error().Err(err).Str("key", lockKey).Msg("lock: не удалось освободить блокировку")
		}
	}, nil
}
