package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

// Redis хранит коллекцию канала одним значением; SET заменяет его атомарно.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ domain.PostCache = (*Redis)(nil)

// NewRedis создаёт хранилище с ключами вида <prefix>:<guild>:<channel>.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(guildID, channelID string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, guildID, channelID)
}

// Load читает кэш канала.
func (r *Redis) Load(ctx context.Context, guildID, channelID string) ([]domain.RatedPost, bool, error) {
	key := r.key(guildID, channelID)
	start := time.Now()
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveNetworkRequest("redis", "cache_get", "rated_posts", start, nil)
		return nil, false, nil
	}
	metrics.ObserveNetworkRequest("redis", "cache_get", "rated_posts", start, err)
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	posts, err := DecodePosts(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return posts, true, nil
}

// Save перезаписывает кэш канала.
func (r *Redis) Save(ctx context.Context, guildID, channelID string, posts []domain.RatedPost) error {
	data, err := EncodePosts(posts)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrCacheWriteFailed, err)
	}
	key := r.key(guildID, channelID)
	start := time.Now()
	err = r.client.Set(ctx, key, data, 0).Err()
	metrics.ObserveNetworkRequest("redis", "cache_set", "rated_posts", start, err)
	if err != nil {
		return fmt.Errorf("%w: redis set %s: %w", domain.ErrCacheWriteFailed, key, err)
	}
	return nil
}
