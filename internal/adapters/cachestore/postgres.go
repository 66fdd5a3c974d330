package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS rated_post_cache (
	guild_id   TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	posts      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (guild_id, channel_id)
)`

// Postgres хранит коллекцию канала одной строкой JSONB.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.PostCache = (*Postgres)(nil)

// NewPostgres создаёт адаптер кэша.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate создаёт таблицу кэша, если её ещё нет.
func (p *Postgres) Migrate(ctx context.Context) error {
	start := time.Now()
	_, err := p.pool.Exec(ctx, postgresSchema)
	metrics.ObserveNetworkRequest("postgres", "migrate", "rated_post_cache", start, err)
	return err
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// Load читает кэш канала.
func (p *Postgres) Load(ctx context.Context, guildID, channelID string) ([]domain.RatedPost, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	var data []byte
	start := time.Now()
	err := p.pool.QueryRow(ctx, `
SELECT posts FROM rated_post_cache WHERE guild_id = $1 AND channel_id = $2
`, guildID, channelID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveNetworkRequest("postgres", "cache_select", "rated_post_cache", start, nil)
		return nil, false, nil
	}
	metrics.ObserveNetworkRequest("postgres", "cache_select", "rated_post_cache", start, err)
	if err != nil {
		return nil, false, fmt.Errorf("select cache: %w", err)
	}
	posts, err := DecodePosts(data)
	if err != nil {
		return nil, false, err
	}
	return posts, true, nil
}

// Save перезаписывает кэш канала одним upsert.
func (p *Postgres) Save(ctx context.Context, guildID, channelID string, posts []domain.RatedPost) error {
	data, err := EncodePosts(posts)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrCacheWriteFailed, err)
	}
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO rated_post_cache (guild_id, channel_id, posts, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (guild_id, channel_id) DO UPDATE SET posts = EXCLUDED.posts, updated_at = now()
`, guildID, channelID, data)
	metrics.ObserveNetworkRequest("postgres", "cache_upsert", "rated_post_cache", start, err)
	if err != nil {
		return fmt.Errorf("%w: upsert cache: %w", domain.ErrCacheWriteFailed, err)
	}
	return nil
}
