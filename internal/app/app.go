// Package app собирает сервис отчётов из конфигурации: хранилище кэша, блокировки и источник истории.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"reaction-rating-bot/internal/adapters/cachestore"
	"reaction-rating-bot/internal/adapters/discord"
	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/cache"
	"reaction-rating-bot/internal/infra/config"
	"reaction-rating-bot/internal/infra/db"
	httpserver "reaction-rating-bot/internal/infra/http"
	"reaction-rating-bot/internal/infra/lock"
	"reaction-rating-bot/internal/infra/log"
	"reaction-rating-bot/internal/usecase/rating"
)

// Поддерживаемые значения CACHE_BACKEND и LOCK_BACKEND.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// Deps — собранные зависимости процесса.
type Deps struct {
	Service *rating.Service
	Cache   domain.PostCache
	Locker  domain.ChannelLocker

	redis   *redis.Client
	pool    *pgxpool.Pool
	closers []func()
}

// Build подключает выбранные бэкенды и создаёт сервис отчётов.
// При ошибке уже открытые соединения закрываются.
func Build(ctx context.Context, cfg config.AppConfig, session *discordgo.Session, logger zerolog.Logger) (*Deps, error) {
	d := &Deps{}
	var err error
	d.Cache, err = d.openCache(ctx, cfg, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Locker, err = d.openLocker(ctx, cfg, logger)
	if err != nil {
		d.Close()
		return nil, err
	}

	history := discord.NewHistory(session, cfg.History.Retries, log.Component(logger, "discord"))
	fetcher := rating.NewFetcher(history, NewLimiter(cfg.History.RPS, cfg.History.Burst), log.Component(logger, "fetcher"))
	d.Service = rating.NewService(fetcher, d.Cache, d.Locker, rating.Options{
		DefaultBatches: cfg.Rating.DefaultBatches,
		MaxBatches:     cfg.Rating.MaxBatches,
		MinPosts:       cfg.Rating.MinPosts,
	}, log.Component(logger, "rating"))
	return d, nil
}

// NewLimiter ограничивает частоту запросов истории. Неположительный rps снимает ограничение.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 || math.IsInf(rps, 1) {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func (d *Deps) openCache(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.PostCache, error) {
	switch backend := strings.ToLower(cfg.Cache.Backend); backend {
	case BackendFile, "":
		return cachestore.NewFile(cfg.Cache.Dir, log.Component(logger, "cache")), nil
	case BackendRedis:
		client, err := d.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return cachestore.NewRedis(client, cfg.Cache.KeyPrefix), nil
	case BackendPostgres:
		pool, err := db.Connect(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
		d.closers = append(d.closers, pool.Close)
		store := cachestore.NewPostgres(pool)
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, nil
	case BackendSQLite:
		store, err := cachestore.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		d.closers = append(d.closers, func() { _ = store.Close() })
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

func (d *Deps) openLocker(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (domain.ChannelLocker, error) {
	switch backend := strings.ToLower(cfg.Lock.Backend); backend {
	case BackendMemory, "":
		return lock.NewMemory(), nil
	case BackendRedis:
		client, err := d.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return lock.NewRedis(client, cfg.Cache.KeyPrefix, cfg.Lock.TTL, log.Component(logger, "lock")), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", backend)
	}
}

func (d *Deps) redisClient(ctx context.Context, cfg config.AppConfig) (*redis.Client, error) {
	if d.redis != nil {
		return d.redis, nil
	}
	client, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	d.redis = client
	d.closers = append(d.closers, func() { _ = client.Close() })
	return client, nil
}

// Health проверяет доступность внешних хранилищ.
func (d *Deps) Health() httpserver.HealthFunc {
	return func(r *http.Request) error {
		var errs []error
		if d.redis != nil {
			if err := d.redis.Ping(r.Context()).Err(); err != nil {
				errs = append(errs, fmt.Errorf("redis: %w", err))
			}
		}
		if d.pool != nil {
			if err := d.pool.Ping(r.Context()); err != nil {
				errs = append(errs, fmt.Errorf("postgres: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}

// Close освобождает соединения в обратном порядке открытия.
func (d *Deps) Close() {
	if d == nil {
		return
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}
