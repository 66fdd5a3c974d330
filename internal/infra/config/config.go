package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`

	Discord struct {
		Token   string `envconfig:"DISCORD_TOKEN"`
		GuildID string `envconfig:"DISCORD_GUILD_ID"`
	} `envconfig:""`

	Cache struct {
		Backend   string `envconfig:"CACHE_BACKEND" default:"file"`
		Dir       string `envconfig:"CACHE_DIR" default:"./cache"`
		KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"rating:cache"`
	} `envconfig:""`

	Lock struct {
		Backend string        `envconfig:"LOCK_BACKEND" default:"memory"`
		TTL     time.Duration `envconfig:"LOCK_TTL" default:"2m"`
	} `envconfig:""`

	PGDSN      string `envconfig:"PG_DSN"`
	RedisAddr  string `envconfig:"REDIS_ADDR"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"./cache/rated_posts.db"`

	Rating struct {
		DefaultBatches int `envconfig:"RATING_DEFAULT_BATCHES" default:"2"`
		MaxBatches     int `envconfig:"RATING_MAX_BATCHES" default:"50"`
		MinPosts       int `envconfig:"RATING_MIN_POSTS" default:"3"`
	} `envconfig:""`

	History struct {
		RPS     float64 `envconfig:"HISTORY_RPS" default:"2"`
		Burst   int     `envconfig:"HISTORY_BURST" default:"1"`
		Retries uint    `envconfig:"HISTORY_RETRIES" default:"3"`
	} `envconfig:""`

	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// Parse читает конфиг из окружения и возвращает ошибку вместо завершения процесса.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}
