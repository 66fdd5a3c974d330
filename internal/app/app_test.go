package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"reaction-rating-bot/internal/adapters/cachestore"
	"reaction-rating-bot/internal/infra/config"
	"reaction-rating-bot/internal/infra/lock"
)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg, err := config.Parse()
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Cache.Dir = t.TempDir()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "rated_posts.db")
	return cfg
}

func testSession(t *testing.T) *discordgo.Session {
	t.Helper()
	session, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("discordgo.New: %v", err)
	}
	return session
}

func TestBuildFileBackend(t *testing.T) {
	cfg := testConfig(t)

	deps, err := Build(context.Background(), cfg, testSession(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Cache.(*cachestore.File); !ok {
		t.Fatalf("expected file cache, got %T", deps.Cache)
	}
	if _, ok := deps.Locker.(*lock.Memory); !ok {
		t.Fatalf("expected memory lock, got %T", deps.Locker)
	}
	if deps.Service.DefaultBatches() != 2 || deps.Service.MaxBatches() != 50 {
		t.Fatalf("unexpected service options: %d/%d", deps.Service.DefaultBatches(), deps.Service.MaxBatches())
	}
	if err := deps.Health()(httptest.NewRequest("GET", "/healthz", nil)); err != nil {
		t.Fatalf("health without external stores must pass: %v", err)
	}
}

func TestBuildSQLiteBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = BackendSQLite

	deps, err := Build(context.Background(), cfg, testSession(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer deps.Close()

	if _, ok := deps.Cache.(*cachestore.SQLite); !ok {
		t.Fatalf("expected sqlite cache, got %T", deps.Cache)
	}
}

func TestBuildRejectsUnknownBackends(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = "s3"
	if _, err := Build(context.Background(), cfg, testSession(t), zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown cache backend")
	}

	cfg = testConfig(t)
	cfg.Lock.Backend = "etcd"
	if _, err := Build(context.Background(), cfg, testSession(t), zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unknown lock backend")
	}
}

func TestBuildRedisWithoutAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Backend = BackendRedis
	cfg.RedisAddr = ""
	if _, err := Build(context.Background(), cfg, testSession(t), zerolog.Nop()); err == nil {
		t.Fatalf("expected error when redis address is empty")
	}
}

func TestNewLimiter(t *testing.T) {
	if l := NewLimiter(0, 0); l.Limit() != rate.Inf {
		t.Fatalf("zero rps must disable limiting, got %v", l.Limit())
	}
	l := NewLimiter(2, 0)
	if l.Limit() != 2 || l.Burst() != 1 {
		t.Fatalf("unexpected limiter: limit=%v burst=%d", l.Limit(), l.Burst())
	}
}
