package cachestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"reaction-rating-bot/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS rated_post_cache (
	guild_id   TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	posts      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (guild_id, channel_id)
);`

// SQLite хранит кэш в локальном файле базы данных.
type SQLite struct {
	db *sql.DB
}

var _ domain.PostCache = (*SQLite)(nil)

// OpenSQLite открывает базу и применяет схему.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA synchronous=NORMAL`, sqliteSchema} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close закрывает базу.
func (s *SQLite) Close() error { return s.db.Close() }

// Load читает кэш канала.
func (s *SQLite) Load(ctx context.Context, guildID, channelID string) ([]domain.RatedPost, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT posts FROM rated_post_cache WHERE guild_id = ? AND channel_id = ?`, guildID, channelID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select cache: %w", err)
	}
	posts, err := DecodePosts([]byte(data))
	if err != nil {
		return nil, false, err
	}
	return posts, true, nil
}

// Save перезаписывает кэш канала одним upsert.
func (s *SQLite) Save(ctx context.Context, guildID, channelID string, posts []domain.RatedPost) error {
	data, err := EncodePosts(posts)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrCacheWriteFailed, err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO rated_post_cache (guild_id, channel_id, posts, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(guild_id, channel_id) DO UPDATE SET posts = excluded.posts, updated_at = excluded.updated_at`,
		guildID, channelID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: upsert cache: %w", domain.ErrCacheWriteFailed, err)
	}
	return nil
}
