package cachestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"reaction-rating-bot/internal/domain"
)

const cacheFileName = "rated_posts.json"

// File хранит кэш в <root>/<guild>/<channel>/rated_posts.json.
type File struct {
	root string
	log  zerolog.Logger
}

var _ domain.PostCache = (*File)(nil)

// NewFile создаёт файловое хранилище.
func NewFile(root string, log zerolog.Logger) *File {
	return &File{root: root, log: log}
}

// Path возвращает путь к файлу кэша канала.
func (f *File) Path(guildID, channelID string) (string, error) {
	if err := validateSegment(guildID); err != nil {
		return "", err
	}
	if err := validateSegment(channelID); err != nil {
		return "", err
	}
	return filepath.Join(f.root, guildID, channelID, cacheFileName), nil
}

// Load читает кэш канала.
func (f *File) Load(ctx context.Context, guildID, channelID string) ([]domain.RatedPost, bool, error) {
	path, err := f.Path(guildID, channelID)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cache %s: %w", path, err)
	}
	posts, err := DecodePosts(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode cache %s: %w", path, err)
	}
	f.log.Debug().Str("path", path).Int("posts", len(posts)).Msg("cache: прочитан файл кэша")
	return posts, true, nil
}

// Save атомарно перезаписывает файл: пишет во временный файл и переименовывает его.
func (f *File) Save(ctx context.Context, guildID, channelID string, posts []domain.RatedPost) error {
	path, err := f.Path(guildID, channelID)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := EncodePosts(posts)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domain.ErrCacheWriteFailed, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %w", domain.ErrCacheWriteFailed, dir, err)
	}
	if err := writeAtomic(dir, path, data); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCacheWriteFailed, err)
	}
	f.log.Debug().Str("path", path).Int("posts", len(posts)).Msg("cache: файл кэша записан")
	return nil
}

func writeAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, "."+cacheFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func validateSegment(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" || trimmed != id {
		return fmt.Errorf("%w: empty or padded id %q", domain.ErrInvalidParameter, id)
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: id %q is not a valid path segment", domain.ErrInvalidParameter, id)
	}
	return nil
}
