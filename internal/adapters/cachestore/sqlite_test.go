package cachestore

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "cache", "rated_posts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, found, err := store.Load(ctx, "g", "c"); err != nil || found {
		t.Fatalf("expected empty cache, found=%v err=%v", found, err)
	}

	posts := samplePosts(42)
	if err := store.Save(ctx, "g", "c", posts); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, found, err := store.Load(ctx, "g", "c")
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	assertSamePosts(t, posts, loaded)

	replacement := samplePosts(3)
	if err := store.Save(ctx, "g", "c", replacement); err != nil {
		t.Fatalf("save replacement: %v", err)
	}
	loaded, _, err = store.Load(ctx, "g", "c")
	if err != nil {
		t.Fatalf("load replacement: %v", err)
	}
	assertSamePosts(t, replacement, loaded)

	if _, found, err := store.Load(ctx, "g", "other"); err != nil || found {
		t.Fatalf("expected isolation between channels, found=%v err=%v", found, err)
	}
}
