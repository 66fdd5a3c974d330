package cachestore

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"reaction-rating-bot/internal/domain"
)

func samplePosts(n int) []domain.RatedPost {
	base := time.Date(2024, 5, 1, 12, 30, 15, 123456789, time.UTC)
	posts := make([]domain.RatedPost, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, domain.RatedPost{
			ID:     fmt.Sprintf("12000000000000%04d", i),
			Author: domain.Author{ID: fmt.Sprintf("u%d", i%3), Name: fmt.Sprintf("user %d ✨", i%3)},
			Reactions: []domain.Reaction{
				{Emoji: "5️⃣", Count: i + 1},
				{Emoji: "party:1234567890", Count: 2},
				{Emoji: "🔟", Count: 1},
			},
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return posts
}

func assertSamePosts(t *testing.T, want, got []domain.RatedPost) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d posts, got %d", len(want), len(got))
	}
	byID := make(map[string]domain.RatedPost, len(got))
	for _, p := range got {
		byID[p.ID] = p
	}
	for _, w := range want {
		g, ok := byID[w.ID]
		if !ok {
			t.Fatalf("post %s is missing", w.ID)
		}
		if g.Author != w.Author {
			t.Fatalf("post %s: author %+v, want %+v", w.ID, g.Author, w.Author)
		}
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Fatalf("post %s: timestamp %s, want %s", w.ID, g.Timestamp, w.Timestamp)
		}
		if len(g.Reactions) != len(w.Reactions) {
			t.Fatalf("post %s: %d reactions, want %d", w.ID, len(g.Reactions), len(w.Reactions))
		}
		for i := range w.Reactions {
			if g.Reactions[i] != w.Reactions[i] {
				t.Fatalf("post %s: reaction %d = %+v, want %+v", w.ID, i, g.Reactions[i], w.Reactions[i])
			}
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 250} {
		posts := samplePosts(n)
		data, err := EncodePosts(posts)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		decoded, err := DecodePosts(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		assertSamePosts(t, posts, decoded)
		if !reflect.DeepEqual(posts, decoded) {
			t.Fatalf("n=%d: decoded posts differ from the saved ones", n)
		}
	}
}

func TestCodecNormalizesTimestampsToUTC(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	posts := samplePosts(2)
	for i := range posts {
		posts[i].Timestamp = posts[i].Timestamp.In(moscow)
	}

	data, err := EncodePosts(posts)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodePosts(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i, p := range decoded {
		if !p.Timestamp.Equal(posts[i].Timestamp) {
			t.Fatalf("post %s: timestamp %s, want %s", p.ID, p.Timestamp, posts[i].Timestamp)
		}
		if p.Timestamp.Location() != time.UTC {
			t.Fatalf("post %s: expected UTC location, got %s", p.ID, p.Timestamp.Location())
		}
	}
}

func TestDecodeCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"broken"`,
		"wrong shape":   `{"id":"1"}`,
		"empty id":      `[{"id":"","author":{"id":"1","name":"a"},"reactions":[],"timestamp":"2024-01-01T00:00:00Z"}]`,
		"zero count":    `[{"id":"1","author":{"id":"1","name":"a"},"reactions":[{"emoji":"1️⃣","count":0}],"timestamp":"2024-01-01T00:00:00Z"}]`,
		"bad timestamp": `[{"id":"1","author":{"id":"1","name":"a"},"reactions":[],"timestamp":"yesterday"}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodePosts([]byte(payload)); !errors.Is(err, domain.ErrCacheReadCorrupt) {
				t.Fatalf("expected ErrCacheReadCorrupt, got %v", err)
			}
		})
	}
}
