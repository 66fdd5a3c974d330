// Package cachestore хранит коллекции оценённых постов по каналам.
package cachestore

import (
	"encoding/json"
	"fmt"
	"time"

	"reaction-rating-bot/internal/domain"
)

type postRecord struct {
	ID        string           `json:"id"`
	Author    authorRecord     `json:"author"`
	Reactions []reactionRecord `json:"reactions"`
	Timestamp time.Time        `json:"timestamp"`
}

type authorRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reactionRecord struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// EncodePosts сериализует коллекцию в JSON.
// Время приводится к UTC: после DecodePosts метка равна исходной по Equal и имеет Location UTC.
func EncodePosts(posts []domain.RatedPost) ([]byte, error) {
	records := make([]postRecord, 0, len(posts))
	for _, p := range posts {
		reactions := make([]reactionRecord, 0, len(p.Reactions))
		for _, r := range p.Reactions {
			reactions = append(reactions, reactionRecord{Emoji: r.Emoji, Count: r.Count})
		}
		records = append(records, postRecord{
			ID:        p.ID,
			Author:    authorRecord{ID: p.Author.ID, Name: p.Author.Name},
			Reactions: reactions,
			Timestamp: p.Timestamp.UTC(),
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

// DecodePosts разбирает JSON коллекции. Любое нарушение формата считается повреждением кэша.
func DecodePosts(data []byte) ([]domain.RatedPost, error) {
	var records []postRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCacheReadCorrupt, err)
	}
	posts := make([]domain.RatedPost, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: record %d has empty id", domain.ErrCacheReadCorrupt, i)
		}
		reactions := make([]domain.Reaction, 0, len(rec.Reactions))
		for _, r := range rec.Reactions {
			if r.Count < 1 {
				return nil, fmt.Errorf("%w: post %s has reaction %q with count %d", domain.ErrCacheReadCorrupt, rec.ID, r.Emoji, r.Count)
			}
			reactions = append(reactions, domain.Reaction{Emoji: r.Emoji, Count: r.Count})
		}
		posts = append(posts, domain.RatedPost{
			ID:        rec.ID,
			Author:    domain.Author{ID: rec.Author.ID, Name: rec.Author.Name},
			Reactions: reactions,
			Timestamp: rec.Timestamp.UTC(),
		})
	}
	return posts, nil
}
