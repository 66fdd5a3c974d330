package rating

import "reaction-rating-bot/internal/domain"

// ScoreProfile — оценки одного автора: по одному списку на каждый оценённый пост.
type ScoreProfile struct {
	Author domain.Author
	Posts  [][]int
}

// PostScores раскладывает реакции поста в список оценок.
// Реакция с Count=3 даёт три одинаковых значения.
func PostScores(post domain.RatedPost) []int {
	var scores []int
	for _, r := range post.Reactions {
		value, ok := DecodeScore(r.Emoji)
		if !ok {
			continue
		}
		for i := 0; i < r.Count; i++ {
			scores = append(scores, value)
		}
	}
	return scores
}

// ExtractScores строит профили оценок авторов в порядке их первого появления.
// Посты без реакций-оценок пропускаются. Если оценок нет совсем, возвращает ErrNoRatingsFound.
func ExtractScores(posts []domain.RatedPost) ([]ScoreProfile, error) {
	index := make(map[string]int)
	var profiles []ScoreProfile

	for _, post := range posts {
		scores := PostScores(post)
		if len(scores) == 0 {
			continue
		}
		key := post.Author.Key()
		idx, ok := index[key]
		if !ok {
			idx = len(profiles)
			index[key] = idx
			profiles = append(profiles, ScoreProfile{Author: post.Author})
		}
		profiles[idx].Posts = append(profiles[idx].Posts, scores)
	}

	if len(profiles) == 0 {
		return nil, domain.ErrNoRatingsFound
	}
	return profiles, nil
}
