package rating

import "reaction-rating-bot/internal/domain"

// IsEligible сообщает, может ли сообщение участвовать в оценке: у него есть хотя бы одна реакция.
func IsEligible(msg domain.HistoryMessage) bool {
	for _, r := range msg.Reactions {
		if r.Count > 0 {
			return true
		}
	}
	return false
}

// EligiblePosts отбрасывает сообщения без реакций и превращает остальные в RatedPost.
func EligiblePosts(messages []domain.HistoryMessage) []domain.RatedPost {
	out := make([]domain.RatedPost, 0, len(messages))
	for _, msg := range messages {
		if !IsEligible(msg) {
			continue
		}
		reactions := make([]domain.Reaction, 0, len(msg.Reactions))
		for _, r := range msg.Reactions {
			if r.Count <= 0 {
				continue
			}
			reactions = append(reactions, r)
		}
		out = append(out, domain.RatedPost{
			ID:        msg.ID,
			Author:    msg.Author,
			Reactions: reactions,
			Timestamp: msg.Timestamp,
		})
	}
	return out
}
