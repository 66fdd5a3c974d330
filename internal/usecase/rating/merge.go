package rating

import "reaction-rating-bot/internal/domain"

// Merge объединяет кэш канала со свежей выгрузкой.
// Свежие данные имеют приоритет: реакции могли измениться с момента прошлой выгрузки.
// Посты из кэша, которых нет в свежей выгрузке, сохраняются.
// Ни один ID не встречается в результате дважды.
func Merge(old, fresh []domain.RatedPost) []domain.RatedPost {
	seen := make(map[string]struct{}, len(old)+len(fresh))
	merged := make([]domain.RatedPost, 0, len(old)+len(fresh))

	for _, post := range fresh {
		if _, ok := seen[post.ID]; ok {
			continue
		}
		seen[post.ID] = struct{}{}
		merged = append(merged, post)
	}
	for _, post := range old {
		if _, ok := seen[post.ID]; ok {
			continue
		}
		seen[post.ID] = struct{}{}
		merged = append(merged, post)
	}
	return merged
}
