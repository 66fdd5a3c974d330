package rating

import (
	"math"
	"sort"

	"reaction-rating-bot/internal/domain"
)

// DefaultMinPosts — минимальное число оценённых постов автора для попадания в отчёт.
const DefaultMinPosts = 3

// Aggregate считает среднее и стандартное отклонение по средним оценкам постов.
// Каждый пост весит одинаково независимо от числа реакций на нём.
// Авторы с числом постов меньше minPosts молча отбрасываются.
func Aggregate(profiles []ScoreProfile, minPosts int) []domain.RatingEntity {
	rows := make([]domain.RatingEntity, 0, len(profiles))
	for _, profile := range profiles {
		total := len(profile.Posts)
		if total == 0 || total < minPosts {
			continue
		}
		avg, std := postStats(profile.Posts)
		rows = append(rows, domain.RatingEntity{
			Key:        profile.Author.Key(),
			Name:       profile.Author.DisplayName(),
			Avg:        avg,
			Std:        std,
			TotalPosts: total,
		})
	}
	return rows
}

func postStats(posts [][]int) (avg, std float64) {
	averages := make([]float64, 0, len(posts))
	for _, scores := range posts {
		averages = append(averages, mean(scores))
	}

	var sum float64
	for _, a := range averages {
		sum += a
	}
	avg = sum / float64(len(averages))

	var sq float64
	for _, a := range averages {
		sq += (a - avg) * (a - avg)
	}
	std = math.Sqrt(sq / float64(len(averages)))
	return avg, std
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Rank сортирует строки по возрастанию средней оценки.
// При равенстве порядок задаётся именем, затем ключом автора.
func Rank(rows []domain.RatingEntity) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Avg != rows[j].Avg {
			return rows[i].Avg < rows[j].Avg
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Key < rows[j].Key
	})
}
