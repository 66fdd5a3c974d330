package rating

import "strings"

// ratingSymbols перечисляет канонические эмодзи оценок; индекс совпадает со значением.
var ratingSymbols = [...]string{
	"0️⃣",
	"1️⃣",
	"2️⃣",
	"3️⃣",
	"4️⃣",
	"5️⃣",
	"6️⃣",
	"7️⃣",
	"8️⃣",
	"9️⃣",
	"\U0001F51F",
}

var ratingBySymbol = func() map[string]int {
	m := make(map[string]int, len(ratingSymbols))
	for value, symbol := range ratingSymbols {
		m[symbol] = value
	}
	return m
}()

// DecodeScore переводит символ реакции в оценку 0–10.
// Сравнение строгое: символ должен целиком совпадать с одним из канонических.
func DecodeScore(symbol string) (int, bool) {
	value, ok := ratingBySymbol[symbol]
	return value, ok
}

// RatingSymbols возвращает канонические символы оценок по возрастанию.
func RatingSymbols() []string {
	out := make([]string, len(ratingSymbols))
	copy(out, ratingSymbols[:])
	return out
}

// ratingHint используется в подсказках пользователю.
func ratingHint() string {
	return strings.Join([]string{ratingSymbols[0], ratingSymbols[len(ratingSymbols)-1]}, "...")
}
