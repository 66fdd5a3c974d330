package domain

import "time"

// PageSize — максимальное число сообщений в одной странице истории канала.
const PageSize = 100

// Author описывает автора сообщения.
type Author struct {
	ID   string
	Name string
}

// Key возвращает стабильный ключ автора для группировки.
func (a Author) Key() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Name
}

// DisplayName возвращает имя для отчёта.
func (a Author) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Reaction — реакция на сообщение и число её экземпляров.
type Reaction struct {
	Emoji string
	Count int
}

// HistoryMessage — сообщение канала в том виде, в котором его отдаёт источник истории.
type HistoryMessage struct {
	ID        string
	Author    Author
	Timestamp time.Time
	Reactions []Reaction
}

// RatedPost — сообщение с реакциями, сохраняемое в кэше канала.
// Два поста считаются одной сущностью тогда и только тогда, когда совпадают ID.
type RatedPost struct {
	ID        string
	Author    Author
	Reactions []Reaction
	Timestamp time.Time
}

// SameEntity сообщает, описывают ли два поста одно и то же сообщение.
func (p RatedPost) SameEntity(other RatedPost) bool {
	return p.ID == other.ID
}

// RatingEntity — строка итоговой таблицы.
type RatingEntity struct {
	Key        string
	Name       string
	Avg        float64
	Std        float64
	TotalPosts int
}

// ReportRequest описывает запрос на построение отчёта по каналу.
type ReportRequest struct {
	GuildID   string
	ChannelID string
	// Batches — сколько страниц по PageSize сообщений просмотреть, включая первую.
	Batches int
}

// Report — результат построения отчёта.
type Report struct {
	GuildID   string
	ChannelID string
	Batches   int
	Fetched   int
	Eligible  int
	Cached    int
	Rows      []RatingEntity
}

// Messages возвращает приблизительный размер просмотренного окна истории.
func (r Report) Messages() int {
	return r.Batches * PageSize
}
