package domain

import "context"

// HistorySource отдаёт историю сообщений канала постранично.
type HistorySource interface {
	// Messages возвращает до limit последних сообщений канала, строго старше beforeID,
	// если он задан. Сообщения упорядочены от новых к старым.
	Messages(ctx context.Context, channelID, beforeID string, limit int) ([]HistoryMessage, error)
}

// PostCache хранит коллекцию оценённых постов отдельно для каждой пары (guild, channel).
type PostCache interface {
	// Load возвращает found=false без ошибки, если кэша для канала ещё нет.
	Load(ctx context.Context, guildID, channelID string) (posts []RatedPost, found bool, err error)
	// Save полностью перезаписывает коллекцию канала.
	Save(ctx context.Context, guildID, channelID string, posts []RatedPost) error
}

// ReleaseFunc освобождает ранее захваченную блокировку.
type ReleaseFunc func()

// ChannelLocker сериализует цикл load→merge→save для одного канала.
type ChannelLocker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

// LockKey строит ключ блокировки для пары (guild, channel).
func LockKey(guildID, channelID string) string {
	return guildID + "/" + channelID
}
