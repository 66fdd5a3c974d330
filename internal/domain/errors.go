package domain

import "errors"

var (
	// ErrNoMessagesFetched — первая страница истории пуста.
	ErrNoMessagesFetched = errors.New("no messages fetched")
	// ErrNoEligibleMessages — сообщения получены, но ни у одного нет реакций.
	ErrNoEligibleMessages = errors.New("no eligible messages")
	// ErrNoRatingsFound — среди постов нет ни одной реакции-оценки.
	ErrNoRatingsFound = errors.New("no ratings found")
	// ErrFetchFailed — источник истории вернул ошибку.
	ErrFetchFailed = errors.New("history fetch failed")
	// ErrCacheReadCorrupt — содержимое кэша не удалось разобрать.
	ErrCacheReadCorrupt = errors.New("cache is corrupt")
	// ErrCacheReadFailed — кэш не удалось прочитать.
	ErrCacheReadFailed = errors.New("cache read failed")
	// ErrCacheWriteFailed — кэш не удалось записать.
	ErrCacheWriteFailed = errors.New("cache write failed")
	// ErrInvalidParameter — некорректные входные параметры запроса.
	ErrInvalidParameter = errors.New("invalid parameter")
)
