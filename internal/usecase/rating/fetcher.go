package rating

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

// Fetcher постранично выгружает историю канала от новых сообщений к старым.
type Fetcher struct {
	source  domain.HistorySource
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewFetcher создаёт загрузчик истории. limiter может быть nil.
func NewFetcher(source domain.HistorySource, limiter *rate.Limiter, log zerolog.Logger) *Fetcher {
	return &Fetcher{source: source, limiter: limiter, log: log}
}

// Fetch загружает первую страницу и не более extraBatches дополнительных страниц.
// Возвращает страницы в порядке загрузки без удаления дублей.
func (f *Fetcher) Fetch(ctx context.Context, channelID string, extraBatches int) ([]domain.HistoryMessage, error) {
	if extraBatches < 0 {
		return nil, fmt.Errorf("%w: extra batches must not be negative, got %d", domain.ErrInvalidParameter, extraBatches)
	}

	messages, err := f.page(ctx, channelID, "")
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, domain.ErrNoMessagesFetched
	}

	remaining := extraBatches
	cursor := messages[len(messages)-1].ID
	for remaining > 0 {
		page, err := f.page(ctx, channelID, cursor)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			f.log.Debug().Str("channel", channelID).Msg("история канала закончилась")
			break
		}
		messages = append(messages, page...)
		cursor = page[len(page)-1].ID
		remaining--
	}

	f.log.Debug().
		Str("channel", channelID).
		Int("messages", len(messages)).
		Int("unused_batches", remaining).
		Msg("история канала загружена")
	return messages, nil
}

func (f *Fetcher) page(ctx context.Context, channelID, before string) ([]domain.HistoryMessage, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: wait for rate limiter: %w", domain.ErrFetchFailed, err)
		}
	}
	page, err := f.source.Messages(ctx, channelID, before, domain.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: channel %s before %q: %w", domain.ErrFetchFailed, channelID, before, err)
	}
	metrics.IncHistoryPages(len(page))
	return page, nil
}
