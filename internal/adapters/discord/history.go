package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/codeGROOVE-dev/retry-go"
	"github.com/rs/zerolog"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

type messageLister interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// History реализует domain.HistorySource через REST API Discord.
type History struct {
	api      messageLister
	attempts uint
	delay    time.Duration
	log      zerolog.Logger
}

var _ domain.HistorySource = (*History)(nil)

// NewHistory создаёт источник истории. attempts ограничивает число попыток на одну страницу.
func NewHistory(session *discordgo.Session, attempts uint, log zerolog.Logger) *History {
	return newHistory(session, attempts, time.Second, log)
}

func newHistory(api messageLister, attempts uint, delay time.Duration, log zerolog.Logger) *History {
	if attempts == 0 {
		attempts = 1
	}
	return &History{api: api, attempts: attempts, delay: delay, log: log}
}

// Messages загружает одну страницу истории канала.
func (h *History) Messages(ctx context.Context, channelID, beforeID string, limit int) ([]domain.HistoryMessage, error) {
	if limit <= 0 || limit > domain.PageSize {
		limit = domain.PageSize
	}

	var page []*discordgo.Message
	err := retry.Do(
		func() error {
			start := time.Now()
			msgs, err := h.api.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
			metrics.ObserveNetworkRequest("discord", "channel_messages", channelID, start, err)
			if err != nil {
				if isPermanent(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			page = msgs
			return nil
		},
		retry.Attempts(h.attempts),
		retry.Delay(h.delay),
		retry.MaxDelay(30*time.Second),
		retry.MaxJitter(h.delay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			h.log.Warn().Err(err).Uint("attempt", n).Str("channel", channelID).Msg("discord: повторяем запрос истории")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("channel messages: %w", err)
	}

	out := make([]domain.HistoryMessage, 0, len(page))
	for _, msg := range page {
		if msg == nil {
			continue
		}
		out = append(out, convertMessage(msg))
	}
	return out, nil
}

func convertMessage(msg *discordgo.Message) domain.HistoryMessage {
	out := domain.HistoryMessage{
		ID:        msg.ID,
		Timestamp: msg.Timestamp.UTC(),
	}
	if msg.Author != nil {
		out.Author = domain.Author{ID: msg.Author.ID, Name: msg.Author.Username}
	}
	for _, r := range msg.Reactions {
		if r == nil || r.Emoji == nil || r.Count <= 0 {
			continue
		}
		out.Reactions = append(out.Reactions, domain.Reaction{Emoji: r.Emoji.APIName(), Count: r.Count})
	}
	return out
}

// isPermanent отделяет ошибки доступа от временных сбоев: их повторять бессмысленно.
func isPermanent(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	switch restErr.Response.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}
