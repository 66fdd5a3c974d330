package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

// Options задаёт ограничения построения отчёта.
type Options struct {
	DefaultBatches int
	MaxBatches     int
	MinPosts       int
}

func (o Options) withDefaults() Options {
	if o.DefaultBatches <= 0 {
		o.DefaultBatches = 2
	}
	if o.MaxBatches <= 0 {
		o.MaxBatches = 50
	}
	if o.MaxBatches < o.DefaultBatches {
		o.MaxBatches = o.DefaultBatches
	}
	if o.MinPosts <= 0 {
		o.MinPosts = DefaultMinPosts
	}
	return o
}

// Service строит отчёты по оценкам в канале.
type Service struct {
	fetcher *Fetcher
	cache   domain.PostCache
	locker  domain.ChannelLocker
	opts    Options
	log     zerolog.Logger
}

// NewService создаёт сервис отчётов.
func NewService(fetcher *Fetcher, cache domain.PostCache, locker domain.ChannelLocker, opts Options, log zerolog.Logger) *Service {
	return &Service{fetcher: fetcher, cache: cache, locker: locker, opts: opts.withDefaults(), log: log}
}

// DefaultBatches возвращает число страниц истории по умолчанию.
func (s *Service) DefaultBatches() int { return s.opts.DefaultBatches }

// MaxBatches возвращает верхнюю границу числа страниц истории.
func (s *Service) MaxBatches() int { return s.opts.MaxBatches }

// GenerateReport обновляет кэш канала свежей историей и считает статистику по авторам.
func (s *Service) GenerateReport(ctx context.Context, req domain.ReportRequest) (report domain.Report, err error) {
	start := time.Now()
	defer func() { metrics.ObserveReport(outcome(err), start) }()

	if err := s.validate(req); err != nil {
		return domain.Report{}, err
	}

	log := s.log.With().
		Str("request_id", uuid.NewString()).
		Str("guild", req.GuildID).
		Str("channel", req.ChannelID).
		Int("batches", req.Batches).
		Logger()

	messages, err := s.fetcher.Fetch(ctx, req.ChannelID, req.Batches-1)
	if err != nil {
		return domain.Report{}, err
	}
	fresh := EligiblePosts(messages)
	if len(fresh) == 0 {
		log.Info().Int("fetched", len(messages)).Msg("rating: нет сообщений с реакциями")
		return domain.Report{}, domain.ErrNoEligibleMessages
	}

	merged, err := s.updateCache(ctx, req, fresh, log)
	if err != nil {
		return domain.Report{}, err
	}

	profiles, err := ExtractScores(merged)
	if err != nil {
		return domain.Report{}, err
	}
	rows := Aggregate(profiles, s.opts.MinPosts)
	Rank(rows)

	log.Info().
		Int("fetched", len(messages)).
		Int("eligible", len(fresh)).
		Int("cached", len(merged)).
		Int("authors", len(profiles)).
		Int("rows", len(rows)).
		Msg("rating: отчёт построен")

	return domain.Report{
		GuildID:   req.GuildID,
		ChannelID: req.ChannelID,
		Batches:   req.Batches,
		Fetched:   len(messages),
		Eligible:  len(fresh),
		Cached:    len(merged),
		Rows:      rows,
	}, nil
}

// ReportText строит отчёт и возвращает готовый текст либо сообщение об ошибке.
func (s *Service) ReportText(ctx context.Context, req domain.ReportRequest) string {
	report, err := s.GenerateReport(ctx, req)
	if err != nil {
		if !isExpected(err) {
			s.log.Error().Err(err).Str("guild", req.GuildID).Str("channel", req.ChannelID).Msg("rating: не удалось построить отчёт")
		}
		return UserMessage(err, s.opts.MaxBatches)
	}
	return FormatReport(report)
}

func (s *Service) validate(req domain.ReportRequest) error {
	if strings.TrimSpace(req.GuildID) == "" {
		return fmt.Errorf("%w: guild id is empty", domain.ErrInvalidParameter)
	}
	if strings.TrimSpace(req.ChannelID) == "" {
		return fmt.Errorf("%w: channel id is empty", domain.ErrInvalidParameter)
	}
	if req.Batches < 1 || req.Batches > s.opts.MaxBatches {
		return fmt.Errorf("%w: batches must be between 1 and %d, got %d", domain.ErrInvalidParameter, s.opts.MaxBatches, req.Batches)
	}
	return nil
}

// updateCache выполняет load→merge→save под блокировкой канала.
func (s *Service) updateCache(ctx context.Context, req domain.ReportRequest, fresh []domain.RatedPost, log zerolog.Logger) ([]domain.RatedPost, error) {
	release, err := s.locker.Acquire(ctx, domain.LockKey(req.GuildID, req.ChannelID))
	if err != nil {
		return nil, fmt.Errorf("acquire channel lock: %w", err)
	}
	defer release()

	old, found, err := s.cache.Load(ctx, req.GuildID, req.ChannelID)
	switch {
	case errors.Is(err, domain.ErrCacheReadCorrupt):
		metrics.IncCacheCorrupt()
		log.Warn().Err(err).Msg("rating: кэш повреждён, строим заново")
		old = nil
	case err != nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrCacheReadFailed, err)
	case !found:
		log.Info().Msg("rating: кэша канала нет, создаём новый")
	}

	merged := Merge(old, fresh)
	if err := s.cache.Save(ctx, req.GuildID, req.ChannelID, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, domain.ErrNoMessagesFetched):
		return "no_messages"
	case errors.Is(err, domain.ErrNoEligibleMessages):
		return "no_eligible"
	case errors.Is(err, domain.ErrNoRatingsFound):
		return "no_ratings"
	case errors.Is(err, domain.ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, domain.ErrCacheReadFailed):
		return "cache_read_failed"
	case errors.Is(err, domain.ErrCacheWriteFailed):
		return "cache_write_failed"
	case errors.Is(err, domain.ErrCacheReadCorrupt):
		return "cache_corrupt"
	default:
		return "error"
	}
}

func isExpected(err error) bool {
	return errors.Is(err, domain.ErrInvalidParameter) ||
		errors.Is(err, domain.ErrNoMessagesFetched) ||
		errors.Is(err, domain.ErrNoEligibleMessages) ||
		errors.Is(err, domain.ErrNoRatingsFound)
}
