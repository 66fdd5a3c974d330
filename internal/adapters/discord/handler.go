package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/metrics"
)

// CommandName — имя slash-команды отчёта.
const CommandName = "rating"

const (
	subcommandName = "rating"
	updateOption   = "update"

	workingMessage   = "working on it!"
	notImplemented   = "not implemented :("
	guildOnlyMessage = "This command can only be used in a server channel."
	invalidUpdate    = "Invalid input for number of messages (blocks) to update."
)

// Reporter строит текст отчёта по каналу.
type Reporter interface {
	ReportText(ctx context.Context, req domain.ReportRequest) string
	DefaultBatches() int
	MaxBatches() int
}

type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Handler обслуживает slash-команды бота.
type Handler struct {
	reporter Reporter
	log      zerolog.Logger
	timeout  time.Duration
}

// NewHandler создаёт обработчик команд.
func NewHandler(reporter Reporter, log zerolog.Logger, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Handler{reporter: reporter, log: log, timeout: timeout}
}

// Commands описывает команды для регистрации в Discord.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	minValue := 1.0
	return []*discordgo.ApplicationCommand{{
		Name:        CommandName,
		Description: "Display the average ratings per user in this channel.",
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        subcommandName,
			Description: "Rates posts and returns a table.",
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        updateOption,
				Description: "The number of posts (×100) to update.",
				MinValue:    &minValue,
				MaxValue:    float64(h.reporter.MaxBatches()),
			}},
		}},
	}}
}

// Register перезаписывает команды приложения. Пустой guildID регистрирует команды глобально.
func (h *Handler) Register(s *discordgo.Session, guildID string) error {
	if s.State == nil || s.State.User == nil {
		return fmt.Errorf("discord session is not ready")
	}
	registered, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, h.Commands())
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	h.log.Info().Str("guild", guildID).Int("commands", len(registered)).Msg("discord: команды зарегистрированы")
	return nil
}

// OnInteraction — обработчик события InteractionCreate для discordgo.
func (h *Handler) OnInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i == nil || i.Interaction == nil {
		return
	}
	h.HandleInteraction(context.Background(), s, i.Interaction)
}

// HandleInteraction обрабатывает одно взаимодействие. Паника не выходит за пределы обработчика.
func (h *Handler) HandleInteraction(ctx context.Context, r interactionResponder, i *discordgo.Interaction) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncCommandErrors()
			h.log.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("discord: паника в обработчике команды")
		}
	}()

	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return
	}

	log := h.log.With().Str("guild", i.GuildID).Str("channel", i.ChannelID).Str("interaction", i.ID).Logger()

	if data.Name != CommandName {
		log.Warn().Str("command", data.Name).Msg("discord: неизвестная команда")
		if err := r.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: notImplemented},
		}); err != nil {
			metrics.IncCommandErrors()
			log.Error().Err(err).Msg("discord: не удалось ответить на команду")
		}
		return
	}

	if err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: workingMessage},
	}); err != nil {
		metrics.IncCommandErrors()
		log.Error().Err(err).Msg("discord: не удалось ответить на команду")
		return
	}

	h.reply(r, i, h.buildAnswer(ctx, i, data), log)
}

func (h *Handler) buildAnswer(ctx context.Context, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) string {
	if i.GuildID == "" {
		return guildOnlyMessage
	}
	batches, err := ParseBatches(data.Options, h.reporter.DefaultBatches())
	if err != nil {
		return invalidUpdate
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.reporter.ReportText(ctx, domain.ReportRequest{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Batches:   batches,
	})
}

func (h *Handler) reply(r interactionResponder, i *discordgo.Interaction, text string, log zerolog.Logger) {
	parts := SplitForDiscord(text)
	if len(parts) == 0 {
		return
	}
	first := parts[0]
	start := time.Now()
	_, err := r.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &first})
	metrics.ObserveNetworkRequest("discord", "interaction_edit", i.ChannelID, start, err)
	if err != nil {
		metrics.IncCommandErrors()
		log.Error().Err(err).Msg("discord: не удалось отредактировать ответ")
		return
	}
	for _, part := range parts[1:] {
		start := time.Now()
		_, err := r.FollowupMessageCreate(i, true, &discordgo.WebhookParams{Content: part})
		metrics.ObserveNetworkRequest("discord", "followup_create", i.ChannelID, start, err)
		if err != nil {
			metrics.IncCommandErrors()
			log.Error().Err(err).Msg("discord: не удалось отправить продолжение ответа")
			return
		}
	}
}

// ParseBatches достаёт значение опции update из дерева опций команды.
// Если опция не передана, возвращает def. Диапазон проверяет сервис отчётов.
func ParseBatches(options []*discordgo.ApplicationCommandInteractionDataOption, def int) (int, error) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		switch {
		case opt.Type == discordgo.ApplicationCommandOptionSubCommand:
			if opt.Name != subcommandName {
				continue
			}
			return ParseBatches(opt.Options, def)
		case opt.Name == updateOption:
			if opt.Type != discordgo.ApplicationCommandOptionInteger {
				return 0, fmt.Errorf("%w: option %s has type %s", domain.ErrInvalidParameter, opt.Name, opt.Type)
			}
			return intValue(opt.Value)
		}
	}
	return def, nil
}

func intValue(v interface{}) (int, error) {
	switch val := v.(type) {
	case float64:
		if val != float64(int(val)) {
			return 0, fmt.Errorf("%w: %v is not an integer", domain.ErrInvalidParameter, val)
		}
		return int(val), nil
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: unexpected value %T", domain.ErrInvalidParameter, v)
	}
}
