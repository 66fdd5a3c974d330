package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"

	"reaction-rating-bot/internal/adapters/discord"
	"reaction-rating-bot/internal/app"
	"reaction-rating-bot/internal/infra/config"
	httpserver "reaction-rating-bot/internal/infra/http"
	"reaction-rating-bot/internal/infra/log"
	"reaction-rating-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	if cfg.Discord.Token == "" {
		logger.Fatal().Msg("DISCORD_TOKEN не задан")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать сессию Discord")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMessageReactions

	deps, err := app.Build(ctx, cfg, session, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось собрать зависимости")
	}
	defer deps.Close()

	server := httpserver.NewServer(log.Component(logger, "http"), deps.Health())
	metrics.StartServer(ctx, logger, cfg.MetricsAddr, server.Router)

	handler := discord.NewHandler(deps.Service, log.Component(logger, "commands"), 0)
	session.AddHandler(handler.OnInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("бот подключён к Discord")
	})

	if err := session.Open(); err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к Discord")
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error().Err(err).Msg("ошибка при закрытии сессии Discord")
		}
	}()

	if err := handler.Register(session, cfg.Discord.GuildID); err != nil {
		logger.Fatal().Err(err).Msg("не удалось зарегистрировать команды")
	}

	logger.Info().Str("cache", cfg.Cache.Backend).Str("lock", cfg.Lock.Backend).Msg("бот-гейтвей запущен")
	<-ctx.Done()
	logger.Info().Msg("остановка бота")
}
