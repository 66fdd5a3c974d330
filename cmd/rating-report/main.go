package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	zlog "github.com/rs/zerolog/log"

	"reaction-rating-bot/internal/app"
	"reaction-rating-bot/internal/domain"
	"reaction-rating-bot/internal/infra/config"
	"reaction-rating-bot/internal/infra/log"
)

func main() {
	var (
		guildID   string
		channelID string
		batches   int
		timeout   time.Duration
	)
	flag.StringVar(&guildID, "guild", "", "Discord guild (server) ID")
	flag.StringVar(&channelID, "channel", "", "Discord channel ID")
	flag.IntVar(&batches, "batches", 0, "Number of 100-message pages to scan (defaults to RATING_DEFAULT_BATCHES)")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall deadline for building the report")
	flag.Parse()

	if guildID == "" || channelID == "" {
		zlog.Fatal().Msg("rating-report: -guild and -channel are required")
	}

	cfg := config.Load()
	if cfg.Discord.Token == "" {
		zlog.Fatal().Msg("rating-report: DISCORD_TOKEN environment variable is required")
	}
	logger := log.NewLogger(cfg.AppEnv)

	// REST-запросы не требуют подключения к gateway.
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("rating-report: failed to create discord session")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	deps, err := app.Build(ctx, cfg, session, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("rating-report: failed to build dependencies")
	}
	defer deps.Close()

	if batches == 0 {
		batches = deps.Service.DefaultBatches()
	}

	text := deps.Service.ReportText(ctx, domain.ReportRequest{
		GuildID:   guildID,
		ChannelID: channelID,
		Batches:   batches,
	})
	fmt.Println(strings.TrimRight(text, "\n"))
}
