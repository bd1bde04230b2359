package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"moadeal/hotdealbot/config"
	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/internal/scan"
	"moadeal/hotdealbot/logger"
	"moadeal/hotdealbot/services/bot"
	"moadeal/hotdealbot/services/notifier"
	"moadeal/hotdealbot/services/scanner"
	"moadeal/hotdealbot/services/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN must be set")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("scan_interval", cfg.ScanInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Record store
	recordStore, err := store.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSObject)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create record store")
	}
	defer recordStore.Close()

	log.Info().
		Str("bucket", cfg.GCSBucket).
		Str("object", cfg.GCSObject).
		Msg("Connected to record store")

	// Discord session, bot, and notifier
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}

	registry := scan.NewRegistry()
	dealNotifier := notifier.NewDiscordNotifier(session)

	commandBot := bot.New(session, recordStore, registry, dealNotifier, cfg.SubscribeLookback)
	if err := commandBot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start Discord bot")
	}
	defer commandBot.Stop()

	// Scan worker
	scanWorker := scanner.NewScanner(recordStore, registry, dealNotifier, scanner.Config{
		Interval:       cfg.ScanInterval,
		StartTolerance: cfg.ScanStartTolerance,
		Similar: deal.SimilarConfig{
			LevenshteinThreshold: cfg.LevenshteinThreshold,
			JaccardThreshold:     cfg.JaccardThreshold,
			LookbackMonths:       cfg.SimilarLookbackMonths,
			MaxResults:           cfg.MaxSimilarDeals,
		},
	})

	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting scan worker")
		workerDone <- scanWorker.Run(ctx)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Scan worker exited with error")
		} else {
			log.Info().Msg("Scan worker exited normally")
		}
	}

	log.Info().Msg("Shutting down gracefully...")
}
