package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"

	"moadeal/hotdealbot/config"
	"moadeal/hotdealbot/internal/scraper"
	"moadeal/hotdealbot/logger"
	"moadeal/hotdealbot/services/cache"
	"moadeal/hotdealbot/services/publisher"
	"moadeal/hotdealbot/services/store"
)

// One-shot scrape run: fetch the listing page, merge into the record
// store, publish new records. Scheduled externally (cron or Airflow).
func main() {
	godotenv.Load()

	logger.Init()
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	recordStore, err := store.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSObject)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create record store")
	}
	defer recordStore.Close()

	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)

	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamCount,
		cfg.RedisStreamMaxLength,
	)
	defer redisPublisher.Close()

	selectors := scraper.Selectors{
		Item:      cfg.ItemSelector,
		Title:     cfg.TitleSelector,
		Price:     cfg.PriceSelector,
		Link:      cfg.LinkSelector,
		Timestamp: cfg.TimestampSelector,
	}

	var fetcher scraper.Fetcher
	if cfg.UseChrome {
		fetcher = scraper.NewChromeFetcher(cfg.ScrapeURL, selectors, cfg.ScrollCount, cfg.ScrollDelay)
	} else {
		fetcher = scraper.NewStaticFetcher(cfg.ScrapeURL, selectors)
	}

	log.Info().
		Str("url", cfg.ScrapeURL).
		Bool("chrome", cfg.UseChrome).
		Msg("Starting scrape run")

	job := scraper.NewJob(fetcher, recordStore, cacheService, redisPublisher, cfg.ScrapeBaseURL, cfg.ScrapeBlockTime)
	if err := job.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Scrape run failed")
	}
}
