package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Record store (Google Cloud Storage)
	GCSBucket string
	GCSObject string

	// Discord bot
	DiscordToken string

	// Scan worker
	ScanInterval       time.Duration
	ScanStartTolerance time.Duration
	SubscribeLookback  time.Duration

	// Similar-deal matcher
	LevenshteinThreshold  int
	JaccardThreshold      float64
	SimilarLookbackMonths int
	MaxSimilarDeals       int

	// Scraper
	ScrapeURL       string
	ScrapeBaseURL   string
	UseChrome       bool
	ScrollCount     int
	ScrollDelay     time.Duration
	ScrapeBlockTime time.Duration

	// Scraper selectors (CSS, for the static fetch path)
	ItemSelector      string
	TitleSelector     string
	PriceSelector     string
	LinkSelector      string
	TimestampSelector string

	// Memcache configuration
	MemcacheAddr string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))
	scanInterval, _ := strconv.Atoi(getEnv("SCAN_INTERVAL_SECONDS", "1200"))
	tolerance, _ := strconv.Atoi(getEnv("SCAN_START_TOLERANCE_MINUTES", "15"))
	lookback, _ := strconv.Atoi(getEnv("SUBSCRIBE_LOOKBACK_MINUTES", "60"))
	levThreshold, _ := strconv.Atoi(getEnv("LEVENSHTEIN_THRESHOLD", "4"))
	jacThreshold, _ := strconv.ParseFloat(getEnv("JACCARD_THRESHOLD", "0.4"), 64)
	similarMonths, _ := strconv.Atoi(getEnv("SIMILAR_LOOKBACK_MONTHS", "6"))
	maxSimilar, _ := strconv.Atoi(getEnv("MAX_SIMILAR_DEALS", "3"))
	scrollCount, _ := strconv.Atoi(getEnv("SCRAPE_SCROLL_COUNT", "2"))
	scrollDelay, _ := strconv.Atoi(getEnv("SCRAPE_SCROLL_DELAY_SECONDS", "5"))
	blockTime, _ := strconv.Atoi(getEnv("SCRAPE_BLOCK_SECONDS", "300"))

	return Config{
		GCSBucket: getEnv("GCS_BUCKET", "moastorage"),
		GCSObject: getEnv("GCS_OBJECT", "data/hotdeal.json"),

		DiscordToken: getEnv("DISCORD_TOKEN", ""),

		ScanInterval:       time.Duration(scanInterval) * time.Second,
		ScanStartTolerance: time.Duration(tolerance) * time.Minute,
		SubscribeLookback:  time.Duration(lookback) * time.Minute,

		LevenshteinThreshold:  levThreshold,
		JaccardThreshold:      jacThreshold,
		SimilarLookbackMonths: similarMonths,
		MaxSimilarDeals:       maxSimilar,

		ScrapeURL:       getEnv("SCRAPE_URL", "https://www.algumon.com"),
		ScrapeBaseURL:   getEnv("SCRAPE_BASE_URL", "https://www.algumon.com"),
		UseChrome:       getEnv("SCRAPE_USE_CHROME", "true") == "true",
		ScrollCount:     scrollCount,
		ScrollDelay:     time.Duration(scrollDelay) * time.Second,
		ScrapeBlockTime: time.Duration(blockTime) * time.Second,

		ItemSelector:      getEnv("SCRAPE_ITEM_SELECTOR", "ul.product-list li.product"),
		TitleSelector:     getEnv("SCRAPE_TITLE_SELECTOR", "p.product-name a"),
		PriceSelector:     getEnv("SCRAPE_PRICE_SELECTOR", "p.product-price"),
		LinkSelector:      getEnv("SCRAPE_LINK_SELECTOR", "p.product-name a"),
		TimestampSelector: getEnv("SCRAPE_TIMESTAMP_SELECTOR", "p.product-etc small"),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", "localhost:11211"),

		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "hotdeals"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLen,

		Environment: getEnv("HOTDEAL_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.GCSBucket == "" || c.GCSObject == "" {
		return fmt.Errorf("GCS_BUCKET and GCS_OBJECT must be set")
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("scan interval must be positive, got %s", c.ScanInterval)
	}
	if c.LevenshteinThreshold < 0 {
		return fmt.Errorf("levenshtein threshold must not be negative, got %d", c.LevenshteinThreshold)
	}
	if c.JaccardThreshold < 0 || c.JaccardThreshold > 1 {
		return fmt.Errorf("jaccard threshold must be in [0, 1], got %f", c.JaccardThreshold)
	}
	if c.MaxSimilarDeals < 0 {
		return fmt.Errorf("max similar deals must not be negative, got %d", c.MaxSimilarDeals)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
