package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "moastorage", config.GCSBucket)
	assert.Equal(t, "data/hotdeal.json", config.GCSObject)
	assert.Equal(t, 20*time.Minute, config.ScanInterval)
	assert.Equal(t, 15*time.Minute, config.ScanStartTolerance)
	assert.Equal(t, time.Hour, config.SubscribeLookback)
	assert.Equal(t, 4, config.LevenshteinThreshold)
	assert.Equal(t, 0.4, config.JaccardThreshold)
	assert.Equal(t, 6, config.SimilarLookbackMonths)
	assert.Equal(t, 3, config.MaxSimilarDeals)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, "localhost:6379", config.RedisAddr)

	// Test with environment variables
	os.Setenv("GCS_BUCKET", "otherbucket")
	os.Setenv("SCAN_INTERVAL_SECONDS", "300")
	os.Setenv("LEVENSHTEIN_THRESHOLD", "2")
	os.Setenv("JACCARD_THRESHOLD", "0.6")
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")

	config = LoadConfig()
	assert.Equal(t, "otherbucket", config.GCSBucket)
	assert.Equal(t, 5*time.Minute, config.ScanInterval)
	assert.Equal(t, 2, config.LevenshteinThreshold)
	assert.Equal(t, 0.6, config.JaccardThreshold)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)

	// Clean up
	os.Unsetenv("GCS_BUCKET")
	os.Unsetenv("SCAN_INTERVAL_SECONDS")
	os.Unsetenv("LEVENSHTEIN_THRESHOLD")
	os.Unsetenv("JACCARD_THRESHOLD")
	os.Unsetenv("REDIS_ADDR")
}

func TestValidate(t *testing.T) {
	config := LoadConfig()
	assert.NoError(t, config.Validate())

	bad := config
	bad.JaccardThreshold = 1.5
	assert.Error(t, bad.Validate())

	bad = config
	bad.ScanInterval = 0
	assert.Error(t, bad.Validate())

	bad = config
	bad.GCSBucket = ""
	assert.Error(t, bad.Validate())
}
