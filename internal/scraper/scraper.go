package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"moadeal/hotdealbot/helpers"
	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/logger"
	apperr "moadeal/hotdealbot/pkg/errors"
	"moadeal/hotdealbot/services/cache"
	"moadeal/hotdealbot/services/publisher"
	"moadeal/hotdealbot/services/store"
)

// blockKey marks the target site as throttling us; while set, scrape
// runs are skipped instead of hammering the site.
const blockKey = "scrape:blocked"

// Job is one scrape-merge-publish run against the deal aggregation site
type Job struct {
	fetcher   Fetcher
	store     store.Store
	cache     cache.CacheService
	publisher publisher.Publisher
	baseURL   string
	blockTime time.Duration
	log       *logger.Logger
}

// NewJob creates a scrape job. The publisher may be nil when no
// downstream consumers are configured.
func NewJob(f Fetcher, s store.Store, c cache.CacheService, p publisher.Publisher, baseURL string, blockTime time.Duration) *Job {
	return &Job{
		fetcher:   f,
		store:     s,
		cache:     c,
		publisher: p,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		blockTime: blockTime,
		log:       logger.ForScraper(),
	}
}

// Run executes one full scrape cycle: fetch the listing page, normalize
// the rows, merge them into the persisted record set, and publish the
// records that survived deduplication.
func (j *Job) Run(ctx context.Context) error {
	if j.isBlocked() {
		j.log.Info().Msg("Scrape skipped, rate-limit block active")
		return nil
	}

	items, err := j.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, helpers.ErrRateLimited) {
			j.markBlocked()
			return apperr.NewScrape("listing page", "target site is rate limiting", err)
		}
		return apperr.NewScrape("listing page", "fetch failed", err)
	}

	now := time.Now().In(deal.KST)
	incoming := j.toRecords(items, now)
	if len(incoming) == 0 {
		j.log.Warn().Msg("Scrape produced no rows, leaving record set untouched")
		return nil
	}

	existing, err := j.store.Load(ctx)
	if err != nil {
		return err
	}

	merged := deal.Merge(existing, incoming)
	added := newRecords(existing, merged)

	if err := j.store.Save(ctx, merged); err != nil {
		return err
	}

	j.log.Info().
		Int("scraped", len(incoming)).
		Int("accepted", len(added)).
		Int("total", len(merged)).
		Msg("Scrape cycle complete")

	return j.publish(added)
}

// toRecords converts raw listing rows to records: resolves relative
// links against the site base and normalizes relative-time phrases.
// Rows with unrecognized phrases keep the verbatim text.
func (j *Job) toRecords(items []RawItem, now time.Time) []deal.ListingRecord {
	records := make([]deal.ListingRecord, 0, len(items))
	for _, item := range items {
		link := item.Link
		if strings.HasPrefix(link, "/") {
			link = j.baseURL + link
		}

		timestamp := item.TimestampPhrase
		if t, ok := deal.NormalizeTimestamp(item.TimestampPhrase, now); ok {
			timestamp = deal.FormatTimestamp(t)
		}

		r := deal.ListingRecord{
			Title:     item.Title,
			Price:     item.Price,
			Link:      link,
			Timestamp: timestamp,
		}
		r.ResolvePostedAt()
		records = append(records, r)
	}
	return records
}

// publish sends every newly accepted record downstream and trims the
// stream afterwards
func (j *Job) publish(added []deal.ListingRecord) error {
	if j.publisher == nil || len(added) == 0 {
		return nil
	}

	for _, record := range added {
		if err := j.publisher.PublishRecord(record); err != nil {
			return apperr.NewDelivery(record.Title, "record publish failed", err)
		}
	}
	return j.publisher.TrimStream()
}

// newRecords returns merged records whose (title, link) key is absent
// from the pre-merge set
func newRecords(existing, merged []deal.ListingRecord) []deal.ListingRecord {
	known := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		known[r.Key()] = struct{}{}
	}

	var added []deal.ListingRecord
	for _, r := range merged {
		if _, ok := known[r.Key()]; !ok {
			added = append(added, r)
		}
	}
	return added
}

func (j *Job) isBlocked() bool {
	if j.cache == nil {
		return false
	}
	_, err := j.cache.Get(blockKey)
	if err == nil {
		return true
	}
	if !cache.IsMiss(err) {
		j.log.Warn().Err(err).Msg("Cache check failed, proceeding with scrape")
	}
	return false
}

func (j *Job) markBlocked() {
	if j.cache == nil {
		return
	}
	if err := j.cache.Set(blockKey, []byte("1"), j.blockTime); err != nil {
		j.log.Warn().Err(err).Msg("Failed to set rate-limit block key")
	}
}
