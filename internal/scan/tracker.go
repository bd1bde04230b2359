package scan

import (
	"strings"
	"time"

	"moadeal/hotdealbot/internal/deal"
)

// Delta computes the records newly relevant to the subscription: keyword
// matches whose title was never seen and whose parsed timestamp is not
// older than the start watermark (minus a fixed backward tolerance that
// absorbs the granularity skew between scrape time and subscribe time).
//
// Side effect: every title present in records is marked seen afterwards,
// matched or not. This full resync is deliberate — a title that re-appears
// later must not be re-notified, even under a different keyword context.
func Delta(sub *Subscription, records []deal.ListingRecord, now time.Time, tolerance time.Duration) []deal.ListingRecord {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.startTime.IsZero() {
		sub.startTime = now
	}
	watermark := sub.startTime.Add(-tolerance)
	keywordLower := strings.ToLower(sub.Keyword)

	var matches []deal.ListingRecord
	for _, r := range records {
		if r.Title == "" {
			continue
		}
		if _, seen := sub.seen[r.Title]; seen {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Title), keywordLower) {
			continue
		}
		// Records without a parseable timestamp never match
		if r.PostedAt == nil || r.PostedAt.Before(watermark) {
			continue
		}
		matches = append(matches, r)
	}

	for _, r := range records {
		if r.Title != "" {
			sub.seen[r.Title] = struct{}{}
		}
	}

	return matches
}
