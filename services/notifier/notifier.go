package notifier

import "moadeal/hotdealbot/internal/deal"

// Notifier delivers keyword alerts to a subscriber as direct messages.
// Every delivery failure is per-recipient: callers log and continue with
// the remaining recipients and records.
type Notifier interface {
	// NotifyDeal sends one newly matched record
	NotifyDeal(subscriberID, keyword string, record deal.ListingRecord) error

	// NotifySimilar sends the similar-deals group for a matched record
	NotifySimilar(subscriberID string, anchor deal.ListingRecord, similar []deal.ListingRecord) error

	// NotifyDigest sends the recent-results digest after a subscribe
	NotifyDigest(subscriberID, keyword string, records []deal.ListingRecord) error
}
