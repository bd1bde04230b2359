package publisher

import "moadeal/hotdealbot/internal/deal"

// Publisher announces newly accepted records to downstream consumers
type Publisher interface {
	// PublishRecord publishes one newly merged record
	PublishRecord(record deal.ListingRecord) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
