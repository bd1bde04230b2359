package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/logger"
)

// Store represents the persisted record collection, a single JSON array
// document. The scrape job is the sole writer; the scan cycle and search
// are read-only consumers.
type Store interface {
	// Load reads the full record collection
	Load(ctx context.Context) ([]deal.ListingRecord, error)

	// Save replaces the full record collection
	Save(ctx context.Context, records []deal.ListingRecord) error

	// Close releases the underlying client
	Close() error
}

var validate = validator.New()

// DecodeRecords decodes and validates the store document. Malformed
// entries are logged and skipped rather than aborting the batch; a
// document that is not a JSON array at all is a document-level error.
func DecodeRecords(r io.Reader) ([]deal.ListingRecord, error) {
	var raw []deal.ListingRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("record document is not a JSON array: %w", err)
	}

	log := logger.ForStore()
	records := make([]deal.ListingRecord, 0, len(raw))
	for i, rec := range raw {
		if err := validate.Struct(rec); err != nil {
			log.Warn().
				Int("index", i).
				Str("title", rec.Title).
				Err(err).
				Msg("Skipping malformed record")
			continue
		}
		rec.ResolvePostedAt()
		records = append(records, rec)
	}
	return records, nil
}

// EncodeRecords renders the collection as the pretty-printed UTF-8 JSON
// array the rest of the pipeline reads back
func EncodeRecords(records []deal.ListingRecord) ([]byte, error) {
	if records == nil {
		records = []deal.ListingRecord{}
	}
	return json.MarshalIndent(records, "", "    ")
}
