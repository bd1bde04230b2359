package scraper

import "context"

// RawItem is one listing row as harvested from the page, before timestamp
// normalization and deduplication
type RawItem struct {
	Title           string
	Price           string
	Link            string
	TimestampPhrase string
}

// Fetcher retrieves the raw listing rows from the deal aggregation site
type Fetcher interface {
	Fetch(ctx context.Context) ([]RawItem, error)
}

// Selectors contains the CSS selectors used to pick listing fields
type Selectors struct {
	Item      string
	Title     string
	Price     string
	Link      string
	Timestamp string
}
