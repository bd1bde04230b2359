package deal

import "time"

// ListingRecord represents one scraped deal as persisted in the store document
type ListingRecord struct {
	No        int    `json:"no" validate:"gte=0"`
	Title     string `json:"title" validate:"required"`
	Price     string `json:"price,omitempty"`
	Link      string `json:"link" validate:"required"`
	Timestamp string `json:"timestamp,omitempty"`

	// PostedAt is derived from Timestamp on load, nil when parsing fails.
	PostedAt *time.Time `json:"-"`
}

// Key returns the deduplication key for the record.
// Two records are the same deal when both title and link match.
func (r ListingRecord) Key() string {
	return r.Title + "\x1f" + r.Link
}

// ResolvePostedAt parses the display timestamp into PostedAt.
// Records whose timestamp kept the raw scrape phrase stay with a nil
// PostedAt and are excluded from all time-dependent matching.
func (r *ListingRecord) ResolvePostedAt() {
	t, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		r.PostedAt = nil
		return
	}
	r.PostedAt = &t
}
