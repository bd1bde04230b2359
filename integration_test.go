package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/internal/scan"
	"moadeal/hotdealbot/internal/scraper"
	"moadeal/hotdealbot/services/scanner"
	"moadeal/hotdealbot/services/store"
)

// This is a simple test HTML that mimics the deal listing page
const testHTML = `
<!DOCTYPE html>
<html>
<body>
    <ul class="product-list">
        <li class="product">
            <p class="product-name"><a href="/deals/1">갤럭시 버즈3 특가</a></p>
            <p class="product-price">89,000원</p>
            <p class="product-etc"><small>5분전</small></p>
        </li>
        <li class="product">
            <p class="product-name"><a href="/deals/2">아이폰 충전 케이블</a></p>
            <p class="product-price">7,900원</p>
            <p class="product-etc"><small>10분전</small></p>
        </li>
    </ul>
</body>
</html>
`

// MemoryStore implements store.Store in memory for the pipeline test
type MemoryStore struct {
	mu      sync.Mutex
	records []deal.ListingRecord
}

var _ store.Store = (*MemoryStore)(nil)

func (m *MemoryStore) Load(ctx context.Context) ([]deal.ListingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records, nil
}

func (m *MemoryStore) Save(ctx context.Context, records []deal.ListingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// RecordingNotifier captures deliveries instead of sending DMs
type RecordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *RecordingNotifier) NotifyDeal(subscriberID, keyword string, record deal.ListingRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, record.Title)
	return nil
}

func (n *RecordingNotifier) NotifySimilar(subscriberID string, anchor deal.ListingRecord, similar []deal.ListingRecord) error {
	return nil
}

func (n *RecordingNotifier) NotifyDigest(subscriberID, keyword string, records []deal.ListingRecord) error {
	return nil
}

// TestScrapeToNotificationPipeline drives the full path: scrape the
// listing page, merge into the store, then run a scan cycle against an
// active subscription.
func TestScrapeToNotificationPipeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(testHTML))
	}))
	defer server.Close()

	selectors := scraper.Selectors{
		Item:      "ul.product-list li.product",
		Title:     "p.product-name a",
		Price:     "p.product-price",
		Link:      "p.product-name a",
		Timestamp: "p.product-etc small",
	}

	st := &MemoryStore{}
	fetcher := scraper.NewStaticFetcher(server.URL, selectors)
	job := scraper.NewJob(fetcher, st, nil, nil, server.URL, time.Minute)

	assert.NoError(t, job.Run(context.Background()))

	records, _ := st.Load(context.Background())
	assert.Len(t, records, 2)
	assert.Equal(t, 1, records[0].No)
	assert.Equal(t, server.URL+"/deals/1", records[0].Link)
	assert.NotNil(t, records[0].PostedAt, "relative phrase must resolve to an absolute time")

	// Running the job again accepts nothing new
	assert.NoError(t, job.Run(context.Background()))
	records, _ = st.Load(context.Background())
	assert.Len(t, records, 2)

	// A subscriber scanning for 버즈 gets exactly the matching record
	registry := scan.NewRegistry()
	now := time.Now().In(deal.KST)
	_, err := registry.Subscribe("user1", "버즈", now.Add(-time.Hour))
	assert.NoError(t, err)

	notifications := &RecordingNotifier{}
	worker := scanner.NewScanner(st, registry, notifications, scanner.Config{
		Interval:       time.Minute,
		StartTolerance: 15 * time.Minute,
		Similar:        deal.DefaultSimilarConfig(),
	})

	worker.RunCycle(context.Background())
	assert.Equal(t, []string{"갤럭시 버즈3 특가"}, notifications.titles)

	// The next cycle stays quiet
	worker.RunCycle(context.Background())
	assert.Len(t, notifications.titles, 1)
}
