package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"

	"moadeal/hotdealbot/helpers"
	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/services/store"
)

const listingHTML = `<html><body>
<ul class="product-list">
  <li class="product">
    <p class="product-name"><a href="/deals/1">갤럭시 버즈3 특가</a></p>
    <p class="product-price">89,000원</p>
    <p class="product-etc"><small>5분전</small></p>
  </li>
  <li class="product">
    <p class="product-name"><a href="/deals/2">아이폰 충전 케이블</a></p>
    <p class="product-price">7,900원</p>
    <p class="product-etc"><small>2시간전</small></p>
  </li>
  <li class="product">
    <p class="product-name"><a href="">링크 없는 행</a></p>
  </li>
</ul>
</body></html>`

func testSelectors() Selectors {
	return Selectors{
		Item:      "ul.product-list li.product",
		Title:     "p.product-name a",
		Price:     "p.product-price",
		Link:      "p.product-name a",
		Timestamp: "p.product-etc small",
	}
}

func TestStaticFetcherParsesListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	f := NewStaticFetcher(server.URL, testSelectors())
	items, err := f.Fetch(context.Background())
	assert.NoError(t, err)

	// The row without a link is dropped at harvest time
	assert.Len(t, items, 2)
	assert.Equal(t, "갤럭시 버즈3 특가", items[0].Title)
	assert.Equal(t, "89,000원", items[0].Price)
	assert.Equal(t, "/deals/1", items[0].Link)
	assert.Equal(t, "5분전", items[0].TimestampPhrase)
	assert.Equal(t, "2시간전", items[1].TimestampPhrase)
}

// MockFetcher returns canned rows or an error
type MockFetcher struct {
	items []RawItem
	err   error
}

func (m *MockFetcher) Fetch(ctx context.Context) ([]RawItem, error) {
	return m.items, m.err
}

// MockJobStore implements store.Store for job tests
type MockJobStore struct {
	records []deal.ListingRecord
	saved   [][]deal.ListingRecord
}

var _ store.Store = (*MockJobStore)(nil)

func (m *MockJobStore) Load(ctx context.Context) ([]deal.ListingRecord, error) {
	return m.records, nil
}

func (m *MockJobStore) Save(ctx context.Context, records []deal.ListingRecord) error {
	m.records = records
	m.saved = append(m.saved, records)
	return nil
}

func (m *MockJobStore) Close() error { return nil }

// MockCache implements cache.CacheService in memory
type MockCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	return nil, memcache.ErrCacheMiss
}

func (m *MockCache) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MockPublisher records published titles
type MockPublisher struct {
	published []string
	trims     int
}

func (m *MockPublisher) PublishRecord(record deal.ListingRecord) error {
	m.published = append(m.published, record.Title)
	return nil
}

func (m *MockPublisher) TrimStream() error {
	m.trims++
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func TestJobMergesAndPublishesNewRecords(t *testing.T) {
	existing := deal.ListingRecord{No: 1, Title: "기존 특가", Link: "https://www.algumon.com/deals/0", Timestamp: "2025/01/02-10:00"}
	st := &MockJobStore{records: []deal.ListingRecord{existing}}

	fetcher := &MockFetcher{items: []RawItem{
		{Title: "갤럭시 버즈3 특가", Price: "89,000원", Link: "/deals/1", TimestampPhrase: "5분전"},
		{Title: "기존 특가", Link: "/deals/0", TimestampPhrase: "3일전"},
	}}

	pub := &MockPublisher{}
	job := NewJob(fetcher, st, NewMockCache(), pub, "https://www.algumon.com", 5*time.Minute)

	err := job.Run(context.Background())
	assert.NoError(t, err)

	assert.Len(t, st.records, 2)
	assert.Equal(t, 1, st.records[0].No)
	assert.Equal(t, 2, st.records[1].No)

	// Relative link resolved against the base URL
	assert.Equal(t, "https://www.algumon.com/deals/1", st.records[1].Link)

	// Relative phrase normalized to the display format
	_, err = time.ParseInLocation(deal.DisplayTimeFormat, st.records[1].Timestamp, deal.KST)
	assert.NoError(t, err)

	// Only the genuinely new record reaches the stream
	assert.Equal(t, []string{"갤럭시 버즈3 특가"}, pub.published)
	assert.Equal(t, 1, pub.trims)
}

func TestJobKeepsVerbatimTimestampWhenUnrecognized(t *testing.T) {
	st := &MockJobStore{}
	fetcher := &MockFetcher{items: []RawItem{
		{Title: "수동 등록 특가", Link: "/deals/9", TimestampPhrase: "어제쯤"},
	}}

	job := NewJob(fetcher, st, nil, nil, "https://www.algumon.com", 5*time.Minute)
	assert.NoError(t, job.Run(context.Background()))

	assert.Len(t, st.records, 1)
	assert.Equal(t, "어제쯤", st.records[0].Timestamp)
	assert.Nil(t, st.records[0].PostedAt)
}

func TestJobSetsBlockOnRateLimit(t *testing.T) {
	st := &MockJobStore{}
	c := NewMockCache()
	fetcher := &MockFetcher{err: helpers.ErrRateLimited}

	job := NewJob(fetcher, st, c, nil, "https://www.algumon.com", 5*time.Minute)
	err := job.Run(context.Background())
	assert.Error(t, err)

	_, getErr := c.Get(blockKey)
	assert.NoError(t, getErr, "block key must be set after a rate-limited fetch")

	// While blocked, subsequent runs are no-ops
	fetcher.err = nil
	fetcher.items = []RawItem{{Title: "특가", Link: "/d/1", TimestampPhrase: "방금"}}
	assert.NoError(t, job.Run(context.Background()))
	assert.Empty(t, st.saved)
}

func TestJobLeavesStoreUntouchedOnEmptyScrape(t *testing.T) {
	existing := deal.ListingRecord{No: 1, Title: "기존 특가", Link: "https://www.algumon.com/deals/0", Timestamp: "2025/01/02-10:00"}
	st := &MockJobStore{records: []deal.ListingRecord{existing}}

	job := NewJob(&MockFetcher{}, st, nil, nil, "https://www.algumon.com", 5*time.Minute)
	assert.NoError(t, job.Run(context.Background()))
	assert.Empty(t, st.saved)
}
