package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/internal/scan"
	"moadeal/hotdealbot/services/store"
)

// MockStore implements store.Store for testing
type MockStore struct {
	records []deal.ListingRecord
	loadErr error
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) Load(ctx context.Context) ([]deal.ListingRecord, error) {
	return m.records, m.loadErr
}

func (m *MockStore) Save(ctx context.Context, records []deal.ListingRecord) error {
	m.records = records
	return nil
}

func (m *MockStore) Close() error { return nil }

// MockNotifier records digests for testing
type MockNotifier struct {
	digests   map[string][]string // subscriber -> digest titles
	digestErr error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{digests: make(map[string][]string)}
}

func (m *MockNotifier) NotifyDeal(subscriberID, keyword string, record deal.ListingRecord) error {
	return nil
}

func (m *MockNotifier) NotifySimilar(subscriberID string, anchor deal.ListingRecord, similar []deal.ListingRecord) error {
	return nil
}

func (m *MockNotifier) NotifyDigest(subscriberID, keyword string, records []deal.ListingRecord) error {
	if m.digestErr != nil {
		return m.digestErr
	}
	for _, r := range records {
		m.digests[subscriberID] = append(m.digests[subscriberID], r.Title)
	}
	return nil
}

func record(no int, title string, postedAt time.Time) deal.ListingRecord {
	r := deal.ListingRecord{
		No:        no,
		Title:     title,
		Link:      "https://example.com/p",
		Timestamp: deal.FormatTimestamp(postedAt),
	}
	r.ResolvePostedAt()
	return r
}

func TestSearchRecords(t *testing.T) {
	now := time.Now().In(deal.KST)
	records := []deal.ListingRecord{
		record(1, "갤럭시 버즈 특가", now),
		record(2, "아이폰 케이스", now),
		record(3, "갤럭시 버즈3 프로", now),
	}

	matched := searchRecords(records, "버즈")
	assert.Len(t, matched, 2)

	// Newest ordinal first
	assert.Equal(t, 3, matched[0].No)
	assert.Equal(t, 1, matched[1].No)

	// Case-insensitive matching
	records = append(records, record(4, "Galaxy Buds", now))
	assert.Len(t, searchRecords(records, "galaxy"), 1)
	assert.Len(t, searchRecords(records, "GALAXY"), 1)

	assert.Empty(t, searchRecords(records, "없는키워드"))
}

func TestSearchPages(t *testing.T) {
	now := time.Now().In(deal.KST)
	var matched []deal.ListingRecord
	for i := 1; i <= 6; i++ {
		matched = append(matched, record(i, "특가", now))
	}

	pages := searchPages("특가", matched)
	assert.Len(t, pages, 2)
	assert.Contains(t, pages[0].Title, "페이지 1/2")
	assert.Contains(t, pages[1].Title, "페이지 2/2")

	// Page one carries four records: label + 4 fields each, with a
	// separator between records
	assert.Len(t, pages[0].Fields, 4*5+3)

	// Record groups come from the shared embed field builder
	assert.Equal(t, "제목", pages[0].Fields[1].Name)
	assert.Equal(t, "가격", pages[0].Fields[2].Name)
}

func TestRecentRecordsFiltersAndMarksSeen(t *testing.T) {
	now := time.Now().In(deal.KST)
	records := []deal.ListingRecord{
		record(1, "갤럭시 버즈 특가", now.Add(-10*time.Minute)),
		record(2, "갤럭시 버즈 할인", now.Add(-2*time.Hour)),
		record(3, "아이폰 케이스", now.Add(-10*time.Minute)),
	}

	sub := scan.NewSubscription("버즈", now)
	recent := recentRecords(records, "버즈", now.Add(-time.Hour), sub)

	assert.Len(t, recent, 1)
	assert.Equal(t, "갤럭시 버즈 특가", recent[0].Title)

	// Digest titles never get re-notified by the scan cycle
	assert.True(t, sub.HasSeen("갤럭시 버즈 특가"))
	assert.False(t, sub.HasSeen("갤럭시 버즈 할인"))
}

func TestHandleScanStartSendsDigest(t *testing.T) {
	now := time.Now().In(deal.KST)
	st := &MockStore{records: []deal.ListingRecord{
		record(1, "갤럭시 버즈 특가", now.Add(-10*time.Minute)),
	}}

	registry := scan.NewRegistry()
	n := NewMockNotifier()
	b := New(nil, st, registry, n, time.Hour)

	reply := b.handleScanStart("user1", "버즈")
	assert.Contains(t, reply, "스캔을 시작합니다")
	assert.Equal(t, []string{"갤럭시 버즈 특가"}, n.digests["user1"])
	assert.Equal(t, 1, registry.Len())

	// Second subscribe for the same keyword is rejected
	reply = b.handleScanStart("user1", "버즈")
	assert.Contains(t, reply, "이미 스캔 중입니다")
	assert.Equal(t, 1, registry.Len())
}

func TestHandleScanStartReportsBlockedDM(t *testing.T) {
	now := time.Now().In(deal.KST)
	st := &MockStore{records: []deal.ListingRecord{
		record(1, "갤럭시 버즈 특가", now.Add(-10*time.Minute)),
	}}

	registry := scan.NewRegistry()
	n := NewMockNotifier()
	n.digestErr = errors.New("DM blocked")
	b := New(nil, st, registry, n, time.Hour)

	reply := b.handleScanStart("user1", "버즈")
	assert.Contains(t, reply, "DM 전송이 차단")

	// The subscription still exists despite the failed digest
	assert.Equal(t, 1, registry.Len())
}

func TestHandleScanStop(t *testing.T) {
	now := time.Now().In(deal.KST)
	registry := scan.NewRegistry()
	registry.Subscribe("user1", "버즈", now)
	registry.Subscribe("user1", "아이폰", now)

	b := New(nil, &MockStore{}, registry, NewMockNotifier(), time.Hour)

	assert.Contains(t, b.handleScanStop("user1", "버즈"), "스캔을 중지합니다")
	assert.Equal(t, 1, registry.Len())

	assert.Contains(t, b.handleScanStop("user1", "버즈"), "활성화되어 있지 않습니다")

	assert.Contains(t, b.handleScanStop("user1", "all"), "모든 키워드")
	assert.Equal(t, 0, registry.Len())

	assert.Contains(t, b.handleScanStop("user1", "all"), "활성화된 키워드 스캔이 없습니다")
}

func TestHandleScanStopAllIsCaseInsensitive(t *testing.T) {
	now := time.Now().In(deal.KST)
	registry := scan.NewRegistry()
	registry.Subscribe("user1", "버즈", now)
	registry.Subscribe("user1", "아이폰", now)

	b := New(nil, &MockStore{}, registry, NewMockNotifier(), time.Hour)

	assert.Contains(t, b.handleScanStop("user1", "All"), "모든 키워드")
	assert.Equal(t, 0, registry.Len())
}

func TestHandleScanStatusWithoutSubscriptions(t *testing.T) {
	b := New(nil, &MockStore{}, scan.NewRegistry(), NewMockNotifier(), time.Hour)
	assert.Contains(t, b.handleScanStatus("user1", "user1"), "스캔 중인 키워드가 없습니다")
}
