package scan

import (
	"sync"
	"time"
)

// Subscription tracks one subscriber's interest in one keyword.
// The seen-title set only grows; it is dropped with the subscription.
type Subscription struct {
	Keyword string

	mu        sync.Mutex
	startTime time.Time
	seen      map[string]struct{}
}

// NewSubscription creates a subscription starting at the given instant
func NewSubscription(keyword string, startTime time.Time) *Subscription {
	return &Subscription{
		Keyword:   keyword,
		startTime: startTime,
		seen:      make(map[string]struct{}),
	}
}

// StartTime returns the watermark after which records count as new
func (s *Subscription) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

// HasSeen reports whether a title was already notified or resynced
func (s *Subscription) HasSeen(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[title]
	return ok
}

// MarkSeen records titles so they are never notified again
func (s *Subscription) MarkSeen(titles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range titles {
		if t != "" {
			s.seen[t] = struct{}{}
		}
	}
}

// SeenCount returns the size of the seen-title set
func (s *Subscription) SeenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Info is a read-only copy of a subscription's public state
type Info struct {
	Keyword   string
	StartTime time.Time
}

// Info returns a copy safe to hand to the command layer
func (s *Subscription) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{Keyword: s.Keyword, StartTime: s.startTime}
}
