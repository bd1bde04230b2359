package scan

import (
	"sort"
	"sync"
	"time"

	apperr "moadeal/hotdealbot/pkg/errors"
)

// Registry is a concurrency-safe subscription store. Command handlers
// mutate it while the scan cycle iterates a snapshot, so every operation
// takes the registry lock and iteration happens on copies.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]map[string]*Subscription // subscriber ID -> keyword -> subscription
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		subs: make(map[string]map[string]*Subscription),
	}
}

// Subscribe creates a subscription for the keyword.
// Returns ErrDuplicateSubscription when the subscriber already scans it.
func (r *Registry) Subscribe(subscriberID, keyword string, now time.Time) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keywords, ok := r.subs[subscriberID]
	if !ok {
		keywords = make(map[string]*Subscription)
		r.subs[subscriberID] = keywords
	}

	if _, exists := keywords[keyword]; exists {
		return nil, apperr.ErrDuplicateSubscription
	}

	sub := NewSubscription(keyword, now)
	keywords[keyword] = sub
	return sub, nil
}

// Unsubscribe removes one keyword subscription.
// Returns ErrUnknownSubscription when none exists.
func (r *Registry) Unsubscribe(subscriberID, keyword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keywords, ok := r.subs[subscriberID]
	if !ok {
		return apperr.ErrUnknownSubscription
	}
	if _, exists := keywords[keyword]; !exists {
		return apperr.ErrUnknownSubscription
	}

	delete(keywords, keyword)
	if len(keywords) == 0 {
		delete(r.subs, subscriberID)
	}
	return nil
}

// UnsubscribeAll removes every subscription of the subscriber.
// Returns ErrUnknownSubscription when the subscriber has none.
func (r *Registry) UnsubscribeAll(subscriberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[subscriberID]; !ok {
		return apperr.ErrUnknownSubscription
	}
	delete(r.subs, subscriberID)
	return nil
}

// List returns read-only copies of the subscriber's subscriptions,
// ordered by keyword for stable display.
func (r *Registry) List(subscriberID string) []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keywords, ok := r.subs[subscriberID]
	if !ok {
		return nil
	}

	infos := make([]Info, 0, len(keywords))
	for _, sub := range keywords {
		infos = append(infos, sub.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Keyword < infos[j].Keyword })
	return infos
}

// Entry pairs a subscription with its owner for cycle iteration
type Entry struct {
	SubscriberID string
	Sub          *Subscription
}

// Snapshot returns a copy of all live entries. Subscriptions created or
// deleted after the call do not affect the returned slice.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []Entry
	for id, keywords := range r.subs {
		for _, sub := range keywords {
			entries = append(entries, Entry{SubscriberID: id, Sub: sub})
		}
	}
	return entries
}

// Len returns the total number of active subscriptions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, keywords := range r.subs {
		n += len(keywords)
	}
	return n
}
