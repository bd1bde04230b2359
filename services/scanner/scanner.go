package scanner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"moadeal/hotdealbot/internal/deal"
	"moadeal/hotdealbot/internal/scan"
	"moadeal/hotdealbot/logger"
	"moadeal/hotdealbot/services/notifier"
	"moadeal/hotdealbot/services/store"
)

// Config holds the scan worker tunables
type Config struct {
	Interval       time.Duration
	StartTolerance time.Duration
	Similar        deal.SimilarConfig
}

// Scanner runs the periodic keyword scan over the persisted record set
type Scanner struct {
	store    store.Store
	registry *scan.Registry
	notifier notifier.Notifier
	cfg      Config
	log      *logger.Logger
}

// NewScanner creates a new scan worker
func NewScanner(s store.Store, registry *scan.Registry, n notifier.Notifier, cfg Config) *Scanner {
	return &Scanner{
		store:    s,
		registry: registry,
		notifier: n,
		cfg:      cfg,
		log:      logger.ForScanner(),
	}
}

// Run drives scan cycles on the configured interval until the context is
// cancelled. A failed cycle is logged and retried on the next tick.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Scan worker stopping")
			return ctx.Err()
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle loads one record snapshot and scans every subscription against
// it concurrently. The snapshot is immutable for the cycle; each unit of
// work only mutates its own subscription's seen set.
func (s *Scanner) RunCycle(ctx context.Context) {
	start := time.Now()

	records, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Skipping cycle, record snapshot unavailable")
		return
	}

	entries := s.registry.Snapshot()
	if len(entries) == 0 {
		return
	}

	now := time.Now().In(deal.KST)

	var g errgroup.Group
	for _, entry := range entries {
		g.Go(func() error {
			s.scanOne(entry.SubscriberID, entry.Sub, records, now)
			return nil
		})
	}
	g.Wait()

	s.log.Debug().
		Int("subscriptions", len(entries)).
		Int("records", len(records)).
		Dur("elapsed", time.Since(start)).
		Msg("Scan cycle complete")
}

// scanOne handles a single (subscriber, keyword) unit of work.
// Delivery failures never abort the rest of the cycle.
func (s *Scanner) scanOne(subscriberID string, sub *scan.Subscription, records []deal.ListingRecord, now time.Time) {
	matches := scan.Delta(sub, records, now, s.cfg.StartTolerance)

	for _, match := range matches {
		if err := s.notifier.NotifyDeal(subscriberID, sub.Keyword, match); err != nil {
			s.log.Warn().
				Str("subscriber", subscriberID).
				Str("keyword", sub.Keyword).
				Err(err).
				Msg("Deal notification failed")
		}

		similar := deal.FindSimilar(records, deal.SimilarQuery{
			Keyword:       sub.Keyword,
			AnchorTitle:   match.Title,
			ExcludeTitles: map[string]struct{}{match.Title: {}},
			Now:           now,
		}, s.cfg.Similar)

		if err := s.notifier.NotifySimilar(subscriberID, match, similar); err != nil {
			s.log.Warn().
				Str("subscriber", subscriberID).
				Str("keyword", sub.Keyword).
				Err(err).
				Msg("Similar-deals notification failed")
		}
	}
}
