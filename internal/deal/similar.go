package deal

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

// SimilarConfig holds the near-duplicate matching tunables
type SimilarConfig struct {
	LevenshteinThreshold int
	JaccardThreshold     float64
	LookbackMonths       int
	MaxResults           int
}

// DefaultSimilarConfig mirrors the production defaults
func DefaultSimilarConfig() SimilarConfig {
	return SimilarConfig{
		LevenshteinThreshold: 4,
		JaccardThreshold:     0.4,
		LookbackMonths:       6,
		MaxResults:           3,
	}
}

// SimilarQuery describes one near-duplicate search
type SimilarQuery struct {
	Keyword       string
	AnchorTitle   string
	ExcludeTitles map[string]struct{}
	Now           time.Time
}

// Tokens keep only Korean syllables, latin letters and whitespace
var jaccardStripRe = regexp.MustCompile(`[^가-힣a-zA-Z\s]`)

func tokenSet(s string) map[string]struct{} {
	cleaned := jaccardStripRe.ReplaceAllString(s, "")
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(cleaned)) {
		set[tok] = struct{}{}
	}
	return set
}

// JaccardSimilarity computes the token-set overlap ratio of two titles.
// Defined as 1.0 when both token sets are empty, 0.0 when exactly one is.
func JaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// FindSimilar searches the historical record set for titles close to the
// anchor, bounded by the lookback window and capped at MaxResults.
// A candidate qualifies when the keyword occurs in its title and either the
// edit distance or the token-Jaccard similarity passes its threshold.
func FindSimilar(records []ListingRecord, q SimilarQuery, cfg SimilarConfig) []ListingRecord {
	lookbackStart := q.Now.Add(-time.Duration(cfg.LookbackMonths) * 30 * 24 * time.Hour)
	keywordLower := strings.ToLower(q.Keyword)
	anchorLower := strings.ToLower(q.AnchorTitle)

	var similar []ListingRecord
	for _, r := range records {
		if r.Title == "" || r.PostedAt == nil {
			continue
		}
		if _, excluded := q.ExcludeTitles[r.Title]; excluded {
			continue
		}
		if r.PostedAt.Before(lookbackStart) {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Title), keywordLower) {
			continue
		}

		dist := levenshtein.ComputeDistance(anchorLower, strings.ToLower(r.Title))
		if dist <= cfg.LevenshteinThreshold || JaccardSimilarity(q.AnchorTitle, r.Title) >= cfg.JaccardThreshold {
			similar = append(similar, r)
		}
	}

	// Newest first; records without a parsed timestamp cannot get here
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].PostedAt.After(*similar[j].PostedAt)
	})

	if len(similar) > cfg.MaxResults {
		similar = similar[:cfg.MaxResults]
	}
	return similar
}
