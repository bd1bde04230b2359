package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"moadeal/hotdealbot/helpers"
)

// StaticFetcher fetches the first listing page over plain HTTP and parses
// it with goquery. It misses rows only reachable by infinite scroll; the
// Chrome fetcher covers those.
type StaticFetcher struct {
	URL       string
	Selectors Selectors
}

// NewStaticFetcher creates a fetcher for the given listing page
func NewStaticFetcher(url string, selectors Selectors) *StaticFetcher {
	return &StaticFetcher{
		URL:       url,
		Selectors: selectors,
	}
}

// Fetch retrieves and parses the listing page
func (f *StaticFetcher) Fetch(ctx context.Context) ([]RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := helpers.FetchWithRandomHeaders(f.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("HTML parse failed: %w", err)
	}

	var items []RawItem
	doc.Find(f.Selectors.Item).Each(func(i int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(f.Selectors.Title).Text())
		if title == "" {
			return
		}

		link, _ := s.Find(f.Selectors.Link).Attr("href")
		link = strings.TrimSpace(link)
		if link == "" {
			return
		}

		items = append(items, RawItem{
			Title:           title,
			Price:           strings.TrimSpace(s.Find(f.Selectors.Price).Text()),
			Link:            link,
			TimestampPhrase: strings.TrimSpace(s.Find(f.Selectors.Timestamp).Text()),
		})
	})

	return items, nil
}
