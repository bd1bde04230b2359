package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeFetcher loads the listing page in headless Chrome and scrolls the
// infinite list before harvesting rows. The target site renders recent
// rows server-side but older ones only appear after scrolling.
type ChromeFetcher struct {
	URL         string
	Selectors   Selectors
	ScrollCount int
	ScrollDelay time.Duration
}

// NewChromeFetcher creates a headless-Chrome fetcher for the listing page
func NewChromeFetcher(url string, selectors Selectors, scrollCount int, scrollDelay time.Duration) *ChromeFetcher {
	return &ChromeFetcher{
		URL:         url,
		Selectors:   selectors,
		ScrollCount: scrollCount,
		ScrollDelay: scrollDelay,
	}
}

// Fetch navigates to the listing page, scrolls, and collects the rows
func (f *ChromeFetcher) Fetch(ctx context.Context) ([]RawItem, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1280, 900),
	)
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 90*time.Second)
	defer cancelTimeout()

	actions := []chromedp.Action{
		chromedp.Navigate(f.URL),
		chromedp.Sleep(3 * time.Second),
	}
	for i := 0; i < f.ScrollCount; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(f.ScrollDelay),
		)
	}

	var raw string
	actions = append(actions, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			var items = [];
			var rows = document.querySelectorAll(%q);
			for (var i = 0; i < rows.length; i++) {
				var row = rows[i];
				var titleEl = row.querySelector(%q);
				var priceEl = row.querySelector(%q);
				var linkEl = row.querySelector(%q);
				var timeEl = row.querySelector(%q);
				if (!titleEl || !linkEl) continue;
				items.push({
					title: (titleEl.textContent || '').trim(),
					price: priceEl ? (priceEl.textContent || '').trim() : '',
					link: linkEl.getAttribute('href') || '',
					timestamp: timeEl ? (timeEl.textContent || '').trim() : ''
				});
			}
			return JSON.stringify(items);
		})()
	`, f.Selectors.Item, f.Selectors.Title, f.Selectors.Price, f.Selectors.Link, f.Selectors.Timestamp), &raw))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	var rows []struct {
		Title     string `json:"title"`
		Price     string `json:"price"`
		Link      string `json:"link"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("decode harvested rows: %w", err)
	}

	items := make([]RawItem, 0, len(rows))
	for _, r := range rows {
		if r.Title == "" || r.Link == "" {
			continue
		}
		items = append(items, RawItem{
			Title:           r.Title,
			Price:           r.Price,
			Link:            r.Link,
			TimestampPhrase: r.Timestamp,
		})
	}
	return items, nil
}
