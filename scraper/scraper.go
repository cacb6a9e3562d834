// Package scraper fetches web pages through a headless browser and reduces
// the rendered body to plain text.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrScrape marks navigation, rendering, or browser-launch failures.
var ErrScrape = errors.New("scrape failure")

// tagPattern removes markup with a plain tag strip. Entities and inline
// script/style text survive; full HTML parsing is deliberately not done here.
var tagPattern = regexp.MustCompile(`<[^>]*>?`)

const defaultTimeout = 45 * time.Second

type Scraper struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scraper{timeout: timeout}
}

// Scrape navigates to url in an isolated headless-browser context, waits for
// the DOM content to load, and returns the rendered body stripped of markup.
// The browser context is released on every exit path.
func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var body string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate("document.body.innerHTML", &body),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrScrape, url, err)
	}

	return StripTags(body), nil
}

// StripTags removes every <...> span from raw HTML.
func StripTags(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}
