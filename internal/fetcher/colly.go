package fetcher

import (
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "web-atlas/0.1"

// CollyFetcher fetches pages over HTTP(S) with Colly and extracts the
// href targets of all anchor elements, resolved to absolute URLs.
type CollyFetcher struct {
	timeout   time.Duration
	userAgent string
}

// NewCollyFetcher creates a fetcher with the given request timeout and
// user agent. An empty user agent falls back to DefaultUserAgent.
func NewCollyFetcher(timeout time.Duration, userAgent string) *CollyFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &CollyFetcher{
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// FetchHyperlinks fetches the page and returns its anchor targets in
// document order. Fragment-only and unresolvable hrefs are skipped.
//
// A fresh collector is used per call: Colly refuses to revisit URLs seen
// by the same collector, and callers may legitimately fetch the same page
// across crawls.
func (f *CollyFetcher) FetchHyperlinks(pageURL string) ([]string, error) {
	collector := colly.NewCollector(
		colly.UserAgent(f.userAgent),
	)
	collector.SetRequestTimeout(f.timeout)

	var links []string
	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		links = append(links, link)
	})

	var fetchErr error
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, fetchErr)
	}

	logrus.Debugf("Fetched %s: %d links extracted", pageURL, len(links))
	return links, nil
}
