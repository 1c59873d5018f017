// Package fetcher retrieves pages and extracts their outbound hyperlinks.
package fetcher

// PageFetcher turns a page URL into the outbound hyperlink URLs the page
// contains. Implementations own the transport concerns: encoding and
// compression handling, timeouts, retries, and HTML parsing quirks.
type PageFetcher interface {
	// FetchHyperlinks returns the raw outbound link URLs of the page, in
	// document order, unfiltered and not deduplicated.
	FetchHyperlinks(pageURL string) ([]string, error)
}
