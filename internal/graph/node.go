package graph

import (
	"net/url"
	"strings"
)

// Node identifies a single page in the web graph. Identity is the exact
// URL string: two nodes with equal IDs are interchangeable for graph
// membership. No URL normalization is applied, so "http://a.com" and
// "http://a.com/" are distinct nodes.
type Node struct {
	ID     string
	Domain string
}

// NewNode builds a node for the given URL. The domain is derived from the
// URL host; relative or unparseable URLs yield an empty domain, never an
// error.
func NewNode(id string) *Node {
	return &Node{
		ID:     id,
		Domain: DomainOf(id),
	}
}

// DomainOf extracts the lowercased hostname from a URL string. It returns
// "" for relative URLs and anything url.Parse rejects.
func DomainOf(rawURL string) string {
	// Handle protocol-relative URLs
	if strings.HasPrefix(rawURL, "//") {
		rawURL = "https:" + rawURL
	}

	if !strings.Contains(rawURL, "://") {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(parsed.Hostname())
}
