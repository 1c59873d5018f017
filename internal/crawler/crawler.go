// Package crawler implements the crawl orchestration core: session-scoped
// domain filtering, depth- and result-bounded breadth-first expansion, and
// deduplicated graph accumulation across multiple seeds.
package crawler

import (
	"strings"
	"sync"

	"github.com/alvmarrod/web-atlas/internal/fetcher"
	"github.com/alvmarrod/web-atlas/internal/graph"
	"github.com/sirupsen/logrus"
)

// MetricsCallback receives crawl event deltas as they happen.
type MetricsCallback func(seedsCrawled, pagesFetched, pagesFailed, nodesAdded, edgesAdded int)

// allowlist is an immutable snapshot of the effective domain allow-list
// for one traversal. An empty allowlist admits every URL; this is a
// deliberate policy, not an omission.
type allowlist []string

// admits reports whether the URL contains any allowed domain as a
// substring. Substring containment tolerates subdomains and path-embedded
// domain mentions at the cost of false positives (e.g.
// "example.com.evil.com" passes for "example.com"); this is a documented
// trade-off, do not tighten it silently.
func (a allowlist) admits(url string) bool {
	if len(a) == 0 {
		return true
	}
	for _, domain := range a {
		if strings.Contains(url, domain) {
			return true
		}
	}
	return false
}

// Crawler discovers a graph of pages and the hyperlinks between them,
// subject to domain scoping, depth limits, and result-count limits.
//
// The base allow-list is fixed at construction. The session allow-list is
// replaced by every StartNewCrawlingSession call; each traversal snapshots
// the combined allow-list when it starts, so restarting a session does not
// affect a crawl already in flight.
type Crawler struct {
	fetcher fetcher.PageFetcher

	mu                    sync.RWMutex
	baseAllowedDomains    []string
	sessionAllowedDomains []string

	restrictToSeedDomain bool
	metricsCallback      MetricsCallback
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMetricsCallback registers a callback invoked with event deltas
// during crawls.
func WithMetricsCallback(cb MetricsCallback) Option {
	return func(c *Crawler) {
		c.metricsCallback = cb
	}
}

// WithoutSeedDomainRestriction makes Crawl and CrawlMultipleURLs start
// their sessions without deriving a session domain from the seed, leaving
// only the base allow-list in effect.
func WithoutSeedDomainRestriction() Option {
	return func(c *Crawler) {
		c.restrictToSeedDomain = false
	}
}

// New creates a crawler that fetches pages through f. allowedDomains is
// the base allow-list, immutable for the crawler's lifetime; empty means
// no base restriction.
func New(f fetcher.PageFetcher, allowedDomains []string, opts ...Option) *Crawler {
	c := &Crawler{
		fetcher:              f,
		baseAllowedDomains:   append([]string(nil), allowedDomains...),
		restrictToSeedDomain: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetNode resolves a node identifier (URL) to a Node.
func (c *Crawler) GetNode(nodeID string) *graph.Node {
	return graph.NewNode(nodeID)
}

// StartNewCrawlingSession resets the session allow-list and returns a
// fresh graph containing exactly the start node. When restrictToDomain is
// true the session allow-list becomes the start node's domain; otherwise
// it is cleared, regardless of any previous session.
//
// Sessions on the same Crawler replace each other; only the allow-list
// snapshot taken by a running traversal is stable.
func (c *Crawler) StartNewCrawlingSession(startNodeID string, restrictToDomain bool) *graph.Graph {
	startNode := c.GetNode(startNodeID)

	c.mu.Lock()
	if restrictToDomain {
		c.sessionAllowedDomains = []string{startNode.Domain}
	} else {
		c.sessionAllowedDomains = nil
	}
	c.mu.Unlock()

	logrus.Debugf("New crawling session: start=%s, restrict=%t", startNodeID, restrictToDomain)

	g := graph.New()
	g.AddNode(startNode)
	return g
}

// InAllowedDomain reports whether the URL passes the current effective
// allow-list (base plus session). An empty effective allow-list admits
// everything.
func (c *Crawler) InAllowedDomain(url string) bool {
	return c.allowlistSnapshot().admits(url)
}

// allowlistSnapshot copies the combined base + session allow-list into an
// immutable value.
func (c *Crawler) allowlistSnapshot() allowlist {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make(allowlist, 0, len(c.baseAllowedDomains)+len(c.sessionAllowedDomains))
	all = append(all, c.baseAllowedDomains...)
	all = append(all, c.sessionAllowedDomains...)
	return all
}

// VisitNodeNeighborhood fetches the node's page and returns the linked
// nodes that pass the current allow-list, in fetch order. The result is
// not deduplicated; collapsing duplicates is the graph's concern when the
// nodes are added.
func (c *Crawler) VisitNodeNeighborhood(node *graph.Node) []*graph.Node {
	return c.visitNeighborhood(node, c.allowlistSnapshot())
}

func (c *Crawler) visitNeighborhood(node *graph.Node, allowed allowlist) []*graph.Node {
	neighbors := c.fetchNeighbors(node)

	var admitted []*graph.Node
	for _, neighbor := range neighbors {
		if !allowed.admits(neighbor) {
			continue
		}
		admitted = append(admitted, graph.NewNode(neighbor))
	}
	return admitted
}

// fetchNeighbors is the single place the fetch-failure policy lives: a
// failed fetch is logged and treated as zero neighbors. Failures never
// abort a seed or a batch crawl.
func (c *Crawler) fetchNeighbors(node *graph.Node) []string {
	links, err := c.fetcher.FetchHyperlinks(node.ID)
	if err != nil {
		logrus.Warnf("Fetch failed for %s, treating as dead end: %v", node.ID, err)
		c.reportMetrics(0, 0, 1, 0, 0)
		return nil
	}
	c.reportMetrics(0, 1, 0, 0, 0)
	return links
}

// Crawl runs a bounded breadth-first traversal from a single seed and
// returns the resulting graph. Depth is counted in hops from the seed;
// nodes at maxDepth are recorded but not expanded. maxResults bounds the
// node count (<= 0 means unlimited): once the graph reaches it, no further
// nodes or edges are added and the remaining frontier is abandoned.
//
// A new session is started for the seed, restricted to the seed's domain
// unless the crawler was built with WithoutSeedDomainRestriction.
func (c *Crawler) Crawl(seedURL string, maxDepth, maxResults int) *graph.Graph {
	g := c.StartNewCrawlingSession(seedURL, c.restrictToSeedDomain)
	allowed := c.allowlistSnapshot()
	c.reportMetrics(1, 0, 0, 1, 0)

	front := newFrontier()
	front.push(c.GetNode(seedURL), 0)

	for {
		node, depth, ok := front.pop()
		if !ok {
			break
		}
		if depth >= maxDepth {
			continue
		}
		if maxResults > 0 && g.Order() >= maxResults {
			logrus.Debugf("Result budget reached (%d nodes), abandoning frontier of %d", g.Order(), front.len())
			break
		}

		for _, neighbor := range c.visitNeighborhood(node, allowed) {
			if maxResults > 0 && g.Order() >= maxResults {
				break
			}
			if g.AddNode(neighbor) {
				c.reportMetrics(0, 0, 0, 1, 0)
			}
			if !g.HasEdge(node.ID, neighbor.ID) {
				g.AddEdge(node.ID, neighbor.ID)
				c.reportMetrics(0, 0, 0, 0, 1)
			}
			front.push(neighbor, depth+1)
		}
	}

	logrus.Infof("Crawl of %s finished: %d nodes, %d edges", seedURL, g.Order(), g.EdgeCount())
	return g
}

// CrawlMultipleURLs crawls each seed in input order and merges the
// per-seed subgraphs into a single accumulator graph. maxResults (<= 0
// means unlimited) is a soft global bound: before each seed the remaining
// budget is recomputed from the accumulator's node count, and once it is
// exhausted no further seeds are issued. Subgraphs are never truncated
// after the fact.
func (c *Crawler) CrawlMultipleURLs(urls []string, maxDepth, maxResults int) *graph.Graph {
	accumulator := graph.New()

	for _, url := range urls {
		remaining := 0
		if maxResults > 0 {
			remaining = maxResults - accumulator.Order()
			if remaining <= 0 {
				logrus.Infof("Result budget %d exhausted, skipping remaining seeds", maxResults)
				break
			}
		}

		subgraph := c.Crawl(url, maxDepth, remaining)
		accumulator.Merge(subgraph)
	}

	logrus.Infof("Batch crawl finished: %d seeds requested, %d nodes, %d edges",
		len(urls), accumulator.Order(), accumulator.EdgeCount())
	return accumulator
}

func (c *Crawler) reportMetrics(seedsCrawled, pagesFetched, pagesFailed, nodesAdded, edgesAdded int) {
	if c.metricsCallback != nil {
		c.metricsCallback(seedsCrawled, pagesFetched, pagesFailed, nodesAdded, edgesAdded)
	}
}
