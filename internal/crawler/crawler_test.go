package crawler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/web-atlas/internal/graph"
)

// stubFetcher serves canned link lists and records the URLs it was asked
// to fetch, in order.
type stubFetcher struct {
	pages   map[string][]string
	errs    map[string]error
	fetched []string
}

func (s *stubFetcher) FetchHyperlinks(pageURL string) ([]string, error) {
	s.fetched = append(s.fetched, pageURL)
	if err, ok := s.errs[pageURL]; ok {
		return nil, err
	}
	return s.pages[pageURL], nil
}

func TestInAllowedDomainUnrestricted(t *testing.T) {
	t.Parallel()

	c := New(&stubFetcher{}, nil)

	// Empty base and session allow-lists admit everything.
	assert.True(t, c.InAllowedDomain("http://anything.example"))
	assert.True(t, c.InAllowedDomain("not even a url"))
	assert.True(t, c.InAllowedDomain(""))
}

func TestInAllowedDomainRestricted(t *testing.T) {
	t.Parallel()

	c := New(&stubFetcher{}, []string{"example.com"})

	assert.True(t, c.InAllowedDomain("http://example.com/page"))
	assert.True(t, c.InAllowedDomain("http://sub.example.com/page"))
	assert.False(t, c.InAllowedDomain("http://other.com"))

	// Substring containment admits look-alike hosts. Known weakness of
	// the admission policy; a change here is a behavioral deviation.
	assert.True(t, c.InAllowedDomain("http://example.com.evil.com"))

	// A malformed candidate simply fails the containment check.
	assert.False(t, c.InAllowedDomain("nonsense"))
}

func TestStartNewCrawlingSession(t *testing.T) {
	t.Parallel()

	c := New(&stubFetcher{}, nil)

	g := c.StartNewCrawlingSession("http://a.com/x", true)
	require.Equal(t, 1, g.Order())
	assert.Equal(t, 0, g.EdgeCount())
	assert.True(t, g.HasNode("http://a.com/x"))

	// Session is restricted to the start node's domain.
	assert.True(t, c.InAllowedDomain("http://a.com/other"))
	assert.False(t, c.InAllowedDomain("http://b.com"))

	// An unrestricted session clears the previous restriction.
	c.StartNewCrawlingSession("http://b.com", false)
	assert.True(t, c.InAllowedDomain("http://a.com"))
	assert.True(t, c.InAllowedDomain("http://anything.com"))
}

func TestSessionDoesNotClearBaseDomains(t *testing.T) {
	t.Parallel()

	c := New(&stubFetcher{}, []string{"base.com"})

	c.StartNewCrawlingSession("http://a.com", true)
	assert.True(t, c.InAllowedDomain("http://base.com/page"))
	assert.True(t, c.InAllowedDomain("http://a.com/page"))
	assert.False(t, c.InAllowedDomain("http://other.com"))

	// Clearing the session restriction leaves the base list in effect.
	c.StartNewCrawlingSession("http://a.com", false)
	assert.True(t, c.InAllowedDomain("http://base.com/page"))
	assert.False(t, c.InAllowedDomain("http://a.com/page"))
}

func TestVisitNodeNeighborhood(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string][]string{
		"http://a.com": {"http://a.com/1", "http://b.com/2"},
	}}
	c := New(f, []string{"a.com"})

	neighbors := c.VisitNodeNeighborhood(graph.NewNode("http://a.com"))
	require.Len(t, neighbors, 1)
	assert.Equal(t, "http://a.com/1", neighbors[0].ID)
	assert.Equal(t, "a.com", neighbors[0].Domain)
}

func TestVisitNodeNeighborhoodKeepsFetchOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string][]string{
		"http://a.com": {"http://a.com/2", "http://a.com/1", "http://a.com/2"},
	}}
	c := New(f, []string{"a.com"})

	neighbors := c.VisitNodeNeighborhood(graph.NewNode("http://a.com"))
	require.Len(t, neighbors, 3)
	assert.Equal(t, "http://a.com/2", neighbors[0].ID)
	assert.Equal(t, "http://a.com/1", neighbors[1].ID)
	assert.Equal(t, "http://a.com/2", neighbors[2].ID)
}

func TestVisitNodeNeighborhoodFetchFailure(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{errs: map[string]error{
		"http://a.com": errors.New("connection refused"),
	}}
	c := New(f, nil)

	assert.Empty(t, c.VisitNodeNeighborhood(graph.NewNode("http://a.com")))
}

func TestCrawlDepthBound(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string][]string{
		"http://a.com/1": {"http://a.com/2"},
		"http://a.com/2": {"http://a.com/3"},
		"http://a.com/3": {"http://a.com/4"},
	}}
	c := New(f, nil)

	g := c.Crawl("http://a.com/1", 2, 0)

	assert.Equal(t, 3, g.Order())
	assert.True(t, g.HasNode("http://a.com/3"))
	assert.False(t, g.HasNode("http://a.com/4"))
	// Nodes at max depth are recorded but never expanded.
	assert.Equal(t, []string{"http://a.com/1", "http://a.com/2"}, f.fetched)
}

func TestCrawlIsBreadthFirst(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string][]string{
		"http://a.com":   {"http://a.com/1", "http://a.com/2"},
		"http://a.com/1": {"http://a.com/1/x"},
		"http://a.com/2": {"http://a.com/2/x"},
	}}
	c := New(f, nil)

	c.Crawl("http://a.com", 3, 0)

	// All depth-1 pages are expanded before any depth-2 page.
	assert.Equal(t, []string{
		"http://a.com",
		"http://a.com/1",
		"http://a.com/2",
		"http://a.com/1/x",
		"http://a.com/2/x",
	}, f.fetched)
}

func TestCrawlResultBudget(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string][]string{
		"http://a.com": {
			"http://a.com/1", "http://a.com/2", "http://a.com/3",
			"http://a.com/4", "http://a.com/5", "http://a.com/6",
		},
	}}
	c := New(f, nil)

	g := c.Crawl("http://a.com", 1, 4)

	// Budget truncates mid-expansion: seed plus the first three links.
	assert.Equal(t, 4, g.Order())
	assert.True(t, g.HasNode("http://a.com/3"))
	assert.False(t, g.HasNode("http://a.com/4"))
}

func TestCrawlDoesNotRevisitNodes(t *testing.T) {
	t.Parallel()

	// a <-> b cycle plus a self-link.
	f := &stubFetcher{pages: map[string][]string{
		"http://a.com":   {"http://a.com/b", "http://a.com"},
		"http://a.com/b": {"http://a.com"},
	}}
	c := New(f, nil)

	g := c.Crawl("http://a.com", 5, 0)

	assert.Equal(t, 2, g.Order())
	assert.Equal(t, []string{"http://a.com", "http://a.com/b"}, f.fetched)
	assert.True(t, g.HasEdge("http://a.com", "http://a.com"))
	assert.True(t, g.HasEdge("http://a.com/b", "http://a.com"))
}

func TestCrawlRestrictsToSeedDomain(t *testing.T) {
	t.Parallel()

	pages := map[string][]string{
		"http://a.com": {"http://a.com/1", "http://b.com/1"},
	}

	f := &stubFetcher{pages: pages}
	g := New(f, nil).Crawl("http://a.com", 1, 0)
	assert.True(t, g.HasNode("http://a.com/1"))
	assert.False(t, g.HasNode("http://b.com/1"))

	// Without the seed-domain restriction everything is admitted.
	f = &stubFetcher{pages: pages}
	g = New(f, nil, WithoutSeedDomainRestriction()).Crawl("http://a.com", 1, 0)
	assert.True(t, g.HasNode("http://a.com/1"))
	assert.True(t, g.HasNode("http://b.com/1"))
}

func TestCrawlFetchFailureIsDeadEnd(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{
		pages: map[string][]string{
			"http://a.com":     {"http://a.com/ok", "http://a.com/bad"},
			"http://a.com/bad": {"http://a.com/never"},
		},
		errs: map[string]error{
			"http://a.com/bad": errors.New("boom"),
		},
	}
	c := New(f, nil)

	g := c.Crawl("http://a.com", 3, 0)

	// The failed page stays in the graph as a dead end; the crawl goes on.
	assert.True(t, g.HasNode("http://a.com/bad"))
	assert.False(t, g.HasNode("http://a.com/never"))
	assert.True(t, g.HasNode("http://a.com/ok"))
}

func TestCrawlMultipleURLsEmptyInput(t *testing.T) {
	t.Parallel()

	c := New(&stubFetcher{}, nil)

	g := c.CrawlMultipleURLs(nil, 1, 0)
	assert.Equal(t, 0, g.Order())
	assert.Equal(t, 0, g.EdgeCount())
}

func TestCrawlMultipleURLsBudget(t *testing.T) {
	t.Parallel()

	// Three seeds, each producing 5 nodes (seed + 4 links).
	f := &stubFetcher{pages: map[string][]string{
		"http://s1.com": {"http://s1.com/1", "http://s1.com/2", "http://s1.com/3", "http://s1.com/4"},
		"http://s2.com": {"http://s2.com/1", "http://s2.com/2", "http://s2.com/3", "http://s2.com/4"},
		"http://s3.com": {"http://s3.com/1", "http://s3.com/2", "http://s3.com/3", "http://s3.com/4"},
	}}
	c := New(f, nil)

	g := c.CrawlMultipleURLs([]string{"http://s1.com", "http://s2.com", "http://s3.com"}, 1, 8)

	// Seed 1 contributes 5 nodes, seed 2 is bounded to the remaining 3,
	// and seed 3 is never issued.
	assert.Equal(t, 8, g.Order())
	assert.NotContains(t, f.fetched, "http://s3.com")
	assert.False(t, g.HasNode("http://s3.com"))
}

func TestCrawlMultipleURLsMergesDuplicates(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string][]string{
		"http://a.com":   {"http://a.com/shared"},
		"http://a.com/x": {"http://a.com/shared"},
	}}
	c := New(f, []string{"a.com"})

	g := c.CrawlMultipleURLs([]string{"http://a.com", "http://a.com/x", "http://a.com"}, 1, 0)

	// Both seeds point at the same page; the union has no duplicates.
	assert.Equal(t, 3, g.Order())
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasEdge("http://a.com", "http://a.com/shared"))
	assert.True(t, g.HasEdge("http://a.com/x", "http://a.com/shared"))
}

func TestCrawlMetricsCallback(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{
		pages: map[string][]string{
			"http://a.com": {"http://a.com/1", "http://a.com/2"},
		},
		errs: map[string]error{
			"http://a.com/1": errors.New("boom"),
			"http://a.com/2": errors.New("boom"),
		},
	}

	var seeds, fetched, failed, nodes, edges int
	c := New(f, nil, WithMetricsCallback(func(s, pf, pfl, n, e int) {
		seeds += s
		fetched += pf
		failed += pfl
		nodes += n
		edges += e
	}))

	c.Crawl("http://a.com", 2, 0)

	assert.Equal(t, 1, seeds)
	assert.Equal(t, 1, fetched)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 2, edges)
}
