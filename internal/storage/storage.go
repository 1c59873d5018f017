// Package storage persists finished crawl graphs in SQLite.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/alvmarrod/web-atlas/internal/graph"
)

// Store handles all database operations. It stores result graphs only;
// crawl progress is never persisted, so a restarted process always crawls
// from scratch.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at dbPath and initializes the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		discovered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS links (
		from_url TEXT NOT NULL,
		to_url TEXT NOT NULL,
		FOREIGN KEY (from_url) REFERENCES pages(url),
		FOREIGN KEY (to_url) REFERENCES pages(url),
		UNIQUE(from_url, to_url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);
	CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_url);
	CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_url);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertPage inserts a page row, keeping the existing row when the URL is
// already present.
func (s *Store) UpsertPage(url, domain string) error {
	_, err := s.db.Exec(`
		INSERT INTO pages (url, domain)
		VALUES (?, ?)
		ON CONFLICT(url) DO NOTHING
	`, url, domain)

	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}
	return nil
}

// UpsertLink inserts a directed link, collapsing duplicates.
func (s *Store) UpsertLink(fromURL, toURL string) error {
	_, err := s.db.Exec(`
		INSERT INTO links (from_url, to_url)
		VALUES (?, ?)
		ON CONFLICT(from_url, to_url) DO NOTHING
	`, fromURL, toURL)

	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	return nil
}

// SaveGraph writes all of g's pages and links to the database. Row
// failures are logged and accumulated rather than aborting the flush, so
// one bad row cannot lose the rest of the graph; the aggregated error is
// returned at the end.
func (s *Store) SaveGraph(g *graph.Graph) error {
	var errs *multierror.Error

	pagesWritten := 0
	for _, node := range g.Nodes() {
		if err := s.UpsertPage(node.ID, node.Domain); err != nil {
			logrus.Warnf("Failed to save page %s: %v", node.ID, err)
			errs = multierror.Append(errs, err)
			continue
		}
		pagesWritten++
	}

	linksWritten := 0
	for fromURL, targets := range g.Edges() {
		for _, toURL := range targets {
			// An edge target may not have been visited; make sure a page
			// row exists for it before linking.
			if !g.HasNode(toURL) {
				if err := s.UpsertPage(toURL, graph.DomainOf(toURL)); err != nil {
					logrus.Warnf("Failed to save link target %s: %v", toURL, err)
					errs = multierror.Append(errs, err)
					continue
				}
			}
			if err := s.UpsertLink(fromURL, toURL); err != nil {
				logrus.Warnf("Failed to save link %s -> %s: %v", fromURL, toURL, err)
				errs = multierror.Append(errs, err)
				continue
			}
			linksWritten++
		}
	}

	logrus.Infof("Graph saved: %d pages, %d links", pagesWritten, linksWritten)
	return errs.ErrorOrNil()
}

// LoadGraph reconstructs a graph from all stored pages and links.
func (s *Store) LoadGraph() (*graph.Graph, error) {
	g := graph.New()

	rows, err := s.db.Query("SELECT url, domain FROM pages")
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url, domain string
		if err := rows.Scan(&url, &domain); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		g.AddNode(&graph.Node{ID: url, Domain: domain})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pages: %w", err)
	}

	linkRows, err := s.db.Query("SELECT from_url, to_url FROM links")
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var fromURL, toURL string
		if err := linkRows.Scan(&fromURL, &toURL); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		g.AddEdge(fromURL, toURL)
	}
	if err := linkRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return g, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
