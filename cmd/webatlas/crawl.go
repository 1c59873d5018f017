package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/alvmarrod/web-atlas/internal/config"
	"github.com/alvmarrod/web-atlas/internal/crawler"
	"github.com/alvmarrod/web-atlas/internal/fetcher"
	"github.com/alvmarrod/web-atlas/internal/metrics"
	"github.com/alvmarrod/web-atlas/internal/storage"
	"github.com/alvmarrod/web-atlas/internal/version"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl one or more seed URLs and build a link graph",
		Long: `Crawl runs a bounded breadth-first crawl from each seed URL in order,
merges the per-seed subgraphs into one graph, and saves it to SQLite.
Seeds may come from arguments or from a JSON config file; arguments win.`,
		RunE: runCrawl,
	}

	cmd.Flags().StringP("config", "c", "", "Path to JSON config file")
	cmd.Flags().Int("depth", 1, "Maximum crawl depth in hops from each seed")
	cmd.Flags().Int("max-results", 0, "Maximum total nodes across all seeds (0 = unlimited)")
	cmd.Flags().StringSlice("allow", nil, "Base allowed domain (repeatable)")
	cmd.Flags().Bool("no-restrict", false, "Do not restrict each seed crawl to the seed's domain")
	cmd.Flags().String("db", "", "SQLite database path")
	cmd.Flags().String("metrics", "", "Metrics output file path")
	cmd.Flags().Int("timeout-ms", 0, "Page fetch timeout in milliseconds")
	cmd.Flags().String("user-agent", "", "User agent for page fetches")

	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	logrus.Infof("web-atlas v%s starting...", version.Version)

	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	logrus.Infof("Configuration loaded: seeds=%d, depth=%d, max_results=%d, allowed_domains=%v",
		len(cfg.SeedURLs), cfg.MaxDepth, cfg.MaxResults, cfg.AllowedDomains)

	// Initialize storage
	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	logrus.Infof("Database initialized: %s", cfg.DBPath)

	// Initialize metrics tracker
	tracker := metrics.NewTracker()

	metricsCallback := func(seedsCrawled, pagesFetched, pagesFailed, nodesAdded, edgesAdded int) {
		if seedsCrawled > 0 {
			tracker.IncrementSeedsCrawled()
		}
		tracker.AddPagesFetched(pagesFetched)
		tracker.AddPagesFailed(pagesFailed)
		tracker.AddNodesDiscovered(nodesAdded)
		tracker.AddEdgesRecorded(edgesAdded)
	}

	// Initialize fetcher and crawler
	pageFetcher := fetcher.NewCollyFetcher(
		time.Duration(cfg.RequestTimeoutMs)*time.Millisecond,
		cfg.UserAgent,
	)

	opts := []crawler.Option{crawler.WithMetricsCallback(metricsCallback)}
	if !cfg.RestrictSessions() {
		opts = append(opts, crawler.WithoutSeedDomainRestriction())
	}
	c := crawler.New(pageFetcher, cfg.AllowedDomains, opts...)

	// Run the batch crawl
	g := c.CrawlMultipleURLs(cfg.SeedURLs, cfg.MaxDepth, cfg.MaxResults)

	logrus.Info("Final stats: " + tracker.LogProgress())

	// Persist the result graph
	if err := store.SaveGraph(g); err != nil {
		logrus.Errorf("Failed to save graph: %v", err)
	}

	// Write metrics to file
	if err := tracker.WriteToFile(cfg.MetricsPath, "completed"); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	return nil
}

// resolveConfig merges the optional config file with command-line flags
// and arguments. Flags that were set explicitly override file values, and
// positional arguments replace the file's seed list.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	if len(args) > 0 {
		cfg.SeedURLs = args
	}
	if cmd.Flags().Changed("depth") {
		cfg.MaxDepth, _ = cmd.Flags().GetInt("depth")
	}
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	if cmd.Flags().Changed("allow") {
		cfg.AllowedDomains, _ = cmd.Flags().GetStringSlice("allow")
	}
	if cmd.Flags().Changed("no-restrict") {
		noRestrict, _ := cmd.Flags().GetBool("no-restrict")
		restrict := !noRestrict
		cfg.RestrictToDomain = &restrict
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath, _ = cmd.Flags().GetString("db")
	}
	if cmd.Flags().Changed("metrics") {
		cfg.MetricsPath, _ = cmd.Flags().GetString("metrics")
	}
	if cmd.Flags().Changed("timeout-ms") {
		cfg.RequestTimeoutMs, _ = cmd.Flags().GetInt("timeout-ms")
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, _ = cmd.Flags().GetString("user-agent")
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
