// Package metrics tracks crawl statistics for progress logging and export
// on exit.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Snapshot is the exported metrics document.
type Snapshot struct {
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	SeedsCrawled      int       `json:"seeds_crawled"`
	NodesDiscovered   int       `json:"nodes_discovered"`
	EdgesRecorded     int       `json:"edges_recorded"`
	PagesFetched      int       `json:"pages_fetched"`
	PagesFailed       int       `json:"pages_failed"`
	TerminationReason string    `json:"termination_reason"`
}

// Tracker holds and manages crawl metrics
type Tracker struct {
	mu   sync.Mutex
	data Snapshot
}

// NewTracker creates a new metrics tracker
func NewTracker() *Tracker {
	return &Tracker{
		data: Snapshot{
			StartTime: time.Now(),
		},
	}
}

// IncrementSeedsCrawled increments the crawled seeds counter
func (t *Tracker) IncrementSeedsCrawled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.SeedsCrawled++
}

// AddNodesDiscovered adds to the discovered nodes counter
func (t *Tracker) AddNodesDiscovered(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.NodesDiscovered += n
}

// AddEdgesRecorded adds to the edges counter
func (t *Tracker) AddEdgesRecorded(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.EdgesRecorded += n
}

// AddPagesFetched adds to the successful fetch counter
func (t *Tracker) AddPagesFetched(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFetched += n
}

// AddPagesFailed adds to the failed fetch counter
func (t *Tracker) AddPagesFailed(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data.PagesFailed += n
}

// GetSnapshot returns a copy of current metrics
func (t *Tracker) GetSnapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.data
}

// WriteToFile exports metrics to a JSON file
func (t *Tracker) WriteToFile(path, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.EndTime = time.Now()
	t.data.TerminationReason = reason

	jsonData, err := json.MarshalIndent(t.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	return nil
}

// LogProgress prints current metrics to console (for periodic updates)
func (t *Tracker) LogProgress() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return fmt.Sprintf("Seeds: %d crawled | Nodes: %d discovered | Edges: %d | Pages: %d fetched, %d failed",
		t.data.SeedsCrawled,
		t.data.NodesDiscovered,
		t.data.EdgesRecorded,
		t.data.PagesFetched,
		t.data.PagesFailed,
	)
}
