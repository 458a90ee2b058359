// Package stats provides simple local ingestion statistics. This is a
// lightweight alternative to an external metrics stack for a personal
// assistant deployment.
package stats

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalMessages int64 `json:"totalMessages"`
	RulePath      int64 `json:"rulePath"`
	ModelPath     int64 `json:"modelPath"`
	NoEvent       int64 `json:"noEvent"`
	ModelCalls    int64 `json:"modelCalls"`
	FlaggedReview int64 `json:"flaggedReview"`

	StartedAt    time.Time `json:"startedAt"`
	LastIngestAt time.Time `json:"lastIngestAt"`
}

// Collector counts ingestion outcomes. All methods are safe for concurrent
// use.
type Collector struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{snap: Snapshot{StartedAt: time.Now()}}
}

// RecordIngest counts one ingestion outcome. path is one of the event
// service path values; modelUsed and flagged mirror the ingest result.
func (c *Collector) RecordIngest(path string, modelUsed, flagged bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snap.TotalMessages++
	switch path {
	case "rule":
		c.snap.RulePath++
	case "model":
		c.snap.ModelPath++
	default:
		c.snap.NoEvent++
	}
	if modelUsed {
		c.snap.ModelCalls++
	}
	if flagged {
		c.snap.FlaggedReview++
	}
	c.snap.LastIngestAt = time.Now()
}

// GetSnapshot returns a copy of the current counters.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}
