package monitor

import (
	"sync"
	"time"
)

// Collector accumulates query counts and latencies in memory.
type Collector struct {
	mu            sync.RWMutex
	queries       int64
	errors        int64
	totalDuration time.Duration
	lastLatency   time.Duration
	startTime     time.Time
}

// NewCollector creates a collector with its start time set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Record registers one query with its latency and outcome.
func (c *Collector) Record(d time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queries++
	if err != nil {
		c.errors++
	}
	c.totalDuration += d
	c.lastLatency = d
}

// Snapshot returns the current metrics.
func (c *Collector) Snapshot() QuerySnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := QuerySnapshot{
		Queries:       c.queries,
		Errors:        c.errors,
		TotalDuration: c.totalDuration,
		LastLatency:   c.lastLatency,
		StartTime:     c.startTime,
	}
	if c.queries > 0 {
		snap.AvgLatencyMs = float64(c.totalDuration.Milliseconds()) / float64(c.queries)
	}
	return snap
}

// Reset clears all counters and restarts the clock.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queries = 0
	c.errors = 0
	c.totalDuration = 0
	c.lastLatency = 0
	c.startTime = time.Now()
}
