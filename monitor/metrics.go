// Package monitor collects lightweight per-executor query metrics.
package monitor

import "time"

// QuerySnapshot is a point-in-time view of collected query metrics.
type QuerySnapshot struct {
	Queries       int64         `json:"queries"`
	Errors        int64         `json:"errors"`
	TotalDuration time.Duration `json:"total_duration"`
	LastLatency   time.Duration `json:"last_latency"`
	AvgLatencyMs  float64       `json:"avg_latency_ms"`
	StartTime     time.Time     `json:"start_time"`
}
