// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpLLMReply   = "llm_reply"
	OpCreateCall = "twilio_create_call"
	OpWebhook    = "webhook"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count     int64   `json:"count"`
	Errors    int64   `json:"errors"`
	AvgTimeMs float64 `json:"avg_time_ms"`
	MinTimeMs int64   `json:"min_time_ms"`
	MaxTimeMs int64   `json:"max_time_ms"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	LiveSessions  int                `json:"live_sessions"`
	LLMReply      *OperationSnapshot `json:"llm_reply,omitempty"`
	CreateCall    *OperationSnapshot `json:"twilio_create_call,omitempty"`
	Webhook       *OperationSnapshot `json:"webhook,omitempty"`
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// Record adds one observation for an operation.
func (c *Collector) Record(op string, d time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}

	m.Count++
	if failed {
		m.Errors++
	}
	m.TotalTime += d
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
}

// Snapshot returns a point-in-time snapshot of all metrics. liveSessions is
// supplied by the caller because the store owns that count.
func (c *Collector) Snapshot(liveSessions int) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		LiveSessions:  liveSessions,
		LLMReply:      snapshotOp(c.ops[OpLLMReply]),
		CreateCall:    snapshotOp(c.ops[OpCreateCall]),
		Webhook:       snapshotOp(c.ops[OpWebhook]),
	}
}

func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	minTime := m.MinTime
	if minTime == time.Duration(math.MaxInt64) {
		minTime = 0
	}

	return &OperationSnapshot{
		Count:     m.Count,
		Errors:    m.Errors,
		AvgTimeMs: float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs: minTime.Milliseconds(),
		MaxTimeMs: m.MaxTime.Milliseconds(),
	}
}
