package app

import (
	"sync/atomic"
	"time"

	"github.com/dshills/formatto/internal/format"
)

const noMin = 1<<63 - 1

// Metrics counts format requests and their latency.
type Metrics struct {
	requests  atomic.Uint64
	applied   atomic.Uint64
	unchanged atomic.Uint64
	failed    atomic.Uint64
	stale     atomic.Uint64

	totalNs atomic.Int64
	minNs   atomic.Int64
	maxNs   atomic.Int64
	lastNs  atomic.Int64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.minNs.Store(noMin)
	return m
}

// RecordFormat records one finished request.
func (m *Metrics) RecordFormat(d time.Duration, res format.Result) {
	m.requests.Add(1)
	switch {
	case res.Stale:
		m.stale.Add(1)
	case !res.Outcome.Ok():
		m.failed.Add(1)
	case res.Applied:
		m.applied.Add(1)
	default:
		m.unchanged.Add(1)
	}

	ns := d.Nanoseconds()
	m.totalNs.Add(ns)
	m.lastNs.Store(ns)

	for {
		old := m.minNs.Load()
		if ns >= old || m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	n := m.requests.Load()
	var avg time.Duration
	if n > 0 {
		avg = time.Duration(m.totalNs.Load() / int64(n))
	}
	minNs := m.minNs.Load()
	if minNs == noMin {
		minNs = 0
	}
	return MetricsSnapshot{
		Uptime:    time.Since(m.startTime),
		Requests:  n,
		Applied:   m.applied.Load(),
		Unchanged: m.unchanged.Load(),
		Failed:    m.failed.Load(),
		Stale:     m.stale.Load(),
		Avg:       avg,
		Min:       time.Duration(minNs),
		Max:       time.Duration(m.maxNs.Load()),
		Last:      time.Duration(m.lastNs.Load()),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime    time.Duration
	Requests  uint64
	Applied   uint64
	Unchanged uint64
	Failed    uint64
	Stale     uint64
	Avg       time.Duration
	Min       time.Duration
	Max       time.Duration
	Last      time.Duration
}
