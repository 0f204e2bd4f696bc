package httpx

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds lightweight counters for HTTP activity.
type Metrics struct {
	TotalRequests     atomic.Int64
	TotalRetries      atomic.Int64
	TotalBackoffNanos atomic.Int64
	NetErrors         atomic.Int64

	mu         sync.Mutex
	hostCounts map[string]int64
	status2xx  int64
	status3xx  int64
	status4xx  int64
	status429  int64
	status5xx  int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics { return &Metrics{hostCounts: make(map[string]int64)} }

// IncRequest counts one attempt against host.
func (m *Metrics) IncRequest(host string) {
	m.TotalRequests.Add(1)
	m.mu.Lock()
	if m.hostCounts == nil {
		m.hostCounts = make(map[string]int64)
	}
	m.hostCounts[host]++
	m.mu.Unlock()
}

// IncRetry counts a retry decision.
func (m *Metrics) IncRetry() { m.TotalRetries.Add(1) }

// IncNetError counts an attempt that failed without a response.
func (m *Metrics) IncNetError() { m.NetErrors.Add(1) }

// AddBackoff accumulates backoff sleep time.
func (m *Metrics) AddBackoff(d time.Duration) { m.TotalBackoffNanos.Add(d.Nanoseconds()) }

// IncStatus tracks status buckets. 429 is counted separately from 4xx.
func (m *Metrics) IncStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case code == 429:
		m.status429++
	case code >= 200 && code < 300:
		m.status2xx++
	case code >= 300 && code < 400:
		m.status3xx++
	case code >= 400 && code < 500:
		m.status4xx++
	case code >= 500:
		m.status5xx++
	}
}

// MetricsSnapshot is a read-only copy of metrics state.
type MetricsSnapshot struct {
	TotalRequests int64
	TotalRetries  int64
	TotalBackoff  time.Duration
	NetErrors     int64
	HostCounts    map[string]int64
	Status2xx     int64
	Status3xx     int64
	Status4xx     int64
	Status429     int64
	Status5xx     int64
}

// Snapshot returns a copy of the metrics. A nil receiver yields zeros.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{HostCounts: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	hosts := make(map[string]int64, len(m.hostCounts))
	for k, v := range m.hostCounts {
		hosts[k] = v
	}
	return MetricsSnapshot{
		TotalRequests: m.TotalRequests.Load(),
		TotalRetries:  m.TotalRetries.Load(),
		TotalBackoff:  time.Duration(m.TotalBackoffNanos.Load()),
		NetErrors:     m.NetErrors.Load(),
		HostCounts:    hosts,
		Status2xx:     m.status2xx,
		Status3xx:     m.status3xx,
		Status4xx:     m.status4xx,
		Status429:     m.status429,
		Status5xx:     m.status5xx,
	}
}

// Summary renders the snapshot as a compact status line.
func (s MetricsSnapshot) Summary() string {
	out := fmt.Sprintf("req %d · retries %d · 429 %d · 5xx %d", s.TotalRequests, s.TotalRetries, s.Status429, s.Status5xx)
	if s.TotalBackoff > 0 {
		out += fmt.Sprintf(" · backoff %s", s.TotalBackoff.Round(time.Millisecond))
	}
	return out
}
