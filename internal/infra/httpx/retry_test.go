package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

func newTestRetryClient(retryMax int, metrics *Metrics) *retryablehttp.Client {
	return NewRetryClient(RetryOptions{
		RetryMax:     retryMax,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 2 * time.Millisecond,
		Timeout:      5 * time.Second,
		Transport:    NewLimiterTransport(nil, TransportOptions{Default: Limit{RPS: 1000, Burst: 1000}, Metrics: metrics}),
		Metrics:      metrics,
	})
}

func TestRetryClientRetries503(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	metrics := NewMetrics()
	client := newTestRetryClient(2, metrics)
	rc := &RetryCounters{}
	req, err := retryablehttp.NewRequestWithContext(WithRetryCounters(context.Background(), rc), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if rc.Total != 1 || rc.Status5xx != 1 {
		t.Fatalf("counters = %+v", rc)
	}
	s := metrics.Snapshot()
	if s.TotalRetries != 1 || s.TotalRequests != 2 {
		t.Fatalf("snapshot = %+v", s)
	}
}

func TestRetryClientReturnsFinalResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	metrics := NewMetrics()
	client := newTestRetryClient(1, metrics)
	rc := &RetryCounters{}
	req, _ := retryablehttp.NewRequestWithContext(WithRetryCounters(context.Background(), rc), http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	// two attempts, one of them a retry
	if rc.Total != 1 || rc.Status429 != 1 {
		t.Fatalf("counters = %+v", rc)
	}
	if got := metrics.Snapshot().Status429; got != 2 {
		t.Fatalf("429 count = %d", got)
	}
}

func TestRetryClientDoesNotRetry404(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newTestRetryClient(3, NewMetrics())
	req, _ := retryablehttp.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{" 0 ", 0},
		{now.Add(5 * time.Second).Format(http.TimeFormat), 5 * time.Second},
		{now.Add(-5 * time.Second).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMetricsSummary(t *testing.T) {
	m := NewMetrics()
	m.IncRequest("h")
	m.IncRequest("h")
	m.IncRetry()
	m.IncStatus(429)
	m.AddBackoff(1500 * time.Millisecond)
	got := m.Snapshot().Summary()
	for _, want := range []string{"req 2", "retries 1", "429 1", "backoff 1.5s"} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary %q missing %q", got, want)
		}
	}
	var nilMetrics *Metrics
	if nilMetrics.Snapshot().TotalRequests != 0 {
		t.Fatal("nil snapshot should be zero")
	}
}

func TestKVString(t *testing.T) {
	if got := kvString([]interface{}{"url", "x", "attempt", 2}); got != "url=x attempt=2" {
		t.Fatalf("kvString = %q", got)
	}
}
