// Package httpx holds the HTTP plumbing shared by all listing providers: a
// per-host rate limiting transport, request metrics and the retrying client
// used for the HTTP index.
package httpx

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Limit is a token bucket rate: RPS with a burst capacity.
type Limit struct {
	RPS   float64
	Burst int
}

// DefaultLimit applies to hosts without an explicit entry.
var DefaultLimit = Limit{RPS: 10, Burst: 10}

// RequestIDHeader carries a per-request uuid for server-side correlation.
const RequestIDHeader = "X-Request-Id"

// TransportOptions configures LimiterTransport.
type TransportOptions struct {
	Clock   Clock
	Metrics *Metrics

	// Default is used for hosts missing from HostLimits.
	Default    Limit
	HostLimits map[string]Limit
}

// tokenBucket is a per-host limiter with fractional tokens.
type tokenBucket struct {
	mu     sync.Mutex
	rps    float64
	ceil   float64
	burst  float64
	tokens float64
	last   time.Time
	clock  Clock
}

func newTokenBucket(lim Limit, clock Clock) *tokenBucket {
	if lim.RPS <= 0 {
		lim.RPS = DefaultLimit.RPS
	}
	burst := float64(max(1, lim.Burst))
	return &tokenBucket{
		rps:    lim.RPS,
		ceil:   lim.RPS,
		burst:  burst,
		tokens: burst,
		last:   clock.Now(),
		clock:  clock,
	}
}

func (tb *tokenBucket) refillLocked(now time.Time) {
	delta := now.Sub(tb.last).Seconds() * tb.rps
	if delta > 0 {
		tb.tokens = math.Min(tb.burst, tb.tokens+delta)
		tb.last = now
	}
}

// Wait blocks until a token is available or ctx is done.
func (tb *tokenBucket) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tb.mu.Lock()
		tb.refillLocked(tb.clock.Now())
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		need := 1 - tb.tokens
		wait := time.Duration((need / tb.rps) * float64(time.Second))
		tb.mu.Unlock()

		// sleep in 5ms slices so cancellation is observed
		if wait <= 0 {
			wait = 5 * time.Millisecond
		}
		deadline := tb.clock.Now().Add(wait)
		for tb.clock.Now().Before(deadline) {
			if err := ctx.Err(); err != nil {
				return err
			}
			tb.clock.Sleep(5 * time.Millisecond)
		}
	}
}

// adjustRPS nudges the rate within [1, configured RPS].
func (tb *tokenBucket) adjustRPS(delta float64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.rps = math.Max(1, math.Min(tb.ceil, tb.rps+delta))
}

func (tb *tokenBucket) currentRPS() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.rps
}

// LimiterTransport paces requests per host, tags them with a request id and
// records metrics. It does not retry; retries belong to the caller's client.
type LimiterTransport struct {
	Base http.RoundTripper
	Opts TransportOptions

	limMu    sync.Mutex
	limiters map[string]*tokenBucket
}

// NewLimiterTransport wraps base (http.DefaultTransport when nil).
func NewLimiterTransport(base http.RoundTripper, opts TransportOptions) *LimiterTransport {
	return &LimiterTransport{Base: base, Opts: opts, limiters: make(map[string]*tokenBucket)}
}

func (t *LimiterTransport) limiter(host string) *tokenBucket {
	if host == "" {
		host = "_default_"
	}
	t.limMu.Lock()
	defer t.limMu.Unlock()
	if t.limiters == nil {
		t.limiters = make(map[string]*tokenBucket)
	}
	if tb, ok := t.limiters[host]; ok {
		return tb
	}
	lim := t.Opts.Default
	if lim.RPS <= 0 {
		lim = DefaultLimit
	}
	if v, ok := t.Opts.HostLimits[host]; ok {
		lim = v
	}
	tb := newTokenBucket(lim, t.clock())
	t.limiters[host] = tb
	return tb
}

func (t *LimiterTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *LimiterTransport) clock() Clock {
	if t.Opts.Clock != nil {
		return t.Opts.Clock
	}
	return realClock{}
}

// RoundTrip implements http.RoundTripper.
func (t *LimiterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	lim := t.limiter(req.URL.Host)
	if err := lim.Wait(req.Context()); err != nil {
		return nil, err
	}
	if req.Header.Get(RequestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	if m := t.Opts.Metrics; m != nil {
		m.IncRequest(req.URL.Host)
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		if m := t.Opts.Metrics; m != nil {
			m.IncNetError()
		}
		lim.adjustRPS(-0.1)
		return nil, err
	}
	if m := t.Opts.Metrics; m != nil {
		m.IncStatus(resp.StatusCode)
	}
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		lim.adjustRPS(+0.02)
	case resp.StatusCode == http.StatusTooManyRequests:
		lim.adjustRPS(-0.3)
	case resp.StatusCode >= 500:
		lim.adjustRPS(-0.2)
	}
	return resp, nil
}

// Client returns an http.Client using t with the given timeout.
func (t *LimiterTransport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}
