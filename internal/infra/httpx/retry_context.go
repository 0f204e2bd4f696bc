package httpx

import "context"

type retryCtxKey struct{}

// RetryCounters attributes retries to the operation whose context carries it.
// Counters are written by the retry policy, which runs sequentially per
// request, so no locking is needed.
type RetryCounters struct {
	Total     int64
	Status429 int64
	Status5xx int64
	Net       int64

	lastStatus int
	lastNet    bool
	pending    bool
}

// WithRetryCounters attaches rc to ctx.
func WithRetryCounters(ctx context.Context, rc *RetryCounters) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, retryCtxKey{}, rc)
}

// RetryCountersFrom returns the counters attached to ctx, or nil.
func RetryCountersFrom(ctx context.Context) *RetryCounters {
	if ctx == nil {
		return nil
	}
	rc, _ := ctx.Value(retryCtxKey{}).(*RetryCounters)
	return rc
}

// note remembers the outcome the retry policy just judged retryable.
func (rc *RetryCounters) note(status int, netErr bool) {
	if rc == nil {
		return
	}
	rc.lastStatus, rc.lastNet, rc.pending = status, netErr, true
}

// commit attributes the noted outcome once the retry is really attempted.
func (rc *RetryCounters) commit() {
	if rc == nil || !rc.pending {
		return
	}
	rc.pending = false
	rc.Total++
	switch {
	case rc.lastNet:
		rc.Net++
	case rc.lastStatus == 429:
		rc.Status429++
	case rc.lastStatus >= 500:
		rc.Status5xx++
	}
}
