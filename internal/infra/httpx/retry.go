package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"gindex-tui/internal/infra/logx"
)

// RetryOptions configures NewRetryClient.
type RetryOptions struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
	Transport    http.RoundTripper // usually a *LimiterTransport
	Metrics      *Metrics
	Clock        Clock // used for Retry-After dates
}

// retryLogger routes retryablehttp's leveled logging into logx.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) {
	logx.Errorf("[retry] %s %s", msg, kvString(kv))
}
func (retryLogger) Warn(msg string, kv ...interface{}) {
	logx.Warnf("[retry] %s %s", msg, kvString(kv))
}
func (retryLogger) Info(msg string, kv ...interface{}) {
	logx.Debugf("[retry] %s %s", msg, kvString(kv))
}
func (retryLogger) Debug(msg string, kv ...interface{}) {
	logx.Debugf("[retry] %s %s", msg, kvString(kv))
}

func kvString(kv []interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

// NewRetryClient builds a retryablehttp client whose retries feed Metrics and
// any RetryCounters on the request context. After the last attempt the final
// response is handed back instead of an error so callers can report the real
// status.
func NewRetryClient(opts RetryOptions) *retryablehttp.Client {
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 250 * time.Millisecond
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 5 * time.Second
	}
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: opts.Transport, Timeout: opts.Timeout}
	rc.RetryMax = max(0, opts.RetryMax)
	rc.RetryWaitMin = opts.RetryWaitMin
	rc.RetryWaitMax = opts.RetryWaitMax
	rc.Logger = retryLogger{}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		retry, cerr := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		if retry {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			RetryCountersFrom(ctx).note(status, err != nil)
		}
		return retry, cerr
	}
	// attempt > 0 means the previous outcome was actually retried
	rc.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}
		if opts.Metrics != nil {
			opts.Metrics.IncRetry()
		}
		RetryCountersFrom(req.Context()).commit()
	}
	rc.Backoff = func(minWait, maxWait time.Duration, attempt int, resp *http.Response) time.Duration {
		var d time.Duration
		if resp != nil {
			d = parseRetryAfter(resp.Header.Get("Retry-After"), clock.Now())
		}
		if d > 0 {
			d = min(d, maxWait)
		} else {
			d = retryablehttp.DefaultBackoff(minWait, maxWait, attempt, resp)
		}
		if opts.Metrics != nil {
			opts.Metrics.AddBackoff(d)
		}
		return d
	}
	return rc
}

// parseRetryAfter reads delta-seconds or an HTTP date.
func parseRetryAfter(h string, now time.Time) time.Duration {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(h); err == nil {
		if d := when.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
