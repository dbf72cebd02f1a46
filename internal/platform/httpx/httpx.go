package httpx

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// StatusCoder is implemented by client error types that carry an HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

// IsRetryableError reports whether a failed request is worth retrying:
// transport-level failures, 429s, and 5xx responses. Context cancellation is
// never retryable.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.HTTPStatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Transport errors from http.Client wrap url.Error; treat any non-status
	// failure as transient.
	return true
}

// RetryAfterDuration picks the next sleep interval, honoring a Retry-After
// header when the server sent one, otherwise the caller's backoff, capped at
// max.
func RetryAfterDuration(resp *http.Response, backoff, max time.Duration) time.Duration {
	d := backoff
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				d = time.Duration(secs) * time.Second
			} else if t, err := http.ParseTime(ra); err == nil {
				if until := time.Until(t); until > 0 {
					d = until
				}
			}
		}
	}
	if max > 0 && d > max {
		d = max
	}
	if d < 0 {
		d = 0
	}
	return d
}

// JitterSleep spreads out retries by up to +25% so concurrent clients do not
// hammer the upstream in lockstep.
func JitterSleep(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}
