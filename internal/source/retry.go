package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError is a non-2xx endpoint response
type HTTPError struct {
	StatusCode int
	Message    string        // Readable body text
	RetryAfter time.Duration // From the Retry-After header, if any
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("endpoint returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("endpoint returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// backoffBase is the first retry delay; each further attempt doubles it
var backoffBase = time.Second

// maxBackoff caps any single wait, including server-requested ones
const maxBackoff = 30 * time.Second

// sleepFunc waits between retries (replaced in tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryable reports whether err is a transient failure:
// 5xx, 429, timeouts and refused or reset connections
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500 || httpErr.StatusCode == http.StatusTooManyRequests
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

// backoff returns the delay before retry attempt+1
func backoff(attempt int, err error) time.Duration {
	d := backoffBase << uint(attempt)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > d {
		d = httpErr.RetryAfter
	}
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

// parseRetryAfter reads a Retry-After header in its delay-seconds form
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
