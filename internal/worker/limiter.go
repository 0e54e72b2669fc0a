package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/ontolens/internal/model"
)

// Limiter throttles queries per endpoint host. One limiter is shared by every
// run of a batch so parallel extractions against one endpoint stay polite.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing requestsPerSecond per host. A
// non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// NewLimiterFromConfig creates a limiter from the rate limiting settings,
// including per-host overrides
func NewLimiterFromConfig(cfg model.RateLimitingConfig) *Limiter {
	l := NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
	for host, rps := range cfg.Hosts {
		l.SetHostRate(host, rps, cfg.BurstSize)
	}
	return l
}

// Wait blocks until the host of rawURL may be queried
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := extractHost(rawURL)
	if err != nil {
		return err
	}
	return l.getLimiter(host).Wait(ctx)
}

// Allow reports whether a query may be sent now, consuming a token if so
func (l *Limiter) Allow(rawURL string) bool {
	host, err := extractHost(rawURL)
	if err != nil {
		return false
	}
	return l.getLimiter(host).Allow()
}

func (l *Limiter) getLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[host]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[host]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[host] = limiter
	return limiter
}

// SetHostRate overrides the rate for one endpoint host
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters[strings.ToLower(host)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

// SetCrawlDelay slows a host down to one request per delay, as asked by its
// robots.txt
func (l *Limiter) SetCrawlDelay(host string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	limit := rate.Every(delay)

	l.mu.Lock()
	defer l.mu.Unlock()
	host = strings.ToLower(host)
	if existing, ok := l.limiters[host]; ok && existing.Limit() <= limit {
		return
	}
	l.limiters[host] = rate.NewLimiter(limit, 1)
}

// extractHost returns the lowercased host:port of a URL
func extractHost(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("no host in %q", rawURL)
	}
	return strings.ToLower(parsed.Host), nil
}
