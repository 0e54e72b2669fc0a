package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/ontolens/internal/cache"
	"github.com/ppiankov/ontolens/internal/logger"
	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/util"
)

var (
	// ErrDisallowed is returned when robots.txt forbids querying an endpoint
	ErrDisallowed = errors.New("endpoint disallowed by robots.txt")

	// ErrResponseTooLarge is returned when a response exceeds MaxBodyBytes
	ErrResponseTooLarge = errors.New("response exceeds size limit")
)

// RateLimiter waits for clearance to query a URL
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// CrawlDelayer is implemented by limiters that can slow a host down to a
// robots.txt crawl delay
type CrawlDelayer interface {
	SetCrawlDelay(host string, delay time.Duration)
}

// RobotsPolicy reports whether a URL may be fetched and the crawl delay to
// observe
type RobotsPolicy interface {
	CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error)
}

// SPARQLOptions configures a SPARQLSource. Limiter, Robots and Cache are
// optional.
type SPARQLOptions struct {
	HTTP     model.HTTPConfig
	Limiter  RateLimiter
	Robots   RobotsPolicy
	Cache    cache.Cache
	CacheTTL time.Duration
}

// SPARQLSource loads concept hierarchies from a SPARQL 1.1 endpoint
type SPARQLSource struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	attempts   int
	limiter    RateLimiter
	robots     RobotsPolicy
	cache      cache.Cache
	cacheTTL   time.Duration
	policy     *EndpointPolicy
}

// NewSPARQLSource creates a SPARQL source
func NewSPARQLSource(opts SPARQLOptions) *SPARQLSource {
	attempts := opts.HTTP.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	maxBytes := opts.HTTP.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}

	return &SPARQLSource{
		httpClient: NewHTTPClient(opts.HTTP),
		userAgent:  opts.HTTP.UserAgent,
		maxBytes:   maxBytes,
		attempts:   attempts,
		limiter:    opts.Limiter,
		robots:     opts.Robots,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		policy:     NewEndpointPolicy(opts.HTTP.PrivateHosts),
	}
}

// NewHTTPClient creates the client used for endpoint and robots.txt requests
func NewHTTPClient(cfg model.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
}

// Name returns the source name
func (s *SPARQLSource) Name() string { return "sparql" }

// CanHandle accepts http(s) endpoint URLs
func (s *SPARQLSource) CanHandle(location string) bool {
	return IsRemote(location)
}

// Load runs the hierarchy and property-count queries for a view. A failing
// property-count query is not fatal: counts default to zero.
func (s *SPARQLSource) Load(ctx context.Context, endpoint string, view model.View) (*model.ConceptData, error) {
	logger.Info("Querying %s hierarchy from %s", view, endpoint)
	hierarchy, err := s.Query(ctx, endpoint, HierarchyQuery(view))
	if err != nil {
		return nil, fmt.Errorf("hierarchy query: %w", err)
	}

	properties, err := s.Query(ctx, endpoint, PropertyCountQuery())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Warn("property count query failed, counts default to 0: %v", err)
		properties = nil
	}

	data, err := BindingsToData(view, hierarchy, properties)
	if err != nil {
		return nil, err
	}
	logger.Debug("%d records, %d property counts", len(data.Records), len(data.PropertyCounts))
	return data, nil
}

// Query runs a SELECT query and decodes the result document. Responses are
// cached by endpoint and query text.
func (s *SPARQLSource) Query(ctx context.Context, endpoint, query string) (*Results, error) {
	key := cache.CacheKey(endpoint, query)
	if s.cache != nil {
		if raw, ok := s.cache.Get(key); ok {
			if res, err := DecodeResults(raw); err == nil {
				logger.Debug("cache hit for %s", endpoint)
				return res, nil
			}
			_ = s.cache.Delete(key)
		}
	}

	public := s.policy.Classify(endpoint) == TierPublic
	if public && s.robots != nil {
		allowed, delay, err := s.robots.CanFetch(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, endpoint)
		}
		if delay > 0 {
			logger.Debug("honouring crawl delay of %s", delay)
			if cd, ok := s.limiter.(CrawlDelayer); ok {
				cd.SetCrawlDelay(hostOf(endpoint), delay)
			} else if err := sleepFunc(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	var body []byte
	var err error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if public && s.limiter != nil {
			if err := s.limiter.Wait(ctx, endpoint); err != nil {
				return nil, err
			}
		}

		body, err = s.post(ctx, endpoint, query)
		if err == nil || !isRetryable(err) || attempt == s.attempts-1 {
			break
		}

		wait := backoff(attempt, err)
		logger.Warn("query to %s failed (attempt %d/%d), retrying in %s: %v", endpoint, attempt+1, s.attempts, wait, err)
		if err := sleepFunc(ctx, wait); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	res, err := DecodeResults(body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(key, body, s.cacheTTL); err != nil {
			logger.Debug("cache write failed: %v", err)
		}
	}
	return res, nil
}

// post sends one SPARQL protocol request: form-encoded POST, JSON results
func (s *SPARQLSource) post(ctx context.Context, endpoint, query string) ([]byte, error) {
	form := url.Values{}
	form.Set("query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    errorText(resp.Header.Get("Content-Type"), body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, s.maxBytes)
	}

	logger.Debug("%s answered %d bytes in %s", endpoint, len(body), time.Since(start).Round(time.Millisecond))
	return body, nil
}

func hostOf(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil {
		return u.Host
	}
	return endpoint
}
