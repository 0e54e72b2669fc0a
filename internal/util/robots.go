package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// maxRobotsBytes caps how much of a robots.txt is read
const maxRobotsBytes = 512 << 10

// RobotsChecker checks robots.txt rules of SPARQL endpoint hosts. Rules are
// fetched once per host and kept for the lifetime of the checker.
type RobotsChecker struct {
	mu         sync.RWMutex
	rules      map[string]*robotstxt.RobotsData
	httpClient *http.Client
	userAgent  string
	agent      string
}

// NewRobotsChecker creates a checker that identifies itself with userAgent
func NewRobotsChecker(userAgent string, client *http.Client) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		rules:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
		agent:      NormalizeUserAgent(userAgent),
	}
}

// CanFetch reports whether the endpoint path may be queried and the crawl
// delay requested for this agent. A robots.txt that cannot be fetched at all
// allows everything.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	data, err := r.rulesFor(ctx, parsed)
	if err != nil {
		return true, 0, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return data.TestAgent(path, r.agent), delay, nil
}

// rulesFor returns the cached rules of a host, fetching them on first use.
// Status handling follows robotstxt: 4xx allows all, 5xx disallows all.
func (r *RobotsChecker) rulesFor(ctx context.Context, endpoint *url.URL) (*robotstxt.RobotsData, error) {
	host := endpoint.Host

	r.mu.RLock()
	data, ok := r.rules[host]
	r.mu.RUnlock()
	if ok {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", endpoint.Scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	data, err = robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.rules[host] = data
	r.mu.Unlock()
	return data, nil
}

// Clear forgets all cached rules
func (r *RobotsChecker) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = make(map[string]*robotstxt.RobotsData)
}

// NormalizeUserAgent returns the product token of a user agent string,
// which is what robots.txt groups match against
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
