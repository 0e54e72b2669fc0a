// Package validate checks that SPARQL endpoints can be queried before an
// extraction is attempted.
package validate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ppiankov/ontolens/internal/logger"
	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/source"
	"github.com/ppiankov/ontolens/internal/worker"
)

// EndpointStatus is the outcome of probing one endpoint
type EndpointStatus struct {
	Endpoint   string              `json:"endpoint"`
	Tier       source.EndpointTier `json:"tier"`
	Reachable  bool                `json:"reachable"`
	StatusCode int                 `json:"status_code,omitempty"`
	Classes    int                 `json:"classes"`              // Declared owl/rdfs classes
	Disallowed bool                `json:"disallowed,omitempty"` // robots.txt forbids querying
	Latency    time.Duration       `json:"latency"`
	Error      string              `json:"error,omitempty"`
}

// Validator probes endpoints concurrently with a class-count query
type Validator struct {
	sparql     *source.SPARQLSource
	policy     *source.EndpointPolicy
	maxWorkers int
}

// NewValidator creates a validator. Probes go through the same limiter and
// robots.txt checks as extractions but are never cached.
func NewValidator(cfg model.HTTPConfig, maxWorkers int, limiter source.RateLimiter, robots source.RobotsPolicy) *Validator {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &Validator{
		sparql: source.NewSPARQLSource(source.SPARQLOptions{
			HTTP:    cfg,
			Limiter: limiter,
			Robots:  robots,
		}),
		policy:     source.NewEndpointPolicy(cfg.PrivateHosts),
		maxWorkers: maxWorkers,
	}
}

// Validate probes all endpoints and returns statuses in input order
func (v *Validator) Validate(ctx context.Context, endpoints []string) []EndpointStatus {
	pool := worker.NewPool[EndpointStatus](ctx, v.maxWorkers)
	for _, endpoint := range endpoints {
		endpoint := endpoint
		pool.Submit(func(ctx context.Context) EndpointStatus {
			return v.probe(ctx, endpoint)
		})
	}
	return pool.Wait()
}

// probe runs the class-count query against one endpoint
func (v *Validator) probe(ctx context.Context, endpoint string) EndpointStatus {
	status := EndpointStatus{
		Endpoint: endpoint,
		Tier:     v.policy.Classify(endpoint),
	}
	if !source.IsRemote(endpoint) {
		status.Error = "not an http(s) endpoint URL"
		return status
	}

	start := time.Now()
	res, err := v.sparql.Query(ctx, endpoint, source.ClassCountQuery())
	status.Latency = time.Since(start)

	if err != nil {
		var httpErr *source.HTTPError
		switch {
		case errors.As(err, &httpErr):
			status.StatusCode = httpErr.StatusCode
		case errors.Is(err, source.ErrDisallowed):
			status.Disallowed = true
		}
		status.Error = err.Error()
		logger.Debug("probe of %s failed: %v", endpoint, err)
		return status
	}

	status.Reachable = true
	status.StatusCode = 200
	classes, err := classCount(res)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Classes = classes
	return status
}

func classCount(res *source.Results) (int, error) {
	if len(res.Results.Bindings) == 0 {
		return 0, nil
	}
	term, ok := res.Results.Bindings[0]["classes"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(term.Value)
	if err != nil {
		return 0, fmt.Errorf("class count %q is not an integer", term.Value)
	}
	return n, nil
}

// Healthy reports whether every status is reachable
func Healthy(statuses []EndpointStatus) bool {
	for _, s := range statuses {
		if !s.Reachable {
			return false
		}
	}
	return true
}
