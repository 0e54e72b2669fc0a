// Package source loads concept edge lists from SPARQL endpoints and local
// files.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

var (
	// ErrMalformedResults is returned when a result document cannot be mapped
	// to concept records
	ErrMalformedResults = errors.New("malformed query results")

	// ErrUnsupportedFormat is returned for files of an unknown format
	ErrUnsupportedFormat = errors.New("unsupported concept file format")
)

// Source defines the interface for concept data providers
type Source interface {
	// Name returns the source name
	Name() string

	// CanHandle checks if this source can load the given location
	CanHandle(location string) bool

	// Load fetches the concept edge list and property counts for a view
	Load(ctx context.Context, location string, view model.View) (*model.ConceptData, error)
}

// Registry picks a source per location
type Registry struct {
	sources  []Source
	fallback Source
}

// NewRegistry creates a registry that falls back to the given source when no
// registered source claims a location
func NewRegistry(fallback Source) *Registry {
	return &Registry{fallback: fallback}
}

// Register registers a new source. Sources are tried in registration order.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Find returns the first source that can handle the location
func (r *Registry) Find(location string) Source {
	for _, s := range r.sources {
		if s.CanHandle(location) {
			return s
		}
	}
	return r.fallback
}

// Load loads a location through the matching source
func (r *Registry) Load(ctx context.Context, location string, view model.View) (*model.ConceptData, error) {
	s := r.Find(location)
	if s == nil {
		return nil, fmt.Errorf("no source for %q", location)
	}
	data, err := s.Load(ctx, location, view)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name(), err)
	}
	return data, nil
}

// IsRemote reports whether a location is an http(s) URL
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
