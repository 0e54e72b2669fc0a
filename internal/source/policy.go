package source

import (
	"net"
	"net/url"
	"strings"
)

// EndpointTier classifies an endpoint by how politely it must be queried
type EndpointTier string

const (
	TierPublic  EndpointTier = "public"  // Rate limited, robots.txt honoured
	TierPrivate EndpointTier = "private" // Local or explicitly trusted endpoint
)

// EndpointPolicy classifies endpoint hosts
type EndpointPolicy struct {
	private    map[string]bool
	trustLocal bool // Loopback, private and .local hosts are private
}

// NewEndpointPolicy creates a policy treating the given hosts, and any of
// their subdomains, as private
func NewEndpointPolicy(privateHosts []string) *EndpointPolicy {
	p := &EndpointPolicy{private: make(map[string]bool, len(privateHosts)), trustLocal: true}
	for _, h := range privateHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			p.private[h] = true
		}
	}
	return p
}

// Classify returns the tier of the endpoint URL
func (p *EndpointPolicy) Classify(rawURL string) EndpointTier {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return TierPublic
	}
	host := strings.ToLower(parsed.Hostname())

	if p.private[host] {
		return TierPrivate
	}
	for h := range p.private {
		if strings.HasSuffix(host, "."+h) {
			return TierPrivate
		}
	}

	if !p.trustLocal {
		return TierPublic
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return TierPrivate
	}
	if ip := net.ParseIP(host); ip != nil && (ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()) {
		return TierPrivate
	}

	return TierPublic
}
