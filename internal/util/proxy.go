package util

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// NewProxyFunc returns the proxy selector for endpoint requests. Explicit
// settings take precedence; when neither proxy is set the HTTP_PROXY,
// HTTPS_PROXY and NO_PROXY environment variables apply.
func NewProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := &httpproxy.Config{
		HTTPProxy:  httpProxy,
		HTTPSProxy: httpsProxy,
		NoProxy:    noProxy,
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = httpProxy
	}

	proxyFor := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxyFor(req.URL)
	}
}
