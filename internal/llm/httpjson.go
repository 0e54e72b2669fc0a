package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/ontolens/internal/util"
)

// maxResponseBytes caps how much of a provider response is read
const maxResponseBytes = 4 << 20

// apiError is a non-200 answer from a provider API
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// jsonClient talks to the JSON-over-HTTP provider APIs (Anthropic, Ollama)
type jsonClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
	// errorText extracts the provider's error message from a failed response
	errorText func(body []byte) string
}

func newJSONClient(cfg Config, defaultBaseURL string, defaultTimeout time.Duration) *jsonClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &jsonClient{
		baseURL: strings.TrimSuffix(firstNonEmpty(cfg.BaseURL, defaultBaseURL), "/"),
		headers: map[string]string{},
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
	}
}

// post sends in as JSON to path and decodes the answer into out
func (c *jsonClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	respBody, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// get fetches path and discards the body
func (c *jsonClient) get(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodGet, path, nil)
	return err
}

func (c *jsonClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if c.errorText != nil {
			msg = c.errorText(respBody)
		}
		if msg == "" {
			msg = strings.TrimSpace(string(respBody))
		}
		return nil, &apiError{StatusCode: resp.StatusCode, Message: msg}
	}
	return respBody, nil
}
