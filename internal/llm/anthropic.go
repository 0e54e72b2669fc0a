package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/ontolens/internal/logger"
)

const (
	defaultAnthropicModel = "claude-3-5-haiku-20241022"
	anthropicVersion      = "2023-06-01"
)

// AnthropicProvider implements the Provider interface for the Anthropic Messages API
type AnthropicProvider struct {
	client *jsonClient
	config Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text joins the text blocks of a response
func (r *anthropicResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// anthropicErrorText renders {"error": {"type": ..., "message": ...}} bodies
func anthropicErrorText(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + " - " + e.Error.Message
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	client := newJSONClient(config, "https://api.anthropic.com", 30*time.Second)
	client.headers["x-api-key"] = config.APIKey
	client.headers["anthropic-version"] = anthropicVersion
	client.errorText = anthropicErrorText

	return &AnthropicProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// IsAvailable sends a minimal message to verify the key
func (p *AnthropicProvider) IsAvailable(ctx context.Context) bool {
	var resp anthropicResponse
	err := p.client.post(ctx, "/v1/messages", anthropicRequest{
		Model:     firstNonEmpty(p.config.Model, defaultAnthropicModel),
		MaxTokens: 10,
		Messages:  []anthropicMessage{{Role: "user", Content: "Hi"}},
	}, &resp)
	if err != nil {
		logger.Warn("Anthropic API check failed: %v", err)
		return false
	}
	return true
}

// Summarize describes the key concepts using the Messages API
func (p *AnthropicProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt, model, maxTokens := resolve(p.config, req, defaultAnthropicModel)

	var resp anthropicResponse
	err := p.client.post(ctx, "/v1/messages", anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("Anthropic API error: %w", err)
	}

	summary := resp.text()
	if summary == "" {
		return nil, fmt.Errorf("no content in Anthropic response")
	}

	cited, err := verify(p.config, summary, req.ConceptIRIs)
	if err != nil {
		return nil, err
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedIRIs:  cited,
		Model:      firstNonEmpty(resp.Model, model),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
