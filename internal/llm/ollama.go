package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/ontolens/internal/logger"
)

// OllamaProvider implements the Provider interface for local Ollama models
type OllamaProvider struct {
	client *jsonClient
	config Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	System  string        `json:"system,omitempty"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"` // Max tokens
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

func ollamaErrorText(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}

// NewOllamaProvider creates a new Ollama provider. Local models are slow to
// load, so the default timeout is longer than for hosted APIs.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	client := newJSONClient(config, "http://localhost:11434", 60*time.Second)
	client.errorText = ollamaErrorText
	return &OllamaProvider{client: client, config: config}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable checks that the Ollama server answers /api/tags
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	if err := p.client.get(ctx, "/api/tags"); err != nil {
		logger.Warn("Ollama availability check against %s failed: %v", p.client.baseURL, err)
		return false
	}
	return true
}

// Summarize describes the key concepts with a local model
func (p *OllamaProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt, model, maxTokens := resolve(p.config, req, "")
	if model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}

	var resp ollamaResponse
	err := p.client.post(ctx, "/api/generate", ollamaRequest{
		Model:  model,
		Prompt: prompt,
		System: systemPrompt,
		Options: ollamaOptions{
			Temperature: 0.3,
			NumPredict:  maxTokens,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}

	summary := strings.TrimSpace(resp.Response)
	cited, err := verify(p.config, summary, req.ConceptIRIs)
	if err != nil {
		return nil, err
	}

	// Some models report no counts; estimate about 4 characters per token
	tokensUsed := resp.PromptEvalCount + resp.EvalCount
	if tokensUsed == 0 {
		tokensUsed = (len(prompt) + len(summary)) / 4
	}

	return &SummarizeResponse{
		Summary:    summary,
		CitedIRIs:  cited,
		Model:      firstNonEmpty(resp.Model, model),
		TokensUsed: tokensUsed,
	}, nil
}
