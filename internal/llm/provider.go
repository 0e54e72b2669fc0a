package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

// ErrUnknownConcept is returned in strict mode when a response mentions an
// IRI that is not one of the selected concepts
var ErrUnknownConcept = errors.New("summary cites an IRI outside the selected concepts")

// systemPrompt is shared by every provider
const systemPrompt = "You describe ontologies from a list of key concepts. You only mention concepts you are given and never invent IRIs."

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize describes the key concepts of a report
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is configured and reachable
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for a summary
type SummarizeRequest struct {
	Report model.Report

	// ConceptIRIs is the allowlist of IRIs the response may mention
	ConceptIRIs []string

	Prompt    string // Optional; BuildPrompt is used when empty
	Model     string // Overrides Config.Model
	MaxTokens int    // Overrides Config.MaxTokens
}

// SummarizeResponse contains the provider output
type SummarizeResponse struct {
	Summary    string
	CitedIRIs  []string // IRIs found in the summary
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	Provider string // openai, anthropic, ollama or empty
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  int // seconds

	// StrictConcepts rejects summaries mentioning IRIs outside the allowlist
	StrictConcepts bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns the defaults: disabled, strict
func DefaultConfig() Config {
	return Config{
		Timeout:        30,
		StrictConcepts: true,
		MaxTokens:      1000,
	}
}

// resolve fills request defaults from the provider config
func resolve(cfg Config, req SummarizeRequest, defaultModel string) (prompt, modelName string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.ConceptIRIs)
	}
	modelName = firstNonEmpty(req.Model, cfg.Model, defaultModel)
	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}
	return prompt, modelName, maxTokens
}

// verify extracts the IRIs of a summary and, in strict mode, rejects any
// that are not allowed
func verify(cfg Config, summary string, allowed []string) ([]string, error) {
	cited := extractIRIs(summary)
	if !cfg.StrictConcepts {
		return cited, nil
	}
	allow := make(map[string]bool, len(allowed))
	for _, iri := range allowed {
		allow[iri] = true
	}
	for _, iri := range cited {
		if !allow[iri] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownConcept, iri)
		}
	}
	return cited, nil
}

var iriPattern = regexp.MustCompile(`<?https?://[^\s<>"'\x60)\]]+>?`)

// extractIRIs finds IRIs in text, with or without angle brackets
func extractIRIs(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, m := range iriPattern.FindAllString(text, -1) {
		iri := strings.TrimRight(strings.Trim(m, "<>"), ".,;:!?*")
		if iri != "" && !seen[iri] {
			seen[iri] = true
			unique = append(unique, iri)
		}
	}
	return unique
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
