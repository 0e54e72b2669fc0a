package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

// NewProvider creates a provider for config.Provider. An empty provider name
// means the narrative is disabled and returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic", "claude":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the application configuration
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:       llmCfg.Provider,
		Model:          llmCfg.Model,
		APIKey:         llmCfg.APIKey,
		BaseURL:        llmCfg.BaseURL,
		Timeout:        llmCfg.Timeout,
		StrictConcepts: llmCfg.StrictConcepts,
		MaxTokens:      llmCfg.MaxTokens,
		HTTPProxy:      httpCfg.HTTPProxy,
		HTTPSProxy:     httpCfg.HTTPSProxy,
		NoProxy:        httpCfg.NoProxy,
	}
}

// ApplyEnv fills the API key and base URL from the provider's usual
// environment variables when they are not configured
func (c *Config) ApplyEnv() {
	switch strings.ToLower(c.Provider) {
	case "openai":
		c.APIKey = firstNonEmpty(c.APIKey, os.Getenv("OPENAI_API_KEY"))
		c.BaseURL = firstNonEmpty(c.BaseURL, os.Getenv("OPENAI_BASE_URL"))
	case "anthropic", "claude":
		c.APIKey = firstNonEmpty(c.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
	case "ollama":
		c.BaseURL = firstNonEmpty(c.BaseURL, os.Getenv("OLLAMA_BASE_URL"), os.Getenv("OLLAMA_HOST"))
	}
}
