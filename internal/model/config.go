package model

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Config is the complete ontolens configuration
type Config struct {
	Extraction   ExtractionConfig   `yaml:"extraction" mapstructure:"extraction"`
	Scoring      ScoringProfiles    `yaml:"scoring" mapstructure:"scoring"`
	Taxonomy     TaxonomyConfig     `yaml:"taxonomy" mapstructure:"taxonomy"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// ExtractionConfig controls a key concept extraction run
type ExtractionConfig struct {
	Count int  `yaml:"count" mapstructure:"count"` // Number of key concepts to select
	View  View `yaml:"view" mapstructure:"view"`   // class or instance
	More  int  `yaml:"more" mapstructure:"more"`   // Size of the "load more" remainder in reports
}

// ScoringProfiles holds one scoring configuration per view
type ScoringProfiles struct {
	Class    ScoringConfig `yaml:"class" mapstructure:"class"`
	Instance ScoringConfig `yaml:"instance" mapstructure:"instance"`
}

// For returns the profile for a view
func (p ScoringProfiles) For(v View) ScoringConfig {
	if v == ViewInstance {
		return p.Instance
	}
	return p.Class
}

// TaxonomyConfig controls tree construction
type TaxonomyConfig struct {
	// AllowDanglingParents turns undeclared parent ids into structural
	// placeholders instead of failing the build
	AllowDanglingParents bool `yaml:"allow_dangling_parents" mapstructure:"allow_dangling_parents"`
}

// HTTPConfig controls SPARQL endpoint access
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	// PrivateHosts are queried without robots.txt checks or rate limiting.
	// Loopback and private addresses are always private.
	PrivateHosts []string `yaml:"private_hosts,omitempty" mapstructure:"private_hosts"`
	HTTPProxy    string   `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string   `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string   `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the SPARQL response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig controls per-endpoint query rates
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
	// Hosts overrides the rate for individual endpoint hosts
	Hosts map[string]float64 `yaml:"hosts,omitempty" mapstructure:"hosts"`
}

// LLMConfig controls the optional key concept narrative
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, or empty
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"-" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictConcepts bool   `yaml:"strict_concepts" mapstructure:"strict_concepts"`
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Count: 30,
			View:  ViewClass,
			More:  10,
		},
		Scoring: ScoringProfiles{
			Class:    ClassScoring(),
			Instance: InstanceScoring(),
		},
		HTTP: HTTPConfig{
			Timeout:       60 * time.Second,
			UserAgent:     "ontolens/0.3 (+https://github.com/ppiankov/ontolens)",
			MaxBodyBytes:  64 << 20,
			MaxRetries:    3,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		LLM: LLMConfig{
			Timeout:        30,
			StrictConcepts: true,
			MaxTokens:      1000,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "ontolens")
	}
	return filepath.Join(os.TempDir(), "ontolens-cache")
}
