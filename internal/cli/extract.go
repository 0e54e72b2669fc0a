package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/pipeline"
	"github.com/ppiankov/ontolens/internal/worker"
)

// runFlags are shared by extract, tree, batch and check
type runFlags struct {
	count         int
	view          string
	more          int
	radius        int
	decay         float64
	timeout       time.Duration
	userAgent     string
	noCache       bool
	noRobots      bool
	allowDangling bool
	noFooter      bool
	httpProxy     string
	httpsProxy    string
	privateHosts  []string
	llmEnabled    bool
	llmProvider   string
	llmModel      string
	llmLenient    bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.IntVarP(&f.count, "count", "n", 30, "number of key concepts to select")
	fs.StringVar(&f.view, "view", "class", "hierarchy to analyse (class, instance)")
	fs.IntVar(&f.more, "more", 10, "number of next-best concepts listed for \"load more\"")
	fs.IntVar(&f.radius, "radius", 2, "local density neighbourhood radius in hops")
	fs.Float64Var(&f.decay, "decay", 0, "distance decay ratio for local density in both views (0 disables decay)")
	fs.DurationVar(&f.timeout, "timeout", 2*time.Minute, "timeout per extraction")
	fs.StringVar(&f.userAgent, "ua", "", "HTTP User-Agent for SPARQL endpoints")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the SPARQL response cache")
	fs.BoolVar(&f.noRobots, "no-robots", false, "do not consult robots.txt of public endpoints")
	fs.BoolVar(&f.allowDangling, "allow-dangling", false, "turn undeclared parents into placeholders instead of failing")
	fs.BoolVar(&f.noFooter, "no-footer", false, "disable footer in Markdown reports")
	fs.StringVar(&f.httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	fs.StringVar(&f.httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	fs.StringSliceVar(&f.privateHosts, "private-host", nil, "endpoint host queried without robots.txt checks or rate limits (repeatable)")
	fs.BoolVar(&f.llmEnabled, "llm", false, "enable LLM summary generation")
	fs.StringVar(&f.llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	fs.StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	fs.BoolVar(&f.llmLenient, "llm-lenient", false, "accept summaries that mention IRIs outside the selection")
}

// apply overlays explicitly set flags on the loaded configuration
func (f *runFlags) apply(cmd *cobra.Command, cfg *model.Config) error {
	changed := cmd.Flags().Changed

	if changed("count") {
		cfg.Extraction.Count = f.count
	}
	if changed("view") {
		cfg.Extraction.View = model.View(strings.ToLower(f.view))
	}
	if !cfg.Extraction.View.Valid() {
		return fmt.Errorf("unknown view %q (supported: class, instance)", cfg.Extraction.View)
	}
	if changed("more") {
		cfg.Extraction.More = f.more
	}
	if changed("radius") {
		cfg.Scoring.Class.Radius = f.radius
		cfg.Scoring.Instance.Radius = f.radius
	}
	if changed("decay") {
		// a file source may declare its own view, so both profiles take the override
		for _, profile := range []*model.ScoringConfig{&cfg.Scoring.Class, &cfg.Scoring.Instance} {
			profile.DistanceDecay = f.decay > 0
			profile.DecayRatio = f.decay
		}
	}
	if changed("ua") {
		cfg.HTTP.UserAgent = f.userAgent
	}
	if changed("http-proxy") {
		cfg.HTTP.HTTPProxy = f.httpProxy
	}
	if changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = f.httpsProxy
	}
	cfg.HTTP.PrivateHosts = append(cfg.HTTP.PrivateHosts, f.privateHosts...)
	if f.noCache {
		cfg.Cache.Enabled = false
	}
	if f.noRobots {
		cfg.HTTP.RespectRobots = false
	}
	if f.allowDangling {
		cfg.Taxonomy.AllowDanglingParents = true
	}
	if f.noFooter {
		cfg.Output.IncludeFooter = false
	}
	cfg.Output.Verbose = verbose

	if f.llmEnabled {
		cfg.LLM.Provider = f.llmProvider
		if f.llmModel != "" {
			cfg.LLM.Model = f.llmModel
		}
		cfg.LLM.StrictConcepts = !f.llmLenient
		if err := checkLLMCredentials(cfg); err != nil {
			return err
		}
	}
	return nil
}

// checkLLMCredentials fails early when a hosted provider has no API key
func checkLLMCredentials(cfg *model.Config) error {
	if cfg.LLM.APIKey != "" {
		return nil
	}
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	}
	return nil
}

var (
	extractFlags runFlags
	outJSON      string
	outMD        string
	outCytoscape string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <endpoint-url|file>",
	Short: "Extract the key concepts of an ontology",
	Long: `Extract loads a concept hierarchy, scores every concept and selects the
subset that best summarises the ontology.

Sources:
- SPARQL endpoint URLs (http:// or https://)
- Local files: SPARQL results JSON (.json, .srj) or concept lists (.json, .yaml, .toml)

Example:
  ontolens extract https://dbpedia.org/sparql -n 20
  ontolens extract http://localhost:3030/zoo/sparql --view instance --md zoo.md
  ontolens extract zoo.yaml --json zoo.json --cytoscape zoo.cy.json
  ontolens extract zoo.yaml --llm --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractFlags.register(extractCmd.Flags())
	extractCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	extractCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	extractCmd.Flags().StringVar(&outCytoscape, "cytoscape", "", "output Cytoscape.js graph path")
}

func runExtract(cmd *cobra.Command, args []string) error {
	location := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := extractFlags.apply(cmd, cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), extractFlags.timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Source:  %s\n", location)
		fmt.Fprintf(os.Stderr, "View:    %s\n", cfg.Extraction.View)
		fmt.Fprintf(os.Stderr, "Count:   %d\n", cfg.Extraction.Count)
		fmt.Fprintf(os.Stderr, "Cache:   %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p := pipeline.NewPipeline(cfg, pipeline.WithRateLimiter(worker.NewLimiterFromConfig(cfg.RateLimiting)))

	result, err := p.Run(ctx, location, cfg.Extraction.Count)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	if verbose {
		report := result.Report
		fmt.Fprintf(os.Stderr, "✓ Built hierarchy of %d concepts (depth %d)\n", report.TotalConcepts, report.Levels)
		fmt.Fprintf(os.Stderr, "✓ Selected %d key concepts after %d swap(s)\n", len(report.Concepts), report.Swaps)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(result, pipeline.Outputs{
		JSONPath:      outJSON,
		MDPath:        outMD,
		CytoscapePath: outCytoscape,
	}); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
