package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ontolens/internal/pipeline"
	"github.com/ppiankov/ontolens/internal/worker"
)

var (
	batchFlags     runFlags
	concurrency    int
	outputDir      string
	batchTimeout   time.Duration
	batchCytoscape bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Extract key concepts from many sources in parallel",
	Long: `Batch runs extractions concurrently:
- Read endpoint URLs or file paths from the input file (one per line)
- Run them in parallel with a configurable worker count
- Share one per-endpoint rate limiter across all workers
- Write a JSON and Markdown report for each source

Example:
  ontolens batch sources.txt
  ontolens batch sources.txt --concurrency 4 --output-dir ./reports
  ontolens batch sources.txt -n 15 --batch-timeout 30m --cytoscape`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchFlags.register(batchCmd.Flags())
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./ontolens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchCytoscape, "cytoscape", false, "also write a Cytoscape.js graph per source")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := batchFlags.apply(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  ontolens batch extraction\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Concepts:     %d (%s view)\n", cfg.Extraction.Count, cfg.Extraction.View)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One limiter for all workers so parallel runs against the same
	// endpoint share its budget
	limiter := worker.NewLimiterFromConfig(cfg.RateLimiting)
	p := pipeline.NewPipeline(cfg, pipeline.WithRateLimiter(limiter))
	runner := &timeoutRunner{pipeline: p, timeout: batchFlags.timeout}

	processor := worker.NewBatchProcessor(runner, cfg.Concurrency.Workers, cfg.Extraction.Count)

	fmt.Fprintf(os.Stderr, "⚙️  Processing sources with %d workers...\n\n", cfg.Concurrency.Workers)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := p.Renderer()
	successCount := 0
	failureCount := 0
	used := make(map[string]int)

	for _, outcome := range outcomes {
		if outcome.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", outcome.Location, outcome.Error)
			continue
		}

		report := outcome.Result.Report
		slug := uniqueSlug(sanitizeFilename(outcome.Location), used)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", outcome.Location, err)
			continue
		}
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", outcome.Location, err)
			continue
		}
		if batchCytoscape {
			if err := renderer.RenderCytoscape(outcome.Result.Tree, report, filepath.Join(outputDir, slug+".cy.json")); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write Cytoscape graph: %v\n", outcome.Location, err)
			}
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%d of %d concepts, %d swaps)\n", outcome.Location, len(report.Concepts), report.TotalConcepts, report.Swaps)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d sources failed", failureCount)
	}
	return nil
}

// timeoutRunner bounds every run of a batch by its own deadline
type timeoutRunner struct {
	pipeline *pipeline.Pipeline
	timeout  time.Duration
}

func (r *timeoutRunner) Run(ctx context.Context, location string, n int) (*pipeline.RunResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.pipeline.Run(ctx, location, n)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// sanitizeFilename turns an endpoint URL or file path into a file name
func sanitizeFilename(location string) string {
	s := location
	if u, err := url.Parse(location); err == nil && u.Host != "" {
		s = u.Host + u.Path
	} else {
		s = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
	}

	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "._-")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}

// uniqueSlug appends a counter when two sources map to the same name
func uniqueSlug(slug string, used map[string]int) string {
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}
