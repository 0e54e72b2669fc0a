// Package pipeline wires sources, tree building, scoring, selection and
// rendering into one key concept extraction run.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/ontolens/internal/cache"
	"github.com/ppiankov/ontolens/internal/extract"
	"github.com/ppiankov/ontolens/internal/llm"
	"github.com/ppiankov/ontolens/internal/logger"
	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/score"
	"github.com/ppiankov/ontolens/internal/source"
	"github.com/ppiankov/ontolens/internal/taxonomy"
	"github.com/ppiankov/ontolens/internal/util"
)

// Pipeline orchestrates the complete extraction process
type Pipeline struct {
	registry   *source.Registry
	renderer   *Renderer
	summarizer *llm.Summarizer // nil if disabled
	config     *model.Config
}

// Option customises a pipeline
type Option func(*options)

type options struct {
	limiter source.RateLimiter
	cache   cache.Cache
	noCache bool
}

// WithRateLimiter shares a per-host limiter between pipelines, so concurrent
// batch runs against the same endpoint are throttled together
func WithRateLimiter(l source.RateLimiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithCache replaces the cache built from the configuration. A nil cache
// disables caching.
func WithCache(c cache.Cache) Option {
	return func(o *options) {
		o.cache = c
		o.noCache = c == nil
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.cache == nil && !o.noCache {
		o.cache = cache.FromConfig(cfg.Cache)
	}

	sparqlOpts := source.SPARQLOptions{
		HTTP:     cfg.HTTP,
		Limiter:  o.limiter,
		Cache:    o.cache,
		CacheTTL: cfg.Cache.DiskTTL,
	}
	if cfg.HTTP.RespectRobots {
		sparqlOpts.Robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, source.NewHTTPClient(cfg.HTTP))
	}

	files := source.NewFileSource()
	registry := source.NewRegistry(files)
	registry.Register(source.NewSPARQLSource(sparqlOpts))

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
		llmConfig.ApplyEnv()
		s, err := llm.NewSummarizer(llmConfig)
		if err != nil {
			logger.Warn("failed to initialize LLM provider: %v", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		registry:   registry,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
	}
}

// RunResult contains everything one run produced. Tree, Sheet and Selection
// are kept for renderers that need more than the report.
type RunResult struct {
	Report    *model.Report
	Tree      *taxonomy.Tree
	Sheet     *score.Sheet
	Selection *extract.Result
}

// Load fetches the concept data of a location for the configured view
func (p *Pipeline) Load(ctx context.Context, location string) (*model.ConceptData, error) {
	defer logger.Timed("load")()
	data, err := p.registry.Load(ctx, location, p.config.Extraction.View)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return data, nil
}

// Tree loads a location and builds its concept hierarchy
func (p *Pipeline) Tree(ctx context.Context, location string) (*taxonomy.Tree, error) {
	data, err := p.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return p.build(data)
}

func (p *Pipeline) build(data *model.ConceptData) (*taxonomy.Tree, error) {
	defer logger.Timed("build")()
	tree, err := taxonomy.Build(*data, taxonomy.BuildOptions{
		AllowDanglingParents: p.config.Taxonomy.AllowDanglingParents,
	})
	if err != nil {
		return nil, fmt.Errorf("build hierarchy: %w", err)
	}
	logger.Info("Built hierarchy: %d concepts, depth %d", tree.Len(), tree.Depth())
	return tree, nil
}

// Run extracts the n key concepts of a location and assembles the report.
// The LLM narrative, when enabled, runs last and never changes the result.
func (p *Pipeline) Run(ctx context.Context, location string, n int) (*RunResult, error) {
	logger.Section("Extracting from " + location)

	data, err := p.Load(ctx, location)
	if err != nil {
		return nil, err
	}

	tree, err := p.build(data)
	if err != nil {
		return nil, err
	}

	scoring := p.config.Scoring.For(data.View)
	done := logger.Timed("score")
	sheet := score.NewScorer(scoring).Calculate(tree)
	done()

	done = logger.Timed("extract")
	selection, err := extract.NewSelector(scoring).Extract(tree, sheet, n)
	done()
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	signals := treeSignals(tree)
	signals = append(signals, sheet.Signals...)
	signals = append(signals, selection.Signal())

	report := &model.Report{
		RunID:         uuid.NewString(),
		Source:        location,
		View:          data.View,
		GeneratedAt:   time.Now().UTC(),
		Requested:     n,
		TotalConcepts: tree.Len(),
		Levels:        tree.Depth(),
		Concepts:      selection.Concepts(),
		Remainder:     selection.MoreConcepts(p.config.Extraction.More),
		Swaps:         len(selection.Trace),
		Signals:       signals,
		Scoring:       scoring,
	}

	if p.summarizer.IsEnabled() {
		report.LLM = p.summarizer.GenerateSummary(ctx, report)
	}

	return &RunResult{
		Report:    report,
		Tree:      tree,
		Sheet:     sheet,
		Selection: selection,
	}, nil
}

// treeSignals reports the repairs Build made to the input
func treeSignals(tree *taxonomy.Tree) []model.Signal {
	var signals []model.Signal
	if tree.SyntheticRoot() {
		adopted := tree.AdoptedRoots()
		signals = append(signals, model.Signal{
			Type:        model.SignalSyntheticRoot,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d disconnected roots placed under a synthetic owl:Thing", len(adopted)),
			Data:        map[string]interface{}{"roots": adopted},
		})
	}
	if dangling := tree.DanglingParents(); len(dangling) > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalDanglingParents,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d parent ids have no record and became placeholders", len(dangling)),
			Data:        map[string]interface{}{"parents": dangling},
		})
	}
	return signals
}

// Outputs names the files RenderReport writes. Empty paths are skipped.
type Outputs struct {
	JSONPath      string
	MDPath        string
	CytoscapePath string
}

// RenderReport renders the run to the requested outputs and prints the
// summary to stdout
func (p *Pipeline) RenderReport(result *RunResult, out Outputs) error {
	report := result.Report

	if out.JSONPath != "" {
		if err := p.renderer.RenderJSON(report, out.JSONPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		logger.Info("Wrote JSON: %s", out.JSONPath)
	}

	if out.MDPath != "" {
		if err := p.renderer.RenderMarkdown(report, out.MDPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		logger.Info("Wrote Markdown: %s", out.MDPath)

		if report.LLM != nil && report.LLM.Enabled {
			llmPath := strings.TrimSuffix(out.MDPath, ".md") + ".llm.md"
			if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report), llmPath); err != nil {
				logger.Warn("failed to write LLM summary: %v", err)
			} else {
				logger.Info("Wrote LLM summary: %s", llmPath)
			}
		}
	}

	if out.CytoscapePath != "" {
		if err := p.renderer.RenderCytoscape(result.Tree, report, out.CytoscapePath); err != nil {
			return fmt.Errorf("render cytoscape: %w", err)
		}
		logger.Info("Wrote Cytoscape graph: %s", out.CytoscapePath)
	}

	p.renderer.RenderSummary(report)
	return nil
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
