package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/ontolens/internal/logger"
	"github.com/ppiankov/ontolens/internal/model"
)

// Summarizer attaches an optional narrative to a finished report. It runs
// after extraction and never changes scores or the selection.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer. A config without provider yields a
// disabled summarizer.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "none"
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return "none"
	}
	return s.provider.Name()
}

// GenerateSummary asks the provider to describe the selected concepts.
// Failures are reported as warnings in the summary, never as errors, so the
// extraction result is always delivered.
func (s *Summarizer) GenerateSummary(ctx context.Context, report *model.Report) *model.LLMSummary {
	if !s.IsEnabled() {
		return nil
	}

	summary := &model.LLMSummary{
		Enabled:        true,
		Provider:       s.provider.Name(),
		Model:          s.config.Model,
		StrictConcepts: s.config.StrictConcepts,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", summary.Provider))
		return summary
	}

	done := logger.Timed("llm summary")
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:      *report,
		ConceptIRIs: report.ConceptIDs(),
	})
	done()
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM summary failed: %v", err))
		return summary
	}

	summary.SummaryMD = resp.Summary
	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.StrictConcepts {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Verified %d concept citations against the selection", len(resp.CitedIRIs)))
	}
	return summary
}

// RenderSeparateMarkdown renders the narrative as its own document, kept
// apart from the deterministic report
func RenderSeparateMarkdown(report *model.Report) string {
	if report == nil || report.LLM == nil || !report.LLM.Enabled {
		return ""
	}
	s := report.LLM

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT.** This narrative was written by a language model from the key concepts below. ")
	b.WriteString("It is not part of the extraction and may be inaccurate.\n\n")

	fmt.Fprintf(&b, "- **Source:** %s\n", report.Source)
	fmt.Fprintf(&b, "- **Provider:** %s\n", s.Provider)
	if s.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", s.Model)
	}
	strict := "disabled"
	if s.StrictConcepts {
		strict = "enabled"
	}
	fmt.Fprintf(&b, "- **Strict concept mode:** %s\n\n", strict)

	b.WriteString("## Summary\n\n")
	if s.SummaryMD == "" {
		b.WriteString("_No summary generated._\n\n")
	} else {
		b.WriteString(s.SummaryMD)
		b.WriteString("\n\n")
	}

	if len(s.Warnings) > 0 {
		b.WriteString("## Notes\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\nKey concepts and scores were determined independently of this summary.\n")
	return b.String()
}
