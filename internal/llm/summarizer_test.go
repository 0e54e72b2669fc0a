package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/ontolens/internal/model"
)

type fakeProvider struct {
	available bool
	resp      *SummarizeResponse
	err       error
	got       SummarizeRequest
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakeProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestNewSummarizer_Disabled(t *testing.T) {
	s, err := NewSummarizer(DefaultConfig())
	if err != nil {
		t.Fatalf("NewSummarizer failed: %v", err)
	}
	if s.IsEnabled() {
		t.Error("Expected summarizer to be disabled without provider")
	}
	if s.ProviderName() != "none" {
		t.Errorf("Expected provider none, got %s", s.ProviderName())
	}
	report := testReport()
	if got := s.GenerateSummary(context.Background(), &report); got != nil {
		t.Errorf("Expected nil summary, got %+v", got)
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "gemini"}); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestGenerateSummary_Success(t *testing.T) {
	fake := &fakeProvider{
		available: true,
		resp: &SummarizeResponse{
			Summary:    "Animals dominate.",
			CitedIRIs:  []string{iriAnimal},
			Model:      "fake-1",
			TokensUsed: 42,
		},
	}
	s := &Summarizer{provider: fake, config: Config{StrictConcepts: true}}

	report := testReport()
	summary := s.GenerateSummary(context.Background(), &report)
	if summary == nil || !summary.Enabled {
		t.Fatalf("Expected enabled summary, got %+v", summary)
	}
	if summary.SummaryMD != "Animals dominate." || summary.Model != "fake-1" || summary.Provider != "fake" {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if len(fake.got.ConceptIRIs) != 2 || fake.got.ConceptIRIs[0] != iriAnimal {
		t.Errorf("Expected selected IRIs as allowlist, got %v", fake.got.ConceptIRIs)
	}

	warnings := strings.Join(summary.Warnings, "\n")
	if !strings.Contains(warnings, "Tokens used: 42") {
		t.Errorf("Expected token note, got %v", summary.Warnings)
	}
	if !strings.Contains(warnings, "Verified 1 concept citations") {
		t.Errorf("Expected citation note, got %v", summary.Warnings)
	}
}

func TestGenerateSummary_Unavailable(t *testing.T) {
	s := &Summarizer{provider: &fakeProvider{}, config: Config{}}

	report := testReport()
	summary := s.GenerateSummary(context.Background(), &report)
	if summary.SummaryMD != "" {
		t.Errorf("Expected empty summary, got %q", summary.SummaryMD)
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Unexpected warnings: %v", summary.Warnings)
	}
}

func TestGenerateSummary_ProviderError(t *testing.T) {
	fake := &fakeProvider{available: true, err: errors.New("boom")}
	s := &Summarizer{provider: fake, config: Config{StrictConcepts: true}}

	report := testReport()
	summary := s.GenerateSummary(context.Background(), &report)
	if len(summary.Warnings) != 1 || summary.Warnings[0] != "LLM summary failed: boom" {
		t.Errorf("Unexpected warnings: %v", summary.Warnings)
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	report := testReport()
	report.LLM = &model.LLMSummary{
		Enabled:        true,
		Provider:       "ollama",
		Model:          "mistral",
		StrictConcepts: true,
		SummaryMD:      "Animals and birds.",
		Warnings:       []string{"Tokens used: 10"},
	}

	md := RenderSeparateMarkdown(&report)
	for _, want := range []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"**Provider:** ollama",
		"**Model:** mistral",
		"**Strict concept mode:** enabled",
		"Animals and birds.",
		"## Notes",
		"- Tokens used: 10",
		"determined independently",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}

	report.LLM.SummaryMD = ""
	report.LLM.Warnings = nil
	md = RenderSeparateMarkdown(&report)
	if !strings.Contains(md, "No summary generated") {
		t.Errorf("Expected placeholder for empty summary:\n%s", md)
	}
	if strings.Contains(md, "## Notes") {
		t.Errorf("Notes section should be omitted without warnings")
	}

	report.LLM.Enabled = false
	if got := RenderSeparateMarkdown(&report); got != "" {
		t.Errorf("Expected empty output when disabled, got %q", got)
	}
	report.LLM = nil
	if got := RenderSeparateMarkdown(&report); got != "" {
		t.Errorf("Expected empty output without summary, got %q", got)
	}
}
