package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
	"github.com/ppiankov/ontolens/internal/viz"
)

// Renderer writes reports as JSON, Markdown and Cytoscape graphs
type Renderer struct {
	includeFooter bool
	out           io.Writer // Console summary destination
}

// NewRenderer creates a renderer that prints summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// SetOutput redirects console summaries
func (r *Renderer) SetOutput(w io.Writer) {
	r.out = w
}

// RenderJSON writes the complete report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes a human readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown formats a report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Key concepts: %s\n\n", report.Source)
	fmt.Fprintf(&b, "- **View:** %s\n", report.View)
	fmt.Fprintf(&b, "- **Concepts in hierarchy:** %d (depth %d)\n", report.TotalConcepts, report.Levels)
	fmt.Fprintf(&b, "- **Selected:** %d of %d requested, %d swap(s)\n", len(report.Concepts), report.Requested, report.Swaps)
	fmt.Fprintf(&b, "- **Run:** %s at %s\n\n", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Key concepts\n\n")
	writeConceptTable(&b, report.Concepts, true)

	if len(report.Remainder) > 0 {
		b.WriteString("\n## More concepts\n\n")
		writeConceptTable(&b, report.Remainder, false)
	}

	if len(report.Signals) > 0 {
		b.WriteString("\n## Signals\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
	}

	sc := report.Scoring
	b.WriteString("\n## Scoring\n\n")
	fmt.Fprintf(&b, "- Raw density weights: subclass %.2f, instance %.2f, property %.2f\n", sc.SubclassWeight, sc.InstanceWeight, sc.PropertyWeight)
	fmt.Fprintf(&b, "- Density: global %.2f, local %.2f, radius %d", sc.GlobalWeight, sc.LocalWeight, sc.Radius)
	if sc.DistanceDecay {
		fmt.Fprintf(&b, ", distance decay %.2f", sc.DecayRatio)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Natural category value: basic level %.2f, name simplicity %.2f (penalty %.2f)\n", sc.BasicLevelWeight, sc.NameSimplicityWeight, sc.NameSimplicityPenalty)
	fmt.Fprintf(&b, "- Overall score: contribution %.2f, score %.2f\n", sc.ContributionWeight, sc.ScoreWeight)

	if report.LLM != nil && report.LLM.Enabled {
		b.WriteString("\n_An LLM summary was generated separately; it does not affect the selection._\n")
	}

	if r.includeFooter {
		b.WriteString("\n---\n\nGenerated by ontolens. Scores are computed from the hierarchy structure and concept names only.\n")
	}
	return b.String()
}

func writeConceptTable(b *strings.Builder, concepts []model.SelectedConcept, selected bool) {
	if selected {
		b.WriteString("| # | Concept | IRI | Level | Score | Overall | Contribution | Subtree |\n")
		b.WriteString("|---|---------|-----|-------|-------|---------|--------------|---------|\n")
	} else {
		b.WriteString("| # | Concept | IRI | Level | Score | Subtree |\n")
		b.WriteString("|---|---------|-----|-------|-------|---------|\n")
	}
	for i, c := range concepts {
		label := strings.ReplaceAll(c.Label, "|", "\\|")
		if selected {
			fmt.Fprintf(b, "| %d | %s | `%s` | %d | %.3f | %.3f | %d | %s |\n", i+1, label, c.ID, c.Level, c.Score, c.OverallScore, c.Contribution, c.Subtree)
		} else {
			fmt.Fprintf(b, "| %d | %s | `%s` | %d | %.3f | %s |\n", i+1, label, c.ID, c.Level, c.Score, c.Subtree)
		}
	}
}

// RenderCytoscape writes the key concept diagram in Cytoscape.js format
func (r *Renderer) RenderCytoscape(tree *taxonomy.Tree, report *model.Report, path string) error {
	graph, err := viz.BuildGraph(tree, report.Concepts)
	if err != nil {
		return err
	}
	data, err := graph.ToCytoscapeJSON()
	if err != nil {
		return err
	}
	return writeFile(path, []byte(data+"\n"))
}

// RenderLLMMarkdown writes the separate LLM summary document
func (r *Renderer) RenderLLMMarkdown(markdown, path string) error {
	if markdown == "" {
		return nil
	}
	return writeFile(path, []byte(markdown))
}

// RenderSummary prints the selected concepts to the console
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Fprintf(r.out, "%s (%s view): %d key concepts from %d\n", report.Source, report.View, len(report.Concepts), report.TotalConcepts)
	for i, c := range report.Concepts {
		fmt.Fprintf(r.out, "%3d. %-32s %.3f  %s\n", i+1, c.Label, c.Score, c.Subtree)
	}
	if report.LLM != nil && report.LLM.SummaryMD != "" {
		fmt.Fprintf(r.out, "\n%s\n", report.LLM.SummaryMD)
	}
}

// RenderTree prints the hierarchy as an indented outline down to maxDepth
// levels (0 means unlimited). Concepts with several parents are expanded
// once and marked on later occurrences.
func (r *Renderer) RenderTree(tree *taxonomy.Tree, maxDepth int) {
	expanded := make(map[int]bool)

	var walk func(i, depth int)
	walk = func(i, depth int) {
		n := tree.At(i)
		indent := strings.Repeat("  ", depth)
		if expanded[i] {
			fmt.Fprintf(r.out, "%s%s %s (see above)\n", indent, n.Label(), taxonomy.SubtreeSummary(n))
			return
		}
		expanded[i] = true
		fmt.Fprintf(r.out, "%s%s %s\n", indent, n.Label(), taxonomy.SubtreeSummary(n))

		if maxDepth > 0 && depth+1 >= maxDepth {
			return
		}
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	walk(tree.Root().Index(), 0)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
