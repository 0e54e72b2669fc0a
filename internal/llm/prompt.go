package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

// maxPromptIRIs limits how many allowed IRIs are listed
const maxPromptIRIs = 40

// BuildPrompt constructs the default prompt: the allowlist, the shape of the
// ontology and every key concept with its scores
func BuildPrompt(report model.Report, conceptIRIs []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are describing an ontology through its key concepts. The concepts below were selected and scored by a deterministic algorithm; do not re-rank, judge or extend the selection.

RULES:
1. You MAY ONLY mention IRIs from this list:
%s

2. Do not invent concepts, classes or IRIs, and do not cite external sources.
3. If the concepts are not enough to describe a theme, say so.

Ontology:
- Source: %s
- View: %s
- Concepts in hierarchy: %d (depth %d)
- Key concepts selected: %d of %d requested

Key concepts (best first):
`, joinIRIs(conceptIRIs), report.Source, report.View, report.TotalConcepts, report.Levels, len(report.Concepts), report.Requested)

	for _, c := range report.Concepts {
		fmt.Fprintf(&b, "- %s <%s> level %d, score %.3f, subtree %s\n", c.Label, c.ID, c.Level, c.Score, c.Subtree)
	}

	b.WriteString("\nProvide a 3-5 sentence overview of the main themes and structure of the ontology based on these concepts.")
	return b.String()
}

func joinIRIs(iris []string) string {
	if len(iris) == 0 {
		return "(No concept IRIs available)"
	}
	var b strings.Builder
	for i, iri := range iris {
		if i >= maxPromptIRIs {
			fmt.Fprintf(&b, "\n... and %d more IRIs", len(iris)-maxPromptIRIs)
			break
		}
		fmt.Fprintf(&b, "\n- %s", iri)
	}
	return b.String()
}
