package model

import "time"

// Report is the complete result of one key concept extraction run
type Report struct {
	RunID       string    `json:"run_id"`
	Source      string    `json:"source"`       // Endpoint URL or file path
	View        View      `json:"view"`         // class or instance
	GeneratedAt time.Time `json:"generated_at"` // When the run finished

	Requested     int `json:"requested"`      // n as asked by the caller
	TotalConcepts int `json:"total_concepts"` // Domain concepts in the tree
	Levels        int `json:"levels"`         // Depth of the hierarchy

	Concepts  []SelectedConcept `json:"concepts"`            // Key concepts, best overall score first
	Remainder []SelectedConcept `json:"remainder,omitempty"` // Next concepts by score for "load more"

	Swaps   int      `json:"swaps"`   // Accepted swaps during selection
	Signals []Signal `json:"signals"` // Diagnostics with transparent scoring data

	Scoring ScoringConfig `json:"scoring"` // Weights used for this run

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative (separate, never affects scores)
}

// SelectedConcept is a concept with the fields the diagram renderer needs
type SelectedConcept struct {
	ID           string  `json:"id"`
	Label        string  `json:"label,omitempty"`
	Level        int     `json:"level"`
	Score        float64 `json:"score"`
	OverallScore float64 `json:"overall_score,omitempty"`
	Contribution int     `json:"contribution,omitempty"`
	Subtree      string  `json:"subtree"` // "(childCount, indirectDescendantCount)"
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"` // Formulas and inputs
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalDensity         SignalType = "density"          // Global/local density pass
	SignalCategoryValue   SignalType = "category_value"   // Basic level and name simplicity pass
	SignalComposite       SignalType = "composite_score"  // Score distribution
	SignalSelection       SignalType = "selection"        // Greedy selection outcome
	SignalZeroGuard       SignalType = "zero_guard"       // A zero denominator was substituted
	SignalSyntheticRoot   SignalType = "synthetic_root"   // Disconnected roots were adopted
	SignalDanglingParents SignalType = "dangling_parents" // Undeclared parents became placeholders
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// LLMSummary contains the optional LLM narrative.
// It is produced after scoring and never feeds back into it.
type LLMSummary struct {
	Enabled        bool     `json:"enabled"`
	Provider       string   `json:"provider,omitempty"`
	Model          string   `json:"model,omitempty"`
	StrictConcepts bool     `json:"strict_concepts"`
	SummaryMD      string   `json:"summary_md,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// ConceptIDs returns the ids of the selected concepts in report order
func (r *Report) ConceptIDs() []string {
	ids := make([]string, len(r.Concepts))
	for i, c := range r.Concepts {
		ids[i] = c.ID
	}
	return ids
}
