package extract

import (
	"fmt"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

// Concepts converts the selection into report entries
func (r *Result) Concepts() []model.SelectedConcept {
	return r.describe(r.Selected)
}

// MoreConcepts converts the first k remainder entries into report entries
func (r *Result) MoreConcepts(k int) []model.SelectedConcept {
	return r.describe(r.LoadMore(k))
}

func (r *Result) describe(sels []Selection) []model.SelectedConcept {
	out := make([]model.SelectedConcept, len(sels))
	for i, sel := range sels {
		n := r.tree.At(sel.Index)
		out[i] = model.SelectedConcept{
			ID:           sel.ID,
			Label:        n.Label(),
			Level:        n.Level,
			Score:        sel.Score,
			OverallScore: sel.OverallScore,
			Contribution: sel.Contribution,
			Subtree:      taxonomy.SubtreeSummary(n),
		}
	}
	return out
}

// Signal summarises the search for the report
func (r *Result) Signal() model.Signal {
	description := fmt.Sprintf("Selected %d of %d concepts after %d swap(s)",
		len(r.Selected), r.tree.Len(), len(r.Trace))
	if !r.Searched {
		description = fmt.Sprintf("Requested %d of %d concepts; all returned without search",
			r.Requested, r.tree.Len())
	}

	return model.Signal{
		Type:        model.SignalSelection,
		Severity:    model.SeverityInfo,
		Description: description,
		Data: map[string]interface{}{
			"requested":        r.Requested,
			"selected":         len(r.Selected),
			"searched":         r.Searched,
			"swaps":            r.Trace,
			"avg_overall":      r.AvgOverallScore,
			"avg_contribution": r.AvgContribution,
			"formula":          "overall = w_contribution*contribution/max_contribution + w_score*score",
		},
	}
}
