package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

// Scorer computes concept importance scores for a tree
type Scorer struct {
	cfg model.ScoringConfig
}

// NewScorer creates a new scorer with the given weights
func NewScorer(cfg model.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the weights the scorer uses
func (s *Scorer) Config() model.ScoringConfig {
	return s.cfg
}

// Calculate runs the density, category value and composite passes and
// returns a fresh score sheet. The tree is only read.
func (s *Scorer) Calculate(tree *taxonomy.Tree) *Sheet {
	sheet := newSheet(tree)

	// 1. Structural density (global + local)
	sheet.Signals = append(sheet.Signals, s.scoreDensity(tree, sheet)...)

	// 2. Natural category value (basic level + name simplicity)
	sheet.Signals = append(sheet.Signals, s.scoreCategoryValue(tree, sheet)...)

	// 3. Composite score
	sheet.Signals = append(sheet.Signals, s.scoreComposite(tree, sheet))

	return sheet
}

// scoreComposite sums natural category value and density. Both terms are
// already normalised, so the sum is unweighted.
func (s *Scorer) scoreComposite(tree *taxonomy.Tree, sheet *Sheet) model.Signal {
	minScore, maxScore, total := math.Inf(1), math.Inf(-1), 0.0
	for _, n := range tree.Concepts() {
		e := sheet.At(n.Index())
		e.Score = e.NaturalCategoryValue + e.Density
		minScore = math.Min(minScore, e.Score)
		maxScore = math.Max(maxScore, e.Score)
		total += e.Score
	}

	data := map[string]interface{}{
		"concepts": tree.Len(),
		"formula":  "natural_category_value + density",
	}
	description := "No concepts to score"
	if tree.Len() > 0 {
		mean := total / float64(tree.Len())
		data["min"] = minScore
		data["max"] = maxScore
		data["mean"] = mean
		top := sheet.Ranked()[0]
		data["top"] = tree.At(top).ID
		description = fmt.Sprintf("Scores range %.3f-%.3f (mean %.3f), top concept %s",
			minScore, maxScore, mean, tree.At(top).Label())
	}

	return model.Signal{
		Type:        model.SignalComposite,
		Severity:    model.SeverityInfo,
		Description: description,
		Data:        data,
	}
}
