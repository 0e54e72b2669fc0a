// Package extract picks a representative subset of concepts from a scored
// tree: the highest-scoring concepts, swapped greedily for concepts that add
// coverage the others lack.
package extract

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/score"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

var (
	// ErrInvalidExtractionSize is returned for a requested size below one
	ErrInvalidExtractionSize = errors.New("extraction size must be at least 1")

	// ErrSheetMismatch is returned when the sheet was computed for another tree
	ErrSheetMismatch = errors.New("score sheet belongs to a different tree")
)

// Selection is one selected concept with the figures that chose it
type Selection struct {
	Index        int
	ID           string
	Score        float64
	OverallScore float64
	Contribution int
}

// Swap records one accepted replacement during the search
type Swap struct {
	Removed string `json:"removed"`
	Added   string `json:"added"`

	AvgOverallBefore      float64 `json:"avg_overall_before"`
	AvgOverallAfter       float64 `json:"avg_overall_after"`
	AvgContributionBefore float64 `json:"avg_contribution_before"`
	AvgContributionAfter  float64 `json:"avg_contribution_after"`
}

// Result is the outcome of one extraction
type Result struct {
	Requested int
	Selected  []Selection // Best overall score first
	Trace     []Swap      // Accepted swaps in the order they happened
	Searched  bool        // False when every concept was returned without a search

	AvgOverallScore float64
	AvgContribution float64

	tree     *taxonomy.Tree
	sheet    *score.Sheet
	selected map[int]bool
}

// Selector runs the greedy subset search
type Selector struct {
	cfg model.ScoringConfig
}

// NewSelector creates a selector using the contribution and score weights of cfg
func NewSelector(cfg model.ScoringConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Extract selects n key concepts.
//
// The top n concepts by score form the initial set. Every other concept is
// then tried once, in score order, as a replacement for the initial member
// with the lowest overall score in the current set. Concepts brought in by a
// replacement are never evicted, and the search stops once no initial member
// is left. A replacement is kept only when it raises the mean overall score
// without lowering the mean contribution. Rejected concepts are not revisited.
func (s *Selector) Extract(tree *taxonomy.Tree, sheet *score.Sheet, n int) (*Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidExtractionSize, n)
	}
	if sheet.Tree() != tree {
		return nil, ErrSheetMismatch
	}

	ranked := sheet.Ranked()
	if n >= len(ranked) {
		return s.result(tree, sheet, n, s.evaluate(tree, sheet, ranked), nil, false), nil
	}

	current := append([]int(nil), ranked[:n]...)
	initial := make(map[int]bool, n)
	for _, i := range current {
		initial[i] = true
	}
	eval := s.evaluate(tree, sheet, current)

	var trace []Swap
	for _, r := range ranked[n:] {
		worst, ok := eval.worst(sheet, initial)
		if !ok {
			break
		}

		candidate := append([]int(nil), current...)
		candidate[worst] = r
		next := s.evaluate(tree, sheet, candidate)

		if next.avgOverall > eval.avgOverall && next.avgContribution >= eval.avgContribution {
			trace = append(trace, Swap{
				Removed:               tree.At(current[worst]).ID,
				Added:                 tree.At(r).ID,
				AvgOverallBefore:      eval.avgOverall,
				AvgOverallAfter:       next.avgOverall,
				AvgContributionBefore: eval.avgContribution,
				AvgContributionAfter:  next.avgContribution,
			})
			current, eval = candidate, next
		}
	}

	return s.result(tree, sheet, n, eval, trace, true), nil
}

// evaluation holds the per-member figures of one candidate set
type evaluation struct {
	members         []int
	contribution    []int
	overall         []float64
	avgContribution float64
	avgOverall      float64
}

// evaluate computes contribution and overall score for every member of set.
// A covered node contributes to a member only when no other member covers it.
func (s *Selector) evaluate(tree *taxonomy.Tree, sheet *score.Sheet, set []int) evaluation {
	multiplicity := make(map[int]int)
	for _, m := range set {
		for _, c := range tree.At(m).Covered() {
			multiplicity[c]++
		}
	}

	e := evaluation{
		members:      set,
		contribution: make([]int, len(set)),
		overall:      make([]float64, len(set)),
	}

	maxContribution := 0
	for k, m := range set {
		for _, c := range tree.At(m).Covered() {
			if multiplicity[c] == 1 {
				e.contribution[k]++
			}
		}
		if e.contribution[k] > maxContribution {
			maxContribution = e.contribution[k]
		}
	}

	totalContribution, totalOverall := 0, 0.0
	for k, m := range set {
		e.overall[k] = s.cfg.ScoreWeight * sheet.Score(m)
		if maxContribution > 0 {
			e.overall[k] += s.cfg.ContributionWeight * float64(e.contribution[k]) / float64(maxContribution)
		}
		totalContribution += e.contribution[k]
		totalOverall += e.overall[k]
	}

	if len(set) > 0 {
		e.avgContribution = float64(totalContribution) / float64(len(set))
		e.avgOverall = totalOverall / float64(len(set))
	}
	return e
}

// worst returns the position of the member of initial with the lowest
// overall score. Ties go to the lower raw score, then to the larger id.
// It reports false when no member of initial is left.
func (e evaluation) worst(sheet *score.Sheet, initial map[int]bool) (int, bool) {
	w := -1
	for k, m := range e.members {
		if !initial[m] {
			continue
		}
		if w < 0 || e.worse(sheet, k, w) {
			w = k
		}
	}
	return w, w >= 0
}

func (e evaluation) worse(sheet *score.Sheet, a, b int) bool {
	if e.overall[a] != e.overall[b] {
		return e.overall[a] < e.overall[b]
	}
	sa, sb := sheet.Score(e.members[a]), sheet.Score(e.members[b])
	if sa != sb {
		return sa < sb
	}
	return sheet.At(e.members[a]).ID > sheet.At(e.members[b]).ID
}

func (s *Selector) result(tree *taxonomy.Tree, sheet *score.Sheet, n int, e evaluation, trace []Swap, searched bool) *Result {
	res := &Result{
		Requested:       n,
		Selected:        make([]Selection, len(e.members)),
		Trace:           trace,
		Searched:        searched,
		AvgOverallScore: e.avgOverall,
		AvgContribution: e.avgContribution,
		tree:            tree,
		sheet:           sheet,
		selected:        make(map[int]bool, len(e.members)),
	}

	for k, m := range e.members {
		res.Selected[k] = Selection{
			Index:        m,
			ID:           tree.At(m).ID,
			Score:        sheet.Score(m),
			OverallScore: e.overall[k],
			Contribution: e.contribution[k],
		}
		res.selected[m] = true
	}

	sort.SliceStable(res.Selected, func(a, b int) bool {
		sa, sb := res.Selected[a], res.Selected[b]
		if sa.OverallScore != sb.OverallScore {
			return sa.OverallScore > sb.OverallScore
		}
		if sa.Score != sb.Score {
			return sa.Score > sb.Score
		}
		return sa.ID < sb.ID
	})
	return res
}

// IDs returns the selected concept ids, best overall score first
func (r *Result) IDs() []string {
	ids := make([]string, len(r.Selected))
	for i, sel := range r.Selected {
		ids[i] = sel.ID
	}
	return ids
}

// Contains reports whether the concept with the given id was selected
func (r *Result) Contains(id string) bool {
	n, ok := r.tree.Node(id)
	return ok && r.selected[n.Index()]
}

// Remainder returns the unselected concepts by score, highest first
func (r *Result) Remainder() []Selection {
	var out []Selection
	for _, i := range r.sheet.Ranked() {
		if r.selected[i] {
			continue
		}
		out = append(out, Selection{Index: i, ID: r.tree.At(i).ID, Score: r.sheet.Score(i)})
	}
	return out
}

// LoadMore returns up to k concepts from the remainder
func (r *Result) LoadMore(k int) []Selection {
	rest := r.Remainder()
	if k < 0 {
		k = 0
	}
	if k < len(rest) {
		rest = rest[:k]
	}
	return rest
}
