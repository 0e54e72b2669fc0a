package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

// RawDensity blends the structural counts of a concept
func RawDensity(n *taxonomy.Node, cfg model.ScoringConfig) float64 {
	return cfg.SubclassWeight*float64(len(n.Children())) +
		cfg.InstanceWeight*float64(n.InstanceCount) +
		cfg.PropertyWeight*float64(n.PropertyCount)
}

// Neighbourhood returns the nodes within radius hops of n, walking parents
// and children independently. Each node appears once and n itself is
// included.
func Neighbourhood(tree *taxonomy.Tree, n *taxonomy.Node, radius int) []int {
	seen := map[int]bool{n.Index(): true}
	out := []int{n.Index()}

	walk := func(next func(*taxonomy.Node) []int) {
		frontier := []int{n.Index()}
		for hop := 0; hop < radius && len(frontier) > 0; hop++ {
			var upcoming []int
			for _, i := range frontier {
				for _, j := range next(tree.At(i)) {
					if seen[j] {
						continue
					}
					seen[j] = true
					out = append(out, j)
					upcoming = append(upcoming, j)
				}
			}
			frontier = upcoming
		}
	}
	walk((*taxonomy.Node).Parents)
	walk((*taxonomy.Node).Children)
	return out
}

// decayWeight discounts a neighbour by its level distance
func decayWeight(cfg model.ScoringConfig, levelDelta int) float64 {
	if !cfg.DistanceDecay {
		return 1
	}
	return math.Max(0, 1-cfg.DecayRatio*math.Abs(float64(levelDelta)))
}

// scoreDensity fills RawDensity, GlobalDensity, LocalDensity and Density for
// every domain concept. Structural nodes keep zero and are ignored in maxima.
func (s *Scorer) scoreDensity(tree *taxonomy.Tree, sheet *Sheet) []model.Signal {
	var signals []model.Signal

	maxRaw := 0.0
	for _, n := range tree.Concepts() {
		e := sheet.At(n.Index())
		e.RawDensity = RawDensity(n, s.cfg)
		maxRaw = math.Max(maxRaw, e.RawDensity)
	}

	if maxRaw == 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalZeroGuard,
			Severity:    model.SeverityWarning,
			Description: "Every concept has zero children, instances and properties; density is zero",
			Data: map[string]interface{}{
				"term":    "global_density",
				"max_raw": 0,
			},
		})
	}

	for _, n := range tree.Concepts() {
		e := sheet.At(n.Index())
		if maxRaw > 0 {
			e.GlobalDensity = e.RawDensity / maxRaw
		}
	}

	for _, n := range tree.Concepts() {
		e := sheet.At(n.Index())
		maxNear := 0.0
		for _, j := range Neighbourhood(tree, n, s.cfg.Radius) {
			m := tree.At(j)
			if m.Structural {
				continue
			}
			weighted := decayWeight(s.cfg, m.Level-n.Level) * sheet.At(j).GlobalDensity
			maxNear = math.Max(maxNear, weighted)
		}
		if maxNear > 0 {
			e.LocalDensity = e.GlobalDensity / maxNear
		}
		e.Density = s.cfg.GlobalWeight*e.GlobalDensity + s.cfg.LocalWeight*e.LocalDensity
	}

	signals = append(signals, model.Signal{
		Type:        model.SignalDensity,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Density over %d concepts (radius %d, decay %v)", tree.Len(), s.cfg.Radius, s.cfg.DistanceDecay),
		Data: map[string]interface{}{
			"max_raw_density": maxRaw,
			"radius":          s.cfg.Radius,
			"decay_ratio":     s.cfg.DecayRatio,
			"formula": fmt.Sprintf("%.2f*global + %.2f*local; raw = %.2f*children + %.2f*instances + %.2f*properties",
				s.cfg.GlobalWeight, s.cfg.LocalWeight, s.cfg.SubclassWeight, s.cfg.InstanceWeight, s.cfg.PropertyWeight),
		},
	})

	return signals
}
