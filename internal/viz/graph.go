package viz

import (
	"fmt"
	"sort"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

// BuildGraph constructs the diagram for the concepts of a report. Every
// concept gets an edge to each selected ancestor that can be reached through
// unselected concepts only.
func BuildGraph(tree *taxonomy.Tree, concepts []model.SelectedConcept) (*GraphData, error) {
	selected := make(map[int]int, len(concepts)) // node index -> position in concepts
	for i, c := range concepts {
		n, ok := tree.Node(c.ID)
		if !ok {
			return nil, fmt.Errorf("concept %s is not in the hierarchy", c.ID)
		}
		selected[n.Index()] = i
	}

	nodes := make([]Node, len(concepts))
	for i, c := range concepts {
		nodes[i] = Node{
			ID:           c.ID,
			Label:        c.Label,
			Level:        c.Level,
			Score:        c.Score,
			OverallScore: c.OverallScore,
			Subtree:      c.Subtree,
		}
	}

	var edges []Edge
	for _, c := range concepts {
		n, _ := tree.Node(c.ID)
		for _, hit := range nearestSelectedAncestors(tree, n, selected) {
			target := concepts[selected[hit.index]]
			nodes[selected[hit.index]].ConnectionCount++

			rel := RelIndirect
			if hit.hops == 1 {
				rel = RelSubClassOf
			}
			edges = append(edges, Edge{
				Source:           c.ID,
				Target:           target.ID,
				RelationshipType: rel,
				Hops:             hit.hops,
			})
		}
	}

	return &GraphData{Nodes: nodes, Edges: edges}, nil
}

type ancestorHit struct {
	index int
	hops  int
}

// nearestSelectedAncestors walks up breadth first and stops each path at the
// first selected node. Results are ordered by hops, then id.
func nearestSelectedAncestors(tree *taxonomy.Tree, n *taxonomy.Node, selected map[int]int) []ancestorHit {
	var hits []ancestorHit
	seen := map[int]bool{n.Index(): true}
	frontier := n.Parents()

	for hops := 1; len(frontier) > 0; hops++ {
		var next []int
		for _, p := range frontier {
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, ok := selected[p]; ok {
				hits = append(hits, ancestorHit{index: p, hops: hops})
				continue
			}
			next = append(next, tree.At(p).Parents()...)
		}
		frontier = next
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hops != hits[j].hops {
			return hits[i].hops < hits[j].hops
		}
		return tree.At(hits[i].index).ID < tree.At(hits[j].index).ID
	})
	return hits
}
