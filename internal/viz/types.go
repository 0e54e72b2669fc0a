// Package viz projects a concept hierarchy onto the key concepts selected
// from it, for diagram rendering.
package viz

// GraphData contains all data needed to render the key concept diagram
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one selected concept
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`

	Level        int     `json:"level"`
	Score        float64 `json:"score"`
	OverallScore float64 `json:"overallScore"`
	Subtree      string  `json:"subtree"` // "(childCount, indirectDescendantCount)"

	// Sizing: number of selected concepts placed directly below this one
	ConnectionCount int `json:"connectionCount"`
}

// Edge links a selected concept to its nearest selected ancestor
type Edge struct {
	Source           string `json:"source"` // Sub-concept
	Target           string `json:"target"` // Ancestor
	RelationshipType string `json:"relationshipType"`
	Hops             int    `json:"hops"` // Hierarchy edges between the two
}

// Relationship types
const (
	RelSubClassOf = "subClassOf" // Direct parent
	RelIndirect   = "indirect"   // Unselected concepts in between
)

// IsEmpty returns true if the graph has no nodes
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
