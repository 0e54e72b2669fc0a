// Package taxonomy builds the multi-parent concept hierarchy that key concept
// extraction operates on, together with its cached closures.
package taxonomy

import (
	"fmt"

	"github.com/ppiankov/ontolens/internal/model"
)

// Node is one concept of the hierarchy. Relationships are stored as indices
// into Tree.Nodes(); the slices returned by the accessors are shared and must
// not be modified.
type Node struct {
	ID            string
	Labels        []model.Label
	InstanceCount int
	PropertyCount int
	Level         int  // Root is 1
	Structural    bool // Vocabulary term, synthetic root or dangling placeholder

	index       int
	parents     []int
	children    []int
	ancestors   []int
	descendants []int
	covered     []int
}

// Index returns the position of the node in Tree.Nodes()
func (n *Node) Index() int { return n.index }

// Parents returns the indices of the direct parents
func (n *Node) Parents() []int { return n.parents }

// Children returns the indices of the direct children
func (n *Node) Children() []int { return n.children }

// Ancestors returns the indices of every ancestor, sorted
func (n *Node) Ancestors() []int { return n.ancestors }

// Descendants returns the indices of every descendant, sorted
func (n *Node) Descendants() []int { return n.descendants }

// Covered returns ancestors, descendants and the node itself, sorted
func (n *Node) Covered() []int { return n.covered }

// IsRoot reports whether the node has no parents
func (n *Node) IsRoot() bool { return len(n.parents) == 0 }

// IsLeaf reports whether the node has no children
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// IndirectDescendants returns the descendants that are not direct children
func (n *Node) IndirectDescendants() []int {
	direct := make(map[int]bool, len(n.children))
	for _, c := range n.children {
		direct[c] = true
	}
	out := make([]int, 0, len(n.descendants)-len(n.children))
	for _, d := range n.descendants {
		if !direct[d] {
			out = append(out, d)
		}
	}
	return out
}

// Label returns the preferred display label: English, then untagged, then
// any label, then the local name of the id.
func (n *Node) Label() string {
	var untagged, first string
	for _, l := range n.Labels {
		if l.Lang == "en" {
			return l.Value
		}
		if l.Lang == "" && untagged == "" {
			untagged = l.Value
		}
		if first == "" {
			first = l.Value
		}
	}
	if untagged != "" {
		return untagged
	}
	if first != "" {
		return first
	}
	return LocalName(n.ID)
}

// Tree is a built concept hierarchy. It is not modified after Build returns
// (ApplyPropertyCounts aside), so several extraction runs may read it
// concurrently.
type Tree struct {
	nodes  []*Node
	byID   map[string]int
	root   int
	order  []int // Topological order, root first
	domain []int // Non-structural nodes in id order
	depth  int

	synthetic bool
	adopted   []string
	dangling  []string
}

// Nodes returns every node, structural ones included
func (t *Tree) Nodes() []*Node { return t.nodes }

// Size returns the number of nodes, structural ones included
func (t *Tree) Size() int { return len(t.nodes) }

// Len returns the number of domain concepts
func (t *Tree) Len() int { return len(t.domain) }

// Root returns the single top node
func (t *Tree) Root() *Node { return t.nodes[t.root] }

// Depth returns the deepest level in the hierarchy
func (t *Tree) Depth() int { return t.depth }

// At returns the node at index i
func (t *Tree) At(i int) *Node { return t.nodes[i] }

// Node looks a node up by id
func (t *Tree) Node(id string) (*Node, bool) {
	i, ok := t.byID[id]
	if !ok {
		return nil, false
	}
	return t.nodes[i], true
}

// Concepts returns the domain concepts in id order
func (t *Tree) Concepts() []*Node {
	out := make([]*Node, len(t.domain))
	for i, idx := range t.domain {
		out[i] = t.nodes[idx]
	}
	return out
}

// Order returns node indices in topological order, root first
func (t *Tree) Order() []int { return t.order }

// SyntheticRoot reports whether Build had to create the top node
func (t *Tree) SyntheticRoot() bool { return t.synthetic }

// AdoptedRoots returns the ids of disconnected roots attached under the top node
func (t *Tree) AdoptedRoots() []string { return t.adopted }

// DanglingParents returns undeclared parent ids turned into placeholders
func (t *Tree) DanglingParents() []string { return t.dangling }

// IDs maps node indices to ids
func (t *Tree) IDs(indices []int) []string {
	ids := make([]string, len(indices))
	for i, idx := range indices {
		ids[i] = t.nodes[idx].ID
	}
	return ids
}

// ApplyPropertyCounts merges the property-count side table into the tree.
// Unknown ids are ignored; it returns how many entries matched.
func (t *Tree) ApplyPropertyCounts(counts []model.PropertyCount) int {
	matched := 0
	for _, pc := range counts {
		if n, ok := t.Node(pc.ID); ok {
			if pc.Count > n.PropertyCount {
				n.PropertyCount = pc.Count
			}
			matched++
		}
	}
	return matched
}

// SubtreeSummary formats a node's subtree size as
// "(childCount, indirectDescendantCount)".
func SubtreeSummary(n *Node) string {
	return fmt.Sprintf("(%d, %d)", len(n.children), len(n.descendants)-len(n.children))
}
