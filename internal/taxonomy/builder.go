package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

// Build errors
var (
	ErrEmptyInput      = errors.New("no concepts in input")
	ErrMalformedInput  = errors.New("malformed concept input")
	ErrCyclicHierarchy = errors.New("concept hierarchy contains a cycle")
)

// maxListedIDs caps how many ids an error message names
const maxListedIDs = 5

// BuildOptions controls tree construction
type BuildOptions struct {
	// AllowDanglingParents turns parent ids without a record of their own into
	// structural placeholders instead of failing with ErrMalformedInput.
	AllowDanglingParents bool
}

// draft accumulates everything seen about one id during ingestion
type draft struct {
	labels    []model.Label
	instances int
	parents   map[string]bool
	declared  bool
}

// Build converts a flat edge list into a single-rooted concept hierarchy and
// computes levels, descendant, ancestor and covered closures.
//
// Duplicate records for the same id are merged: labels accumulate and the
// largest instance count wins. Parents may be referenced before they are
// declared. Vocabulary terms never become domain concepts but can serve as
// structural parents.
func Build(data model.ConceptData, opts BuildOptions) (*Tree, error) {
	drafts, err := ingest(data.Records)
	if err != nil {
		return nil, err
	}

	dangling, err := resolve(drafts, opts)
	if err != nil {
		return nil, err
	}

	t := assemble(drafts)
	t.dangling = dangling

	if err := t.unifyRoots(); err != nil {
		return nil, err
	}
	if err := t.sortTopologically(); err != nil {
		return nil, err
	}

	t.assignLevels()
	t.aggregateDescendants()
	t.propagateAncestors()
	t.ApplyPropertyCounts(data.PropertyCounts)

	return t, nil
}

// ingest merges records into drafts keyed by id
func ingest(records []model.ConceptRecord) (map[string]*draft, error) {
	drafts := make(map[string]*draft)
	get := func(id string) *draft {
		d, ok := drafts[id]
		if !ok {
			d = &draft{parents: make(map[string]bool)}
			drafts[id] = d
		}
		return d
	}

	domain := 0
	for i, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has an empty id", ErrMalformedInput, i)
		}
		if rec.InstanceCount < 0 {
			return nil, fmt.Errorf("%w: %s has a negative instance count", ErrMalformedInput, id)
		}
		if IsVocabulary(id) {
			continue
		}

		d := get(id)
		if !d.declared {
			d.declared = true
			domain++
		}
		if rec.Label != "" {
			addLabel(d, model.Label{Value: rec.Label, Lang: rec.Lang})
		}
		if rec.InstanceCount > d.instances {
			d.instances = rec.InstanceCount
		}

		parent := strings.TrimSpace(rec.ParentID)
		if parent == "" || parent == id {
			continue
		}
		d.parents[parent] = true
		get(parent)
	}

	if domain == 0 {
		return nil, ErrEmptyInput
	}
	return drafts, nil
}

func addLabel(d *draft, l model.Label) {
	for _, existing := range d.labels {
		if existing == l {
			return
		}
	}
	d.labels = append(d.labels, l)
}

// resolve checks that every referenced parent ended up declared or is a
// vocabulary term. It returns the placeholders accepted under
// AllowDanglingParents.
func resolve(drafts map[string]*draft, opts BuildOptions) ([]string, error) {
	var unresolved []string
	for id, d := range drafts {
		if d.declared || IsVocabulary(id) {
			continue
		}
		unresolved = append(unresolved, id)
	}
	sort.Strings(unresolved)

	if len(unresolved) > 0 && !opts.AllowDanglingParents {
		return nil, fmt.Errorf("%w: %d parent(s) never declared: %s",
			ErrMalformedInput, len(unresolved), listIDs(unresolved))
	}
	return unresolved, nil
}

// assemble turns drafts into index-addressed nodes in id order
func assemble(drafts map[string]*draft) *Tree {
	ids := make([]string, 0, len(drafts))
	for id := range drafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := &Tree{
		nodes: make([]*Node, len(ids)),
		byID:  make(map[string]int, len(ids)),
	}
	for i, id := range ids {
		d := drafts[id]
		t.nodes[i] = &Node{
			ID:            id,
			Labels:        d.labels,
			InstanceCount: d.instances,
			Structural:    !d.declared,
			index:         i,
		}
		t.byID[id] = i
	}

	for i, id := range ids {
		for parent := range drafts[id].parents {
			p := t.byID[parent]
			t.nodes[i].parents = append(t.nodes[i].parents, p)
			t.nodes[p].children = append(t.nodes[p].children, i)
		}
	}
	for _, n := range t.nodes {
		sort.Ints(n.parents)
		sort.Ints(n.children)
		if !n.Structural {
			t.domain = append(t.domain, n.index)
		}
	}
	return t
}

// unifyRoots ensures exactly one node has no parents. An existing owl:Thing
// root adopts the others; otherwise a synthetic owl:Thing is created.
func (t *Tree) unifyRoots() error {
	var roots []int
	thing := -1
	for _, n := range t.nodes {
		if !n.IsRoot() {
			continue
		}
		roots = append(roots, n.index)
		if expand(n.ID) == ThingIRI {
			thing = n.index
		}
	}

	switch {
	case len(roots) == 0:
		return fmt.Errorf("%w: no concept without parents", ErrCyclicHierarchy)
	case len(roots) == 1:
		t.root = roots[0]
		return nil
	}

	if thing < 0 {
		thing = len(t.nodes)
		t.nodes = append(t.nodes, &Node{
			ID:         ThingIRI,
			Labels:     []model.Label{{Value: "Thing"}},
			Structural: true,
			index:      thing,
		})
		t.byID[ThingIRI] = thing
		t.synthetic = true
	}

	top := t.nodes[thing]
	for _, r := range roots {
		if r == thing {
			continue
		}
		t.nodes[r].parents = []int{thing}
		top.children = append(top.children, r)
		t.adopted = append(t.adopted, t.nodes[r].ID)
	}
	sort.Ints(top.children)
	t.root = thing
	return nil
}

// sortTopologically orders nodes so every parent precedes its children.
// Nodes that cannot be reached that way sit on a cycle.
func (t *Tree) sortTopologically() error {
	indegree := make([]int, len(t.nodes))
	for _, n := range t.nodes {
		indegree[n.index] = len(n.parents)
	}

	order := make([]int, 0, len(t.nodes))
	queue := []int{t.root}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, c := range t.nodes[i].children {
			indegree[c]--
			if indegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) < len(t.nodes) {
		var stuck []string
		for i, deg := range indegree {
			if deg > 0 {
				stuck = append(stuck, t.nodes[i].ID)
			}
		}
		sort.Strings(stuck)
		return fmt.Errorf("%w: %d concept(s) involved: %s", ErrCyclicHierarchy, len(stuck), listIDs(stuck))
	}

	t.order = order
	return nil
}

// assignLevels gives the root level 1 and every other node one more than its
// shallowest parent
func (t *Tree) assignLevels() {
	for _, i := range t.order {
		n := t.nodes[i]
		if n.IsRoot() {
			n.Level = 1
		} else {
			level := 0
			for _, p := range n.parents {
				if l := t.nodes[p].Level; level == 0 || l < level {
					level = l
				}
			}
			n.Level = level + 1
		}
		if n.Level > t.depth {
			t.depth = n.Level
		}
	}
}

// aggregateDescendants fills descendant sets bottom-up
func (t *Tree) aggregateDescendants() {
	u := newUnion(len(t.nodes))
	for k := len(t.order) - 1; k >= 0; k-- {
		n := t.nodes[t.order[k]]
		u.reset()
		for _, c := range n.children {
			u.add(c)
			u.addAll(t.nodes[c].descendants)
		}
		n.descendants = u.sorted()
	}
}

// propagateAncestors fills ancestor and covered sets top-down. It must run
// after aggregateDescendants because covered needs both closures.
func (t *Tree) propagateAncestors() {
	u := newUnion(len(t.nodes))
	for _, i := range t.order {
		n := t.nodes[i]
		u.reset()
		for _, p := range n.parents {
			u.add(p)
			u.addAll(t.nodes[p].ancestors)
		}
		n.ancestors = u.sorted()

		u.add(n.index)
		u.addAll(n.descendants)
		n.covered = u.sorted()
	}
}

// union is a reusable set of node indices
type union struct {
	stamp []int
	epoch int
	items []int
}

func newUnion(size int) *union {
	return &union{stamp: make([]int, size)}
}

func (u *union) reset() {
	u.epoch++
	u.items = u.items[:0]
}

func (u *union) add(i int) {
	if u.stamp[i] != u.epoch {
		u.stamp[i] = u.epoch
		u.items = append(u.items, i)
	}
}

func (u *union) addAll(is []int) {
	for _, i := range is {
		u.add(i)
	}
}

func (u *union) sorted() []int {
	out := make([]int, len(u.items))
	copy(out, u.items)
	sort.Ints(out)
	return out
}

func listIDs(ids []string) string {
	if len(ids) <= maxListedIDs {
		return strings.Join(ids, ", ")
	}
	return strings.Join(ids[:maxListedIDs], ", ") + fmt.Sprintf(", ... (%d more)", len(ids)-maxListedIDs)
}
