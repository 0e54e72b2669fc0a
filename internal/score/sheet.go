package score

import (
	"sort"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

// Entry holds the scoring fields of one concept for one run
type Entry struct {
	ID                   string  `json:"id"`
	RawDensity           float64 `json:"raw_density"`
	GlobalDensity        float64 `json:"global_density"`
	LocalDensity         float64 `json:"local_density"`
	Density              float64 `json:"density"`
	BasicLevel           float64 `json:"basic_level"`
	NameSimplicity       float64 `json:"name_simplicity"`
	NaturalCategoryValue float64 `json:"natural_category_value"`
	Score                float64 `json:"score"`
}

// Sheet holds the scores of every node of one tree, indexed like
// Tree.Nodes(). A sheet is produced fresh for each run so the tree itself is
// never mutated by scoring.
type Sheet struct {
	tree    *taxonomy.Tree
	entries []Entry
	Signals []model.Signal
}

func newSheet(tree *taxonomy.Tree) *Sheet {
	entries := make([]Entry, tree.Size())
	for i, n := range tree.Nodes() {
		entries[i].ID = n.ID
	}
	return &Sheet{tree: tree, entries: entries}
}

// Tree returns the tree the sheet was computed for
func (s *Sheet) Tree() *taxonomy.Tree { return s.tree }

// At returns the entry for node index i
func (s *Sheet) At(i int) *Entry { return &s.entries[i] }

// Score returns the composite score of node index i
func (s *Sheet) Score(i int) float64 { return s.entries[i].Score }

// Get looks an entry up by concept id
func (s *Sheet) Get(id string) (Entry, bool) {
	n, ok := s.tree.Node(id)
	if !ok {
		return Entry{}, false
	}
	return s.entries[n.Index()], true
}

// Ranked returns the domain concepts ordered by score, highest first.
// Ties are broken by id so the order is deterministic.
func (s *Sheet) Ranked() []int {
	concepts := s.tree.Concepts()
	ranked := make([]int, len(concepts))
	for i, n := range concepts {
		ranked[i] = n.Index()
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		ea, eb := s.entries[ranked[a]], s.entries[ranked[b]]
		if ea.Score != eb.Score {
			return ea.Score > eb.Score
		}
		return ea.ID < eb.ID
	})
	return ranked
}
