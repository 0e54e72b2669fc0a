package taxonomy

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ontolens/internal/model"
)

func rec(id, parent string) model.ConceptRecord {
	return model.ConceptRecord{ID: id, ParentID: parent}
}

// sevenNodes is Thing > {A > {A1, A2}, B > B1 > B1a}
func sevenNodes() model.ConceptData {
	return model.ConceptData{
		View: model.ViewClass,
		Records: []model.ConceptRecord{
			rec("Thing", ""),
			rec("A", "Thing"),
			rec("B", "Thing"),
			rec("A1", "A"),
			rec("A2", "A"),
			rec("B1", "B"),
			rec("B1a", "B1"),
		},
	}
}

func ids(t *Tree, n *Node, pick func(*Node) []int) []string {
	return t.IDs(pick(n))
}

func mustNode(t *testing.T, tree *Tree, id string) *Node {
	t.Helper()
	n, ok := tree.Node(id)
	require.True(t, ok, "node %s missing", id)
	return n
}

func TestBuild_SevenNodeTaxonomy(t *testing.T) {
	tree, err := Build(sevenNodes(), BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 7, tree.Len())
	assert.Equal(t, 7, tree.Size())
	assert.Equal(t, "Thing", tree.Root().ID)
	assert.False(t, tree.SyntheticRoot())
	assert.Equal(t, 4, tree.Depth())

	b1a := mustNode(t, tree, "B1a")
	assert.Equal(t, 4, b1a.Level)
	assert.ElementsMatch(t, []string{"Thing", "B", "B1"}, ids(tree, b1a, (*Node).Ancestors))
	assert.Empty(t, b1a.Descendants())

	b := mustNode(t, tree, "B")
	assert.ElementsMatch(t, []string{"B1", "B1a"}, ids(tree, b, (*Node).Descendants))
	assert.ElementsMatch(t, []string{"B1a"}, tree.IDs(b.IndirectDescendants()))
	assert.ElementsMatch(t, []string{"Thing", "B", "B1", "B1a"}, ids(tree, b, (*Node).Covered))

	root := tree.Root()
	assert.Len(t, root.Covered(), 7)
	assert.Equal(t, "(2, 4)", SubtreeSummary(root))
	assert.Equal(t, "(2, 0)", SubtreeSummary(mustNode(t, tree, "A")))
}

func TestBuild_ForwardReferencesAndDuplicates(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		{ID: "Dog", Label: "Dog", Lang: "en", InstanceCount: 4, ParentID: "Animal"},
		{ID: "Dog", Label: "Hund", Lang: "de", InstanceCount: 9, ParentID: "Animal"},
		{ID: "Dog", Label: "Dog", Lang: "en", InstanceCount: 2},
		{ID: "Animal", Label: "Animal", InstanceCount: 1},
	}}

	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	dog := mustNode(t, tree, "Dog")
	assert.Equal(t, 9, dog.InstanceCount, "instance count is the maximum, never the sum")
	assert.Len(t, dog.Labels, 2)
	assert.Equal(t, "Dog", dog.Label())
	assert.False(t, dog.Structural)

	animal := mustNode(t, tree, "Animal")
	assert.False(t, animal.Structural, "placeholder merged once declared")
	assert.Equal(t, []string{"Dog"}, tree.IDs(animal.Children()))
	assert.Equal(t, animal, tree.Root())
}

func TestBuild_Idempotent(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("Root", ""), rec("P1", "Root"), rec("P2", "Root"),
		rec("C", "P1"), rec("C", "P2"), rec("D", "C"), rec("E", "P2"),
		rec("Other", ""), rec("F", "Other"),
	}}

	first, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	shuffled := model.ConceptData{Records: append([]model.ConceptRecord(nil), data.Records...)}
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled.Records), func(i, j int) {
		shuffled.Records[i], shuffled.Records[j] = shuffled.Records[j], shuffled.Records[i]
	})
	second, err := Build(shuffled, BuildOptions{})
	require.NoError(t, err)

	require.Equal(t, first.Size(), second.Size())
	for _, n := range first.Nodes() {
		m := mustNode(t, second, n.ID)
		assert.ElementsMatch(t, first.IDs(n.Covered()), second.IDs(m.Covered()), n.ID)
		assert.ElementsMatch(t, first.IDs(n.Ancestors()), second.IDs(m.Ancestors()), n.ID)
		assert.ElementsMatch(t, first.IDs(n.Descendants()), second.IDs(m.Descendants()), n.ID)
		assert.Equal(t, n.Level, m.Level, n.ID)
	}
}

func TestBuild_CoveredSymmetry(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("A", ""), rec("B", "A"), rec("C", "A"), rec("D", "B"), rec("D", "C"),
		rec("E", "D"), rec("F", "C"), rec("G", ""), rec("H", "G"),
	}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	in := func(x int, set []int) bool {
		for _, v := range set {
			if v == x {
				return true
			}
		}
		return false
	}
	for _, a := range tree.Nodes() {
		for _, b := range tree.Nodes() {
			assert.Equal(t, in(a.Index(), b.Covered()), in(b.Index(), a.Covered()),
				"covered symmetry between %s and %s", a.ID, b.ID)
		}
	}
}

func TestBuild_SingleRootForDisconnectedInput(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("Person", ""), rec("Student", "Person"),
		rec("Place", ""), rec("City", "Place"),
		rec("Event", ""),
	}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	roots := 0
	for _, n := range tree.Nodes() {
		if n.IsRoot() {
			roots++
		}
	}
	assert.Equal(t, 1, roots)
	assert.True(t, tree.SyntheticRoot())
	assert.Equal(t, ThingIRI, tree.Root().ID)
	assert.True(t, tree.Root().Structural)
	assert.ElementsMatch(t, []string{"Person", "Place", "Event"}, tree.AdoptedRoots())
	assert.Equal(t, 5, tree.Len(), "synthetic root is not a domain concept")
	assert.Equal(t, 2, mustNode(t, tree, "Event").Level)

	city := mustNode(t, tree, "City")
	assert.ElementsMatch(t, []string{ThingIRI, "Place"}, tree.IDs(city.Ancestors()))
}

func TestBuild_ExistingThingAdoptsOtherRoots(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("Agent", "owl:Thing"),
		rec("Orphan", ""),
	}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	assert.False(t, tree.SyntheticRoot())
	assert.Equal(t, "owl:Thing", tree.Root().ID)
	assert.Equal(t, []string{"Orphan"}, tree.AdoptedRoots())
	assert.ElementsMatch(t, []string{"Agent", "Orphan"}, tree.IDs(tree.Root().Children()))
}

func TestBuild_MultiParentCoverageUnion(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("Top", ""), rec("X", "Top"), rec("P1", "X"), rec("Y", "Top"), rec("P2", "Y"),
		rec("Child", "P1"), rec("Child", "P2"),
	}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	child := mustNode(t, tree, "Child")
	anc := tree.IDs(child.Ancestors())
	assert.ElementsMatch(t, []string{"Top", "X", "P1", "Y", "P2"}, anc)
	assert.Len(t, anc, 5, "Top reached via both parents appears once")
	assert.Equal(t, 4, child.Level, "level follows the shallowest parent")

	top := mustNode(t, tree, "Top")
	assert.Len(t, top.Descendants(), 5)
}

func TestBuild_UndeclaredParentIsMalformed(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("A", ""), rec("B", "Missing"),
	}}
	_, err := Build(data, BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedInput))
	assert.Contains(t, err.Error(), "Missing")

	tree, err := Build(data, BuildOptions{AllowDanglingParents: true})
	require.NoError(t, err)
	missing := mustNode(t, tree, "Missing")
	assert.True(t, missing.Structural)
	assert.Equal(t, []string{"Missing"}, tree.DanglingParents())
	assert.Equal(t, 2, tree.Len())
}

func TestBuild_VocabularyTermsAreStructural(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		{ID: OWL + "Class", InstanceCount: 100},
		{ID: "http://ex.org/Agent", ParentID: OWL + "Thing", InstanceCount: 3},
		{ID: OWL + "Thing", Label: "ignored"},
	}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	_, ok := tree.Node(OWL + "Class")
	assert.False(t, ok, "vocabulary record without references is dropped")

	thing := mustNode(t, tree, ThingIRI)
	assert.True(t, thing.Structural)
	assert.Empty(t, thing.Labels)
	assert.Equal(t, 1, tree.Len())
}

func TestBuild_SelfEdgesDropped(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("A", "A"), rec("B", "A"), rec("B", "B"),
	}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, "A", tree.Root().ID)
	assert.Equal(t, []string{"A"}, tree.IDs(mustNode(t, tree, "B").Parents()))
}

func TestBuild_CycleFails(t *testing.T) {
	data := model.ConceptData{Records: []model.ConceptRecord{
		rec("Root", ""), rec("A", "Root"), rec("B", "A"), rec("A", "B"),
	}}
	_, err := Build(data, BuildOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCyclicHierarchy))

	closed := model.ConceptData{Records: []model.ConceptRecord{rec("A", "B"), rec("B", "A")}}
	_, err = Build(closed, BuildOptions{})
	assert.True(t, errors.Is(err, ErrCyclicHierarchy))
}

func TestBuild_EmptyInput(t *testing.T) {
	_, err := Build(model.ConceptData{}, BuildOptions{})
	assert.True(t, errors.Is(err, ErrEmptyInput))

	onlyVocabulary := model.ConceptData{Records: []model.ConceptRecord{{ID: OWL + "Thing"}}}
	_, err = Build(onlyVocabulary, BuildOptions{})
	assert.True(t, errors.Is(err, ErrEmptyInput))

	_, err = Build(model.ConceptData{Records: []model.ConceptRecord{{ID: "  "}}}, BuildOptions{})
	assert.True(t, errors.Is(err, ErrMalformedInput))
}

func TestBuild_SingleConcept(t *testing.T) {
	tree, err := Build(model.ConceptData{Records: []model.ConceptRecord{rec("Only", "")}}, BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, "(0, 0)", SubtreeSummary(tree.Root()))
	assert.Equal(t, []string{"Only"}, tree.IDs(tree.Root().Covered()))
}

func TestTree_ApplyPropertyCounts(t *testing.T) {
	data := sevenNodes()
	data.PropertyCounts = []model.PropertyCount{{ID: "A", Count: 3}}
	tree, err := Build(data, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, mustNode(t, tree, "A").PropertyCount)
	assert.Equal(t, 0, mustNode(t, tree, "B").PropertyCount)

	matched := tree.ApplyPropertyCounts([]model.PropertyCount{{ID: "B", Count: 2}, {ID: "nope", Count: 8}})
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, mustNode(t, tree, "B").PropertyCount)
}
