package viz

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

func buildTree(t *testing.T, edges [][2]string) *taxonomy.Tree {
	t.Helper()
	var data model.ConceptData
	for _, e := range edges {
		data.Records = append(data.Records, model.ConceptRecord{ID: e[0], ParentID: e[1]})
	}
	tree, err := taxonomy.Build(data, taxonomy.BuildOptions{})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return tree
}

func selected(ids ...string) []model.SelectedConcept {
	out := make([]model.SelectedConcept, len(ids))
	for i, id := range ids {
		out[i] = model.SelectedConcept{ID: id, Label: id}
	}
	return out
}

func TestBuildGraph_ProjectsHierarchy(t *testing.T) {
	tree := buildTree(t, [][2]string{
		{"Thing", ""}, {"A", "Thing"}, {"B", "Thing"},
		{"A1", "A"}, {"A2", "A"}, {"B1", "B"}, {"B1a", "B1"},
	})

	graph, err := BuildGraph(tree, selected("B1a", "A", "Thing"))
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	if len(graph.Nodes) != 3 || graph.Nodes[0].ID != "B1a" {
		t.Fatalf("Nodes should follow report order, got %+v", graph.Nodes)
	}

	want := []Edge{
		{Source: "B1a", Target: "Thing", RelationshipType: RelIndirect, Hops: 3},
		{Source: "A", Target: "Thing", RelationshipType: RelSubClassOf, Hops: 1},
	}
	if len(graph.Edges) != len(want) {
		t.Fatalf("Expected %d edges, got %+v", len(want), graph.Edges)
	}
	for i := range want {
		if graph.Edges[i] != want[i] {
			t.Errorf("edge %d: got %+v, want %+v", i, graph.Edges[i], want[i])
		}
	}

	if graph.Nodes[2].ConnectionCount != 2 {
		t.Errorf("Thing should have 2 connections, got %d", graph.Nodes[2].ConnectionCount)
	}
}

func TestBuildGraph_StopsAtNearestSelected(t *testing.T) {
	// X has two parents; the path through N reaches R without a selected stop
	tree := buildTree(t, [][2]string{
		{"R", ""}, {"M", "R"}, {"N", "R"}, {"X", "M"}, {"X", "N"}, {"Y", "X"},
	})

	graph, err := BuildGraph(tree, selected("Y", "X", "M", "R"))
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}

	var got []string
	for _, e := range graph.Edges {
		got = append(got, e.Source+">"+e.Target)
	}
	want := "Y>X X>M X>R M>R"
	if strings.Join(got, " ") != want {
		t.Errorf("edges = %v, want %s", got, want)
	}
}

func TestBuildGraph_UnknownConcept(t *testing.T) {
	tree := buildTree(t, [][2]string{{"R", ""}, {"A", "R"}})
	if _, err := BuildGraph(tree, selected("A", "Z")); err == nil {
		t.Fatal("Expected error for concept outside the hierarchy")
	}
}

func TestBuildGraph_Empty(t *testing.T) {
	tree := buildTree(t, [][2]string{{"R", ""}})
	graph, err := BuildGraph(tree, nil)
	if err != nil {
		t.Fatalf("BuildGraph failed: %v", err)
	}
	if !graph.IsEmpty() {
		t.Errorf("Expected empty graph, got %+v", graph)
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	graph := &GraphData{
		Nodes: []Node{{ID: "A", Label: "A"}, {ID: "B", Label: "B"}},
		Edges: []Edge{{Source: "B", Target: "A", RelationshipType: RelSubClassOf, Hops: 1}},
	}

	out, err := graph.ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON failed: %v", err)
	}

	var elements CytoscapeElements
	if err := json.Unmarshal([]byte(out), &elements); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(elements.Nodes) != 2 || len(elements.Edges) != 1 {
		t.Fatalf("Unexpected elements: %+v", elements)
	}
	if e := elements.Edges[0].Data; e.ID != "e0" || e.Source != "B" || e.Target != "A" || e.RelationshipType != RelSubClassOf {
		t.Errorf("Unexpected edge: %+v", e)
	}
}
