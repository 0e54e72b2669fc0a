package llm

import "github.com/ppiankov/ontolens/internal/model"

const (
	iriAnimal = "http://example.org/zoo#Animal"
	iriBird   = "http://example.org/zoo#Bird"
)

func testReport() model.Report {
	return model.Report{
		Source:        "http://localhost:3030/zoo/sparql",
		View:          model.ViewClass,
		Requested:     2,
		TotalConcepts: 12,
		Levels:        3,
		Concepts: []model.SelectedConcept{
			{ID: iriAnimal, Label: "Animal", Level: 1, Score: 1.2, Subtree: "(3, 8)"},
			{ID: iriBird, Label: "Bird", Level: 2, Score: 0.7, Subtree: "(2, 0)"},
		},
	}
}

func testRequest() SummarizeRequest {
	r := testReport()
	return SummarizeRequest{Report: r, ConceptIRIs: r.ConceptIDs()}
}
