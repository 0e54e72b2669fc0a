package source

import (
	"encoding/json"
	"fmt"
)

// Results is a decoded SPARQL 1.1 query results JSON document
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Binding maps variable names to the terms bound in one solution
type Binding map[string]Term

// Term is one RDF term of a binding
type Term struct {
	Type     string `json:"type"` // uri, literal, typed-literal or bnode
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// IsBlank reports whether the term is a blank node
func (t Term) IsBlank() bool { return t.Type == "bnode" }

// DecodeResults parses a SPARQL results JSON document
func DecodeResults(data []byte) (*Results, error) {
	var res Results
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResults, err)
	}
	if res.Head.Vars == nil {
		return nil, fmt.Errorf("%w: missing head.vars", ErrMalformedResults)
	}
	return &res, nil
}

// looksLikeResults reports whether a JSON document is a SPARQL results
// document rather than a native concept list
func looksLikeResults(data []byte) bool {
	var probe struct {
		Head    json.RawMessage `json:"head"`
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Head != nil && probe.Results != nil
}
