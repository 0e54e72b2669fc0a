package taxonomy

import "strings"

// Namespaces of the well-known vocabularies
const (
	OWL  = "http://www.w3.org/2002/07/owl#"
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
)

// ThingIRI is the universal top concept
const ThingIRI = OWL + "Thing"

// vocabularyTerms are ontology primitives that are never domain concepts.
// They may still appear as structural parents.
var vocabularyTerms = map[string]bool{
	OWL + "Thing":              true,
	OWL + "Nothing":            true,
	OWL + "Class":              true,
	OWL + "NamedIndividual":    true,
	OWL + "ObjectProperty":     true,
	OWL + "DatatypeProperty":   true,
	OWL + "AnnotationProperty": true,
	OWL + "Ontology":           true,
	OWL + "Restriction":        true,
	RDFS + "Resource":          true,
	RDFS + "Class":             true,
	RDFS + "Literal":           true,
	RDFS + "Datatype":          true,
	RDF + "Property":           true,
	RDF + "List":               true,
}

var prefixes = map[string]string{
	"owl:":  OWL,
	"rdf:":  RDF,
	"rdfs:": RDFS,
}

// IsVocabulary reports whether id names an ontology primitive.
// Both full IRIs and owl:/rdf:/rdfs: prefixed names are recognised.
func IsVocabulary(id string) bool {
	return vocabularyTerms[expand(id)]
}

func expand(id string) string {
	for prefix, ns := range prefixes {
		if strings.HasPrefix(id, prefix) {
			return ns + strings.TrimPrefix(id, prefix)
		}
	}
	return id
}

// LocalName returns the fragment after the last namespace separator
// ('#', '/' or ':'). Trailing separators are ignored.
func LocalName(id string) string {
	trimmed := strings.TrimRight(id, "#/:")
	if idx := strings.LastIndexAny(trimmed, "#/:"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
