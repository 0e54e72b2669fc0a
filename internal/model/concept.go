package model

// View selects which hierarchy a source materializes
type View string

const (
	ViewClass    View = "class"    // owl:Class / rdfs:Class hierarchy with instance counts
	ViewInstance View = "instance" // Individuals grouped under their asserted types
)

// Valid reports whether v is a known view
func (v View) Valid() bool {
	return v == ViewClass || v == ViewInstance
}

// ConceptRecord is one row of the concept edge list produced by a source.
// The same concept may appear in several records (one per parent, one per label).
type ConceptRecord struct {
	ID            string `json:"id" yaml:"id" toml:"id"`                                              // Concept IRI or opaque key
	Label         string `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`       // Display label
	Lang          string `json:"lang,omitempty" yaml:"lang,omitempty" toml:"lang,omitempty"`          // Label language tag
	InstanceCount int    `json:"instances,omitempty" yaml:"instances,omitempty" toml:"instances,omitempty"`
	ParentID      string `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"` // Empty when no parent declared
}

// PropertyCount is one entry of the property-count side table
type PropertyCount struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Count int    `json:"count" yaml:"count" toml:"count"`
}

// ConceptData is everything a source yields for one hierarchy
type ConceptData struct {
	View           View            `json:"view" yaml:"view" toml:"view"`
	Records        []ConceptRecord `json:"concepts" yaml:"concepts" toml:"concepts"`
	PropertyCounts []PropertyCount `json:"properties,omitempty" yaml:"properties,omitempty" toml:"properties,omitempty"`
}

// Label is a localized display string
type Label struct {
	Value string `json:"value"`
	Lang  string `json:"lang,omitempty"`
}
