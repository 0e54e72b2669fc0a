package source

import "github.com/ppiankov/ontolens/internal/model"

const prefixes = `PREFIX owl: <http://www.w3.org/2002/07/owl#>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX rdfs: <http://www.w3.org/2000/01/rdf-schema#>
`

// classHierarchyQuery lists every named class with its labels, direct
// superclasses and number of direct instances
const classHierarchyQuery = prefixes + `
SELECT ?concept ?label ?parent (COUNT(DISTINCT ?instance) AS ?instances)
WHERE {
  { ?concept a owl:Class } UNION { ?concept a rdfs:Class }
  FILTER(isIRI(?concept))
  OPTIONAL { ?concept rdfs:subClassOf ?parent . FILTER(isIRI(?parent) && ?parent != ?concept) }
  OPTIONAL { ?concept rdfs:label ?label }
  OPTIONAL { ?instance a ?concept }
}
GROUP BY ?concept ?label ?parent
`

// instanceHierarchyQuery lists the categories individuals belong to, with
// their superclasses, counting every individual typed by the category or one
// of its subclasses
const instanceHierarchyQuery = prefixes + `
SELECT ?concept ?label ?parent (COUNT(DISTINCT ?instance) AS ?instances)
WHERE {
  ?instance a ?type .
  ?type rdfs:subClassOf* ?concept .
  FILTER(isIRI(?concept))
  FILTER(?concept NOT IN (owl:Class, rdfs:Class, owl:NamedIndividual, rdf:Property, owl:Thing, rdfs:Resource))
  OPTIONAL { ?concept rdfs:subClassOf ?parent . FILTER(isIRI(?parent) && ?parent != ?concept) }
  OPTIONAL { ?concept rdfs:label ?label }
}
GROUP BY ?concept ?label ?parent
`

// propertyCountQuery counts the properties declaring each concept as domain
const propertyCountQuery = prefixes + `
SELECT ?concept (COUNT(DISTINCT ?property) AS ?properties)
WHERE {
  ?property rdfs:domain ?concept .
  FILTER(isIRI(?concept))
}
GROUP BY ?concept
`

// HierarchyQuery returns the SELECT query materialising the view
func HierarchyQuery(view model.View) string {
	if view == model.ViewInstance {
		return instanceHierarchyQuery
	}
	return classHierarchyQuery
}

// PropertyCountQuery returns the property-count side-table query
func PropertyCountQuery() string {
	return propertyCountQuery
}

// classCountQuery counts declared classes; used to probe an endpoint
const classCountQuery = prefixes + `
SELECT (COUNT(DISTINCT ?concept) AS ?classes)
WHERE {
  { ?concept a owl:Class } UNION { ?concept a rdfs:Class }
  FILTER(isIRI(?concept))
}
`

// ClassCountQuery returns the endpoint probe query
func ClassCountQuery() string {
	return classCountQuery
}
