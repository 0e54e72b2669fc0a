package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ppiankov/ontolens/internal/model"
)

// Result variables understood by BindingsToData
const (
	VarConcept    = "concept"
	VarLabel      = "label"
	VarLang       = "lang"
	VarInstances  = "instances"
	VarParent     = "parent"
	VarProperties = "properties"
)

// BindingsToData maps one or more result sets onto concept records and
// property counts.
//
// A solution without a bound concept, or whose concept is a blank node, is
// skipped. Blank-node parents (anonymous restrictions) are dropped. A
// solution that binds only concept and properties contributes a property
// count and no record.
func BindingsToData(view model.View, sets ...*Results) (*model.ConceptData, error) {
	data := &model.ConceptData{View: view}
	props := make(map[string]int)
	var propOrder []string

	for _, set := range sets {
		if set == nil {
			continue
		}
		for i, b := range set.Results.Bindings {
			concept, ok := b[VarConcept]
			if !ok || concept.IsBlank() || strings.TrimSpace(concept.Value) == "" {
				continue
			}

			if p, ok := b[VarProperties]; ok {
				count, err := parseCount(p)
				if err != nil {
					return nil, fmt.Errorf("%w: solution %d: %s: %v", ErrMalformedResults, i, VarProperties, err)
				}
				if _, seen := props[concept.Value]; !seen {
					propOrder = append(propOrder, concept.Value)
				}
				if count > props[concept.Value] {
					props[concept.Value] = count
				}
				if !bindsAny(b, VarLabel, VarInstances, VarParent) {
					continue
				}
			}

			rec := model.ConceptRecord{ID: concept.Value}
			if label, ok := b[VarLabel]; ok {
				rec.Label = label.Value
				rec.Lang = label.Lang
			}
			if lang, ok := b[VarLang]; ok && lang.Value != "" {
				rec.Lang = lang.Value
			}
			if inst, ok := b[VarInstances]; ok {
				count, err := parseCount(inst)
				if err != nil {
					return nil, fmt.Errorf("%w: solution %d: %s: %v", ErrMalformedResults, i, VarInstances, err)
				}
				rec.InstanceCount = count
			}
			if parent, ok := b[VarParent]; ok && !parent.IsBlank() {
				rec.ParentID = parent.Value
			}
			data.Records = append(data.Records, rec)
		}
	}

	for _, id := range propOrder {
		data.PropertyCounts = append(data.PropertyCounts, model.PropertyCount{ID: id, Count: props[id]})
	}
	return data, nil
}

func bindsAny(b Binding, vars ...string) bool {
	for _, v := range vars {
		if _, ok := b[v]; ok {
			return true
		}
	}
	return false
}

// parseCount reads an aggregate literal. Some endpoints type COUNT results as
// xsd:decimal, so a whole-valued decimal is accepted.
func parseCount(t Term) (int, error) {
	v := strings.TrimSpace(t.Value)
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, fmt.Errorf("not a count: %q", t.Value)
	}
	return int(f), nil
}
