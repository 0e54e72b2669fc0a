package score

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/ppiankov/ontolens/internal/model"
	"github.com/ppiankov/ontolens/internal/taxonomy"
)

// CountWords counts the words of a compound identifier. Words are separated
// by '_', '-', '.', whitespace, lower-to-upper case transitions, digit-to-upper
// transitions and the end of an acronym ("HTTPServer" has two words).
func CountWords(name string) int {
	words := 0
	for _, tok := range strings.FieldsFunc(name, isSeparator) {
		words++
		runes := []rune(tok)
		for i := 1; i < len(runes); i++ {
			if !unicode.IsUpper(runes[i]) {
				continue
			}
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev), unicode.IsDigit(prev):
				words++
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				words++
			}
		}
	}
	return words
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
}

// NameSimplicity scores a short name in [0,1]: a single word scores 1 and
// every further word costs penalty.
func NameSimplicity(name string, penalty float64) float64 {
	m := CountWords(name)
	return math.Min(1, math.Max(0, 1-penalty*float64(m-1)))
}

// shortName is the local name of the id, or the label when the id has none
func shortName(n *taxonomy.Node) string {
	if name := taxonomy.LocalName(n.ID); name != "" {
		return name
	}
	return n.Label()
}

// BasicLevelVotes counts, for every node, the root-to-leaf paths on which it
// is an interior node. Counting paths root->v and v->leaf and multiplying is
// equivalent to enumerating every path.
func BasicLevelVotes(tree *taxonomy.Tree) []float64 {
	order := tree.Order()
	up := make([]float64, tree.Size())
	down := make([]float64, tree.Size())

	for _, i := range order {
		n := tree.At(i)
		if n.IsRoot() {
			up[i] = 1
			continue
		}
		for _, p := range n.Parents() {
			up[i] += up[p]
		}
	}
	for k := len(order) - 1; k >= 0; k-- {
		i := order[k]
		n := tree.At(i)
		if n.IsLeaf() {
			down[i] = 1
			continue
		}
		for _, c := range n.Children() {
			down[i] += down[c]
		}
	}

	votes := make([]float64, tree.Size())
	for i, n := range tree.Nodes() {
		if n.IsRoot() || n.IsLeaf() {
			continue
		}
		votes[i] = math.Min(up[i]*down[i], math.MaxFloat64)
	}
	return votes
}

// scoreCategoryValue fills BasicLevel, NameSimplicity and
// NaturalCategoryValue for every domain concept
func (s *Scorer) scoreCategoryValue(tree *taxonomy.Tree, sheet *Sheet) []model.Signal {
	var signals []model.Signal

	votes := BasicLevelVotes(tree)
	maxVotes := 0.0
	for _, n := range tree.Concepts() {
		maxVotes = math.Max(maxVotes, votes[n.Index()])
	}
	if maxVotes == 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalZeroGuard,
			Severity:    model.SeverityInfo,
			Description: "No concept is interior to a root-to-leaf path; basic level is zero",
			Data:        map[string]interface{}{"term": "basic_level", "max_votes": 0},
		})
	}

	simple := 0
	for _, n := range tree.Concepts() {
		e := sheet.At(n.Index())
		if maxVotes > 0 {
			e.BasicLevel = votes[n.Index()] / maxVotes
		}
		e.NameSimplicity = NameSimplicity(shortName(n), s.cfg.NameSimplicityPenalty)
		if e.NameSimplicity == 1 {
			simple++
		}
		e.NaturalCategoryValue = s.cfg.BasicLevelWeight*e.BasicLevel + s.cfg.NameSimplicityWeight*e.NameSimplicity
	}

	signals = append(signals, model.Signal{
		Type:        model.SignalCategoryValue,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("Basic level over %d concepts, %d single-word names", tree.Len(), simple),
		Data: map[string]interface{}{
			"max_votes":        maxVotes,
			"single_word":      simple,
			"name_penalty":     s.cfg.NameSimplicityPenalty,
			"formula":          fmt.Sprintf("%.2f*basic_level + %.2f*name_simplicity", s.cfg.BasicLevelWeight, s.cfg.NameSimplicityWeight),
			"simplicity_rule":  "max(0, 1 - penalty*(words-1))",
			"basic_level_rule": "paths(root->c) * paths(c->leaf) / max",
		},
	})

	return signals
}
