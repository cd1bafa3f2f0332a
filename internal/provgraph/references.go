package provgraph

import (
	"fmt"

	"prov-converter/internal/common"
)

// Dangling is a reference attribute whose value names an instance that is
// not present in the graph.
type Dangling struct {
	Class       string
	ID          string
	Attribute   string
	TargetClass string
	Reference   string
}

// String returns a one-line description.
func (d Dangling) String() string {
	return fmt.Sprintf("%s %s: %s references %s %q, which does not exist",
		d.Class, d.ID, d.Attribute, d.TargetClass, d.Reference)
}

// DanglingReferences lists string-valued attributes named in refs whose
// value is not an instance id of the class refs maps them to. Classes and
// instances are visited in graph order, attributes in sorted order.
func DanglingReferences(g *Graph, refs map[string]string) []Dangling {
	var out []Dangling

	for _, class := range g.classes {
		for id, inst := range g.buckets[class].All() {
			for _, attr := range common.SortedKeys(inst) {
				target, ok := refs[attr]
				if !ok {
					continue
				}

				ref, ok := inst[attr].(string)
				if !ok {
					continue
				}

				if b, ok := g.buckets[target]; ok && b.Has(ref) {
					continue
				}

				out = append(out, Dangling{
					Class:       class,
					ID:          id,
					Attribute:   attr,
					TargetClass: target,
					Reference:   ref,
				})
			}
		}
	}

	return out
}
