package convert

import (
	"strconv"

	"prov-converter/internal/common"
	"prov-converter/internal/mapping"
	"prov-converter/internal/provgraph"
)

// Counter numbers synthesized relations. One counter serves a whole
// conversion run and is never reset between classes.
type Counter struct {
	next int
}

// Next returns the current value and advances the counter.
func (c *Counter) Next() int {
	n := c.next
	c.next++

	return n
}

// Value returns how many numbers have been handed out.
func (c *Counter) Value() int {
	return c.next
}

// SynthesizeRelation builds the relation generated for the merged instance
// id. It draws exactly one number from counter. The returned bool is false
// when the rule names an endpoint attribute that inst lacks; the relation
// is still built, without that attribute.
func SynthesizeRelation(counter *Counter, rule *mapping.RelationRule, id string, inst provgraph.Instance) (string, provgraph.Instance, bool) {
	relID := rule.Prefix + strconv.Itoa(counter.Next())

	rel := make(provgraph.Instance, len(rule.Attributes)+2)
	for _, k := range common.SortedKeys(rule.Attributes) {
		rel[k] = rule.Attributes[k]
	}

	complete := true

	if rule.Endpoint != "" {
		if v, ok := inst[rule.Endpoint]; ok {
			rel[rule.EndpointAs] = v
		} else {
			complete = false
		}
	}

	rel[rule.SelfAs] = id

	return relID, rel, complete
}
