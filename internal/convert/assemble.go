package convert

import (
	"fmt"

	"prov-converter/internal/diagnostic"
	"prov-converter/internal/provgraph"
)

// assembler accumulates destination buckets and tracks which source class
// wrote each instance id, so ids shared across source classes feeding one
// destination class can be detected.
type assembler struct {
	graph      *provgraph.Graph
	policy     CollisionPolicy
	diags      *diagnostic.Diagnostics
	owners     map[string]map[string]string
	collisions int
}

func newAssembler(policy CollisionPolicy, diags *diagnostic.Diagnostics) *assembler {
	return &assembler{
		graph:  provgraph.New(),
		policy: policy,
		diags:  diags,
		owners: make(map[string]map[string]string),
	}
}

// open returns the destination bucket for class, creating it if needed.
func (a *assembler) open(class string) *provgraph.Bucket {
	if _, ok := a.owners[class]; !ok {
		a.owners[class] = make(map[string]string)
	}

	return a.graph.Ensure(class)
}

// put stores inst as class/id on behalf of source.
func (a *assembler) put(class, id, source string, inst provgraph.Instance) error {
	b := a.open(class)

	owner, exists := a.owners[class][id]
	if exists && owner != source {
		a.collisions++

		switch a.policy {
		case CollisionReject:
			return &CollisionError{Class: class, ID: id, First: owner, Second: source}
		case CollisionKeepFirst:
			a.diags.AddWarning(CodeCollision,
				fmt.Sprintf("instance id already written by %s, keeping it and dropping the one from %s", owner, source),
				class, id)

			return nil
		default:
			a.diags.AddWarning(CodeCollision,
				fmt.Sprintf("instance id already written by %s, overwriting it with the one from %s", owner, source),
				class, id)
		}
	}

	b.Put(id, inst)
	a.owners[class][id] = source

	return nil
}
