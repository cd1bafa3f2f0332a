package mapping

import (
	"maps"
	"sync"

	"github.com/cockroachdb/errors"

	"prov-converter/internal/common"
)

// Annotation is an attribute assignment injected into every instance of a
// source class.
type Annotation struct {
	Name  string
	Value string
}

// ClassStrategy is the resolved conversion behaviour of one source class.
type ClassStrategy struct {
	Source string
	Target string
	// Annotations in name order.
	Annotations  []Annotation
	Merge        *MergeRule
	Relation     *RelationRule
	Capabilities CapabilitySet
}

// Registry is the immutable, validated form of a MappingFile. It is safe
// for concurrent use.
type Registry struct {
	file       *MappingFile
	strategies map[string]*ClassStrategy
	attributes map[string]map[string]string
	references map[string]string
	consumedBy map[string]string
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	mf, err := Parse(defaultYAML)
	if err != nil {
		panic(errors.Wrap(err, "built-in mapping table"))
	}

	r, err := NewRegistry(mf)
	if err != nil {
		panic(errors.Wrap(err, "built-in mapping table"))
	}

	return r
})

// Default returns the registry built from the embedded voprov to prov table.
func Default() *Registry {
	return defaultRegistry()
}

// NewRegistry fills in the defaults Parse would apply, validates the result
// and builds a registry from it. mf itself is not modified.
func NewRegistry(mf *MappingFile) (*Registry, error) {
	if mf != nil {
		mf = withDefaults(mf)
	}

	if diags := Validate(mf); diags.HasErrors() {
		return nil, errors.Wrap(diags.Error(), "invalid mapping table")
	}

	r := &Registry{
		file:       mf,
		strategies: make(map[string]*ClassStrategy, len(mf.Classes)),
		attributes: mf.Attributes,
		references: mf.References,
		consumedBy: make(map[string]string),
	}

	for name, rule := range mf.Classes {
		s := &ClassStrategy{
			Source:   name,
			Target:   rule.Target,
			Merge:    rule.Merge,
			Relation: rule.Relation,
		}

		for _, key := range common.SortedKeys(rule.Annotations) {
			s.Annotations = append(s.Annotations, Annotation{Name: key, Value: rule.Annotations[key]})
		}

		s.Capabilities = r.capabilities(s)
		r.strategies[name] = s

		if rule.Merge != nil {
			r.consumedBy[rule.Merge.From] = name
		}
	}

	return r, nil
}

func (r *Registry) capabilities(s *ClassStrategy) CapabilitySet {
	var caps CapabilitySet

	if s.Target != s.Source {
		caps = caps.with(CapabilityRename)
	}

	if _, ok := r.attributes[s.Target]; ok {
		caps = caps.with(CapabilityAttributeRename)
	}

	if s.Merge != nil {
		caps = caps.with(CapabilityMerge)
	}

	if s.Relation != nil {
		caps = caps.with(CapabilitySynthesizeRelation)
	}

	return caps
}

// Strategy returns the strategy for a source class. Classes without a rule
// get an identity strategy that only renames attributes, if their own name
// has an attribute table.
func (r *Registry) Strategy(src string) *ClassStrategy {
	if s, ok := r.strategies[src]; ok {
		return s
	}

	s := &ClassStrategy{Source: src, Target: src}
	s.Capabilities = r.capabilities(s)

	return s
}

// ResolveClass returns the destination class of src and the annotations
// to inject into its instances. Unknown classes map to themselves.
func (r *Registry) ResolveClass(src string) (string, []Annotation) {
	s := r.Strategy(src)
	return s.Target, s.Annotations
}

// ResolveAttribute returns the destination name of attr in the destination
// class dst. Names missing from the table are returned unchanged.
func (r *Registry) ResolveAttribute(dst, attr string) string {
	if name, ok := r.attributes[dst][attr]; ok {
		return name
	}

	return attr
}

// Known reports whether src has a class rule or an attribute table under
// its own name.
func (r *Registry) Known(src string) bool {
	if _, ok := r.strategies[src]; ok {
		return true
	}

	_, ok := r.attributes[src]

	return ok
}

// ConsumedBy reports whether src is a description class folded into
// another class, and which one.
func (r *Registry) ConsumedBy(src string) (string, bool) {
	c, ok := r.consumedBy[src]
	return c, ok
}

// ClassNames returns every source class name the registry knows about,
// sorted.
func (r *Registry) ClassNames() []string {
	names := make(map[string]struct{}, len(r.strategies)+len(r.attributes)+len(r.consumedBy))
	for n := range r.strategies {
		names[n] = struct{}{}
	}

	for n := range r.attributes {
		names[n] = struct{}{}
	}

	for n := range r.consumedBy {
		names[n] = struct{}{}
	}

	return common.SortedKeys(names)
}

// References returns a copy of the reference attribute table.
func (r *Registry) References() map[string]string {
	return maps.Clone(r.references)
}

// File returns the mapping file the registry was built from.
func (r *Registry) File() *MappingFile {
	return r.file
}
