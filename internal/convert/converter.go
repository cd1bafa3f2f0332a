package convert

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"prov-converter/internal/common"
	"prov-converter/internal/diagnostic"
	"prov-converter/internal/mapping"
	"prov-converter/internal/match"
	"prov-converter/internal/provgraph"
)

// maxSuggestions bounds the "did you mean" list of an unmapped class.
const maxSuggestions = 3

// Stats summarizes one conversion.
type Stats struct {
	SourceClasses        int
	SourceInstances      int
	OutputClasses        int
	OutputInstances      int
	MergedInstances      int
	SynthesizedRelations int
	UnresolvedReferences int
	Collisions           int
	UnmappedClasses      int
	OmittedClasses       int
}

// Result is the outcome of a conversion. Graph is nil when Convert failed.
type Result struct {
	Graph       *provgraph.Graph
	Diagnostics *diagnostic.Diagnostics
	Stats       Stats
}

// Converter converts voprov graphs using a mapping registry.
type Converter struct {
	reg  *mapping.Registry
	opts Options
}

// New creates a Converter. A nil registry selects mapping.Default().
func New(reg *mapping.Registry, opts Options) *Converter {
	if reg == nil {
		reg = mapping.Default()
	}

	return &Converter{reg: reg, opts: opts.withDefaults()}
}

// run is the state of one Convert call.
type run struct {
	reg     *mapping.Registry
	opts    Options
	log     *zap.Logger
	src     *provgraph.Graph
	asm     *assembler
	diags   *diagnostic.Diagnostics
	counter *Counter
	stats   Stats
}

// Convert produces the destination graph for src. src is not modified.
// The first fatal problem (an unresolved reference under the fail policy,
// a collision under the reject policy) aborts the conversion. The Result is
// returned in that case too, with a nil Graph and the diagnostics gathered
// up to the failure.
func (c *Converter) Convert(src *provgraph.Graph) (*Result, error) {
	diags := &diagnostic.Diagnostics{}
	r := &run{
		reg:     c.reg,
		opts:    c.opts,
		log:     c.opts.Logger,
		src:     src,
		asm:     newAssembler(c.opts.Collision, diags),
		diags:   diags,
		counter: &Counter{},
	}

	if src.Prefix != nil {
		r.asm.graph.Prefix = src.Prefix
	}

	for _, class := range src.Classes() {
		if err := r.convertClass(class); err != nil {
			return &Result{Diagnostics: diags, Stats: r.stats}, errors.Wrapf(err, "converting class %s", class)
		}
	}

	r.stats.SourceClasses = src.Len()
	r.stats.SourceInstances = src.InstanceCount()
	r.stats.OutputClasses = r.asm.graph.Len()
	r.stats.OutputInstances = r.asm.graph.InstanceCount()
	r.stats.SynthesizedRelations = r.counter.Value()
	r.stats.Collisions = r.asm.collisions

	return &Result{Graph: r.asm.graph, Diagnostics: diags, Stats: r.stats}, nil
}

func (r *run) convertClass(class string) error {
	bucket, _ := r.src.Bucket(class)

	if consumer, ok := r.reg.ConsumedBy(class); ok {
		r.diags.AddInfo(CodeDescriptionOmitted,
			fmt.Sprintf("class %s is merged into %s and not written on its own", class, consumer),
			class, "")
		r.stats.OmittedClasses++

		return nil
	}

	if !r.reg.Known(class) {
		return r.copyUnmapped(class, bucket)
	}

	target, annotations := r.reg.ResolveClass(class)
	s := r.reg.Strategy(class)
	r.log.Debug("converting class",
		zap.String("class", class),
		zap.String("target", target),
		zap.Stringer("capabilities", s.Capabilities),
		zap.Int("instances", bucket.Len()))

	r.asm.open(target)

	for id, inst := range bucket.All() {
		out := r.mapInstance(class, target, annotations, id, inst)

		if s.Capabilities.Has(mapping.CapabilityMerge) {
			if err := r.fold(s, id, inst, out); err != nil {
				return err
			}
		}

		if err := r.asm.put(target, id, class, out); err != nil {
			return err
		}

		if s.Capabilities.Has(mapping.CapabilitySynthesizeRelation) {
			if err := r.synthesize(s, id, inst); err != nil {
				return err
			}
		}
	}

	return nil
}

// copyUnmapped copies a class the registry does not know, instances and
// attributes unchanged.
func (r *run) copyUnmapped(class string, bucket *provgraph.Bucket) error {
	r.diags.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticWarning,
		Code:        CodeUnmappedClass,
		Message:     fmt.Sprintf("no mapping found for class %s, copying it unchanged", class),
		Class:       class,
		Suggestions: match.Suggest(class, r.reg.ClassNames(), maxSuggestions),
	})
	r.stats.UnmappedClasses++

	r.asm.open(class)

	for id, inst := range bucket.All() {
		if err := r.asm.put(class, id, class, inst.Clone()); err != nil {
			return err
		}
	}

	return nil
}

// mapInstance renames the attributes of inst through the table of target
// and injects annotations.
func (r *run) mapInstance(
	class, target string,
	annotations []mapping.Annotation,
	id string,
	inst provgraph.Instance,
) provgraph.Instance {
	out := make(provgraph.Instance, len(inst)+len(annotations))

	for _, attr := range common.SortedKeys(inst) {
		name := r.reg.ResolveAttribute(target, attr)
		if _, exists := out[name]; exists {
			r.diags.AddWarning(CodeAttributeOverwritten,
				fmt.Sprintf("%s and another attribute both map to %s", attr, name),
				class, id)
		}

		out[name] = inst[attr]
	}

	for _, a := range annotations {
		out[a.Name] = a.Value
	}

	return out
}

func (r *run) synthesize(s *mapping.ClassStrategy, id string, inst provgraph.Instance) error {
	rule := s.Relation

	relID, rel, complete := SynthesizeRelation(r.counter, rule, id, inst)
	if !complete {
		r.diags.AddWarning(CodeMissingEndpoint,
			fmt.Sprintf("no %s to link from %s %s, relation written without %s", rule.Endpoint, rule.Class, relID, rule.EndpointAs),
			s.Source, id)
	}

	return r.asm.put(rule.Class, relID, "relations synthesized from "+s.Source, rel)
}
