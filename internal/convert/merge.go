package convert

import (
	"fmt"

	"prov-converter/internal/common"
	"prov-converter/internal/mapping"
	"prov-converter/internal/provgraph"
)

// fold copies the attributes of the description instance referenced by inst
// into out, renamed through the table of s.Target. The rule's excluded
// attributes (the description's own id) are left out.
func (r *run) fold(s *mapping.ClassStrategy, id string, inst, out provgraph.Instance) error {
	m := s.Merge

	desc, err := r.lookupDescription(s, id, inst)
	if err != nil {
		return r.unresolved(err)
	}

	for _, attr := range common.SortedKeys(desc) {
		if m.Excludes(attr) {
			continue
		}

		name := r.reg.ResolveAttribute(s.Target, attr)
		if _, exists := out[name]; exists {
			r.diags.AddWarning(CodeAttributeOverwritten,
				fmt.Sprintf("%s from %s overwrites an attribute of the instance", name, m.From),
				s.Source, id)
		}

		out[name] = desc[attr]
	}

	r.stats.MergedInstances++

	return nil
}

func (r *run) lookupDescription(s *mapping.ClassStrategy, id string, inst provgraph.Instance) (provgraph.Instance, *ReferenceError) {
	m := s.Merge
	refErr := &ReferenceError{
		Class:            s.Source,
		ID:               id,
		Attribute:        m.Reference,
		DescriptionClass: m.From,
	}

	ref, ok := inst[m.Reference].(string)
	if !ok {
		return nil, refErr
	}

	refErr.Reference = ref

	descs, ok := r.src.Bucket(m.From)
	if !ok {
		return nil, refErr
	}

	desc, ok := descs.Get(ref)
	if !ok {
		return nil, refErr
	}

	return desc, nil
}

// unresolved applies the missing-reference policy.
func (r *run) unresolved(err *ReferenceError) error {
	if r.opts.MissingReference != MissingReferenceSkip {
		return err
	}

	r.diags.AddWarning(CodeUnresolvedReference, err.Error()+"; converting it without the description", err.Class, err.ID)
	r.stats.UnresolvedReferences++

	return nil
}
