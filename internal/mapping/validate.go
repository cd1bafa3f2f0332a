package mapping

import (
	"fmt"
	"strings"

	"prov-converter/internal/common"
	"prov-converter/internal/diagnostic"
	"prov-converter/internal/provgraph"
)

type ownedPrefix struct {
	prefix string
	owner  string
}

// Validate checks a mapping definition for rules the converter cannot
// execute. It is structural only: nothing is checked against a document.
func Validate(mf *MappingFile) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if mf == nil {
		res.AddError("mapping_is_nil", "mapping file is nil", "", "")
		return res
	}

	consumers := map[string]string{}
	relationPrefixes := map[string][]ownedPrefix{}

	for _, name := range common.SortedKeys(mf.Classes) {
		rule := mf.Classes[name]

		if rule.Target == "" {
			res.AddError("missing_target", "class rule must name a target class", name, "")
		}

		if rule.Target == provgraph.PrefixKey {
			res.AddError("reserved_class_name",
				fmt.Sprintf("target %q is the namespace block and cannot hold instances", provgraph.PrefixKey), name, rule.Target)
		}

		if rule.Merge != nil {
			validateMerge(res, mf, name, rule.Merge, consumers)
		}

		if rule.Relation != nil {
			validateRelation(res, name, &rule, relationPrefixes)
		}
	}

	for _, class := range common.SortedKeys(mf.Attributes) {
		table := mf.Attributes[class]
		for _, src := range common.SortedKeys(table) {
			if table[src] == "" {
				res.AddError("empty_attribute_target",
					fmt.Sprintf("attribute %q maps to an empty name", src), class, src)
			}
		}
	}

	for _, attr := range common.SortedKeys(mf.References) {
		if mf.References[attr] == "" {
			res.AddError("empty_reference_class",
				fmt.Sprintf("reference attribute %q names no class", attr), "", attr)
		}
	}

	return res
}

func validateMerge(
	res *diagnostic.Diagnostics,
	mf *MappingFile,
	name string,
	m *MergeRule,
	consumers map[string]string,
) {
	if m.From == "" {
		res.AddError("merge_missing_from", "merge must name the description class", name, "")
		return
	}

	if m.Reference == "" {
		res.AddError("merge_missing_reference", "merge must name the reference attribute", name, "")
	}

	if m.From == name {
		res.AddError("merge_self", "class cannot merge itself", name, m.From)
		return
	}

	if _, ok := mf.Classes[m.From]; ok {
		res.AddError("consumed_class_has_rule",
			fmt.Sprintf("description class %q is consumed by the merge and cannot have its own rule", m.From),
			name, m.From)
	}

	if other, ok := consumers[m.From]; ok {
		res.AddError("duplicate_consumer",
			fmt.Sprintf("description class %q is already merged into %q", m.From, other),
			name, m.From)

		return
	}

	consumers[m.From] = name
}

func validateRelation(
	res *diagnostic.Diagnostics,
	name string,
	rule *ClassRule,
	relationPrefixes map[string][]ownedPrefix,
) {
	r := rule.Relation

	if rule.Merge == nil {
		res.AddError("relation_without_merge", "relation synthesis requires a merge rule", name, "")
	}

	if r.Class == "" {
		res.AddError("relation_missing_class", "relation must name its class", name, "")
	}

	if r.Class == provgraph.PrefixKey {
		res.AddError("reserved_class_name",
			fmt.Sprintf("relation class %q is the namespace block and cannot hold instances", provgraph.PrefixKey), name, r.Class)
	}

	if r.Prefix == "" {
		res.AddError("relation_missing_prefix", "relation must define an id prefix", name, "")
	}

	if r.SelfAs == "" {
		res.AddError("relation_missing_self", "relation must name the attribute receiving the instance id", name, "")
	}

	if r.Endpoint != "" && r.EndpointAs == "" {
		res.AddError("relation_missing_endpoint_as",
			fmt.Sprintf("endpoint %q has no destination attribute", r.Endpoint), name, r.Endpoint)
	}

	if r.Class == "" || r.Prefix == "" {
		return
	}

	// Ids share one run-wide counter, so equal prefixes never collide, but
	// "_:p" and "_:p1" can both yield "_:p10".
	for _, seen := range relationPrefixes[r.Class] {
		if seen.prefix != r.Prefix && (strings.HasPrefix(seen.prefix, r.Prefix) || strings.HasPrefix(r.Prefix, seen.prefix)) {
			res.AddError("ambiguous_relation_prefix",
				fmt.Sprintf("relation prefix %q in class %q overlaps prefix %q of %q", r.Prefix, r.Class, seen.prefix, seen.owner),
				name, r.Prefix)
		}
	}

	relationPrefixes[r.Class] = append(relationPrefixes[r.Class], ownedPrefix{prefix: r.Prefix, owner: name})
}
