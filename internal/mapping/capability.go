package mapping

import "strings"

//go:generate go tool stringer -type=Capability -trimprefix=Capability -output=capability_string.go

// Capability is one thing a class strategy does during conversion.
type Capability int

const (
	// CapabilityRename moves instances to a differently named class.
	CapabilityRename Capability = iota
	// CapabilityAttributeRename renames attributes through the destination table.
	CapabilityAttributeRename
	// CapabilityMerge folds a description instance into each instance.
	CapabilityMerge
	// CapabilitySynthesizeRelation emits a generated relation per instance.
	CapabilitySynthesizeRelation

	capabilityCount = int(iota)
)

// CapabilitySet is a set of capabilities.
type CapabilitySet uint8

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<c) != 0
}

func (s CapabilitySet) with(c Capability) CapabilitySet {
	return s | 1<<c
}

// String joins the capability names with "|", or returns "none".
func (s CapabilitySet) String() string {
	var names []string

	for c := range Capability(capabilityCount) {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}

	if len(names) == 0 {
		return "none"
	}

	return strings.Join(names, "|")
}
