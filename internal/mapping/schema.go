package mapping

import (
	"github.com/cockroachdb/errors"
)

// MappingFile represents the root of a YAML mapping definition file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Classes holds per-source-class rules. Classes without an entry keep
	// their name.
	Classes map[string]ClassRule `yaml:"classes,omitempty"`

	// Attributes maps a destination class to its attribute renames
	// (source attribute name to destination attribute name).
	Attributes map[string]map[string]string `yaml:"attributes,omitempty"`

	// References maps a destination attribute holding an instance id to
	// the class that instance lives in.
	References map[string]string `yaml:"references,omitempty"`
}

// ClassRule defines how instances of one source class are converted.
type ClassRule struct {
	// Target is the destination class name. Defaults to the source name.
	Target string `yaml:"target,omitempty"`

	// Annotations are attributes set on every converted instance, after
	// attribute renaming. They overwrite same-named attributes.
	Annotations map[string]string `yaml:"annotations,omitempty"`

	// Merge folds a second, description-only class into this one.
	Merge *MergeRule `yaml:"merge,omitempty"`

	// Relation synthesizes one relation instance per merged instance.
	// Only valid together with Merge.
	Relation *RelationRule `yaml:"relation,omitempty"`
}

// MergeRule describes the lookup of a related description instance.
type MergeRule struct {
	// From is the description class. It is consumed by the merge and never
	// emitted on its own.
	From string `yaml:"from"`

	// Reference is the attribute holding the description instance id.
	Reference string `yaml:"reference"`

	// Exclude lists description attributes that are not copied.
	// Defaults to the description's own id attribute.
	Exclude StringArray `yaml:"exclude,omitempty"`
}

// Excludes reports whether attr is left out of the merge.
func (m *MergeRule) Excludes(attr string) bool {
	for _, e := range m.Exclude {
		if e == attr {
			return true
		}
	}

	return false
}

// RelationRule describes a relation instance synthesized for every merged
// instance.
type RelationRule struct {
	// Class is the destination relation class (e.g. "used").
	Class string `yaml:"class"`

	// Prefix starts every generated id; a run-wide counter follows it.
	Prefix string `yaml:"prefix"`

	// Endpoint is the attribute of the merged instance naming the other end
	// of the relation, written to the relation as EndpointAs.
	Endpoint   string `yaml:"endpoint,omitempty"`
	EndpointAs string `yaml:"endpoint_as,omitempty"`

	// SelfAs is the relation attribute that receives the merged instance id.
	SelfAs string `yaml:"self_as"`

	// Attributes are fixed values set on every synthesized relation.
	Attributes map[string]string `yaml:"attributes,omitempty"`
}

// StringArray is a string slice that can be unmarshaled from a single string or a list.
type StringArray []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringArray) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err == nil {
		*s = multi
		return nil
	}

	return errors.New("expected string or list of strings")
}
