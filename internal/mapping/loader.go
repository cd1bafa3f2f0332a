package mapping

import (
	_ "embed"
	"os"
	"slices"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// DefaultIDAttribute is excluded from merges when a merge rule lists no
// exclusions.
const DefaultIDAttribute = "voprov:id"

//go:embed default.yaml
var defaultYAML []byte

// LoadFile loads and parses a YAML mapping file from the given path.
func LoadFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mapping file %s", path)
	}

	mf, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "mapping file %s", path)
	}

	return mf, nil
}

// Parse parses YAML data into a MappingFile.
func Parse(data []byte) (*MappingFile, error) {
	var mf MappingFile

	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(err, "failed to parse mapping YAML")
	}

	// Apply defaults and normalize
	applyDefaults(&mf)

	return &mf, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(mf *MappingFile) {
	if mf.Version == "" {
		mf.Version = "1"
	}

	for name, rule := range mf.Classes {
		if rule.Target == "" {
			rule.Target = name
		}

		if rule.Merge != nil && len(rule.Merge.Exclude) == 0 {
			rule.Merge.Exclude = StringArray{DefaultIDAttribute}
		}

		mf.Classes[name] = rule
	}
}

// withDefaults returns a copy of mf with defaults applied. Class rules and
// merge rules are copied; attribute tables are shared.
func withDefaults(mf *MappingFile) *MappingFile {
	out := *mf
	out.Classes = make(map[string]ClassRule, len(mf.Classes))

	for name, rule := range mf.Classes {
		if rule.Merge != nil {
			m := *rule.Merge
			m.Exclude = slices.Clone(m.Exclude)
			rule.Merge = &m
		}

		out.Classes[name] = rule
	}

	applyDefaults(&out)

	return &out
}

// Marshal serializes a MappingFile to YAML.
func Marshal(mf *MappingFile) ([]byte, error) {
	return yaml.Marshal(mf)
}

// WriteFile writes a MappingFile to the given path.
func WriteFile(mf *MappingFile, path string) error {
	data, err := Marshal(mf)
	if err != nil {
		return errors.Wrap(err, "failed to marshal mapping")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write mapping file %s", path)
	}

	return nil
}
