package convert

import "fmt"

// Diagnostic codes emitted by the converter.
const (
	CodeUnmappedClass        = "unmapped_class"
	CodeDescriptionOmitted   = "description_omitted"
	CodeCollision            = "id_collision"
	CodeUnresolvedReference  = "unresolved_reference"
	CodeMissingEndpoint      = "missing_relation_endpoint"
	CodeAttributeOverwritten = "attribute_overwritten"
)

// ReferenceError reports a merge-eligible instance whose description
// instance cannot be found.
type ReferenceError struct {
	Class            string
	ID               string
	Attribute        string
	DescriptionClass string
	// Reference is empty when the attribute is missing or not a string.
	Reference string
}

func (e *ReferenceError) Error() string {
	if e.Reference == "" {
		return fmt.Sprintf("%s %q has no string %s to look up in %s",
			e.Class, e.ID, e.Attribute, e.DescriptionClass)
	}

	return fmt.Sprintf("%s %q: %s references %q, which is not in %s",
		e.Class, e.ID, e.Attribute, e.Reference, e.DescriptionClass)
}

// CollisionError reports two source classes writing the same instance id
// into one destination class.
type CollisionError struct {
	Class  string
	ID     string
	First  string
	Second string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s %q is written by both %s and %s", e.Class, e.ID, e.First, e.Second)
}
