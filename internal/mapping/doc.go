// Package mapping provides the YAML mapping tables that drive the
// voprov to prov conversion, their validation, and the Registry the
// converter queries.
//
// A built-in table reproducing the IVOA ProvenanceDM to W3C PROV-DM mapping
// is embedded in the binary; a custom table can be loaded from a file.
//
// # Schema Overview
//
//	version: "1"
//	classes:
//	  collection:                   # source class
//	    target: entity              # destination class (default: same name)
//	    annotations:                # set on every instance after renaming
//	      prov:type: prov:collection
//	  parameter:
//	    target: entity
//	    merge:                      # fold parameterDescription into parameter
//	      from: parameterDescription
//	      reference: voprov:description
//	      exclude: voprov:id        # string or list (default: voprov:id)
//	    relation:                   # one generated "used" per parameter
//	      class: used
//	      prefix: "_:p"             # ids are _:p0, _:p1, ...
//	      endpoint: voprov:activity
//	      endpoint_as: prov:activity
//	      self_as: prov:entity
//	      attributes:
//	        prov:role: voprov:parameter
//	attributes:                     # keyed by destination class
//	  entity:
//	    voprov:id: prov:id
//	    voprov:name: prov:label
//	references:                     # id-valued attributes, for checks
//	  prov:entity: entity
//
// # Resolution
//
// Attribute renames are looked up in the table of the destination class, so
// every source class folded into "entity" shares the entity table. Names
// missing from a table pass through unchanged. Values are never touched.
//
// A source class is known when it has a class rule or an attribute table
// under its own name. The description class of a merge rule is never
// emitted; the converter reports it as intentionally omitted.
//
// # Strategies
//
// Each source class resolves to a ClassStrategy whose CapabilitySet tells
// the converter which steps apply: Rename, AttributeRename, Merge and
// SynthesizeRelation.
package mapping
