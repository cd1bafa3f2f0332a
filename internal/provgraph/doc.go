// Package provgraph holds the in-memory form of a PROV-JSON document and
// its JSON codec.
//
// A document is a three-level mapping:
//
//	{
//	  "<class>": {
//	    "<instance id>": {
//	      "<qualified attribute>": <value>
//	    }
//	  }
//	}
//
// Values are opaque to this package. Numbers are kept as json.Number so a
// document can be decoded and re-encoded without changing their text.
//
// The decoder remembers the order in which classes and instances appear in
// the document. Converters iterate in that order, which keeps generated
// identifiers and collision outcomes stable for identical input. The encoder
// ignores that order and writes every object with sorted keys.
//
// The optional top-level "prefix" object holds namespace declarations. It is
// carried through untouched and is never treated as a class.
package provgraph
