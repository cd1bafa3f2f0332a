// Package convert turns a voprov provenance graph into a W3C PROV graph.
//
// Conversion is a single forward pass over the source classes in document
// order:
//  1. Resolve the class strategy from the mapping registry.
//  2. Rename every attribute through the destination class table, then
//     inject the strategy's annotations.
//  3. For merge strategies, look up the referenced description instance
//     and fold its attributes in (ReferenceResolver).
//  4. Store the instance in the destination bucket, applying the collision
//     policy when another source class already wrote the same id
//     (GraphAssembler).
//  5. For relation strategies, emit one generated relation with an id drawn
//     from the run's Counter (RelationSynthesizer).
//
// Classes unknown to the registry are copied unchanged with a warning.
// Description classes consumed by a merge are skipped with a note.
//
// A Converter holds only immutable configuration. Every Convert call owns
// its counter and output graph, so one Converter can serve concurrent calls.
package convert
