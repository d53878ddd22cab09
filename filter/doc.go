// Package filter models structured boolean filter trees and their wire
// encodings.
//
// A filter is an ordered sequence of statements joined by AND/OR. Each
// statement holds either a comparison clause or a nested sub-filter, so
// arbitrary AND-over-OR grouping can be expressed. Clauses compare a subject
// against an object through one of twelve operators; either side may be a
// field reference (Target) or a literal scalar, and the like, between and in
// operator families carry Pattern, Range and List objects respectively.
//
// This package never evaluates or converts filters. It is the input model for
// the esfilter converter and for any other consumer that walks filter trees.
//
// # Building Trees
//
// Trees are built fluently and are well-formed by construction:
//
//	f := filter.Where(filter.Eq(filter.MustParseTarget("/foo"), filter.Number(42))).
//	    And(filter.Gt(filter.MustParseTarget("/bar"), filter.Number(0))).
//	    Or(filter.Like(filter.MustParseTarget("/name"), filter.NewPattern("*smith")))
//
// A *Filter passed to Where, And or Or becomes a nested group, binding its
// statements together against the surrounding conjunctions.
//
// # Wire Forms
//
// Two encodings round-trip trees between services:
//
//   - JSON, via Parse and the json.Marshaler and json.Unmarshaler
//     implementations on Filter. Statements encode as
//     {"conjunction":"and","clause":{...}} objects; operands are single-key
//     tagged objects such as {"target":{"path":["foo",0]}} or {"literal":42}.
//   - A compact binary form, via EncodeBinary and DecodeBinary: the same
//     tagged structure encoded as MessagePack and compressed with zstd.
//
// Both decoders validate operators, conjunctions and operand shapes, and both
// normalize numeric literals to float64.
package filter
