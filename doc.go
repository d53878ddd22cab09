// Package esfilter compiles structured boolean filter trees into
// Elasticsearch bool queries.
//
// The esfilter package turns the filter model into search requests by:
//   - Lowering AND/OR statement sequences to nested bool queries with
//     must/should grouping
//   - Emitting native term, terms, range, regexp and exists fragments for
//     field-against-value comparisons
//   - Falling back to Painless script fragments when a clause compares two
//     fields or two values
//   - Enforcing a field governance policy (allow, deny and require lists)
//   - Reporting every field a filter references, in first-reference order
//
// # Quick Start
//
// Compile a filter in a few lines:
//
//	package main
//
//	import (
//	    "encoding/json"
//	    "fmt"
//	    "log"
//
//	    "github.com/hugr-lab/esfilter"
//	    "github.com/hugr-lab/esfilter/filter"
//	)
//
//	func main() {
//	    f := filter.Where(filter.Eq(filter.MustParseTarget("/foo"), filter.Number(42))).
//	        And(filter.Gt(filter.MustParseTarget("/bar"), filter.Number(0)))
//
//	    result, err := esfilter.Convert(f)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    body, _ := json.Marshal(result.Value)
//	    fmt.Println(string(body))       // the query document
//	    fmt.Println(result.Fields)      // [foo bar]
//	}
//
// # Architecture
//
// The module splits into small packages:
//
//   - filter: the tree model, its fluent builder, and the JSON and binary
//     wire codecs
//   - policy: field governance compiled from allow/deny/require settings
//   - query: typed fragments matching the search engine's query DSL
//   - esfilter (this package): the converter tying them together
//
// # Governance
//
// Field access is restricted by attaching a policy:
//
//	p, err := policy.New(policy.Settings{
//	    Deny:    []string{"/ssn"},
//	    Require: []string{"/tenant"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conv := esfilter.New(&esfilter.Options{Policy: p})
//	result, err := conv.Convert(f)
//
// Violations surface as typed errors: *DeniedFieldError,
// *NonallowedFieldError and *RequiredFieldError identify the offending
// field; *InvalidTargetError and *ConvertError cover malformed paths and
// unconvertible trees. Match them with errors.As.
//
// # Field Mapping
//
// Canonical keys can be rewritten for the index schema without affecting
// governance or the reported fields:
//
//	conv := esfilter.New(&esfilter.Options{
//	    FieldMapping: map[string]string{
//	        "foo.bar": "foo_bar_keyword",
//	    },
//	})
//
// # Logging
//
// Conversion traces go to log/slog at Debug level. Pass a Logger in Options
// to direct them; otherwise slog.Default() is used.
//
// # Concurrency
//
// A Converter is immutable after New and safe for concurrent use. Policies
// are immutable too; build both once and share them across goroutines.
package esfilter
