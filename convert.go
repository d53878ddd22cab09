package esfilter

import (
	"log/slog"

	"github.com/hugr-lab/esfilter/filter"
	"github.com/hugr-lab/esfilter/policy"
	"github.com/hugr-lab/esfilter/query"
)

// Converter compiles filter trees into Elasticsearch query documents. A
// Converter is immutable and safe for concurrent use; each Convert call
// carries its own state.
type Converter struct {
	policy  *policy.Policy
	mapping map[string]string
	logger  *slog.Logger
}

// New creates a Converter. If opts is nil, default options are used.
func New(opts *Options) *Converter {
	if opts == nil {
		opts = &Options{}
	}
	c := &Converter{
		policy:  opts.Policy,
		mapping: opts.FieldMapping,
		logger:  opts.Logger,
	}
	if c.policy == nil {
		c.policy = policy.Unrestricted()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Result is the outcome of a conversion.
type Result struct {
	// Fields lists every field the filter references, once each, in order
	// of first reference.
	Fields []string `json:"fields"`

	// Value is the compiled query document.
	Value query.Document `json:"value"`
}

// Convert compiles a filter tree with a default Converter: no policy and no
// field mapping.
func Convert(f *filter.Filter) (*Result, error) {
	return New(nil).Convert(f)
}

// ConvertWithPolicy compiles a filter tree under the given policy.
func ConvertWithPolicy(f *filter.Filter, p *policy.Policy) (*Result, error) {
	return New(&Options{Policy: p}).Convert(f)
}

// Convert compiles a filter tree into a query document and the list of
// fields it references.
//
// Error conditions:
//   - *ConvertError: the tree is nil, empty, or structurally unconvertible
//   - *InvalidTargetError: a target path cannot form a document key
//   - *DeniedFieldError, *NonallowedFieldError: the policy rejects a field
//   - *RequiredFieldError: a required field is never referenced
func (c *Converter) Convert(f *filter.Filter) (*Result, error) {
	if f == nil {
		return nil, newConvertError("filter is nil")
	}
	c.logger.Debug("converting filter", "statements", len(f.Statements))

	// Fields starts non-nil so an all-literal filter still reports [] rather
	// than null in serialized results.
	run := &conversion{conv: c, seen: make(map[string]bool), fields: []string{}}
	root, err := run.compileFilter(f)
	if err != nil {
		c.logger.Debug("conversion failed", "error", err)
		return nil, err
	}

	// Required fields are checked once, after the whole tree is walked.
	for _, field := range c.policy.RequiredFields() {
		if !run.seen[field] {
			return nil, &RequiredFieldError{Field: field}
		}
	}

	result := &Result{
		Fields: run.fields,
		Value:  query.Document{Filter: root},
	}
	c.logger.Debug("filter converted", "fields", result.Fields)
	return result, nil
}

// conversion is the per-call state of one Convert: the distinct referenced
// fields in first-reference order.
type conversion struct {
	conv   *Converter
	fields []string
	seen   map[string]bool
}

// compileFilter lowers one filter level to a bool fragment, restoring the
// AND-over-OR precedence of the statement sequence: runs of AND statements
// close into must groups, and an OR conjunction starts a new group. A single
// group is emitted as a must; several become alternatives under a should.
func (r *conversion) compileFilter(f *filter.Filter) (query.Fragment, error) {
	if len(f.Statements) == 0 {
		return nil, newConvertError("filter has no statements")
	}

	var group []query.Fragment
	var alternatives []query.Fragment
	for i, stmt := range f.Statements {
		if stmt.Conjunction == filter.ConjunctionOr && len(group) > 0 {
			alternatives = append(alternatives, query.NewMust(group))
			group = nil
		}

		var frag query.Fragment
		var err error
		switch v := stmt.Value.(type) {
		case filter.Clause:
			frag, err = r.compileClause(v)
		case *filter.Filter:
			frag, err = r.compileFilter(v)
		case nil:
			err = newConvertError("statement %d has no value", i)
		default:
			err = newConvertError("statement %d holds neither a clause nor a filter", i)
		}
		if err != nil {
			return nil, err
		}
		group = append(group, frag)
	}

	if len(alternatives) == 0 {
		return query.NewMust(group), nil
	}
	alternatives = append(alternatives, query.NewMust(group))
	return query.NewShould(alternatives), nil
}
