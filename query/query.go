// Package query models the Elasticsearch query DSL fragments emitted by
// filter conversion. The structs marshal to the exact JSON shapes the search
// engine expects; build them with the New* constructors and serialize the
// enclosing Document with encoding/json.
package query

// Fragment is a single query primitive or bool grouping. Use type
// assertions or type switches to inspect a compiled query.
type Fragment interface {
	// fragmentMarker is a marker method to prevent external implementation.
	fragmentMarker()
}

// Document is a complete query document: the root fragment wrapped under
// the "filter" key, ready to embed in a search request body.
type Document struct {
	Filter Fragment `json:"filter"`
}

// Term matches documents whose field holds exactly the given value.
type Term struct {
	Term map[string]any `json:"term"`
}

func (Term) fragmentMarker() {}

// NewTerm builds a term fragment for one field.
func NewTerm(field string, value any) Term {
	return Term{Term: map[string]any{field: value}}
}

// Terms matches documents whose field holds any of the given values.
type Terms struct {
	Terms map[string][]any `json:"terms"`
}

func (Terms) fragmentMarker() {}

// NewTerms builds a terms fragment for one field.
func NewTerms(field string, values []any) Terms {
	return Terms{Terms: map[string][]any{field: values}}
}

// Bounds holds the bound conditions of a range fragment. Unset bounds are
// omitted from the JSON form.
type Bounds struct {
	Gt  any `json:"gt,omitempty"`
	Gte any `json:"gte,omitempty"`
	Lt  any `json:"lt,omitempty"`
	Lte any `json:"lte,omitempty"`
}

// Range matches documents whose field falls within the given bounds.
type Range struct {
	Range map[string]*Bounds `json:"range"`
}

func (Range) fragmentMarker() {}

// NewRange builds a range fragment for one field.
func NewRange(field string, bounds *Bounds) Range {
	return Range{Range: map[string]*Bounds{field: bounds}}
}

// Regexp matches documents whose field matches a regular expression. The
// engine anchors the expression implicitly, so it carries no ^ or $.
type Regexp struct {
	Regexp map[string]string `json:"regexp"`
}

func (Regexp) fragmentMarker() {}

// NewRegexp builds a regexp fragment for one field.
func NewRegexp(field, expression string) Regexp {
	return Regexp{Regexp: map[string]string{field: expression}}
}

// Exists matches documents in which the field is present.
type Exists struct {
	Exists ExistsField `json:"exists"`
}

// ExistsField names the field an exists fragment tests.
type ExistsField struct {
	Field string `json:"field"`
}

func (Exists) fragmentMarker() {}

// NewExists builds an exists fragment.
func NewExists(field string) Exists {
	return Exists{Exists: ExistsField{Field: field}}
}

// LangPainless is the scripting language of every emitted script fragment.
const LangPainless = "painless"

// Script matches documents for which a script evaluates to true.
type Script struct {
	Script ScriptQuery `json:"script"`
}

// ScriptQuery wraps the script source in the query DSL's nested envelope.
type ScriptQuery struct {
	Script ScriptSource `json:"script"`
}

// ScriptSource holds the script body, its language, and optional parameters.
type ScriptSource struct {
	Source string         `json:"source"`
	Lang   string         `json:"lang"`
	Params map[string]any `json:"params,omitempty"`
}

func (Script) fragmentMarker() {}

// NewScript builds a Painless script fragment. Params may be nil.
func NewScript(source string, params map[string]any) Script {
	return Script{Script: ScriptQuery{Script: ScriptSource{
		Source: source,
		Lang:   LangPainless,
		Params: params,
	}}}
}

// Bool groups fragments under the query DSL's boolean occurrence types.
type Bool struct {
	Bool BoolBody `json:"bool"`
}

// BoolBody holds the occurrence lists of a bool fragment. Empty occurrences
// are omitted from the JSON form.
type BoolBody struct {
	Must    []Fragment `json:"must,omitempty"`
	Should  []Fragment `json:"should,omitempty"`
	MustNot Fragment   `json:"must_not,omitempty"`
}

func (Bool) fragmentMarker() {}

// NewMust groups fragments that must all match.
func NewMust(fragments []Fragment) Bool {
	return Bool{Bool: BoolBody{Must: fragments}}
}

// NewShould groups fragments of which at least one must match.
func NewShould(fragments []Fragment) Bool {
	return Bool{Bool: BoolBody{Should: fragments}}
}

// NewMustNot negates a single fragment.
func NewMustNot(fragment Fragment) Bool {
	return Bool{Bool: BoolBody{MustNot: fragment}}
}
