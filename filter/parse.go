package filter

import (
	"encoding/json"
	"fmt"
	"math"
)

// Parse parses the JSON wire form of a filter tree.
//
// Error conditions:
//   - Invalid JSON syntax
//   - A statement holding neither a clause nor a nested filter, or both
//   - An operand object without exactly one of its five tagged keys
//   - Unknown operators or conjunctions
//   - Literal values that are not a string, number, boolean or null
func Parse(data []byte) (*Filter, error) {
	f, err := parseFilter(data)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return f, nil
}

// UnmarshalJSON implements json.Unmarshaler with the same validation as
// Parse.
func (f *Filter) UnmarshalJSON(data []byte) error {
	parsed, err := parseFilter(data)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}
	*f = *parsed
	return nil
}

// rawFilter is the intermediate structure for JSON parsing.
type rawFilter struct {
	Statements []json.RawMessage `json:"statements"`
}

// rawStatement carries both condition keys; exactly one must be present.
type rawStatement struct {
	Conjunction string          `json:"conjunction"`
	Clause      json.RawMessage `json:"clause"`
	Filter      json.RawMessage `json:"filter"`
}

// rawClause is the JSON structure for comparison clauses.
type rawClause struct {
	Subject json.RawMessage `json:"subject"`
	Op      string          `json:"op"`
	Object  json.RawMessage `json:"object"`
}

// rawOperand carries all five operand tags; exactly one must be present.
type rawOperand struct {
	Target  json.RawMessage `json:"target"`
	Literal json.RawMessage `json:"literal"`
	Range   json.RawMessage `json:"range"`
	Pattern json.RawMessage `json:"pattern"`
	List    json.RawMessage `json:"list"`
}

// rawTarget is the JSON structure for target operands.
type rawTarget struct {
	Path []json.RawMessage `json:"path"`
}

// rawRange is the JSON structure for range operands.
type rawRange struct {
	Lower json.RawMessage `json:"lower"`
	Upper json.RawMessage `json:"upper"`
}

func parseFilter(data json.RawMessage) (*Filter, error) {
	var raw rawFilter
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	f := &Filter{Statements: make([]Statement, 0, len(raw.Statements))}
	for i, rawStmt := range raw.Statements {
		stmt, err := parseStatement(rawStmt)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		f.Statements = append(f.Statements, stmt)
	}
	return f, nil
}

func parseStatement(data json.RawMessage) (Statement, error) {
	var raw rawStatement
	if err := json.Unmarshal(data, &raw); err != nil {
		return Statement{}, fmt.Errorf("invalid statement: %w", err)
	}

	conj, err := parseConjunction(raw.Conjunction)
	if err != nil {
		return Statement{}, err
	}

	switch {
	case raw.Clause != nil && raw.Filter != nil:
		return Statement{}, fmt.Errorf("statement has both a clause and a filter")
	case raw.Clause != nil:
		clause, err := parseClause(raw.Clause)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Conjunction: conj, Value: clause}, nil
	case raw.Filter != nil:
		nested, err := parseFilter(raw.Filter)
		if err != nil {
			return Statement{}, err
		}
		return Statement{Conjunction: conj, Value: nested}, nil
	default:
		return Statement{}, fmt.Errorf("statement has neither a clause nor a filter")
	}
}

// parseConjunction validates a wire conjunction. The empty string maps to
// "and" so that the meaningless conjunction of a first statement may be
// omitted.
func parseConjunction(s string) (Conjunction, error) {
	if s == "" {
		return ConjunctionAnd, nil
	}
	c := Conjunction(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown conjunction %q", s)
	}
	return c, nil
}

func parseClause(data json.RawMessage) (Clause, error) {
	var raw rawClause
	if err := json.Unmarshal(data, &raw); err != nil {
		return Clause{}, fmt.Errorf("invalid clause: %w", err)
	}

	op := Operator(raw.Op)
	if !op.Valid() {
		return Clause{}, fmt.Errorf("unknown operator %q", raw.Op)
	}

	if raw.Subject == nil {
		return Clause{}, fmt.Errorf("clause is missing a subject")
	}
	subject, err := parseOperand(raw.Subject)
	if err != nil {
		return Clause{}, fmt.Errorf("invalid subject: %w", err)
	}

	if raw.Object == nil {
		return Clause{}, fmt.Errorf("clause is missing an object")
	}
	object, err := parseOperand(raw.Object)
	if err != nil {
		return Clause{}, fmt.Errorf("invalid object: %w", err)
	}

	return NewClause(subject, op, object), nil
}

func parseOperand(data json.RawMessage) (Operand, error) {
	var raw rawOperand
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid operand: %w", err)
	}

	// A key set to JSON null still counts as present, which is how the nil
	// sentinel {"literal":null} is told apart from an absent literal key.
	tags := 0
	for _, tag := range []json.RawMessage{raw.Target, raw.Literal, raw.Range, raw.Pattern, raw.List} {
		if tag != nil {
			tags++
		}
	}
	if tags != 1 {
		return nil, fmt.Errorf("operand must have exactly one of target, literal, range, pattern or list")
	}

	switch {
	case raw.Target != nil:
		return parseTargetOperand(raw.Target)
	case raw.Literal != nil:
		return parseLiteral(raw.Literal)
	case raw.Range != nil:
		return parseRange(raw.Range)
	case raw.Pattern != nil:
		return parsePattern(raw.Pattern)
	default:
		return parseList(raw.List)
	}
}

func parseTargetOperand(data json.RawMessage) (Target, error) {
	var raw rawTarget
	if err := json.Unmarshal(data, &raw); err != nil {
		return Target{}, fmt.Errorf("invalid target: %w", err)
	}
	if len(raw.Path) == 0 {
		return Target{}, fmt.Errorf("target path is empty")
	}

	segments := make([]Segment, 0, len(raw.Path))
	for i, rawSeg := range raw.Path {
		seg, err := parseSegment(rawSeg)
		if err != nil {
			return Target{}, fmt.Errorf("path segment %d: %w", i, err)
		}
		segments = append(segments, seg)
	}
	return NewTarget(segments...), nil
}

func parseSegment(data json.RawMessage) (Segment, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Segment{}, fmt.Errorf("invalid segment: %w", err)
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return Segment{}, fmt.Errorf("segment key is empty")
		}
		return Key(s), nil
	case float64:
		if s < 0 || s != math.Trunc(s) {
			return Segment{}, fmt.Errorf("segment index %v is not a non-negative integer", s)
		}
		return Index(int(s)), nil
	default:
		return Segment{}, fmt.Errorf("segment must be a string key or an integer index, got %T", v)
	}
}

func parseLiteral(data json.RawMessage) (Literal, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Literal{}, fmt.Errorf("invalid literal: %w", err)
	}
	lit, err := literalOf(v)
	if err != nil {
		return Literal{}, fmt.Errorf("literal must be a string, number, boolean or null, got %T", v)
	}
	return lit, nil
}

func parseRange(data json.RawMessage) (Range, error) {
	var raw rawRange
	if err := json.Unmarshal(data, &raw); err != nil {
		return Range{}, fmt.Errorf("invalid range: %w", err)
	}
	if raw.Lower == nil || raw.Upper == nil {
		return Range{}, fmt.Errorf("range requires both lower and upper")
	}

	lower, err := parseLiteral(raw.Lower)
	if err != nil {
		return Range{}, fmt.Errorf("invalid lower bound: %w", err)
	}
	upper, err := parseLiteral(raw.Upper)
	if err != nil {
		return Range{}, fmt.Errorf("invalid upper bound: %w", err)
	}
	return NewRange(lower, upper), nil
}

func parsePattern(data json.RawMessage) (Pattern, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return Pattern{}, fmt.Errorf("pattern must be a string: %w", err)
	}
	return NewPattern(s), nil
}

func parseList(data json.RawMessage) (List, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return List{}, fmt.Errorf("list must be an array: %w", err)
	}

	values := make([]Literal, 0, len(raw))
	for i, rawVal := range raw {
		lit, err := parseLiteral(rawVal)
		if err != nil {
			return List{}, fmt.Errorf("list value %d: %w", i, err)
		}
		values = append(values, lit)
	}
	return NewList(values...), nil
}
